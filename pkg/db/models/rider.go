package models

import "time"

// Rider is the customer a rental is leased to.
type Rider struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	FullName     string    `gorm:"column:full_name;not null"`
	Phone        string    `gorm:"column:phone;not null;uniqueIndex"`
	Email        *string   `gorm:"column:email"`
	KYCIDType    *string   `gorm:"column:kyc_id_type"`
	KYCIDNumber  *string   `gorm:"column:kyc_id_number"`
	Address      *string   `gorm:"column:address"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
