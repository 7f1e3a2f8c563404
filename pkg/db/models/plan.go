package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan carries the fees charged when a rental opens.
type Plan struct {
	ID              int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Name            string          `gorm:"column:name;not null;uniqueIndex"`
	JoiningFee      decimal.Decimal `gorm:"column:joining_fee;type:numeric(12,2);not null"`
	SecurityDeposit decimal.Decimal `gorm:"column:security_deposit;type:numeric(12,2);not null"`
	Active          bool            `gorm:"column:active;not null;default:true"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
