package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/rentflow-backend/pkg/enums"
)

// Payment is an immutable monetary entry against a rental.
type Payment struct {
	ID                int64               `gorm:"column:id;primaryKey;autoIncrement"`
	RentalID          int64               `gorm:"column:rental_id;not null"`
	RiderID           int64               `gorm:"column:rider_id;not null"`
	Amount            decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Method            enums.PaymentMethod `gorm:"column:method;type:text;not null"`
	TxnRef            *string             `gorm:"column:txn_ref;type:text"`
	TransactionStatus enums.PaymentStatus `gorm:"column:transaction_status;type:text;not null"`
	TransactionDate   time.Time           `gorm:"column:transaction_date;type:timestamptz;not null"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
}
