package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/rentflow-backend/pkg/enums"
)

// Rental is one lease of one vehicle to one rider under one plan.
type Rental struct {
	ID                 int64              `gorm:"column:id;primaryKey;autoIncrement"`
	RiderID            int64              `gorm:"column:rider_id;not null"`
	VehicleID          int64              `gorm:"column:vehicle_id;not null"`
	PlanID             int64              `gorm:"column:plan_id;not null"`
	StartDate          time.Time          `gorm:"column:start_date;type:timestamptz;not null"`
	ExpectedReturnDate time.Time          `gorm:"column:expected_return_date;type:timestamptz;not null"`
	ActualReturnDate   *time.Time         `gorm:"column:actual_return_date;type:timestamptz"`
	Status             enums.RentalStatus `gorm:"column:status;type:text;not null"`
	RatePerDay         decimal.Decimal    `gorm:"column:rate_per_day;type:numeric(12,2);not null"`
	Deposit            decimal.Decimal    `gorm:"column:deposit;type:numeric(12,2);not null"`
	JoiningFee         decimal.Decimal    `gorm:"column:joining_fee;type:numeric(12,2);not null"`
	UsageAmount        decimal.Decimal    `gorm:"column:usage_amount;type:numeric(12,2);not null"`
	PayableTotal       decimal.Decimal    `gorm:"column:payable_total;type:numeric(12,2);not null"`
	PaidTotal          decimal.Decimal    `gorm:"column:paid_total;type:numeric(12,2);not null"`
	BalanceDue         decimal.Decimal    `gorm:"column:balance_due;type:numeric(12,2);not null"`
	CancelledAt        *time.Time         `gorm:"column:cancelled_at;type:timestamptz"`
	CreatedAt          time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
