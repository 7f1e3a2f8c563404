package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/rentflow-backend/pkg/types"
)

// ReturnInspection is the current settlement computation for a rental.
type ReturnInspection struct {
	ID                  int64                     `gorm:"column:id;primaryKey;autoIncrement"`
	RentalID            int64                     `gorm:"column:rental_id;not null;uniqueIndex"`
	OdometerEnd         *int64                    `gorm:"column:odometer_end"`
	ChargePercent       *int                      `gorm:"column:charge_percent"`
	AccessoriesReturned types.AccessoriesReturned `gorm:"column:accessories_returned;type:jsonb"`
	IsBatteryMissing    bool                      `gorm:"column:is_battery_missing;not null;default:false"`
	MissingItemsCharge  decimal.Decimal           `gorm:"column:missing_items_charge;type:numeric(12,2);not null"`
	CleaningFee         decimal.Decimal           `gorm:"column:cleaning_fee;type:numeric(12,2);not null"`
	DamageFee           decimal.Decimal           `gorm:"column:damage_fee;type:numeric(12,2);not null"`
	OtherAdjustments    decimal.Decimal           `gorm:"column:other_adjustments;type:numeric(12,2);not null"`
	LateDays            int                       `gorm:"column:late_days;not null"`
	LateFee             decimal.Decimal           `gorm:"column:late_fee;type:numeric(12,2);not null"`
	TaxPercent          decimal.Decimal           `gorm:"column:tax_percent;type:numeric(5,2);not null"`
	Subtotal            decimal.Decimal           `gorm:"column:subtotal;type:numeric(12,2);not null"`
	TaxAmount           decimal.Decimal           `gorm:"column:tax_amount;type:numeric(12,2);not null"`
	TotalDue            decimal.Decimal           `gorm:"column:total_due;type:numeric(12,2);not null"`
	DepositHeld         decimal.Decimal           `gorm:"column:deposit_held;type:numeric(12,2);not null"`
	DepositReturn       decimal.Decimal           `gorm:"column:deposit_return;type:numeric(12,2);not null"`
	FinalAmount         decimal.Decimal           `gorm:"column:final_amount;type:numeric(12,2);not null"`
	Remarks             *string                   `gorm:"column:remarks;type:text"`
	Settled             bool                      `gorm:"column:settled;not null;default:false"`
	SettledAt           *time.Time                `gorm:"column:settled_at;type:timestamptz"`
	NocIssued           bool                      `gorm:"column:noc_issued;not null;default:false"`
	NocID               *string                   `gorm:"column:noc_id;type:text"`
	CreatedAt           time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
