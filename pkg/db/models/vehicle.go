package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/rentflow-backend/pkg/enums"
)

// Vehicle is a pooled rentable model. Quantity counts free units.
type Vehicle struct {
	ID                 int64               `gorm:"column:id;primaryKey;autoIncrement"`
	RegistrationNumber string              `gorm:"column:registration_number;not null;uniqueIndex"`
	Model              string              `gorm:"column:model;not null"`
	RatePerDay         decimal.Decimal     `gorm:"column:rate_per_day;type:numeric(12,2);not null"`
	TotalUnits         int                 `gorm:"column:total_units;not null"`
	Quantity           int                 `gorm:"column:quantity;not null"`
	Status             enums.VehicleStatus `gorm:"column:status;type:text;not null"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
