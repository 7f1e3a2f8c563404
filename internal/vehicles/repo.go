package vehicles

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/rentflow-backend/internal/repo"
	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
)

// Repository reads vehicles and writes their availability counters.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	LockByID(ctx context.Context, id int64) (*models.Vehicle, error)
	CountActiveRentals(ctx context.Context, vehicleID int64) (int64, error)
	UpdateAvailability(ctx context.Context, vehicleID int64, quantity int, status enums.VehicleStatus) error
}

type repository struct {
	repo.Base
}

// NewRepository builds a vehicles repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

func (r *repository) LockByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&vehicle).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) CountActiveRentals(ctx context.Context, vehicleID int64) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.Rental{}).
		Where("vehicle_id = ? AND status IN ?", vehicleID, enums.ActiveRentalStatuses).
		Count(&count).Error
	return count, err
}

func (r *repository) UpdateAvailability(ctx context.Context, vehicleID int64, quantity int, status enums.VehicleStatus) error {
	return r.DB(ctx).
		Model(&models.Vehicle{}).
		Where("id = ?", vehicleID).
		Updates(map[string]any{"quantity": quantity, "status": status}).Error
}
