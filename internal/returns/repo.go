package returns

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/rentflow-backend/internal/repo"
	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
)

// draftColumns are rewritten when an inspection for the rental already exists.
var draftColumns = []string{
	"odometer_end", "charge_percent", "accessories_returned", "is_battery_missing",
	"missing_items_charge", "cleaning_fee", "damage_fee", "other_adjustments",
	"late_days", "late_fee", "tax_percent", "subtotal", "tax_amount", "total_due",
	"deposit_held", "deposit_return", "final_amount", "remarks", "updated_at",
}

// Repository persists return inspections. One row exists per rental.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	LockRental(ctx context.Context, rentalID int64) (*models.Rental, error)
	FindInspection(ctx context.Context, rentalID int64) (*models.ReturnInspection, error)
	Upsert(ctx context.Context, inspection *models.ReturnInspection) (*models.ReturnInspection, error)
	MarkSettled(ctx context.Context, inspectionID int64, settledAt time.Time, nocID *string) error
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

func (r *repository) FindInspection(ctx context.Context, rentalID int64) (*models.ReturnInspection, error) {
	var inspection models.ReturnInspection
	if err := r.DB(ctx).Where("rental_id = ?", rentalID).First(&inspection).Error; err != nil {
		return nil, err
	}
	return &inspection, nil
}

// Upsert inserts or overwrites the draft keyed by rental_id and returns the stored row.
func (r *repository) Upsert(ctx context.Context, inspection *models.ReturnInspection) (*models.ReturnInspection, error) {
	if inspection.ID != 0 {
		err := r.DB(ctx).Model(inspection).Select(draftColumns).Updates(inspection).Error
		if err != nil {
			return nil, err
		}
		return r.FindInspection(ctx, inspection.RentalID)
	}
	err := r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "rental_id"}},
			DoUpdates: clause.AssignmentColumns(draftColumns),
		}).
		Create(inspection).Error
	if err != nil {
		return nil, err
	}
	return r.FindInspection(ctx, inspection.RentalID)
}

func (r *repository) MarkSettled(ctx context.Context, inspectionID int64, settledAt time.Time, nocID *string) error {
	return r.DB(ctx).
		Model(&models.ReturnInspection{}).
		Where("id = ? AND settled = ?", inspectionID, false).
		Updates(map[string]any{
			"settled":    true,
			"settled_at": settledAt,
			"noc_issued": nocID != nil,
			"noc_id":     nocID,
			"updated_at": settledAt,
		}).Error
}
