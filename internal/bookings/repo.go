package bookings

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
)

// Repository inserts the rental row of a booking.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateRental(ctx context.Context, rental *models.Rental) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateRental(ctx context.Context, rental *models.Rental) error {
	return r.db.WithContext(ctx).Create(rental).Error
}
