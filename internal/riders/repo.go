package riders

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/internal/repo"
	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
)

// Repository persists riders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByPhone(ctx context.Context, phone string) (*models.Rider, error)
	Create(ctx context.Context, rider *models.Rider) error
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

func (r *repository) FindByPhone(ctx context.Context, phone string) (*models.Rider, error) {
	var rider models.Rider
	if err := r.DB(ctx).Where("phone = ?", phone).First(&rider).Error; err != nil {
		return nil, err
	}
	return &rider, nil
}

func (r *repository) Create(ctx context.Context, rider *models.Rider) error {
	return r.DB(ctx).Create(rider).Error
}
