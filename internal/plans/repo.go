package plans

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/internal/repo"
	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
)

// Repository reads plans.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id int64) (*models.Plan, error)
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

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Plan, error) {
	var plan models.Plan
	if err := r.DB(ctx).Where("id = ?", id).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}
