// Package plans loads the fee plans rentals are sold under.
package plans

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
)

// Service resolves plans for bookings.
type Service interface {
	Active(ctx context.Context, tx *gorm.DB, id int64) (*models.Plan, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("plans repository required")
	}
	return &service{repo: repo}, nil
}

// Active returns the plan when it exists and is still sold.
func (s *service) Active(ctx context.Context, tx *gorm.DB, id int64) (*models.Plan, error) {
	plan, err := s.repo.WithTx(tx).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load plan")
	}
	if !plan.Active {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan is no longer offered").
			WithDetails(map[string]any{"planId": id})
	}
	return plan, nil
}
