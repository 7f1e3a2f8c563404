// Package vehicles keeps pooled vehicle availability in step with active rentals.
package vehicles

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
)

// Service exposes the availability side effects of rental transitions. Every
// method runs inside the caller's transaction.
type Service interface {
	Lock(ctx context.Context, tx *gorm.DB, vehicleID int64) (*models.Vehicle, error)
	FreeUnits(ctx context.Context, tx *gorm.DB, vehicle *models.Vehicle) (int, error)
	Recompute(ctx context.Context, tx *gorm.DB, vehicleID int64) (*models.Vehicle, error)
}

type service struct {
	repo Repository
}

// NewService wires the availability service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vehicles repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Lock(ctx context.Context, tx *gorm.DB, vehicleID int64) (*models.Vehicle, error) {
	vehicle, err := s.repo.WithTx(tx).LockByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load vehicle")
	}
	return vehicle, nil
}

// FreeUnits counts units not held by an active rental, from the rental rows.
func (s *service) FreeUnits(ctx context.Context, tx *gorm.DB, vehicle *models.Vehicle) (int, error) {
	active, err := s.repo.WithTx(tx).CountActiveRentals(ctx, vehicle.ID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count active rentals")
	}
	return vehicle.TotalUnits - int(active), nil
}

// Recompute rewrites quantity and status from the active rental count.
func (s *service) Recompute(ctx context.Context, tx *gorm.DB, vehicleID int64) (*models.Vehicle, error) {
	vehicle, err := s.Lock(ctx, tx, vehicleID)
	if err != nil {
		return nil, err
	}
	free, err := s.FreeUnits(ctx, tx, vehicle)
	if err != nil {
		return nil, err
	}
	if free < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "vehicle has more active rentals than units").
			WithDetails(map[string]any{"vehicleId": vehicleID, "totalUnits": vehicle.TotalUnits})
	}
	status := enums.VehicleStatusFor(free)
	if err := s.repo.WithTx(tx).UpdateAvailability(ctx, vehicleID, free, status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update vehicle availability")
	}
	vehicle.Quantity = free
	vehicle.Status = status
	return vehicle, nil
}
