package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/rentflow-backend/pkg/logger"
)

type overdueMarker interface {
	MarkOverdue(ctx context.Context) (int64, error)
}

// RentalOverdueJobParams configures the overdue flip.
type RentalOverdueJobParams struct {
	Logger  *logger.Logger
	Rentals overdueMarker
}

type rentalOverdueJob struct {
	logg    *logger.Logger
	rentals overdueMarker
}

// NewRentalOverdueJob flips ongoing rentals past their expected return to overdue.
func NewRentalOverdueJob(params RentalOverdueJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Rentals == nil {
		return nil, fmt.Errorf("rentals service required")
	}
	return &rentalOverdueJob{logg: params.Logger, rentals: params.Rentals}, nil
}

func (j *rentalOverdueJob) Name() string { return "rental-overdue" }

func (j *rentalOverdueJob) Run(ctx context.Context) error {
	count, err := j.rentals.MarkOverdue(ctx)
	if err != nil {
		return fmt.Errorf("mark overdue rentals: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "flipped", count), "rental overdue flip complete")
	return nil
}
