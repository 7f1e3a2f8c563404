// Package bookings opens rentals at the counter: rider, rental and first payment
// commit together or not at all.
package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/internal/ledger"
	"github.com/angelmondragon/rentflow-backend/internal/plans"
	"github.com/angelmondragon/rentflow-backend/internal/pricing"
	"github.com/angelmondragon/rentflow-backend/internal/riders"
	"github.com/angelmondragon/rentflow-backend/internal/vehicles"
	"github.com/angelmondragon/rentflow-backend/pkg/db"
	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
)

type txRunner interface {
	WithSerializableTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service creates bookings.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*Result, error)
}

// ServiceParams configure the bookings service.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Riders   riders.Service
	Plans    plans.Service
	Vehicles vehicles.Service
	Ledger   ledger.Service
	Location *time.Location
	Now      func() time.Time
}

type service struct {
	repo     Repository
	tx       txRunner
	riders   riders.Service
	plans    plans.Service
	vehicles vehicles.Service
	ledger   ledger.Service
	loc      *time.Location
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("bookings repository required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Riders == nil:
		return nil, fmt.Errorf("riders service required")
	case params.Plans == nil:
		return nil, fmt.Errorf("plans service required")
	case params.Vehicles == nil:
		return nil, fmt.Errorf("vehicles service required")
	case params.Ledger == nil:
		return nil, fmt.Errorf("ledger service required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	now := params.Now
	if now == nil {
		now = db.NowUTC
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		riders:   params.Riders,
		plans:    params.Plans,
		vehicles: params.Vehicles,
		ledger:   params.Ledger,
		loc:      loc,
		now:      now,
	}, nil
}

// Create books a vehicle for a rider. Lookup failures surface as validation
// errors and roll back everything, including a newly created rider.
func (s *service) Create(ctx context.Context, input CreateInput) (*Result, error) {
	if err := validateDates(input); err != nil {
		return nil, err
	}

	var result *Result
	err := s.tx.WithSerializableTx(ctx, func(tx *gorm.DB) error {
		resolution, err := s.riders.FindOrCreate(ctx, tx, input.Rider)
		if err != nil {
			return err
		}
		plan, err := s.plans.Active(ctx, tx, input.PlanID)
		if err != nil {
			return asLookupFailure(err, "planId", input.PlanID)
		}
		vehicle, err := s.vehicles.Lock(ctx, tx, input.VehicleID)
		if err != nil {
			return asLookupFailure(err, "vehicleId", input.VehicleID)
		}
		free, err := s.vehicles.FreeUnits(ctx, tx, vehicle)
		if err != nil {
			return err
		}
		if free <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "vehicle has no free units").
				WithDetails(map[string]any{"vehicleId": vehicle.ID})
		}

		days := pricing.ComputeStay(input.StartDate.In(s.loc), input.ExpectedReturnDate.In(s.loc))
		payable := pricing.ComputePayable(vehicle.RatePerDay, days, plan.JoiningFee, plan.SecurityDeposit)

		rental := models.Rental{
			RiderID:            resolution.Rider.ID,
			VehicleID:          vehicle.ID,
			PlanID:             plan.ID,
			StartDate:          input.StartDate.UTC(),
			ExpectedReturnDate: input.ExpectedReturnDate.UTC(),
			Status:             s.initialStatus(input.StartDate),
			RatePerDay:         pricing.Round(vehicle.RatePerDay),
			Deposit:            pricing.Round(plan.SecurityDeposit),
			JoiningFee:         pricing.Round(plan.JoiningFee),
			UsageAmount:        payable.Usage,
			PayableTotal:       payable.PayableTotal,
			PaidTotal:          decimal.Zero,
			BalanceDue:         payable.PayableTotal,
		}
		if err := s.repo.WithTx(tx).CreateRental(ctx, &rental); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create rental")
		}

		result = &Result{
			RentalID:          rental.ID,
			RiderID:           resolution.Rider.ID,
			RiderCreated:      resolution.Created,
			TemporaryPassword: resolution.GeneratedPassword,
			Status:            rental.Status,
			Days:              payable.Days,
			UsageAmount:       payable.Usage,
			PayableTotal:      rental.PayableTotal,
			Paid:              rental.PaidTotal,
			Balance:           rental.BalanceDue,
		}

		if input.Payment != nil {
			receipt, err := s.ledger.Record(ctx, tx, ledger.RecordInput{
				RentalID:        rental.ID,
				RiderID:         resolution.Rider.ID,
				Amount:          input.Payment.Amount,
				Method:          input.Payment.Method,
				TxnRef:          input.Payment.TxnRef,
				TransactionDate: s.now(),
			})
			if err != nil {
				return err
			}
			paymentID := receipt.Payment.ID
			result.PaymentID = &paymentID
			result.Paid = receipt.Totals.PaidTotal
			result.Balance = receipt.Totals.BalanceDue
		}

		_, err = s.vehicles.Recompute(ctx, tx, vehicle.ID)
		return err
	})
	if err != nil {
		if db.IsSerializationFailure(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "booking raced with another change, resubmit")
		}
		return nil, err
	}
	return result, nil
}

// initialStatus is ongoing when the rental starts today or earlier in the
// business timezone, booked otherwise.
func (s *service) initialStatus(start time.Time) enums.RentalStatus {
	today := dateOf(s.now().In(s.loc))
	if dateOf(start.In(s.loc)).After(today) {
		return enums.RentalStatusBooked
	}
	return enums.RentalStatusOngoing
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func validateDates(input CreateInput) error {
	if input.StartDate.IsZero() || input.ExpectedReturnDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start and expected return dates are required")
	}
	if input.ExpectedReturnDate.Before(input.StartDate) {
		return pkgerrors.New(pkgerrors.CodeValidation, "expected return date must not precede the start date").
			WithDetails(map[string]any{
				"startDate":          input.StartDate,
				"expectedReturnDate": input.ExpectedReturnDate,
			})
	}
	return nil
}

// asLookupFailure reports a missing referenced row as a bad request.
func asLookupFailure(err error, field string, id int64) error {
	if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return pkgerrors.New(pkgerrors.CodeValidation, pkgerrors.As(err).Message()).
			WithDetails(map[string]any{field: id})
	}
	return err
}
