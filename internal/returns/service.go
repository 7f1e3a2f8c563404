// Package returns computes return inspections and commits settlements.
package returns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/internal/ledger"
	"github.com/angelmondragon/rentflow-backend/internal/rentals"
	"github.com/angelmondragon/rentflow-backend/pkg/db"
	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
)

// outstandingEpsilon absorbs sub-cent residue when comparing money.
var outstandingEpsilon = decimal.RequireFromString("0.0001")

const nocPrefix = "NOC-"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	WithSerializableTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service runs the returns desk.
type Service interface {
	SaveDraft(ctx context.Context, rentalID int64, input DraftInput) (*InspectionView, error)
	Get(ctx context.Context, rentalID int64) (*ReturnView, error)
	Settle(ctx context.Context, rentalID int64, input SettleInput) (*Settlement, error)
	List(ctx context.Context, input rentals.ListInput) (*rentals.ListResult, error)
}

// ServiceParams configure the returns service.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Ledger  ledger.Service
	Rentals rentals.Service
	Policy  Policy
	Now     func() time.Time
}

type service struct {
	repo    Repository
	tx      txRunner
	ledger  ledger.Service
	rentals rentals.Service
	policy  Policy
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("returns repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if params.Rentals == nil {
		return nil, fmt.Errorf("rentals service required")
	}
	if params.Policy.LateFeePerDay.IsNegative() || params.Policy.DefaultTaxPercent.IsNegative() {
		return nil, fmt.Errorf("returns policy must not be negative")
	}
	now := params.Now
	if now == nil {
		now = db.NowUTC
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		ledger:  params.Ledger,
		rentals: params.Rentals,
		policy:  params.Policy,
		now:     now,
	}, nil
}

func (s *service) SaveDraft(ctx context.Context, rentalID int64, input DraftInput) (*InspectionView, error) {
	if rentalID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental id required")
	}
	charges := input.charges(s.policy)
	if err := validateCharges(charges); err != nil {
		return nil, err
	}

	var saved *models.ReturnInspection
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rental, err := lockRental(ctx, repo, rentalID)
		if err != nil {
			return err
		}
		if err := ensureSettleable(rental); err != nil {
			return err
		}
		existing, err := findInspection(ctx, repo, rentalID)
		if err != nil {
			return err
		}
		if existing != nil && existing.Settled {
			return pkgerrors.New(pkgerrors.CodeConflict, "inspection is already settled")
		}

		inspection := models.ReturnInspection{
			RentalID:            rental.ID,
			OdometerEnd:         input.OdometerEnd,
			ChargePercent:       input.ChargePercent,
			AccessoriesReturned: input.AccessoriesReturned,
			IsBatteryMissing:    input.IsBatteryMissing,
			Remarks:             input.Remarks,
		}
		applyFigures(&inspection, charges, Compute(charges, rental.Deposit, rental.ExpectedReturnDate, s.now(), s.policy))

		saved, err = repo.Upsert(ctx, &inspection)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save inspection")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	view := NewInspectionView(*saved)
	return &view, nil
}

func (s *service) Get(ctx context.Context, rentalID int64) (*ReturnView, error) {
	rental, err := s.rentals.Get(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	inspection, err := findInspection(ctx, s.repo, rentalID)
	if err != nil {
		return nil, err
	}
	result := &ReturnView{Rental: *rental, Policy: s.policy}
	if inspection != nil {
		view := NewInspectionView(*inspection)
		result.Inspection = &view
	}
	return result, nil
}

// Settle closes the rental against its inspection. Nothing is applied unless the
// rental balance plus the inspection charges is fully covered.
func (s *service) Settle(ctx context.Context, rentalID int64, input SettleInput) (*Settlement, error) {
	if rentalID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental id required")
	}

	var (
		settled *models.ReturnInspection
		payment *ledger.PaymentView
		totals  ledger.Totals
		nocID   *string
	)
	err := s.tx.WithSerializableTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now()

		rental, err := lockRental(ctx, repo, rentalID)
		if err != nil {
			return err
		}
		inspection, err := findInspection(ctx, repo, rentalID)
		if err != nil {
			return err
		}
		if inspection == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "save an inspection draft before settling")
		}
		if inspection.Settled || rental.Status == enums.RentalStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeConflict, "rental is already completed")
		}
		if err := ensureSettleable(rental); err != nil {
			return err
		}

		charges := chargesOf(*inspection)
		applyFigures(inspection, charges, Compute(charges, rental.Deposit, rental.ExpectedReturnDate, now, s.policy))
		inspection, err = repo.Upsert(ctx, inspection)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "refresh inspection")
		}

		owed := inspection.Subtotal.Add(inspection.TaxAmount)
		balance := rental.BalanceDue
		if input.Payment != nil {
			ceiling := balance.Add(owed)
			receipt, err := s.ledger.Record(ctx, tx, ledger.RecordInput{
				RentalID:        rental.ID,
				Amount:          input.Payment.Amount,
				Method:          input.Payment.Method,
				TxnRef:          input.Payment.TxnRef,
				TransactionDate: now,
				MaxAmount:       &ceiling,
			})
			if err != nil {
				return err
			}
			view := ledger.NewPaymentView(receipt.Payment)
			payment = &view
			balance = receipt.Totals.BalanceDue
		}

		outstanding := balance.Add(owed)
		if outstanding.GreaterThan(outstandingEpsilon) {
			return pkgerrors.New(pkgerrors.CodeConflict, "outstanding amount remains").
				WithDetails(map[string]any{"outstanding": outstanding.StringFixed(2)})
		}

		totals, err = s.ledger.AddCharges(ctx, tx, rental.ID, inspection.TotalDue)
		if err != nil {
			return err
		}
		if _, err := s.rentals.Close(ctx, tx, rental.ID, now); err != nil {
			return err
		}

		if input.IssueNoc {
			id := nocPrefix + uuid.NewString()
			nocID = &id
		}
		if err := repo.MarkSettled(ctx, inspection.ID, now, nocID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark inspection settled")
		}
		settled, err = repo.FindInspection(ctx, rental.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload inspection")
		}
		return nil
	})
	if err != nil {
		if db.IsSerializationFailure(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "settlement raced with another change, resubmit")
		}
		return nil, err
	}

	rental, err := s.rentals.Get(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	return &Settlement{
		Rental:     *rental,
		Inspection: NewInspectionView(*settled),
		Payment:    payment,
		Totals:     totals,
		NocID:      nocID,
	}, nil
}

func (s *service) List(ctx context.Context, input rentals.ListInput) (*rentals.ListResult, error) {
	return s.rentals.ListByScope(ctx, input)
}

func ensureSettleable(rental *models.Rental) error {
	switch {
	case rental.Status == enums.RentalStatusCompleted:
		return pkgerrors.New(pkgerrors.CodeConflict, "rental is already completed")
	case !rental.Status.IsReturnable():
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("cannot inspect a %s rental", rental.Status)).
			WithDetails(map[string]any{"status": string(rental.Status)})
	}
	return nil
}

func validateCharges(charges Charges) error {
	fields := map[string]decimal.Decimal{
		"missingItemsCharge": charges.MissingItems,
		"cleaningFee":        charges.Cleaning,
		"damageFee":          charges.Damage,
		"otherAdjustments":   charges.Other,
		"taxPercent":         charges.TaxPercent,
	}
	invalid := map[string]string{}
	for field, value := range fields {
		if value.IsNegative() {
			invalid[field] = "must not be negative"
		}
	}
	if charges.TaxPercent.GreaterThan(hundred) {
		invalid["taxPercent"] = "must not exceed 100"
	}
	if len(invalid) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid inspection charges").WithDetails(invalid)
	}
	return nil
}

func lockRental(ctx context.Context, repo Repository, rentalID int64) (*models.Rental, error) {
	rental, err := repo.LockRental(ctx, rentalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rental not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load rental")
	}
	return rental, nil
}

func findInspection(ctx context.Context, repo Repository, rentalID int64) (*models.ReturnInspection, error) {
	inspection, err := repo.FindInspection(ctx, rentalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load inspection")
	}
	return inspection, nil
}
