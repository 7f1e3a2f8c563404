package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/internal/pricing"
	"github.com/angelmondragon/rentflow-backend/pkg/db"
	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service records payments and keeps rental paid/balance totals equal to the
// sum of their SUCCESS payment rows.
type Service interface {
	RecordPayment(ctx context.Context, input RecordInput) (*Receipt, error)
	Record(ctx context.Context, tx *gorm.DB, input RecordInput) (*Receipt, error)
	Recompute(ctx context.Context, tx *gorm.DB, rentalID int64) (Totals, error)
	AddCharges(ctx context.Context, tx *gorm.DB, rentalID int64, amount decimal.Decimal) (Totals, error)
	ListPayments(ctx context.Context, rentalID int64) ([]models.Payment, error)
}

// RecordInput is a payment to apply against a rental.
type RecordInput struct {
	RentalID        int64
	RiderID         int64
	Amount          decimal.Decimal
	Method          enums.PaymentMethod
	TxnRef          *string
	TransactionDate time.Time
	// MaxAmount overrides the rental balance as the ceiling for Amount.
	MaxAmount *decimal.Decimal
}

// Totals is the materialized money state of a rental.
type Totals struct {
	PayableTotal decimal.Decimal `json:"payableTotal"`
	PaidTotal    decimal.Decimal `json:"paidTotal"`
	BalanceDue   decimal.Decimal `json:"balanceDue"`
}

// Receipt pairs a recorded payment with the totals it produced.
type Receipt struct {
	Payment models.Payment
	Totals  Totals
}

type service struct {
	repo Repository
	tx   txRunner
	now  func() time.Time
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, now: db.NowUTC}, nil
}

func (s *service) RecordPayment(ctx context.Context, input RecordInput) (*Receipt, error) {
	var receipt *Receipt
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		receipt, err = s.Record(ctx, tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func (s *service) Record(ctx context.Context, tx *gorm.DB, input RecordInput) (*Receipt, error) {
	if err := validateRecordInput(input); err != nil {
		return nil, err
	}
	repo := s.repo.WithTx(tx)

	rental, err := lockRental(ctx, repo, input.RentalID)
	if err != nil {
		return nil, err
	}
	if rental.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("rental is %s and no longer accepts payments", rental.Status))
	}
	if input.RiderID != 0 && input.RiderID != rental.RiderID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rider does not own this rental").
			WithDetails(map[string]any{"riderId": input.RiderID})
	}

	amount := pricing.Round(input.Amount)
	ceiling := rental.BalanceDue
	if input.MaxAmount != nil {
		ceiling = *input.MaxAmount
	}
	if amount.GreaterThan(ceiling) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount exceeds outstanding balance").
			WithDetails(map[string]any{"amount": amount.StringFixed(2), "outstanding": ceiling.StringFixed(2)})
	}

	txnDate := input.TransactionDate
	if txnDate.IsZero() {
		txnDate = s.now()
	}
	payment := models.Payment{
		RentalID:          rental.ID,
		RiderID:           rental.RiderID,
		Amount:            amount,
		Method:            input.Method,
		TxnRef:            trimmedRef(input.TxnRef),
		TransactionStatus: enums.PaymentStatusSuccess,
		TransactionDate:   txnDate.UTC(),
	}
	if err := repo.CreatePayment(ctx, &payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert payment")
	}

	totals, err := s.recompute(ctx, repo, rental)
	if err != nil {
		return nil, err
	}
	return &Receipt{Payment: payment, Totals: totals}, nil
}

func (s *service) Recompute(ctx context.Context, tx *gorm.DB, rentalID int64) (Totals, error) {
	repo := s.repo.WithTx(tx)
	rental, err := lockRental(ctx, repo, rentalID)
	if err != nil {
		return Totals{}, err
	}
	return s.recompute(ctx, repo, rental)
}

func (s *service) AddCharges(ctx context.Context, tx *gorm.DB, rentalID int64, amount decimal.Decimal) (Totals, error) {
	if amount.IsNegative() {
		return Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "charges cannot be negative")
	}
	repo := s.repo.WithTx(tx)
	rental, err := lockRental(ctx, repo, rentalID)
	if err != nil {
		return Totals{}, err
	}
	rental.PayableTotal = pricing.Round(rental.PayableTotal.Add(amount))
	return s.recompute(ctx, repo, rental)
}

func (s *service) ListPayments(ctx context.Context, rentalID int64) ([]models.Payment, error) {
	if rentalID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental id required")
	}
	exists, err := s.repo.RentalExists(ctx, rentalID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load rental")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rental not found")
	}
	payments, err := s.repo.ListPayments(ctx, rentalID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payments")
	}
	return payments, nil
}

// recompute derives PaidTotal from the payment rows instead of incrementing it.
func (s *service) recompute(ctx context.Context, repo Repository, rental *models.Rental) (Totals, error) {
	paid, err := repo.SumSuccessful(ctx, rental.ID)
	if err != nil {
		return Totals{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum payments")
	}
	paid = pricing.Round(paid)
	totals := Totals{
		PayableTotal: pricing.Round(rental.PayableTotal),
		PaidTotal:    paid,
		BalanceDue:   pricing.Round(rental.PayableTotal.Sub(paid)),
	}
	if err := repo.UpdateTotals(ctx, rental.ID, totals); err != nil {
		return Totals{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update rental totals")
	}
	rental.PayableTotal = totals.PayableTotal
	rental.PaidTotal = totals.PaidTotal
	rental.BalanceDue = totals.BalanceDue
	return totals, nil
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

func validateRecordInput(input RecordInput) error {
	if input.RentalID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "rental id required")
	}
	if !pricing.Round(input.Amount).IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero").
			WithDetails(map[string]any{"amount": input.Amount.String()})
	}
	if !input.Method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method").
			WithDetails(map[string]any{"method": string(input.Method)})
	}
	return nil
}

func trimmedRef(ref *string) *string {
	if ref == nil {
		return nil
	}
	value := strings.TrimSpace(*ref)
	if value == "" {
		return nil
	}
	return &value
}
