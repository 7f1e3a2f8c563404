package ledger

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/internal/repo"
	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
)

// Repository manages payment rows and the rental totals derived from them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	LockRental(ctx context.Context, rentalID int64) (*models.Rental, error)
	RentalExists(ctx context.Context, rentalID int64) (bool, error)
	CreatePayment(ctx context.Context, payment *models.Payment) error
	SumSuccessful(ctx context.Context, rentalID int64) (decimal.Decimal, error)
	UpdateTotals(ctx context.Context, rentalID int64, totals Totals) error
	ListPayments(ctx context.Context, rentalID int64) ([]models.Payment, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

func (r *repository) RentalExists(ctx context.Context, rentalID int64) (bool, error) {
	var count int64
	if err := r.DB(ctx).Model(&models.Rental{}).Where("id = ?", rentalID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.DB(ctx).Create(payment).Error
}

func (r *repository) SumSuccessful(ctx context.Context, rentalID int64) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.DB(ctx).
		Model(&models.Payment{}).
		Select("SUM(amount)").
		Where("rental_id = ? AND transaction_status = ?", rentalID, enums.PaymentStatusSuccess).
		Row().
		Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

func (r *repository) UpdateTotals(ctx context.Context, rentalID int64, totals Totals) error {
	return r.DB(ctx).
		Model(&models.Rental{}).
		Where("id = ?", rentalID).
		Updates(map[string]any{
			"payable_total": totals.PayableTotal,
			"paid_total":    totals.PaidTotal,
			"balance_due":   totals.BalanceDue,
		}).Error
}

func (r *repository) ListPayments(ctx context.Context, rentalID int64) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.DB(ctx).
		Where("rental_id = ?", rentalID).
		Order("transaction_date ASC, id ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
