package returns

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/rentflow-backend/internal/pricing"
	"github.com/angelmondragon/rentflow-backend/pkg/config"
)

var hundred = decimal.NewFromInt(100)

// Policy is the fee schedule applied to inspections.
type Policy struct {
	LateFeePerDay     decimal.Decimal `json:"lateFeePerDay"`
	DefaultTaxPercent decimal.Decimal `json:"defaultTaxPercent"`
}

// PolicyFromConfig reads the settlement policy from configuration.
func PolicyFromConfig(cfg config.ReturnsConfig) Policy {
	return Policy{
		LateFeePerDay:     pricing.Round(cfg.LateFeePerDay),
		DefaultTaxPercent: cfg.DefaultTaxPercent.Round(2),
	}
}

// Charges are the operator-entered amounts of an inspection.
type Charges struct {
	MissingItems decimal.Decimal
	Cleaning     decimal.Decimal
	Damage       decimal.Decimal
	Other        decimal.Decimal
	TaxPercent   decimal.Decimal
}

// Figures are the derived settlement amounts.
type Figures struct {
	LateDays      int
	LateFee       decimal.Decimal
	Subtotal      decimal.Decimal
	TaxAmount     decimal.Decimal
	TotalDue      decimal.Decimal
	DepositHeld   decimal.Decimal
	DepositReturn decimal.Decimal
	FinalAmount   decimal.Decimal
}

// LateDays counts whole 24h periods elapsed since expected. It is zero when the
// rental is returned on time.
func LateDays(expected, now time.Time) int {
	if !now.After(expected) {
		return 0
	}
	return int(now.Sub(expected) / (24 * time.Hour))
}

// Compute derives the settlement figures. Each step is rounded to two places
// before it feeds the next one. A negative FinalAmount is a refund owed to the rider.
func Compute(charges Charges, deposit decimal.Decimal, expected, now time.Time, policy Policy) Figures {
	lateDays := LateDays(expected, now)
	lateFee := pricing.Round(policy.LateFeePerDay.Mul(decimal.NewFromInt(int64(lateDays))))

	subtotal := pricing.Round(
		pricing.Round(charges.MissingItems).
			Add(pricing.Round(charges.Cleaning)).
			Add(pricing.Round(charges.Damage)).
			Add(pricing.Round(charges.Other)).
			Add(lateFee),
	)
	taxAmount := pricing.Round(subtotal.Mul(charges.TaxPercent).Div(hundred))
	totalDue := pricing.Round(subtotal.Add(taxAmount))

	held := pricing.Round(deposit)
	depositReturn := pricing.Round(held.Sub(totalDue))
	if depositReturn.IsNegative() {
		depositReturn = decimal.Zero
	}

	return Figures{
		LateDays:      lateDays,
		LateFee:       lateFee,
		Subtotal:      subtotal,
		TaxAmount:     taxAmount,
		TotalDue:      totalDue,
		DepositHeld:   held,
		DepositReturn: depositReturn,
		FinalAmount:   pricing.Round(totalDue.Sub(held)),
	}
}
