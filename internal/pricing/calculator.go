// Package pricing converts a stay interval and fee schedule into payable totals.
// Every money value leaving this package is rounded to two places.
package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

// Payable is the booking-time charge breakdown.
type Payable struct {
	Days         int             `json:"days"`
	Usage        decimal.Decimal `json:"usage"`
	PayableTotal decimal.Decimal `json:"payableTotal"`
}

// Round rounds half away from zero to two decimal places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// ComputeStay returns the inclusive number of calendar days between start and end.
// Clock times are ignored and the result is never below one.
func ComputeStay(start, end time.Time) int {
	days := int(calendarDay(end).Sub(calendarDay(start)).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

// ComputePayable prices a stay. Inputs must already be validated as non-negative.
func ComputePayable(ratePerDay decimal.Decimal, days int, joiningFee, securityDeposit decimal.Decimal) Payable {
	mustNonNegative("ratePerDay", ratePerDay)
	mustNonNegative("joiningFee", joiningFee)
	mustNonNegative("securityDeposit", securityDeposit)
	if days < 0 {
		panic(fmt.Sprintf("pricing: days must be non-negative, got %d", days))
	}

	usage := Round(ratePerDay.Mul(decimal.NewFromInt(int64(days))))
	total := Round(joiningFee.Add(securityDeposit).Add(usage))
	return Payable{Days: days, Usage: usage, PayableTotal: total}
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustNonNegative(name string, v decimal.Decimal) {
	if v.IsNegative() {
		panic(fmt.Sprintf("pricing: %s must be non-negative, got %s", name, v))
	}
}
