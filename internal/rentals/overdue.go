package rentals

import (
	"time"

	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
)

// IsOverdue reports whether a rental is past its expected return and still out.
// The scheduled flip, the read views, the returns desk and the alert rule all
// use this condition.
func IsOverdue(rental models.Rental, now time.Time) bool {
	if rental.ActualReturnDate != nil {
		return false
	}
	if !rental.Status.IsReturnable() {
		return false
	}
	return rental.ExpectedReturnDate.Before(now)
}

// DerivedStatus is the stored status with the overdue predicate applied.
func DerivedStatus(rental models.Rental, now time.Time) enums.RentalStatus {
	if IsOverdue(rental, now) {
		return enums.RentalStatusOverdue
	}
	return rental.Status
}

// OverdueCondition is IsOverdue expressed over the rentals table aliased as r.
// It takes now as its only argument.
const OverdueCondition = "r.actual_return_date IS NULL AND r.status IN ('ongoing', 'overdue') AND r.expected_return_date < ?"
