package alerts

import (
	"time"

	"github.com/angelmondragon/rentflow-backend/internal/rentals"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
)

// Rule derives one alert type from the rentals table. Condition and the SQL
// fragments refer to the rentals table aliased as r and never carry user input.
type Rule struct {
	Type      enums.AlertType
	Condition string
	DueColumn string
	Message   string
	Args      func(now time.Time) []any
}

// Windows sizes the look-ahead rules.
type Windows struct {
	DueSoonDays      int
	StartingSoonDays int
}

const (
	defaultDueSoonDays      = 3
	defaultStartingSoonDays = 7
)

// DefaultRules returns the overdue, due-soon and starting-soon rules in evaluation order.
func DefaultRules(w Windows) []Rule {
	dueSoon := w.DueSoonDays
	if dueSoon <= 0 {
		dueSoon = defaultDueSoonDays
	}
	startingSoon := w.StartingSoonDays
	if startingSoon <= 0 {
		startingSoon = defaultStartingSoonDays
	}
	return []Rule{
		{
			Type:      enums.AlertTypeRentalOverdue,
			Condition: rentals.OverdueCondition,
			DueColumn: "r.expected_return_date",
			Message:   "'Rental #' || r.id || ' is overdue'",
			Args:      func(now time.Time) []any { return []any{now} },
		},
		{
			Type:      enums.AlertTypeRentalDueSoon,
			Condition: "r.actual_return_date IS NULL AND r.status IN ('ongoing', 'overdue') AND r.expected_return_date >= ? AND r.expected_return_date < ?",
			DueColumn: "r.expected_return_date",
			Message:   "'Rental #' || r.id || ' is due for return soon'",
			Args: func(now time.Time) []any {
				return []any{now, now.AddDate(0, 0, dueSoon)}
			},
		},
		{
			Type:      enums.AlertTypeRentalStartingSoon,
			Condition: "r.status = 'booked' AND r.start_date >= ? AND r.start_date < ?",
			DueColumn: "r.start_date",
			Message:   "'Rental #' || r.id || ' starts soon'",
			Args: func(now time.Time) []any {
				return []any{now, now.AddDate(0, 0, startingSoon)}
			},
		},
	}
}
