package enums

import "fmt"

// RentalStatus tracks where a rental sits in its lifecycle.
type RentalStatus string

const (
	RentalStatusBooked    RentalStatus = "booked"
	RentalStatusOngoing   RentalStatus = "ongoing"
	RentalStatusOverdue   RentalStatus = "overdue"
	RentalStatusCompleted RentalStatus = "completed"
	RentalStatusCancelled RentalStatus = "cancelled"
)

var validRentalStatuses = []RentalStatus{
	RentalStatusBooked,
	RentalStatusOngoing,
	RentalStatusOverdue,
	RentalStatusCompleted,
	RentalStatusCancelled,
}

// ActiveRentalStatuses occupy a vehicle unit.
var ActiveRentalStatuses = []RentalStatus{
	RentalStatusBooked,
	RentalStatusOngoing,
	RentalStatusOverdue,
}

// ReturnableRentalStatuses may transition to completed.
var ReturnableRentalStatuses = []RentalStatus{
	RentalStatusOngoing,
	RentalStatusOverdue,
}

// String implements fmt.Stringer.
func (s RentalStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known RentalStatus.
func (s RentalStatus) IsValid() bool {
	for _, candidate := range validRentalStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s RentalStatus) IsTerminal() bool {
	return s == RentalStatusCompleted || s == RentalStatusCancelled
}

// IsReturnable reports whether the rental can be closed by a return.
func (s RentalStatus) IsReturnable() bool {
	for _, candidate := range ReturnableRentalStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseRentalStatus converts raw input into a RentalStatus.
func ParseRentalStatus(value string) (RentalStatus, error) {
	for _, candidate := range validRentalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rental status %q", value)
}
