package enums

import "fmt"

// RentalAction is an operator-triggered lifecycle transition.
type RentalAction string

const (
	RentalActionReturn RentalAction = "return"
	RentalActionStart  RentalAction = "start"
	RentalActionCancel RentalAction = "cancel"
)

var validRentalActions = []RentalAction{
	RentalActionReturn,
	RentalActionStart,
	RentalActionCancel,
}

func (a RentalAction) IsValid() bool {
	for _, candidate := range validRentalActions {
		if candidate == a {
			return true
		}
	}
	return false
}

func ParseRentalAction(value string) (RentalAction, error) {
	for _, candidate := range validRentalActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rental action %q", value)
}
