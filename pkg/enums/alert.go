package enums

import "fmt"

// AlertType names the rule that raised an alert.
type AlertType string

const (
	AlertTypeRentalOverdue      AlertType = "RENTAL_OVERDUE"
	AlertTypeRentalDueSoon      AlertType = "RENTAL_DUE_SOON"
	AlertTypeRentalStartingSoon AlertType = "RENTAL_STARTING_SOON"
)

var validAlertTypes = []AlertType{
	AlertTypeRentalOverdue,
	AlertTypeRentalDueSoon,
	AlertTypeRentalStartingSoon,
}

// IsValid checks whether the given type matches the canonical enum.
func (a AlertType) IsValid() bool {
	for _, candidate := range validAlertTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAlertType converts raw strings into AlertType.
func ParseAlertType(value string) (AlertType, error) {
	for _, candidate := range validAlertTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid alert type %q", value)
}

// AlertStatus is the operator workflow state of an alert.
type AlertStatus string

const (
	AlertStatusOpen    AlertStatus = "open"
	AlertStatusSnoozed AlertStatus = "snoozed"
	AlertStatusClosed  AlertStatus = "closed"
)

var validAlertStatuses = []AlertStatus{
	AlertStatusOpen,
	AlertStatusSnoozed,
	AlertStatusClosed,
}

// IsValid checks whether the given status matches the canonical enum.
func (a AlertStatus) IsValid() bool {
	for _, candidate := range validAlertStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// IsActive reports whether reconciliation may still refresh or close the alert.
func (a AlertStatus) IsActive() bool {
	return a == AlertStatusOpen || a == AlertStatusSnoozed
}

// ParseAlertStatus converts raw strings into AlertStatus.
func ParseAlertStatus(value string) (AlertStatus, error) {
	for _, candidate := range validAlertStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid alert status %q", value)
}

// AlertAction is a manual operator action on an alert.
type AlertAction string

const (
	AlertActionResolve AlertAction = "resolve"
	AlertActionReopen  AlertAction = "reopen"
	AlertActionSnooze  AlertAction = "snooze"
)

var validAlertActions = []AlertAction{
	AlertActionResolve,
	AlertActionReopen,
	AlertActionSnooze,
}

// ParseAlertAction converts raw strings into AlertAction.
func ParseAlertAction(value string) (AlertAction, error) {
	for _, candidate := range validAlertActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid alert action %q", value)
}
