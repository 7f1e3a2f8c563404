package enums

import "fmt"

// ReturnScope buckets rentals on the returns desk.
type ReturnScope string

const (
	ReturnScopeDueToday ReturnScope = "due-today"
	ReturnScopeOverdue  ReturnScope = "overdue"
	ReturnScopeRecent   ReturnScope = "recent"
)

var validReturnScopes = []ReturnScope{
	ReturnScopeDueToday,
	ReturnScopeOverdue,
	ReturnScopeRecent,
}

// ParseReturnScope converts raw strings into ReturnScope.
func ParseReturnScope(value string) (ReturnScope, error) {
	for _, candidate := range validReturnScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid return scope %q", value)
}
