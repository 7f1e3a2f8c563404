package alerts

import (
	"time"

	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	"github.com/angelmondragon/rentflow-backend/pkg/pagination"
)

// View is the API representation of an alert.
type View struct {
	ID          int64             `json:"id"`
	Type        enums.AlertType   `json:"type"`
	RelatedID   int64             `json:"relatedId"`
	Message     string            `json:"message"`
	DueDate     *time.Time        `json:"dueDate,omitempty"`
	Status      enums.AlertStatus `json:"status"`
	SnoozeUntil *time.Time        `json:"snoozeUntil,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// ListInput filters the alerts listing.
type ListInput struct {
	Type       enums.AlertType
	Status     enums.AlertStatus
	Pagination pagination.Params
}

// ListResult is one page of alerts.
type ListResult struct {
	Items []View          `json:"items"`
	Meta  pagination.Meta `json:"meta"`
}

// ApplyInput is a manual operator action.
type ApplyInput struct {
	ID     int64             `json:"id" validate:"required,gt=0"`
	Action enums.AlertAction `json:"action" validate:"required"`
	Until  *time.Time        `json:"until,omitempty"`
}

// RuleSummary reports one rule pass.
type RuleSummary struct {
	Type     enums.AlertType `json:"type"`
	Upserted int64           `json:"upserted"`
	Closed   int64           `json:"closed"`
	Error    string          `json:"error,omitempty"`
}

// Summary reports a reconciliation pass.
type Summary struct {
	RanAt time.Time     `json:"ranAt"`
	Woken int64         `json:"woken"`
	Rules []RuleSummary `json:"rules"`
}

func NewView(alert models.Alert) View {
	return View{
		ID:          alert.ID,
		Type:        alert.Type,
		RelatedID:   alert.RelatedID,
		Message:     alert.Message,
		DueDate:     alert.DueDate,
		Status:      alert.Status,
		SnoozeUntil: alert.SnoozeUntil,
		CreatedAt:   alert.CreatedAt,
		UpdatedAt:   alert.UpdatedAt,
	}
}
