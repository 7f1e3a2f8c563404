package models

import (
	"time"

	"github.com/angelmondragon/rentflow-backend/pkg/enums"
)

// Alert is a derived notice about a rental that needs attention.
type Alert struct {
	ID          int64             `gorm:"column:id;primaryKey;autoIncrement"`
	Type        enums.AlertType   `gorm:"column:type;type:text;not null"`
	RelatedID   int64             `gorm:"column:related_id;not null"`
	Message     string            `gorm:"column:message;type:text;not null"`
	DueDate     *time.Time        `gorm:"column:due_date;type:timestamptz"`
	Status      enums.AlertStatus `gorm:"column:status;type:text;not null;default:'open'"`
	SnoozeUntil *time.Time        `gorm:"column:snooze_until;type:timestamptz"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
