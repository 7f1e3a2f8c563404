package alerts

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
)

// ListFilter narrows the alerts listing.
type ListFilter struct {
	Type   enums.AlertType
	Status enums.AlertStatus
	Limit  int
	Offset int
}

// Repository runs the set-based reconciliation statements and the operator updates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	WakeSnoozed(ctx context.Context, now time.Time) (int64, error)
	UpsertActive(ctx context.Context, rule Rule, now time.Time) (int64, error)
	CloseStale(ctx context.Context, rule Rule, now time.Time) (int64, error)
	FindByID(ctx context.Context, id int64) (*models.Alert, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	List(ctx context.Context, filter ListFilter) ([]models.Alert, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) WakeSnoozed(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE alerts SET status = ?, snooze_until = NULL, updated_at = ?
		 WHERE status = ? AND snooze_until <= ?`,
		enums.AlertStatusOpen, now, enums.AlertStatusSnoozed, now,
	)
	return res.RowsAffected, res.Error
}

// UpsertActive inserts an open alert for every rental matching the rule, or
// refreshes the active alert already tracking it. A closed alert with the same
// due date marks an acknowledged episode and suppresses the insert, so a
// condition that clears and re-triggers only raises a new alert once its due
// date moves. Rental dates only move forward through the API, which keeps
// episodes distinct.
func (r *repository) UpsertActive(ctx context.Context, rule Rule, now time.Time) (int64, error) {
	query := fmt.Sprintf(`INSERT INTO alerts (type, related_id, message, due_date, status, created_at, updated_at)
		SELECT ?, r.id, %[1]s, %[2]s, ?, ?, ?
		FROM rentals r
		WHERE (%[3]s)
		  AND NOT EXISTS (
		    SELECT 1 FROM alerts c
		     WHERE c.type = ? AND c.related_id = r.id AND c.status = ? AND c.due_date = %[2]s
		  )
		ON CONFLICT (type, related_id) WHERE status IN ('open', 'snoozed')
		DO UPDATE SET message = excluded.message, due_date = excluded.due_date, updated_at = excluded.updated_at
		WHERE alerts.message <> excluded.message OR alerts.due_date <> excluded.due_date`,
		rule.Message, rule.DueColumn, rule.Condition,
	)

	args := []any{rule.Type, enums.AlertStatusOpen, now, now}
	args = append(args, rule.Args(now)...)
	args = append(args, rule.Type, enums.AlertStatusClosed)

	res := r.db.WithContext(ctx).Exec(query, args...)
	return res.RowsAffected, res.Error
}

// CloseStale closes active alerts of the rule whose rental no longer matches.
func (r *repository) CloseStale(ctx context.Context, rule Rule, now time.Time) (int64, error) {
	query := fmt.Sprintf(`UPDATE alerts SET status = ?, snooze_until = NULL, updated_at = ?
		WHERE type = ? AND status IN ('open', 'snoozed')
		  AND NOT EXISTS (SELECT 1 FROM rentals r WHERE r.id = alerts.related_id AND (%s))`,
		rule.Condition,
	)
	args := []any{enums.AlertStatusClosed, now, rule.Type}
	args = append(args, rule.Args(now)...)

	res := r.db.WithContext(ctx).Exec(query, args...)
	return res.RowsAffected, res.Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Alert, error) {
	var alert models.Alert
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&alert).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Alert{}).Where("id = ?", id).Updates(updates).Error
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Alert, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var alerts []models.Alert
	err := r.filtered(ctx, filter).
		Order("due_date ASC").
		Order("id ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&alerts).Error
	if err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}

func (r *repository) filtered(ctx context.Context, filter ListFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Alert{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	return query
}
