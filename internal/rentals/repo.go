package rentals

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
)

// Repository is the persistence surface of the rental state machine.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id int64) (*models.Rental, error)
	FindRow(ctx context.Context, id int64) (*Row, error)
	Transition(ctx context.Context, id int64, from []enums.RentalStatus, updates map[string]any) (bool, error)
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
	List(ctx context.Context, filter ListFilter) ([]Row, int64, error)
}

// ListFilter is a resolved returns-desk query. Time bounds are UTC.
type ListFilter struct {
	Scope       enums.ReturnScope
	Search      string
	Now         time.Time
	DayStart    time.Time
	DayEnd      time.Time
	RecentSince time.Time
	Limit       int
	Offset      int
}

const rowColumns = "r.*, rd.full_name AS rider_name, rd.phone AS rider_phone, " +
	"v.registration_number AS vehicle_registration, v.model AS vehicle_model"

type repository struct {
	db *gorm.DB
}

// NewRepository builds a rentals repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Rental, error) {
	var rental models.Rental
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rental).Error; err != nil {
		return nil, err
	}
	return &rental, nil
}

func (r *repository) FindRow(ctx context.Context, id int64) (*Row, error) {
	var rows []Row
	err := r.joined(ctx).
		Select(rowColumns).
		Where("r.id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// Transition applies updates only while the row is still in one of the from
// states. It reports false when another writer moved the rental first.
func (r *repository) Transition(ctx context.Context, id int64, from []enums.RentalStatus, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Rental{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE rentals SET status = ?, updated_at = ?
		 WHERE status = ? AND actual_return_date IS NULL AND expected_return_date < ?`,
		enums.RentalStatusOverdue, now, enums.RentalStatusOngoing, now,
	)
	return res.RowsAffected, res.Error
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Row, int64, error) {
	var total int64
	if err := r.scoped(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.scoped(ctx, filter).Select(rowColumns)
	switch filter.Scope {
	case enums.ReturnScopeRecent:
		query = query.Order("r.actual_return_date DESC").Order("r.id DESC")
	default:
		query = query.Order("r.expected_return_date ASC").Order("r.id ASC")
	}

	var rows []Row
	if err := query.Limit(filter.Limit).Offset(filter.Offset).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("rentals AS r").
		Joins("JOIN riders rd ON rd.id = r.rider_id").
		Joins("JOIN vehicles v ON v.id = r.vehicle_id")
}

func (r *repository) scoped(ctx context.Context, filter ListFilter) *gorm.DB {
	query := r.joined(ctx)
	switch filter.Scope {
	case enums.ReturnScopeDueToday:
		query = query.Where(
			"r.actual_return_date IS NULL AND r.status IN ? AND r.expected_return_date >= ? AND r.expected_return_date < ?",
			enums.ReturnableRentalStatuses, filter.DayStart, filter.DayEnd,
		)
	case enums.ReturnScopeOverdue:
		query = query.Where(OverdueCondition, filter.Now)
	case enums.ReturnScopeRecent:
		query = query.Where("r.status = ? AND r.actual_return_date >= ?", enums.RentalStatusCompleted, filter.RecentSince)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + escapeLike(search) + "%"
		query = query.Where(
			"(LOWER(rd.full_name) LIKE ? ESCAPE '\\' OR rd.phone LIKE ? ESCAPE '\\' OR LOWER(v.registration_number) LIKE ? ESCAPE '\\')",
			like, like, like,
		)
	}
	return query
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
