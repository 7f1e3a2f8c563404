// Package rentals owns the rental state machine and its vehicle availability
// side effects.
package rentals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/internal/vehicles"
	"github.com/angelmondragon/rentflow-backend/pkg/db"
	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
	"github.com/angelmondragon/rentflow-backend/pkg/pagination"
)

const defaultRecentDays = 7

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service drives rental transitions. Each transition commits together with the
// vehicle availability recompute it triggers.
type Service interface {
	Get(ctx context.Context, id int64) (*View, error)
	Apply(ctx context.Context, id int64, action enums.RentalAction) (*View, error)
	Return(ctx context.Context, id int64) (*View, error)
	Start(ctx context.Context, id int64) (*View, error)
	Cancel(ctx context.Context, id int64) (*View, error)
	Close(ctx context.Context, tx *gorm.DB, id int64, now time.Time) (*models.Rental, error)
	MarkOverdue(ctx context.Context) (int64, error)
	ListByScope(ctx context.Context, input ListInput) (*ListResult, error)
}

// ServiceParams configure the rentals service.
type ServiceParams struct {
	Repo       Repository
	Tx         txRunner
	Vehicles   vehicles.Service
	Location   *time.Location
	RecentDays int
	Now        func() time.Time
}

type service struct {
	repo       Repository
	tx         txRunner
	vehicles   vehicles.Service
	loc        *time.Location
	recentDays int
	now        func() time.Time
}

// NewService builds the rentals service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("rentals repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Vehicles == nil {
		return nil, fmt.Errorf("vehicles service required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	recentDays := params.RecentDays
	if recentDays <= 0 {
		recentDays = defaultRecentDays
	}
	now := params.Now
	if now == nil {
		now = db.NowUTC
	}
	return &service{
		repo:       params.Repo,
		tx:         params.Tx,
		vehicles:   params.Vehicles,
		loc:        loc,
		recentDays: recentDays,
		now:        now,
	}, nil
}

func (s *service) Get(ctx context.Context, id int64) (*View, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental id required")
	}
	row, err := s.repo.FindRow(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "load rental")
	}
	view := NewRowView(*row, s.now())
	return &view, nil
}

func (s *service) Apply(ctx context.Context, id int64, action enums.RentalAction) (*View, error) {
	switch action {
	case enums.RentalActionReturn:
		return s.Return(ctx, id)
	case enums.RentalActionStart:
		return s.Start(ctx, id)
	case enums.RentalActionCancel:
		return s.Cancel(ctx, id)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported rental action").
			WithDetails(map[string]any{"action": string(action)})
	}
}

// Return force-closes a rental without computing settlement fees.
func (s *service) Return(ctx context.Context, id int64) (*View, error) {
	var closed *models.Rental
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		closed, err = s.Close(ctx, tx, id, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, closed.ID)
}

// Close moves an ongoing or overdue rental to completed inside tx and releases
// its vehicle unit. A concurrent second close observes Conflict.
func (s *service) Close(ctx context.Context, tx *gorm.DB, id int64, now time.Time) (*models.Rental, error) {
	now = now.UTC()
	return s.transition(ctx, tx, id, enums.ReturnableRentalStatuses, map[string]any{
		"status":             enums.RentalStatusCompleted,
		"actual_return_date": now,
		"updated_at":         now,
	}, "return", true)
}

func (s *service) Start(ctx context.Context, id int64) (*View, error) {
	var started *models.Rental
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		started, err = s.transition(ctx, tx, id, []enums.RentalStatus{enums.RentalStatusBooked}, map[string]any{
			"status":     enums.RentalStatusOngoing,
			"updated_at": s.now(),
		}, "start", false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, started.ID)
}

func (s *service) Cancel(ctx context.Context, id int64) (*View, error) {
	var cancelled *models.Rental
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		now := s.now()
		var err error
		cancelled, err = s.transition(ctx, tx, id, []enums.RentalStatus{enums.RentalStatusBooked}, map[string]any{
			"status":       enums.RentalStatusCancelled,
			"cancelled_at": now,
			"updated_at":   now,
		}, "cancel", true)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, cancelled.ID)
}

// MarkOverdue flips ongoing rentals past their expected return to overdue.
func (s *service) MarkOverdue(ctx context.Context) (int64, error) {
	count, err := s.repo.MarkOverdue(ctx, s.now())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark overdue rentals")
	}
	return count, nil
}

func (s *service) ListByScope(ctx context.Context, input ListInput) (*ListResult, error) {
	switch input.Scope {
	case enums.ReturnScopeDueToday, enums.ReturnScopeOverdue, enums.ReturnScopeRecent:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scope must be one of due-today, overdue, recent").
			WithDetails(map[string]any{"scope": string(input.Scope)})
	}

	now := s.now()
	local := now.In(s.loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	page := input.Pagination.Normalize()

	rows, total, err := s.repo.List(ctx, ListFilter{
		Scope:       input.Scope,
		Search:      input.Search,
		Now:         now,
		DayStart:    dayStart.UTC(),
		DayEnd:      dayStart.AddDate(0, 0, 1).UTC(),
		RecentSince: now.AddDate(0, 0, -s.recentDays),
		Limit:       page.Limit,
		Offset:      page.Offset(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list rentals")
	}

	items := make([]View, 0, len(rows))
	for _, row := range rows {
		items = append(items, NewRowView(row, now))
	}
	return &ListResult{Items: items, Meta: pagination.NewMeta(page, total)}, nil
}

func (s *service) transition(ctx context.Context, tx *gorm.DB, id int64, from []enums.RentalStatus, updates map[string]any, action string, releasesUnit bool) (*models.Rental, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental id required")
	}
	repo := s.repo.WithTx(tx)

	moved, err := repo.Transition(ctx, id, from, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update rental status")
	}
	rental, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "load rental")
	}
	if !moved {
		return nil, transitionConflict(action, rental.Status)
	}

	if releasesUnit {
		if _, err := s.vehicles.Recompute(ctx, tx, rental.VehicleID); err != nil {
			return nil, err
		}
	}
	return rental, nil
}

func transitionConflict(action string, status enums.RentalStatus) error {
	message := fmt.Sprintf("cannot %s a %s rental", action, status)
	if status == enums.RentalStatusCompleted {
		message = "rental is already completed"
	}
	return pkgerrors.New(pkgerrors.CodeConflict, message).
		WithDetails(map[string]any{"status": string(status), "action": action})
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "rental not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
