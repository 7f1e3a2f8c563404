// Package alerts reconciles rental alerts against live rental state and applies
// operator actions on top of them.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/pkg/db"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
	"github.com/angelmondragon/rentflow-backend/pkg/logger"
	"github.com/angelmondragon/rentflow-backend/pkg/metrics"
	"github.com/angelmondragon/rentflow-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service derives alerts and exposes the operator workflow.
type Service interface {
	Refresh(ctx context.Context) (*Summary, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
	Apply(ctx context.Context, input ApplyInput) (*View, error)
}

// ServiceParams configure the alerts service.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Rules   []Rule
	Metrics *metrics.AlertMetrics
	Logger  *logger.Logger
	Now     func() time.Time
}

type service struct {
	repo    Repository
	tx      txRunner
	rules   []Rule
	metrics *metrics.AlertMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("alerts repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	rules := params.Rules
	if len(rules) == 0 {
		rules = DefaultRules(Windows{})
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.New(logger.Options{ServiceName: "alerts", Output: io.Discard})
	}
	now := params.Now
	if now == nil {
		now = db.NowUTC
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		rules:   rules,
		metrics: params.Metrics,
		logg:    logg,
		now:     now,
	}, nil
}

// Refresh runs every rule in its own transaction. A failing rule rolls back
// alone and the remaining rules still run.
func (s *service) Refresh(ctx context.Context) (*Summary, error) {
	now := s.now()
	summary := &Summary{RanAt: now, Rules: make([]RuleSummary, 0, len(s.rules))}

	var errs error
	woken, err := s.repo.WakeSnoozed(ctx, now)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("wake snoozed alerts: %w", err))
	} else {
		summary.Woken = woken
		s.metrics.AddWoken(woken)
	}

	for _, rule := range s.rules {
		result := RuleSummary{Type: rule.Type}
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			upserted, err := repo.UpsertActive(ctx, rule, now)
			if err != nil {
				return fmt.Errorf("upsert: %w", err)
			}
			closed, err := repo.CloseStale(ctx, rule, now)
			if err != nil {
				return fmt.Errorf("close stale: %w", err)
			}
			result.Upserted, result.Closed = upserted, closed
			return nil
		})

		ruleCtx := s.logg.WithField(ctx, "alert_type", string(rule.Type))
		if err != nil {
			result = RuleSummary{Type: rule.Type, Error: err.Error()}
			s.metrics.IncRuleFailure(string(rule.Type))
			s.logg.Error(ruleCtx, "alerts.rule_failed", err)
			errs = multierr.Append(errs, fmt.Errorf("alert rule %s: %w", rule.Type, err))
		} else {
			s.metrics.ObserveRule(string(rule.Type), result.Upserted, result.Closed)
			ruleCtx = s.logg.WithFields(ruleCtx, map[string]any{"upserted": result.Upserted, "closed": result.Closed})
			s.logg.Info(ruleCtx, "alerts.rule_complete")
		}
		summary.Rules = append(summary.Rules, result)
	}

	if errs != nil {
		return summary, pkgerrors.Wrap(pkgerrors.CodeInternal, errs, "alert refresh incomplete")
	}
	return summary, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	if input.Type != "" && !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid alert type").
			WithDetails(map[string]any{"type": string(input.Type)})
	}
	if input.Status != "" && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid alert status").
			WithDetails(map[string]any{"status": string(input.Status)})
	}
	page := input.Pagination.Normalize()
	rows, total, err := s.repo.List(ctx, ListFilter{
		Type:   input.Type,
		Status: input.Status,
		Limit:  page.Limit,
		Offset: page.Offset(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list alerts")
	}
	items := make([]View, 0, len(rows))
	for _, row := range rows {
		items = append(items, NewView(row))
	}
	return &ListResult{Items: items, Meta: pagination.NewMeta(page, total)}, nil
}

func (s *service) Apply(ctx context.Context, input ApplyInput) (*View, error) {
	if input.ID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "alert id required")
	}
	now := s.now()

	var updates map[string]any
	switch input.Action {
	case enums.AlertActionResolve:
		updates = map[string]any{"status": enums.AlertStatusClosed, "snooze_until": nil, "updated_at": now}
	case enums.AlertActionReopen:
		updates = map[string]any{"status": enums.AlertStatusOpen, "snooze_until": nil, "updated_at": now}
	case enums.AlertActionSnooze:
		if input.Until == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "until is required to snooze an alert")
		}
		until := input.Until.UTC()
		if !until.After(now) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "until must be in the future").
				WithDetails(map[string]any{"until": until})
		}
		updates = map[string]any{"status": enums.AlertStatusSnoozed, "snooze_until": until, "updated_at": now}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "action must be one of resolve, reopen, snooze").
			WithDetails(map[string]any{"action": string(input.Action)})
	}

	if _, err := s.find(ctx, input.ID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, input.ID, updates); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "another active alert already tracks this rental").
				WithDetails(map[string]any{"id": input.ID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update alert")
	}

	return s.find(ctx, input.ID)
}

func (s *service) find(ctx context.Context, id int64) (*View, error) {
	alert, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "alert not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load alert")
	}
	view := NewView(*alert)
	return &view, nil
}
