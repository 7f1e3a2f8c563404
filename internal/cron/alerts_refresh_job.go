package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/rentflow-backend/internal/alerts"
	"github.com/angelmondragon/rentflow-backend/pkg/logger"
)

type alertRefresher interface {
	Refresh(ctx context.Context) (*alerts.Summary, error)
}

// AlertsRefreshJobParams configures the alert reconciliation job.
type AlertsRefreshJobParams struct {
	Logger *logger.Logger
	Alerts alertRefresher
}

type alertsRefreshJob struct {
	logg   *logger.Logger
	alerts alertRefresher
}

// NewAlertsRefreshJob reconciles alerts against rental state on every cycle.
func NewAlertsRefreshJob(params AlertsRefreshJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Alerts == nil {
		return nil, fmt.Errorf("alerts service required")
	}
	return &alertsRefreshJob{logg: params.Logger, alerts: params.Alerts}, nil
}

func (j *alertsRefreshJob) Name() string { return "alerts-refresh" }

// Run reports a failure when any rule failed. Rules that succeeded stay committed.
func (j *alertsRefreshJob) Run(ctx context.Context) error {
	summary, err := j.alerts.Refresh(ctx)
	if summary != nil {
		var upserted, closed int64
		for _, rule := range summary.Rules {
			upserted += rule.Upserted
			closed += rule.Closed
		}
		logCtx := j.logg.WithFields(ctx, map[string]any{
			"woken":    summary.Woken,
			"upserted": upserted,
			"closed":   closed,
			"rules":    len(summary.Rules),
		})
		j.logg.Info(logCtx, "alerts refresh summary")
	}
	if err != nil {
		return fmt.Errorf("refresh alerts: %w", err)
	}
	return nil
}
