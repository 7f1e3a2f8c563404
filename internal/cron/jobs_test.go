package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/rentflow-backend/internal/alerts"
)

type stubMarker struct {
	count int64
	err   error
	calls int
}

func (s *stubMarker) MarkOverdue(context.Context) (int64, error) {
	s.calls++
	return s.count, s.err
}

type stubRefresher struct {
	summary *alerts.Summary
	err     error
}

func (s *stubRefresher) Refresh(context.Context) (*alerts.Summary, error) {
	return s.summary, s.err
}

func TestRentalOverdueJob(t *testing.T) {
	marker := &stubMarker{count: 3}
	job, err := NewRentalOverdueJob(RentalOverdueJobParams{Logger: testLogger(), Rentals: marker})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if job.Name() != "rental-overdue" {
		t.Fatalf("unexpected name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if marker.calls != 1 {
		t.Fatalf("expected one flip, got %d", marker.calls)
	}

	marker.err = errors.New("db down")
	if err := job.Run(context.Background()); err == nil {
		t.Fatalf("expected error to propagate")
	}
}

func TestAlertsRefreshJobReportsPartialFailure(t *testing.T) {
	refresher := &stubRefresher{
		summary: &alerts.Summary{Rules: []alerts.RuleSummary{{Type: "RENTAL_OVERDUE", Upserted: 2}, {Type: "RENTAL_DUE_SOON", Error: "boom"}}},
		err:     errors.New("alert rule RENTAL_DUE_SOON: boom"),
	}
	job, err := NewAlertsRefreshJob(AlertsRefreshJobParams{Logger: testLogger(), Alerts: refresher})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatalf("expected partial failure to surface")
	}

	refresher.err = nil
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestJobConstructorsRequireDependencies(t *testing.T) {
	if _, err := NewRentalOverdueJob(RentalOverdueJobParams{Logger: testLogger()}); err == nil {
		t.Fatalf("expected missing rentals service to fail")
	}
	if _, err := NewAlertsRefreshJob(AlertsRefreshJobParams{Alerts: &stubRefresher{}}); err == nil {
		t.Fatalf("expected missing logger to fail")
	}
}
