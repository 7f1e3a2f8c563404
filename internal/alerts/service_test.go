package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/internal/testdb"
	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
	"github.com/angelmondragon/rentflow-backend/pkg/metrics"
	"github.com/angelmondragon/rentflow-backend/pkg/pagination"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	svc   Service
	conn  *gorm.DB
	clock *clock
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client := testdb.Open(t)
	c := &clock{now: time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)}
	svc, err := NewService(ServiceParams{
		Repo:    NewRepository(client.DB()),
		Tx:      client,
		Rules:   DefaultRules(Windows{DueSoonDays: 3, StartingSoonDays: 7}),
		Metrics: metrics.NewAlertMetrics(prometheus.NewRegistry()),
		Now:     c.Now,
	})
	require.NoError(t, err)
	return fixture{svc: svc, conn: client.DB(), clock: c}
}

func (f fixture) alertsFor(t *testing.T, alertType enums.AlertType, rentalID int64) []models.Alert {
	t.Helper()
	var rows []models.Alert
	require.NoError(t, f.conn.Where("type = ? AND related_id = ?", alertType, rentalID).Order("id").Find(&rows).Error)
	return rows
}

func (f fixture) allAlerts(t *testing.T) []models.Alert {
	t.Helper()
	var rows []models.Alert
	require.NoError(t, f.conn.Order("id").Find(&rows).Error)
	return rows
}

func (f fixture) seedOverdue(t *testing.T) models.Rental {
	t.Helper()
	now := f.clock.Now()
	return testdb.SeedRental(t, f.conn, testdb.RentalFixture{
		Status:   enums.RentalStatusOngoing,
		Start:    now.AddDate(0, 0, -6),
		Expected: now.AddDate(0, 0, -2),
	})
}

func ruleByType(summary *Summary, alertType enums.AlertType) RuleSummary {
	for _, rule := range summary.Rules {
		if rule.Type == alertType {
			return rule
		}
	}
	return RuleSummary{}
}

func TestRefreshRaisesEachRule(t *testing.T) {
	f := newFixture(t)
	now := f.clock.Now()
	overdue := f.seedOverdue(t)
	dueSoon := testdb.SeedRental(t, f.conn, testdb.RentalFixture{Start: now.AddDate(0, 0, -3), Expected: now.AddDate(0, 0, 1)})
	starting := testdb.SeedRental(t, f.conn, testdb.RentalFixture{Status: enums.RentalStatusBooked, Start: now.AddDate(0, 0, 2)})
	testdb.SeedRental(t, f.conn, testdb.RentalFixture{Start: now.AddDate(0, 0, -1), Expected: now.AddDate(0, 0, 10)})

	summary, err := f.svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), ruleByType(summary, enums.AlertTypeRentalOverdue).Upserted)
	assert.Equal(t, int64(1), ruleByType(summary, enums.AlertTypeRentalDueSoon).Upserted)
	assert.Equal(t, int64(1), ruleByType(summary, enums.AlertTypeRentalStartingSoon).Upserted)

	rows := f.alertsFor(t, enums.AlertTypeRentalOverdue, overdue.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.AlertStatusOpen, rows[0].Status)
	assert.Contains(t, rows[0].Message, "is overdue")
	require.NotNil(t, rows[0].DueDate)
	assert.True(t, rows[0].DueDate.Equal(overdue.ExpectedReturnDate))

	require.Len(t, f.alertsFor(t, enums.AlertTypeRentalDueSoon, dueSoon.ID), 1)
	startingRows := f.alertsFor(t, enums.AlertTypeRentalStartingSoon, starting.ID)
	require.Len(t, startingRows, 1)
	assert.True(t, startingRows[0].DueDate.Equal(starting.StartDate))
	assert.Len(t, f.allAlerts(t), 3)
}

func TestRefreshIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.seedOverdue(t)
	testdb.SeedRental(t, f.conn, testdb.RentalFixture{Status: enums.RentalStatusBooked, Start: f.clock.Now().AddDate(0, 0, 1)})

	_, err := f.svc.Refresh(context.Background())
	require.NoError(t, err)
	before := f.allAlerts(t)

	summary, err := f.svc.Refresh(context.Background())
	require.NoError(t, err)
	for _, rule := range summary.Rules {
		assert.Zero(t, rule.Upserted, "rule %s", rule.Type)
		assert.Zero(t, rule.Closed, "rule %s", rule.Type)
	}

	after := f.allAlerts(t)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID)
		assert.Equal(t, before[i].Status, after[i].Status)
	}
}

func TestRefreshClosesClearedConditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rental := f.seedOverdue(t)
	_, err := f.svc.Refresh(ctx)
	require.NoError(t, err)

	returned := f.clock.Now()
	require.NoError(t, f.conn.Model(&models.Rental{}).Where("id = ?", rental.ID).
		Updates(map[string]any{"status": enums.RentalStatusCompleted, "actual_return_date": returned}).Error)

	summary, err := f.svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ruleByType(summary, enums.AlertTypeRentalOverdue).Closed)

	rows := f.alertsFor(t, enums.AlertTypeRentalOverdue, rental.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.AlertStatusClosed, rows[0].Status)
}

func TestManualResolveSurvivesRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rental := f.seedOverdue(t)
	_, err := f.svc.Refresh(ctx)
	require.NoError(t, err)
	alert := f.alertsFor(t, enums.AlertTypeRentalOverdue, rental.ID)[0]

	_, err = f.svc.Apply(ctx, ApplyInput{ID: alert.ID, Action: enums.AlertActionResolve})
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx)
	require.NoError(t, err)
	rows := f.alertsFor(t, enums.AlertTypeRentalOverdue, rental.ID)
	require.Len(t, rows, 1, "a resolved alert must not be re-raised while its condition persists")
	assert.Equal(t, enums.AlertStatusClosed, rows[0].Status)
}

func TestRetriggerAfterClearInsertsNewAlert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rental := f.seedOverdue(t)
	_, err := f.svc.Refresh(ctx)
	require.NoError(t, err)
	first := f.alertsFor(t, enums.AlertTypeRentalOverdue, rental.ID)[0]
	_, err = f.svc.Apply(ctx, ApplyInput{ID: first.ID, Action: enums.AlertActionResolve})
	require.NoError(t, err)

	extended := f.clock.Now().Add(12 * time.Hour)
	require.NoError(t, f.conn.Model(&models.Rental{}).Where("id = ?", rental.ID).
		Update("expected_return_date", extended).Error)
	_, err = f.svc.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, f.alertsFor(t, enums.AlertTypeRentalOverdue, rental.ID), 1)

	f.clock.Advance(24 * time.Hour)
	_, err = f.svc.Refresh(ctx)
	require.NoError(t, err)

	rows := f.alertsFor(t, enums.AlertTypeRentalOverdue, rental.ID)
	require.Len(t, rows, 2)
	assert.Equal(t, enums.AlertStatusClosed, rows[0].Status)
	assert.Equal(t, enums.AlertStatusOpen, rows[1].Status)
	assert.True(t, rows[1].DueDate.Equal(extended))
}

func TestStartingSoonExcludesStartsEarlierToday(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := f.clock.Now()
	started := testdb.SeedRental(t, f.conn, testdb.RentalFixture{Status: enums.RentalStatusBooked, Start: now.Add(-2 * time.Hour)})
	upcoming := testdb.SeedRental(t, f.conn, testdb.RentalFixture{Status: enums.RentalStatusBooked, Start: now.Add(3 * time.Hour)})

	summary, err := f.svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ruleByType(summary, enums.AlertTypeRentalStartingSoon).Upserted)
	assert.Empty(t, f.alertsFor(t, enums.AlertTypeRentalStartingSoon, started.ID))
	require.Len(t, f.alertsFor(t, enums.AlertTypeRentalStartingSoon, upcoming.ID), 1)

	f.clock.Advance(4 * time.Hour)
	summary, err = f.svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ruleByType(summary, enums.AlertTypeRentalStartingSoon).Closed)
	rows := f.alertsFor(t, enums.AlertTypeRentalStartingSoon, upcoming.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.AlertStatusClosed, rows[0].Status)
}

func TestRetriggerWithSameDueDateStaysClosed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rental := f.seedOverdue(t)
	_, err := f.svc.Refresh(ctx)
	require.NoError(t, err)

	require.NoError(t, f.conn.Model(&models.Rental{}).Where("id = ?", rental.ID).
		Updates(map[string]any{"status": enums.RentalStatusCompleted, "actual_return_date": f.clock.Now()}).Error)
	_, err = f.svc.Refresh(ctx)
	require.NoError(t, err)

	require.NoError(t, f.conn.Model(&models.Rental{}).Where("id = ?", rental.ID).
		Updates(map[string]any{"status": enums.RentalStatusOngoing, "actual_return_date": nil}).Error)
	summary, err := f.svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Zero(t, ruleByType(summary, enums.AlertTypeRentalOverdue).Upserted)

	rows := f.alertsFor(t, enums.AlertTypeRentalOverdue, rental.ID)
	require.Len(t, rows, 1, "an episode is keyed by its due date")
	assert.Equal(t, enums.AlertStatusClosed, rows[0].Status)
}

func TestSnoozeWakesAfterUntil(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rental := f.seedOverdue(t)
	_, err := f.svc.Refresh(ctx)
	require.NoError(t, err)
	alert := f.alertsFor(t, enums.AlertTypeRentalOverdue, rental.ID)[0]

	until := f.clock.Now().Add(time.Hour)
	view, err := f.svc.Apply(ctx, ApplyInput{ID: alert.ID, Action: enums.AlertActionSnooze, Until: &until})
	require.NoError(t, err)
	assert.Equal(t, enums.AlertStatusSnoozed, view.Status)

	summary, err := f.svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.Woken)
	assert.Equal(t, enums.AlertStatusSnoozed, f.alertsFor(t, enums.AlertTypeRentalOverdue, rental.ID)[0].Status)

	f.clock.Advance(2 * time.Hour)
	summary, err = f.svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Woken)
	rows := f.alertsFor(t, enums.AlertTypeRentalOverdue, rental.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.AlertStatusOpen, rows[0].Status)
	assert.Nil(t, rows[0].SnoozeUntil)
}

func TestReopenConflictsWithActiveAlert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rental := f.seedOverdue(t)
	_, err := f.svc.Refresh(ctx)
	require.NoError(t, err)
	first := f.alertsFor(t, enums.AlertTypeRentalOverdue, rental.ID)[0]
	_, err = f.svc.Apply(ctx, ApplyInput{ID: first.ID, Action: enums.AlertActionResolve})
	require.NoError(t, err)

	require.NoError(t, f.conn.Model(&models.Rental{}).Where("id = ?", rental.ID).
		Update("expected_return_date", f.clock.Now().AddDate(0, 0, -1)).Error)
	_, err = f.svc.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, f.alertsFor(t, enums.AlertTypeRentalOverdue, rental.ID), 2)

	_, err = f.svc.Apply(ctx, ApplyInput{ID: first.ID, Action: enums.AlertActionReopen})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestApplyValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rental := f.seedOverdue(t)
	_, err := f.svc.Refresh(ctx)
	require.NoError(t, err)
	alert := f.alertsFor(t, enums.AlertTypeRentalOverdue, rental.ID)[0]
	past := f.clock.Now().Add(-time.Minute)

	cases := []struct {
		name  string
		input ApplyInput
		code  pkgerrors.Code
	}{
		{"missing id", ApplyInput{Action: enums.AlertActionResolve}, pkgerrors.CodeValidation},
		{"unknown action", ApplyInput{ID: alert.ID, Action: "archive"}, pkgerrors.CodeValidation},
		{"snooze without until", ApplyInput{ID: alert.ID, Action: enums.AlertActionSnooze}, pkgerrors.CodeValidation},
		{"snooze into the past", ApplyInput{ID: alert.ID, Action: enums.AlertActionSnooze, Until: &past}, pkgerrors.CodeValidation},
		{"unknown alert", ApplyInput{ID: 9999, Action: enums.AlertActionResolve}, pkgerrors.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Apply(ctx, tc.input)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, tc.code), "got %v", err)
		})
	}
}

func TestListFiltersAndPages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		f.seedOverdue(t)
	}
	testdb.SeedRental(t, f.conn, testdb.RentalFixture{Status: enums.RentalStatusBooked, Start: f.clock.Now().AddDate(0, 0, 1)})
	_, err := f.svc.Refresh(ctx)
	require.NoError(t, err)

	result, err := f.svc.List(ctx, ListInput{Type: enums.AlertTypeRentalOverdue, Pagination: pagination.Params{Page: 1, Limit: 2}})
	require.NoError(t, err)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, int64(3), result.Meta.Total)

	result, err = f.svc.List(ctx, ListInput{Status: enums.AlertStatusOpen})
	require.NoError(t, err)
	assert.Len(t, result.Items, 4)

	_, err = f.svc.List(ctx, ListInput{Type: "RENTAL_LOST"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
