package rentals

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/internal/testdb"
	"github.com/angelmondragon/rentflow-backend/internal/vehicles"
	"github.com/angelmondragon/rentflow-backend/pkg/db"
	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
	"github.com/angelmondragon/rentflow-backend/pkg/pagination"
)

var fixedNow = time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := testdb.Open(t)
	vehicleSvc, err := vehicles.NewService(vehicles.NewRepository(client.DB()))
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(client.DB()),
		Tx:       client,
		Vehicles: vehicleSvc,
		Now:      func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return svc, client
}

func vehicleQuantity(t *testing.T, conn *gorm.DB, id int64) int {
	t.Helper()
	var vehicle models.Vehicle
	require.NoError(t, conn.First(&vehicle, "id = ?", id).Error)
	return vehicle.Quantity
}

func TestReturnClosesRentalAndReleasesVehicleOnce(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	rental := testdb.SeedRental(t, client.DB(), testdb.RentalFixture{Status: enums.RentalStatusOverdue})
	require.Equal(t, 0, vehicleQuantity(t, client.DB(), rental.VehicleID))

	view, err := svc.Return(ctx, rental.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.RentalStatusCompleted, view.Status)
	assert.Equal(t, enums.RentalStatusCompleted, view.DerivedStatus)
	require.NotNil(t, view.ActualReturnDate)
	assert.True(t, view.ActualReturnDate.Equal(fixedNow))
	assert.Equal(t, 1, vehicleQuantity(t, client.DB(), rental.VehicleID))

	_, err = svc.Return(ctx, rental.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	assert.Contains(t, err.Error(), "already completed")
	assert.Equal(t, 1, vehicleQuantity(t, client.DB(), rental.VehicleID))
}

func TestConcurrentReturnsExactlyOneSucceeds(t *testing.T) {
	svc, client := newTestService(t)
	rental := testdb.SeedRental(t, client.DB(), testdb.RentalFixture{Status: enums.RentalStatusOngoing})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Return(context.Background(), rental.ID)
		}(i)
	}
	wg.Wait()

	var succeeded, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case pkgerrors.IsCode(err, pkgerrors.CodeConflict):
			conflicted++
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)
	assert.Equal(t, 1, vehicleQuantity(t, client.DB(), rental.VehicleID))
}

func TestReturnRejectsIllegalSources(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	booked := testdb.SeedRental(t, client.DB(), testdb.RentalFixture{Status: enums.RentalStatusBooked, Start: fixedNow.AddDate(0, 0, 2)})

	_, err := svc.Return(ctx, booked.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = svc.Return(ctx, 987654)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestStartAndCancelBookedRentals(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	start := fixedNow.AddDate(0, 0, 1)
	toStart := testdb.SeedRental(t, client.DB(), testdb.RentalFixture{Status: enums.RentalStatusBooked, Start: start})
	toCancel := testdb.SeedRental(t, client.DB(), testdb.RentalFixture{Status: enums.RentalStatusBooked, Start: start})

	view, err := svc.Apply(ctx, toStart.ID, enums.RentalActionStart)
	require.NoError(t, err)
	assert.Equal(t, enums.RentalStatusOngoing, view.Status)
	assert.Equal(t, 0, vehicleQuantity(t, client.DB(), toStart.VehicleID))

	view, err = svc.Apply(ctx, toCancel.ID, enums.RentalActionCancel)
	require.NoError(t, err)
	assert.Equal(t, enums.RentalStatusCancelled, view.Status)
	assert.NotNil(t, view.CancelledAt)
	assert.Equal(t, 1, vehicleQuantity(t, client.DB(), toCancel.VehicleID))

	_, err = svc.Apply(ctx, toStart.ID, enums.RentalActionCancel)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = svc.Apply(ctx, toStart.ID, enums.RentalAction("teleport"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestMarkOverdueAgreesWithPredicate(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	conn := client.DB()
	late := testdb.SeedRental(t, conn, testdb.RentalFixture{Status: enums.RentalStatusOngoing, Start: fixedNow.AddDate(0, 0, -5), Expected: fixedNow.AddDate(0, 0, -1)})
	onTime := testdb.SeedRental(t, conn, testdb.RentalFixture{Status: enums.RentalStatusOngoing, Start: fixedNow.AddDate(0, 0, -1), Expected: fixedNow.AddDate(0, 0, 2)})
	booked := testdb.SeedRental(t, conn, testdb.RentalFixture{Status: enums.RentalStatusBooked, Start: fixedNow.AddDate(0, 0, -3), Expected: fixedNow.AddDate(0, 0, -1)})

	before, err := svc.Get(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.RentalStatusOngoing, before.Status)
	assert.Equal(t, enums.RentalStatusOverdue, before.DerivedStatus)

	count, err := svc.MarkOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = svc.MarkOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	for _, id := range []int64{late.ID, onTime.ID, booked.ID} {
		view, err := svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, view.DerivedStatus, view.Status, "rental %d stored status should match derived status", id)
	}
}

func TestListByScope(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	conn := client.DB()

	dueToday := testdb.SeedRental(t, conn, testdb.RentalFixture{Start: fixedNow.AddDate(0, 0, -3), Expected: fixedNow.Add(6 * time.Hour)})
	overdue := testdb.SeedRental(t, conn, testdb.RentalFixture{Start: fixedNow.AddDate(0, 0, -6), Expected: fixedNow.AddDate(0, 0, -2)})
	testdb.SeedRental(t, conn, testdb.RentalFixture{Start: fixedNow.AddDate(0, 0, -1), Expected: fixedNow.AddDate(0, 0, 5)})
	recent := testdb.SeedRental(t, conn, testdb.RentalFixture{Status: enums.RentalStatusCompleted, Start: fixedNow.AddDate(0, 0, -4), Expected: fixedNow.AddDate(0, 0, -1)})
	testdb.SeedRental(t, conn, testdb.RentalFixture{Status: enums.RentalStatusCompleted, Start: fixedNow.AddDate(0, 0, -40), Expected: fixedNow.AddDate(0, 0, -30)})

	result, err := svc.ListByScope(ctx, ListInput{Scope: enums.ReturnScopeDueToday})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, dueToday.ID, result.Items[0].ID)
	assert.NotEmpty(t, result.Items[0].RiderPhone)
	assert.NotEmpty(t, result.Items[0].VehicleRegistration)

	result, err = svc.ListByScope(ctx, ListInput{Scope: enums.ReturnScopeOverdue})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, overdue.ID, result.Items[0].ID)
	assert.True(t, result.Items[0].IsOverdue)
	assert.Equal(t, enums.RentalStatusOverdue, result.Items[0].DerivedStatus)

	result, err = svc.ListByScope(ctx, ListInput{Scope: enums.ReturnScopeRecent})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, recent.ID, result.Items[0].ID)
	assert.Equal(t, int64(1), result.Meta.Total)

	_, err = svc.ListByScope(ctx, ListInput{Scope: "next-week"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListByScopeSearchAndPaging(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	conn := client.DB()

	for i := 0; i < 3; i++ {
		testdb.SeedRental(t, conn, testdb.RentalFixture{Start: fixedNow.AddDate(0, 0, -6), Expected: fixedNow.AddDate(0, 0, -(i + 1))})
	}
	target := testdb.SeedRental(t, conn, testdb.RentalFixture{Start: fixedNow.AddDate(0, 0, -6), Expected: fixedNow.AddDate(0, 0, -1)})
	var vehicle models.Vehicle
	require.NoError(t, conn.First(&vehicle, "id = ?", target.VehicleID).Error)

	result, err := svc.ListByScope(ctx, ListInput{Scope: enums.ReturnScopeOverdue, Search: strings.ToLower(vehicle.RegistrationNumber)})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, target.ID, result.Items[0].ID)

	result, err = svc.ListByScope(ctx, ListInput{Scope: enums.ReturnScopeOverdue, Pagination: pagination.Params{Page: 2, Limit: 3}})
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, int64(4), result.Meta.Total)
	assert.Equal(t, 2, result.Meta.TotalPages)
}
