package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/internal/ledger"
	"github.com/angelmondragon/rentflow-backend/internal/plans"
	"github.com/angelmondragon/rentflow-backend/internal/riders"
	"github.com/angelmondragon/rentflow-backend/internal/testdb"
	"github.com/angelmondragon/rentflow-backend/internal/vehicles"
	"github.com/angelmondragon/rentflow-backend/pkg/config"
	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
	"github.com/angelmondragon/rentflow-backend/pkg/security"
)

var fixedNow = time.Date(2026, time.October, 14, 9, 30, 0, 0, time.UTC)

func newService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	client := testdb.Open(t)
	conn := client.DB()

	hasher := security.NewHasher(config.PasswordConfig{ArgonMemoryKB: 8, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 8, ArgonKeyLen: 16})
	riderSvc, err := riders.NewService(riders.NewRepository(conn), hasher)
	require.NoError(t, err)
	planSvc, err := plans.NewService(plans.NewRepository(conn))
	require.NoError(t, err)
	vehicleSvc, err := vehicles.NewService(vehicles.NewRepository(conn))
	require.NoError(t, err)
	ledgerSvc, err := ledger.NewService(ledger.NewRepository(conn), client)
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(conn),
		Tx:       client,
		Riders:   riderSvc,
		Plans:    planSvc,
		Vehicles: vehicleSvc,
		Ledger:   ledgerSvc,
		Now:      func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return svc, conn
}

func bookingInput(plan models.Plan, vehicle models.Vehicle, phone string) CreateInput {
	return CreateInput{
		Rider:              riders.Profile{FullName: "Asha Rao", Phone: phone, Password: "counter-secret"},
		PlanID:             plan.ID,
		VehicleID:          vehicle.ID,
		StartDate:          testdb.Day(2026, time.October, 14),
		ExpectedReturnDate: testdb.Day(2026, time.October, 18),
	}
}

func countRows(t *testing.T, conn *gorm.DB, model any) int64 {
	t.Helper()
	var count int64
	require.NoError(t, conn.Model(model).Count(&count).Error)
	return count
}

func TestCreateBookingPricesAndRecordsPayment(t *testing.T) {
	svc, conn := newService(t)
	plan := testdb.SeedPlan(t, conn, "weekly", "200", "500")
	vehicle := testdb.SeedVehicle(t, conn, "KA-01-EV-1", "100", 2)

	input := bookingInput(plan, vehicle, "+919800000001")
	input.Payment = &PaymentInput{Amount: testdb.Money("700"), Method: enums.PaymentMethodUPI}

	result, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Days)
	assert.True(t, result.UsageAmount.Equal(testdb.Money("500")))
	assert.True(t, result.PayableTotal.Equal(testdb.Money("1200")))
	assert.True(t, result.Paid.Equal(testdb.Money("700")))
	assert.True(t, result.Balance.Equal(testdb.Money("500")))
	assert.Equal(t, enums.RentalStatusOngoing, result.Status)
	assert.True(t, result.RiderCreated)
	assert.Empty(t, result.TemporaryPassword)
	require.NotNil(t, result.PaymentID)

	var rider models.Rider
	require.NoError(t, conn.First(&rider, "id = ?", result.RiderID).Error)
	ok, err := security.Verify("counter-secret", rider.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	var stored models.Vehicle
	require.NoError(t, conn.First(&stored, "id = ?", vehicle.ID).Error)
	assert.Equal(t, 1, stored.Quantity)
	assert.Equal(t, enums.VehicleStatusAvailable, stored.Status)
}

func TestCreateBookingReusesRiderAndSchedulesFutureStart(t *testing.T) {
	svc, conn := newService(t)
	plan := testdb.SeedPlan(t, conn, "weekly", "0", "0")
	vehicle := testdb.SeedVehicle(t, conn, "KA-01-EV-2", "80", 1)
	existing := testdb.SeedRider(t, conn, "+919800000002")

	input := bookingInput(plan, vehicle, existing.Phone)
	input.Rider.Password = ""
	input.StartDate = testdb.Day(2026, time.October, 20)
	input.ExpectedReturnDate = testdb.Day(2026, time.October, 20)

	result, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, result.RiderID)
	assert.False(t, result.RiderCreated)
	assert.Equal(t, enums.RentalStatusBooked, result.Status)
	assert.Equal(t, 1, result.Days)
	assert.True(t, result.Balance.Equal(testdb.Money("80")))

	var stored models.Vehicle
	require.NoError(t, conn.First(&stored, "id = ?", vehicle.ID).Error)
	assert.Equal(t, 0, stored.Quantity)
	assert.Equal(t, enums.VehicleStatusRented, stored.Status)
}

func TestCreateBookingGeneratesPasswordForNewRider(t *testing.T) {
	svc, conn := newService(t)
	plan := testdb.SeedPlan(t, conn, "daily", "0", "100")
	vehicle := testdb.SeedVehicle(t, conn, "KA-01-EV-3", "50", 1)

	input := bookingInput(plan, vehicle, "+919800000003")
	input.Rider.Password = ""

	result, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	require.NotEmpty(t, result.TemporaryPassword)

	var rider models.Rider
	require.NoError(t, conn.First(&rider, "id = ?", result.RiderID).Error)
	ok, err := security.Verify(result.TemporaryPassword, rider.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateBookingRollsBackOnFailure(t *testing.T) {
	svc, conn := newService(t)
	plan := testdb.SeedPlan(t, conn, "weekly", "200", "500")
	inactive := testdb.SeedPlan(t, conn, "retired", "0", "0")
	require.NoError(t, conn.Model(&models.Plan{}).Where("id = ?", inactive.ID).Update("active", false).Error)
	vehicle := testdb.SeedVehicle(t, conn, "KA-01-EV-4", "100", 1)
	full := testdb.SeedVehicle(t, conn, "KA-01-EV-5", "100", 1)
	testdb.SeedRentalFor(t, conn, testdb.SeedRider(t, conn, "+919800000099"), plan, full, testdb.RentalFixture{})
	ridersBefore := countRows(t, conn, &models.Rider{})

	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"unknown plan", func(in *CreateInput) { in.PlanID = 999 }},
		{"inactive plan", func(in *CreateInput) { in.PlanID = inactive.ID }},
		{"unknown vehicle", func(in *CreateInput) { in.VehicleID = 999 }},
		{"vehicle fully rented", func(in *CreateInput) { in.VehicleID = full.ID }},
		{"return before start", func(in *CreateInput) { in.ExpectedReturnDate = in.StartDate.AddDate(0, 0, -1) }},
		{"payment above payable", func(in *CreateInput) {
			in.Payment = &PaymentInput{Amount: testdb.Money("1500"), Method: enums.PaymentMethodCash}
		}},
		{"bad payment method", func(in *CreateInput) {
			in.Payment = &PaymentInput{Amount: testdb.Money("10"), Method: "CHEQUE"}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := bookingInput(plan, vehicle, "+919800000004")
			tc.mutate(&input)

			_, err := svc.Create(context.Background(), input)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
			assert.Equal(t, ridersBefore, countRows(t, conn, &models.Rider{}))
			assert.Equal(t, int64(0), countRows(t, conn, &models.Payment{}))
		})
	}

	var stored models.Vehicle
	require.NoError(t, conn.First(&stored, "id = ?", vehicle.ID).Error)
	assert.Equal(t, 1, stored.Quantity)
}
