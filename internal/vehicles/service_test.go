package vehicles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/internal/testdb"
	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
)

func TestRecomputeDerivesQuantityFromActiveRentals(t *testing.T) {
	client := testdb.Open(t)
	conn := client.DB()
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()

	rider := testdb.SeedRider(t, conn, "+910000000001")
	plan := testdb.SeedPlan(t, conn, "daily", "0", "0")
	vehicle := testdb.SeedVehicle(t, conn, "KA-01-0001", "100", 2)
	testdb.SeedRentalFor(t, conn, rider, plan, vehicle, testdb.RentalFixture{Status: enums.RentalStatusOngoing})
	testdb.SeedRentalFor(t, conn, rider, plan, vehicle, testdb.RentalFixture{Status: enums.RentalStatusCompleted})

	// Drift the counter to prove it is recomputed rather than incremented.
	require.NoError(t, conn.Model(&models.Vehicle{}).Where("id = ?", vehicle.ID).Update("quantity", 0).Error)

	var got *models.Vehicle
	err = client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		got, err = svc.Recompute(ctx, tx, vehicle.ID)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity)
	assert.Equal(t, enums.VehicleStatusAvailable, got.Status)

	testdb.SeedRentalFor(t, conn, rider, plan, vehicle, testdb.RentalFixture{Status: enums.RentalStatusBooked})
	err = client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		got, err = svc.Recompute(ctx, tx, vehicle.ID)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
	assert.Equal(t, enums.VehicleStatusRented, got.Status)
}

func TestLockUnknownVehicle(t *testing.T) {
	client := testdb.Open(t)
	svc, err := NewService(NewRepository(client.DB()))
	require.NoError(t, err)

	_, err = svc.Lock(context.Background(), client.DB(), 404)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
