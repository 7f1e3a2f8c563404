// Package testdb opens migrated in-memory SQLite databases and seeds fixtures for
// repository and service tests.
package testdb

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/rentflow-backend/pkg/config"
	"github.com/angelmondragon/rentflow-backend/pkg/db"
	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	"github.com/angelmondragon/rentflow-backend/pkg/migrate"
)

// Open returns a client over a private in-memory database with every migration applied.
// The pool is pinned to one connection so concurrent callers queue like they would on a
// saturated Postgres pool.
func Open(t testing.TB) *db.Client {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		NowFunc:                db.NowUTC,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	migrate.SetLogger(nil)
	if err := migrate.Up(context.Background(), sqlDB, config.DriverSQLite); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db.NewWithConn(conn)
}

// Day returns midnight UTC for the given date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Money parses a decimal literal and panics on malformed input.
func Money(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

// SeedRider inserts a rider with the given phone.
func SeedRider(t testing.TB, conn *gorm.DB, phone string) models.Rider {
	t.Helper()
	rider := models.Rider{FullName: "Rider " + phone, Phone: phone, PasswordHash: "$argon2id$v=19$m=8,t=1,p=1$c2FsdA$aGFzaA"}
	if err := conn.Create(&rider).Error; err != nil {
		t.Fatalf("seed rider: %v", err)
	}
	return rider
}

// SeedPlan inserts an active plan.
func SeedPlan(t testing.TB, conn *gorm.DB, name, joiningFee, deposit string) models.Plan {
	t.Helper()
	plan := models.Plan{Name: name, JoiningFee: Money(joiningFee), SecurityDeposit: Money(deposit), Active: true}
	if err := conn.Create(&plan).Error; err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	return plan
}

// SeedVehicle inserts a vehicle with all units free.
func SeedVehicle(t testing.TB, conn *gorm.DB, registration, rate string, units int) models.Vehicle {
	t.Helper()
	vehicle := models.Vehicle{
		RegistrationNumber: registration,
		Model:              "EV Scooter",
		RatePerDay:         Money(rate),
		TotalUnits:         units,
		Quantity:           units,
		Status:             enums.VehicleStatusFor(units),
	}
	if err := conn.Create(&vehicle).Error; err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}
	return vehicle
}

// RentalFixture describes the rental inserted by SeedRental.
type RentalFixture struct {
	Status       enums.RentalStatus
	Start        time.Time
	Expected     time.Time
	Deposit      string
	PayableTotal string
	PaidTotal    string
}

// SeedRental inserts a rental for fresh rider, plan and vehicle rows and marks one vehicle
// unit as taken when the rental is active.
func SeedRental(t testing.TB, conn *gorm.DB, f RentalFixture) models.Rental {
	t.Helper()
	suffix := uuid.NewString()[:8]
	rider := SeedRider(t, conn, "+91"+suffix)
	plan := SeedPlan(t, conn, "plan-"+suffix, "0", orZero(f.Deposit))
	vehicle := SeedVehicle(t, conn, "KA-"+suffix, "100", 1)
	return SeedRentalFor(t, conn, rider, plan, vehicle, f)
}

// SeedRentalFor inserts a rental against existing rows.
func SeedRentalFor(t testing.TB, conn *gorm.DB, rider models.Rider, plan models.Plan, vehicle models.Vehicle, f RentalFixture) models.Rental {
	t.Helper()
	status := f.Status
	if status == "" {
		status = enums.RentalStatusOngoing
	}
	start := f.Start
	if start.IsZero() {
		start = Day(2026, time.October, 1)
	}
	expected := f.Expected
	if expected.IsZero() {
		expected = start.AddDate(0, 0, 4)
	}
	payable := Money(orZero(f.PayableTotal))
	paid := Money(orZero(f.PaidTotal))
	rental := models.Rental{
		RiderID:            rider.ID,
		VehicleID:          vehicle.ID,
		PlanID:             plan.ID,
		StartDate:          start.UTC(),
		ExpectedReturnDate: expected.UTC(),
		Status:             status,
		RatePerDay:         vehicle.RatePerDay,
		Deposit:            Money(orZero(f.Deposit)),
		JoiningFee:         plan.JoiningFee,
		UsageAmount:        decimal.Zero,
		PayableTotal:       payable,
		PaidTotal:          paid,
		BalanceDue:         payable.Sub(paid),
	}
	if status == enums.RentalStatusCompleted {
		returned := expected.UTC()
		rental.ActualReturnDate = &returned
	}
	if err := conn.Create(&rental).Error; err != nil {
		t.Fatalf("seed rental: %v", err)
	}
	if !paid.IsZero() {
		payment := models.Payment{
			RentalID:          rental.ID,
			RiderID:           rider.ID,
			Amount:            paid,
			Method:            enums.PaymentMethodCash,
			TransactionStatus: enums.PaymentStatusSuccess,
			TransactionDate:   start.UTC(),
		}
		if err := conn.Create(&payment).Error; err != nil {
			t.Fatalf("seed payment: %v", err)
		}
	}
	if status == enums.RentalStatusBooked || status == enums.RentalStatusOngoing || status == enums.RentalStatusOverdue {
		err := conn.Model(&models.Vehicle{}).Where("id = ?", vehicle.ID).
			Updates(map[string]any{"quantity": gorm.Expr("quantity - 1"), "status": gorm.Expr("CASE WHEN quantity - 1 > 0 THEN 'available' ELSE 'rented' END")}).Error
		if err != nil {
			t.Fatalf("seed vehicle occupancy: %v", err)
		}
	}
	return rental
}

func orZero(value string) string {
	if value == "" {
		return "0"
	}
	return value
}
