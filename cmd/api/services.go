package main

import (
	"github.com/angelmondragon/rentflow-backend/internal/alerts"
	"github.com/angelmondragon/rentflow-backend/internal/bookings"
	"github.com/angelmondragon/rentflow-backend/internal/ledger"
	"github.com/angelmondragon/rentflow-backend/internal/plans"
	"github.com/angelmondragon/rentflow-backend/internal/rentals"
	"github.com/angelmondragon/rentflow-backend/internal/returns"
	"github.com/angelmondragon/rentflow-backend/internal/riders"
	"github.com/angelmondragon/rentflow-backend/internal/vehicles"
	"github.com/angelmondragon/rentflow-backend/pkg/config"
	"github.com/angelmondragon/rentflow-backend/pkg/db"
	"github.com/angelmondragon/rentflow-backend/pkg/logger"
	"github.com/angelmondragon/rentflow-backend/pkg/metrics"
	"github.com/angelmondragon/rentflow-backend/pkg/security"
)

type services struct {
	rentals  rentals.Service
	ledger   ledger.Service
	returns  returns.Service
	alerts   alerts.Service
	bookings bookings.Service
}

func buildServices(cfg *config.Config, logg *logger.Logger, client *db.Client, alertMetrics *metrics.AlertMetrics) (*services, error) {
	loc, err := cfg.App.Location()
	if err != nil {
		return nil, err
	}
	conn := client.DB()

	vehicleService, err := vehicles.NewService(vehicles.NewRepository(conn))
	if err != nil {
		return nil, err
	}
	planService, err := plans.NewService(plans.NewRepository(conn))
	if err != nil {
		return nil, err
	}
	riderService, err := riders.NewService(riders.NewRepository(conn), security.NewHasher(cfg.Password))
	if err != nil {
		return nil, err
	}
	ledgerService, err := ledger.NewService(ledger.NewRepository(conn), client)
	if err != nil {
		return nil, err
	}
	rentalService, err := rentals.NewService(rentals.ServiceParams{
		Repo:       rentals.NewRepository(conn),
		Tx:         client,
		Vehicles:   vehicleService,
		Location:   loc,
		RecentDays: cfg.Returns.RecentDays,
	})
	if err != nil {
		return nil, err
	}
	returnService, err := returns.NewService(returns.ServiceParams{
		Repo:    returns.NewRepository(conn),
		Tx:      client,
		Ledger:  ledgerService,
		Rentals: rentalService,
		Policy:  returns.PolicyFromConfig(cfg.Returns),
	})
	if err != nil {
		return nil, err
	}
	alertService, err := alerts.NewService(alerts.ServiceParams{
		Repo: alerts.NewRepository(conn),
		Tx:   client,
		Rules: alerts.DefaultRules(alerts.Windows{
			DueSoonDays:      cfg.Alerts.DueSoonDays,
			StartingSoonDays: cfg.Alerts.StartingSoonDays,
		}),
		Metrics: alertMetrics,
		Logger:  logg,
	})
	if err != nil {
		return nil, err
	}
	bookingService, err := bookings.NewService(bookings.ServiceParams{
		Repo:     bookings.NewRepository(conn),
		Tx:       client,
		Riders:   riderService,
		Plans:    planService,
		Vehicles: vehicleService,
		Ledger:   ledgerService,
		Location: loc,
	})
	if err != nil {
		return nil, err
	}

	return &services{
		rentals:  rentalService,
		ledger:   ledgerService,
		returns:  returnService,
		alerts:   alertService,
		bookings: bookingService,
	}, nil
}
