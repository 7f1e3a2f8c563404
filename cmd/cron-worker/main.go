package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/rentflow-backend/internal/alerts"
	"github.com/angelmondragon/rentflow-backend/internal/cron"
	"github.com/angelmondragon/rentflow-backend/internal/rentals"
	"github.com/angelmondragon/rentflow-backend/internal/vehicles"
	"github.com/angelmondragon/rentflow-backend/pkg/config"
	"github.com/angelmondragon/rentflow-backend/pkg/db"
	"github.com/angelmondragon/rentflow-backend/pkg/logger"
	"github.com/angelmondragon/rentflow-backend/pkg/metrics"
	"github.com/angelmondragon/rentflow-backend/pkg/migrate"
	"github.com/angelmondragon/rentflow-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()

	jobs, err := buildJobs(cfg, logg, dbClient, metrics.NewAlertMetrics(registry))
	if err != nil {
		logg.Error(context.Background(), "failed to wire cron jobs", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(cron.LockName), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(jobs...),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(registry),
		Schedule: cfg.Cron.Schedule,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"schedule":    cfg.Cron.Schedule,
	})

	metricsServer := serveMetrics(ctx, logg, cfg.Cron.MetricsAddr, registry)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func buildJobs(cfg *config.Config, logg *logger.Logger, client *db.Client, alertMetrics *metrics.AlertMetrics) ([]cron.Job, error) {
	loc, err := cfg.App.Location()
	if err != nil {
		return nil, err
	}
	conn := client.DB()

	vehicleService, err := vehicles.NewService(vehicles.NewRepository(conn))
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

	// Overdue flip runs first so the refresh sees current statuses.
	overdueJob, err := cron.NewRentalOverdueJob(cron.RentalOverdueJobParams{Logger: logg, Rentals: rentalService})
	if err != nil {
		return nil, err
	}
	refreshJob, err := cron.NewAlertsRefreshJob(cron.AlertsRefreshJobParams{Logger: logg, Alerts: alertService})
	if err != nil {
		return nil, err
	}
	return []cron.Job{overdueJob, refreshJob}, nil
}

func serveMetrics(ctx context.Context, logg *logger.Logger, addr string, gatherer prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server stopped", err)
		}
	}()
	return server
}
