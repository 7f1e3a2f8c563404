package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/rentflow-backend/pkg/config"
	"github.com/angelmondragon/rentflow-backend/pkg/db"
	"github.com/angelmondragon/rentflow-backend/pkg/logger"
)

// ShouldAutoRun reports whether a process should migrate at boot. Local SQLite always
// does; Postgres only in dev with RENTFLOW_AUTO_MIGRATE set.
func ShouldAutoRun(cfg *config.Config) bool {
	if cfg == nil {
		return false
	}
	if cfg.FeatureFlags.UseSQLite {
		return true
	}
	return cfg.App.IsDev() && cfg.FeatureFlags.AutoMigrate
}

// MaybeRunDev applies the embedded migrations for the configured driver when ShouldAutoRun.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !ShouldAutoRun(cfg) {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": cfg.DB.Driver})
	SetLogger(NewLogger(ctx, logg))
	logg.Info(ctx, "migrate.autorun.start")

	if err := Up(ctx, sqlDB, cfg.DB.Driver); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "migrate.autorun.complete")
	return nil
}
