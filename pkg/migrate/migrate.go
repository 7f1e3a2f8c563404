package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path"
	"strconv"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/angelmondragon/rentflow-backend/pkg/config"
)

// DefaultDir is where `migrate create` writes new Postgres migrations on disk.
const DefaultDir = "pkg/migrate/migrations/postgres"

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var embedded embed.FS

// goose keeps its dialect and filesystem in package globals.
var gooseMu sync.Mutex

// Dialect maps a configured driver onto the goose dialect and embedded directory.
func Dialect(driver string) (dialect string, dir string, err error) {
	switch driver {
	case "", config.DriverPostgres:
		return "postgres", path.Join("migrations", "postgres"), nil
	case config.DriverSQLite:
		return "sqlite3", path.Join("migrations", "sqlite"), nil
	default:
		return "", "", fmt.Errorf("unsupported migration driver %q", driver)
	}
}

// Run executes a goose command against the embedded migrations for driver.
func Run(ctx context.Context, db *sql.DB, driver string, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	return withGoose(driver, func(dir string) error {
		if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
			return fmt.Errorf("goose %s: %w", command, err)
		}
		return nil
	})
}

// Up applies every pending migration for driver.
func Up(ctx context.Context, db *sql.DB, driver string) error {
	return Run(ctx, db, driver, "up")
}

// MigrateToVersion migrates up or down to the requested version.
func MigrateToVersion(ctx context.Context, db *sql.DB, driver string, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	return withGoose(driver, func(dir string) error {
		current, err := goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return fmt.Errorf("get db version: %w", err)
		}
		switch {
		case current == target:
			return nil
		case current < target:
			if err := goose.UpToContext(ctx, db, dir, target); err != nil {
				return fmt.Errorf("goose up-to %d: %w", target, err)
			}
		default:
			if err := goose.DownToContext(ctx, db, dir, target); err != nil {
				return fmt.Errorf("goose down-to %d: %w", target, err)
			}
		}
		return nil
	})
}

// SetLogger routes goose output through l. Pass nil to silence it.
func SetLogger(l goose.Logger) {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	if l == nil {
		goose.SetLogger(goose.NopLogger())
		return
	}
	goose.SetLogger(l)
}

func withGoose(driver string, fn func(dir string) error) error {
	dialect, dir, err := Dialect(driver)
	if err != nil {
		return err
	}
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedded)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return fn(dir)
}
