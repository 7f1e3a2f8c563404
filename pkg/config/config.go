package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Password     PasswordConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
	Returns      ReturnsConfig
	Alerts       AlertsConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if _, err := cfg.App.Location(); err != nil {
		return nil, err
	}
	if cfg.Returns.LateFeePerDay.IsNegative() {
		return nil, fmt.Errorf("%s must not be negative", EnvLateFeePerDay)
	}
	if cfg.Returns.DefaultTaxPercent.IsNegative() {
		return nil, fmt.Errorf("%s must not be negative", EnvDefaultTaxPercent)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"RENTFLOW_APP_ENV" required:"true"`
	Port         string `envconfig:"RENTFLOW_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"RENTFLOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RENTFLOW_LOG_WARN_STACK" default:"false"`
	Timezone     string `envconfig:"RENTFLOW_APP_TIMEZONE" default:"UTC"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Location resolves the business timezone used for calendar-day buckets.
func (a AppConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(a.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", EnvTimezone, name, err)
	}
	return loc, nil
}

type ServiceConfig struct {
	Kind string `envconfig:"RENTFLOW_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"RENTFLOW_DB_DSN"`
	Driver string `envconfig:"RENTFLOW_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"RENTFLOW_DB_HOST"`
	LegacyPort     int    `envconfig:"RENTFLOW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RENTFLOW_DB_USER"`
	LegacyPassword string `envconfig:"RENTFLOW_DB_PASSWORD"`
	LegacyName     string `envconfig:"RENTFLOW_DB_NAME"`
	LegacySSLMode  string `envconfig:"RENTFLOW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RENTFLOW_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"RENTFLOW_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"RENTFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RENTFLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RENTFLOW_REDIS_URL" required:"true"`
	Address      string        `envconfig:"RENTFLOW_REDIS_ADDR"`
	Password     string        `envconfig:"RENTFLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"RENTFLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RENTFLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RENTFLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RENTFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RENTFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RENTFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"RENTFLOW_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"RENTFLOW_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"RENTFLOW_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"RENTFLOW_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"RENTFLOW_ARGON_KEY_LEN" default:"32"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"RENTFLOW_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"RENTFLOW_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"RENTFLOW_AUTO_MIGRATE" default:"false"`
}

// ReturnsConfig is the settlement policy applied to drafts and settlements.
type ReturnsConfig struct {
	LateFeePerDay     decimal.Decimal `envconfig:"RENTFLOW_RETURNS_LATE_FEE_PER_DAY" default:"50"`
	DefaultTaxPercent decimal.Decimal `envconfig:"RENTFLOW_RETURNS_DEFAULT_TAX_PERCENT" default:"18"`
	RecentDays        int             `envconfig:"RENTFLOW_RETURNS_RECENT_DAYS" default:"7"`
}

type AlertsConfig struct {
	DueSoonDays      int `envconfig:"RENTFLOW_ALERTS_DUE_SOON_DAYS" default:"3"`
	StartingSoonDays int `envconfig:"RENTFLOW_ALERTS_STARTING_SOON_DAYS" default:"7"`
}

type CronConfig struct {
	Schedule    string        `envconfig:"RENTFLOW_CRON_SCHEDULE" default:"*/15 * * * *"`
	LockTTL     time.Duration `envconfig:"RENTFLOW_CRON_LOCK_TTL" default:"10m"`
	MetricsAddr string        `envconfig:"RENTFLOW_CRON_METRICS_ADDR" default:":9102"`
}

const defaultSQLiteDSN = "file:rentflow.db?_foreign_keys=on"

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.DSN = defaultSQLiteDSN
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
