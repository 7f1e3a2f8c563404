package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "RENTFLOW"

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "RENTFLOW_APP_ENV"
	EnvPort     = "RENTFLOW_APP_PORT"
	EnvTimezone = "RENTFLOW_APP_TIMEZONE"

	EnvDBDSN  = "RENTFLOW_DB_DSN"
	EnvDBHost = "RENTFLOW_DB_HOST"
	EnvDBUser = "RENTFLOW_DB_USER"
	EnvDBName = "RENTFLOW_DB_NAME"

	EnvRedisURL = "RENTFLOW_REDIS_URL"

	EnvUseSQLite = "RENTFLOW_USE_SQLITE"

	EnvLateFeePerDay     = "RENTFLOW_RETURNS_LATE_FEE_PER_DAY"
	EnvDefaultTaxPercent = "RENTFLOW_RETURNS_DEFAULT_TAX_PERCENT"

	EnvDueSoonDays      = "RENTFLOW_ALERTS_DUE_SOON_DAYS"
	EnvStartingSoonDays = "RENTFLOW_ALERTS_STARTING_SOON_DAYS"

	EnvCronSchedule = "RENTFLOW_CRON_SCHEDULE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
