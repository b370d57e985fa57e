package config

const EnvPrefix = "ICECREAM"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultSQLiteDSN = "file:icecream.db?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate&_foreign_keys=on"
)

const (
	EnvAppEnv       = "ICECREAM_APP_ENV"
	EnvPort         = "ICECREAM_APP_PORT"
	EnvPlatformPort = "PORT"
	EnvLogLevel     = "ICECREAM_LOG_LEVEL"

	EnvDBDriver = "ICECREAM_DB_DRIVER"
	EnvDBDSN    = "ICECREAM_DB_DSN"

	EnvRedisURL = "ICECREAM_REDIS_URL"

	EnvDerivedStores = "ICECREAM_DERIVED_STORES"

	EnvOrdersDefaultLimit    = "ICECREAM_ORDERS_DEFAULT_LIMIT"
	EnvAllOrdersDefaultLimit = "ICECREAM_ALL_ORDERS_DEFAULT_LIMIT"

	EnvAutoMigrate = "ICECREAM_AUTO_MIGRATE"
	EnvSeedCatalog = "ICECREAM_SEED_CATALOG"
)
