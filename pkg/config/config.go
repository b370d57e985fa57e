package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/angelmondragon/icecream-backend/pkg/env"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Stores       StoresConfig
	Orders       OrdersConfig
	FeatureFlags FeatureFlagsConfig
	CORS         CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.App.Port = env.Get(EnvPlatformPort, cfg.App.Port)
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Stores.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ICECREAM_APP_ENV" required:"true"`
	Port         string `envconfig:"ICECREAM_APP_PORT" default:"3000"`
	LogLevel     string `envconfig:"ICECREAM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ICECREAM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Driver string `envconfig:"ICECREAM_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"ICECREAM_DB_DSN"`

	MaxOpenConns    int           `envconfig:"ICECREAM_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"ICECREAM_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"ICECREAM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ICECREAM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded file store.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

func (db *DBConfig) ensureDSN() error {
	switch strings.ToLower(strings.TrimSpace(db.Driver)) {
	case DriverSQLite:
		db.Driver = DriverSQLite
		if db.DSN == "" {
			db.DSN = DefaultSQLiteDSN
		}
		return nil
	case DriverPostgres:
		db.Driver = DriverPostgres
		if db.DSN == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvDBDSN, EnvDBDriver, DriverPostgres)
		}
		return nil
	default:
		return fmt.Errorf("unsupported %s %q", EnvDBDriver, db.Driver)
	}
}

type RedisConfig struct {
	URL          string        `envconfig:"ICECREAM_REDIS_URL"`
	Password     string        `envconfig:"ICECREAM_REDIS_PASSWORD"`
	DB           int           `envconfig:"ICECREAM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ICECREAM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ICECREAM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ICECREAM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ICECREAM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ICECREAM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis deployment was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type StoresConfig struct {
	// DerivedStores maps a derived store name to the base store it copies
	// its flavor assignments from on first read.
	DerivedStores map[string]string `envconfig:"ICECREAM_DERIVED_STORES" default:"puesto2:puesto"`
	LockTTL       time.Duration     `envconfig:"ICECREAM_STORE_LOCK_TTL" default:"10s"`
	LockWait      time.Duration     `envconfig:"ICECREAM_STORE_LOCK_WAIT" default:"5s"`
}

// DerivedNames returns the derived store names in a stable order.
func (s StoresConfig) DerivedNames() []string {
	names := make([]string, 0, len(s.DerivedStores))
	for name := range s.DerivedStores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *StoresConfig) validate() error {
	for derived, base := range s.DerivedStores {
		if strings.TrimSpace(derived) == "" || strings.TrimSpace(base) == "" {
			return fmt.Errorf("%s entries must be derived:base pairs", EnvDerivedStores)
		}
		if derived == base {
			return fmt.Errorf("%s: store %q cannot derive from itself", EnvDerivedStores, derived)
		}
		if _, chained := s.DerivedStores[base]; chained {
			return fmt.Errorf("%s: base store %q is itself derived", EnvDerivedStores, base)
		}
	}
	return nil
}

type OrdersConfig struct {
	DefaultLimit          int `envconfig:"ICECREAM_ORDERS_DEFAULT_LIMIT" default:"20"`
	AllOrdersDefaultLimit int `envconfig:"ICECREAM_ALL_ORDERS_DEFAULT_LIMIT" default:"100"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ICECREAM_AUTO_MIGRATE" default:"true"`
	SeedCatalog bool `envconfig:"ICECREAM_SEED_CATALOG" default:"true"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ICECREAM_CORS_ORIGINS" default:"*"`
}
