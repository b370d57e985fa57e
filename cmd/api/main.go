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
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/icecream-backend/api/controllers"
	"github.com/angelmondragon/icecream-backend/api/routes"
	"github.com/angelmondragon/icecream-backend/internal/catalog"
	"github.com/angelmondragon/icecream-backend/internal/orders"
	"github.com/angelmondragon/icecream-backend/internal/storeflavors"
	"github.com/angelmondragon/icecream-backend/pkg/config"
	"github.com/angelmondragon/icecream-backend/pkg/db"
	"github.com/angelmondragon/icecream-backend/pkg/instance"
	"github.com/angelmondragon/icecream-backend/pkg/keylock"
	"github.com/angelmondragon/icecream-backend/pkg/logger"
	"github.com/angelmondragon/icecream-backend/pkg/metrics"
	"github.com/angelmondragon/icecream-backend/pkg/migrate"
	"github.com/angelmondragon/icecream-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	domainMetrics := metrics.NewDomainMetrics(reg)

	readiness := map[string]controllers.Pinger{"db": dbClient}
	var locker keylock.Locker = keylock.NewLocal()
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		distributed, err := keylock.NewRedis(redisClient.Scripter(), redisClient.StoreLockKey, cfg.Stores.LockTTL, cfg.Stores.LockWait)
		if err != nil {
			return err
		}
		locker = distributed
		readiness["redis"] = redisClient
	}

	catalogSvc, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), logg)
	if err != nil {
		return err
	}
	if cfg.FeatureFlags.SeedCatalog {
		inserted, err := catalogSvc.SeedDefaults(ctx)
		if err != nil {
			return err
		}
		logg.Info(logg.WithField(ctx, "inserted", inserted), "default flavors seeded")
	}

	ordersSvc, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		dbClient,
		domainMetrics,
		logg,
		cfg.Orders.DefaultLimit,
	)
	if err != nil {
		return err
	}

	storeFlavorsSvc, err := storeflavors.NewService(
		storeflavors.NewRepository(dbClient.DB()),
		dbClient,
		locker,
		catalogSvc,
		cfg.Stores.DerivedStores,
		domainMetrics,
		logg,
	)
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Deps{
			Orders:         ordersSvc,
			Catalog:        catalogSvc,
			StoreFlavors:   storeFlavorsSvc,
			HTTPMetrics:    metrics.NewHTTPMetrics(reg),
			MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
			Readiness:      readiness,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":            cfg.App.Env,
		"addr":           addr,
		"instance":       instance.GetID(),
		"db_driver":      dbClient.Driver(),
		"derived_stores": cfg.Stores.DerivedNames(),
		"redis_locks":    cfg.Redis.Enabled(),
	})
	logg.Info(logCtx, "starting api server")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
