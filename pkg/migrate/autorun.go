package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/icecream-backend/pkg/config"
	"github.com/angelmondragon/icecream-backend/pkg/db"
	"github.com/angelmondragon/icecream-backend/pkg/logger"
	"github.com/pressly/goose/v3"
)

// Apply brings the schema up to date using the embedded migrations. It uses a
// goose Provider so concurrent callers do not share goose's global state.
func Apply(ctx context.Context, client *db.Client) ([]*goose.MigrationResult, error) {
	if client == nil {
		return nil, fmt.Errorf("db client is required")
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return nil, fmt.Errorf("extracting sql.DB: %w", err)
	}

	dialect, err := dialectFor(client.Driver())
	if err != nil {
		return nil, err
	}
	fsys, err := FS(client.Driver())
	if err != nil {
		return nil, err
	}

	provider, err := goose.NewProvider(dialect, sqlDB, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return results, fmt.Errorf("goose up: %w", err)
	}
	return results, nil
}

// MaybeRun applies migrations at startup when the auto-migrate flag is enabled.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	meta := map[string]any{"env": cfg.App.Env, "driver": client.Driver()}
	ctx = logg.WithFields(ctx, meta)
	logg.Info(ctx, "running goose migrations (auto-run)")

	results, err := Apply(ctx, client)
	if err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	ctx = logg.WithField(ctx, "applied", len(results))
	logg.Info(ctx, "goose migrations completed")
	return nil
}
