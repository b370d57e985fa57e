package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strconv"

	"github.com/angelmondragon/icecream-backend/pkg/config"
	"github.com/pressly/goose/v3"
)

// DefaultDir is the on-disk source of the embedded migrations, used by the
// create and validate commands.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var embedded embed.FS

// SourceDir returns the migration directory for a database driver, rooted at base.
func SourceDir(base, driver string) string {
	return path.Join(base, driver)
}

// FS returns the embedded migrations for the given driver.
func FS(driver string) (fs.FS, error) {
	if _, err := dialectFor(driver); err != nil {
		return nil, err
	}
	return fs.Sub(embedded, path.Join("migrations", driver))
}

func dialectFor(driver string) (goose.Dialect, error) {
	switch driver {
	case config.DriverSQLite:
		return goose.DialectSQLite3, nil
	case config.DriverPostgres:
		return goose.DialectPostgres, nil
	default:
		return "", fmt.Errorf("no migrations for driver %q", driver)
	}
}

func useDialect(driver, dir string) (string, error) {
	dialect, err := dialectFor(driver)
	if err != nil {
		return "", err
	}
	if err := goose.SetDialect(string(dialect)); err != nil {
		return "", fmt.Errorf("set goose dialect: %w", err)
	}
	// An explicit dir reads from disk; otherwise the binary's embedded copy is used.
	if dir != "" {
		goose.SetBaseFS(nil)
		return dir, nil
	}
	goose.SetBaseFS(embedded)
	return path.Join("migrations", driver), nil
}

// Run executes a standard goose command that requires a DB connection.
func Run(ctx context.Context, db *sql.DB, driver, dir string, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}

	source, err := useDialect(driver, dir)
	if err != nil {
		return err
	}

	// RunContext prints status output to stdout (goose internal)
	if err := goose.RunContext(ctx, command, db, source, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion migrates up/down to the requested version by comparing current DB version.
func MigrateToVersion(ctx context.Context, db *sql.DB, driver, dir string, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}

	source, err := useDialect(driver, dir)
	if err != nil {
		return err
	}

	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil

	case current < target:
		if err := goose.UpToContext(ctx, db, source, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
		return nil

	default:
		if err := goose.DownToContext(ctx, db, source, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
		return nil
	}
}
