// Package dbtest opens throwaway SQLite databases carrying the production
// schema for repository and service tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/angelmondragon/icecream-backend/pkg/config"
	"github.com/angelmondragon/icecream-backend/pkg/db"
	"github.com/angelmondragon/icecream-backend/pkg/migrate"
)

// New returns a migrated client backed by a file in t.TempDir. A file is used
// rather than shared-cache memory so WAL and immediate transactions behave as
// they do in production.
func New(t testing.TB) *db.Client {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "icecream.db") +
		"?_busy_timeout=10000&_journal_mode=WAL&_txlock=immediate&_foreign_keys=on"

	ctx := context.Background()
	client, err := db.New(ctx, config.DBConfig{
		Driver:       config.DriverSQLite,
		DSN:          dsn,
		MaxOpenConns: 4,
	}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if _, err := migrate.Apply(ctx, client); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return client
}
