package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/angelmondragon/icecream-backend/pkg/config"
)

var (
	nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)
)

var drivers = []string{config.DriverSQLite, config.DriverPostgres}

// CreateSQLMigrations creates one goose SQL migration per supported dialect,
// sharing a single version so the dialect trees stay in lockstep:
//
//	<base>/<driver>/<YYYYMMDDHHMMSS>_<name>.sql
func CreateSQLMigrations(base string, name string, now time.Time) ([]string, error) {
	if base == "" {
		return nil, fmt.Errorf("dir is required")
	}
	safe, err := sanitizeName(name)
	if err != nil {
		return nil, err
	}

	version := now.UTC().Format("20060102150405")
	filename := fmt.Sprintf("%s_%s.sql", version, safe)

	paths := make([]string, 0, len(drivers))
	for _, driver := range drivers {
		dir := SourceDir(base, driver)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return paths, fmt.Errorf("mkdir %q: %w", dir, err)
		}
		fullpath := filepath.Join(dir, filename)
		if _, err := os.Stat(fullpath); err == nil {
			return paths, fmt.Errorf("migration already exists: %s", fullpath)
		}
		if err := os.WriteFile(fullpath, []byte(migrationTemplate(safe, driver)), 0o644); err != nil {
			return paths, fmt.Errorf("write migration %q: %w", fullpath, err)
		}
		paths = append(paths, fullpath)
	}
	return paths, nil
}

func sanitizeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("name is required")
	}
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	safe = strings.Trim(safe, "_")
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}
	return safe, nil
}

func migrationTemplate(name, driver string) string {
	return fmt.Sprintf(`-- +goose Up
-- +goose StatementBegin
-- %s (%s)
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %s
-- +goose StatementEnd
`, name, driver, name)
}
