package migrate

import (
	"fmt"
	"io/fs"
	"regexp"
	"strings"
)

var (
	sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)
)

// ValidateFS validates migration filenames + basic SQL headers.
func ValidateFS(fsys fs.FS) error {
	if fsys == nil {
		return fmt.Errorf("fs is required")
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	seen := map[string]string{} // version -> filename

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}

		version := m[1]
		if prev, ok := seen[version]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", version, prev, name)
		}
		seen[version] = name

		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read file %q: %w", name, err)
		}

		txt := string(b)
		if !strings.Contains(txt, "-- +goose Up") {
			return fmt.Errorf("migration %q missing \"-- +goose Up\"", name)
		}
		if !strings.Contains(txt, "-- +goose Down") {
			return fmt.Errorf("migration %q missing \"-- +goose Down\"", name)
		}
	}

	return nil
}

// ValidateParity checks that every dialect ships the same migration versions.
func ValidateParity(a, b fs.FS) error {
	left, err := versions(a)
	if err != nil {
		return err
	}
	right, err := versions(b)
	if err != nil {
		return err
	}
	for v, name := range left {
		if _, ok := right[v]; !ok {
			return fmt.Errorf("migration %q has no counterpart", name)
		}
	}
	for v, name := range right {
		if _, ok := left[v]; !ok {
			return fmt.Errorf("migration %q has no counterpart", name)
		}
	}
	return nil
}

func versions(fsys fs.FS) (map[string]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	out := map[string]string{}
	for _, e := range entries {
		if m := sqlFileRe.FindStringSubmatch(e.Name()); m != nil {
			out[m[1]] = e.Name()
		}
	}
	return out, nil
}
