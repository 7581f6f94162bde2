package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// maxNameLen caps sanitized migration names.
const maxNameLen = 100

// ErrEmptyName indicates a migration name that sanitized down to nothing.
var ErrEmptyName = errors.New("migration name contains no usable characters")

var invalidNameRuns = regexp.MustCompile(`[^a-z0-9]+`)

// CreatedMigration describes a freshly written migration file.
type CreatedMigration struct {
	Path     string
	Filename string
	Version  string
}

// migrationTemplate is the body written for new migrations. Both markers are
// present so the file parses immediately.
const migrationTemplate = `-- migrate:up
-- Write the SQL that applies this migration.


-- migrate:down
-- Write the SQL that reverses this migration.
`

// SanitizeName normalizes a human-supplied migration name: lowercase, runs
// of non-alphanumerics collapsed to single underscores, leading and trailing
// underscores stripped, capped at 100 characters. May return "".
func SanitizeName(name string) string {
	s := invalidNameRuns.ReplaceAllString(strings.ToLower(name), "_")
	s = strings.Trim(s, "_")

	if len(s) > maxNameLen {
		s = s[:maxNameLen]
	}

	return s
}

// NewVersion formats t as a 14-digit version string. Fixed width keeps
// lexicographic and chronological order identical.
func NewVersion(t time.Time) string {
	return t.UTC().Format("20060102150405")
}

// Create writes a new templated migration file into dir, creating the
// directory if needed. The name is sanitized first; a name with no usable
// characters is an error.
func Create(dir, name string, now time.Time) (CreatedMigration, error) {
	sanitized := SanitizeName(name)
	if sanitized == "" {
		return CreatedMigration{}, fmt.Errorf("%w: %q", ErrEmptyName, name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return CreatedMigration{}, fmt.Errorf("creating migrations directory %s: %w", dir, err)
	}

	version := NewVersion(now)
	filename := version + "_" + sanitized + ".sql"
	path := filepath.Join(dir, filename)

	if err := os.WriteFile(path, []byte(migrationTemplate), 0o644); err != nil {
		return CreatedMigration{}, fmt.Errorf("writing migration file %s: %w", path, err)
	}

	return CreatedMigration{Path: path, Filename: filename, Version: version}, nil
}
