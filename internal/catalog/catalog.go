// Package catalog discovers migration files on disk, splits them into up and
// down sections, and computes their checksums.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// filenamePattern matches migration files: a 14-digit version, an underscore,
// a snake_case name, and the .sql extension. Anything else in the directory
// is ignored during discovery.
var filenamePattern = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)

// List scans dir for migration files and returns them sorted ascending by
// version. A missing directory yields an empty result, not an error. Files
// matching the naming pattern but lacking a usable up section are returned
// as Skipped entries instead of failing the whole scan.
func List(dir string) ([]MigrationFile, []Skipped, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, nil
		}

		return nil, nil, fmt.Errorf("reading migrations directory %s: %w", dir, err)
	}

	var (
		files   []MigrationFile
		skipped []Skipped
	)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		matches := filenamePattern.FindStringSubmatch(entry.Name())
		if matches == nil {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, nil, fmt.Errorf("reading migration file %s: %w", entry.Name(), err)
		}

		upSQL, downSQL, reason := splitSections(string(data))
		if reason != "" {
			skipped = append(skipped, Skipped{Filename: entry.Name(), Reason: reason})
			continue
		}

		files = append(files, MigrationFile{
			Version:  matches[1],
			Name:     matches[2],
			Filename: entry.Name(),
			UpSQL:    upSQL,
			DownSQL:  downSQL,
			Checksum: Checksum(upSQL),
		})
	}

	// Fixed-width versions sort lexicographically in chronological order.
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Version < files[j].Version
	})

	return files, skipped, nil
}

// splitSections extracts the up and down bodies from raw file content. A
// non-empty reason means the file is unusable and should be skipped.
//
// When the down marker appears before the up marker, the text between the
// two markers becomes the down section and everything after the up marker
// the up section. Preserved for compatibility with existing migration
// directories; see DESIGN.md.
func splitSections(content string) (upSQL, downSQL, reason string) {
	upIdx := strings.Index(content, UpMarker)
	if upIdx < 0 {
		return "", "", "missing " + UpMarker + " marker"
	}

	downIdx := strings.Index(content, DownMarker)

	switch {
	case downIdx < 0:
		upSQL = content[upIdx+len(UpMarker):]
	case downIdx > upIdx:
		upSQL = content[upIdx+len(UpMarker) : downIdx]
		downSQL = content[downIdx+len(DownMarker):]
	default:
		downSQL = content[downIdx+len(DownMarker) : upIdx]
		upSQL = content[upIdx+len(UpMarker):]
	}

	upSQL = strings.TrimSpace(upSQL)
	downSQL = strings.TrimSpace(downSQL)

	if upSQL == "" {
		return "", "", "up section is empty"
	}

	return upSQL, downSQL, ""
}
