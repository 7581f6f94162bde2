package catalog

import (
	"crypto/sha256"
	"encoding/hex"
)

// Up/down section marker literals looked up in migration file bodies.
const (
	UpMarker   = "-- migrate:up"
	DownMarker = "-- migrate:down"
)

// checksumLen is the number of hex characters kept from the SHA-256 digest.
const checksumLen = 16

// MigrationFile is a single migration loaded from disk. Immutable once
// parsed.
type MigrationFile struct {
	Version  string // 14-digit timestamp, e.g. "20260214110000"
	Name     string // snake_case name from the filename
	Filename string
	UpSQL    string // trimmed up-section body, never empty
	DownSQL  string // trimmed down-section body, may be empty
	Checksum string // 16 hex chars over UpSQL
}

// Skipped reports a file that matched the filename pattern but could not be
// parsed into a migration. Discovery continues past these; callers are
// expected to surface them as warnings.
type Skipped struct {
	Filename string
	Reason   string
}

// Checksum returns the first 16 hex characters of the SHA-256 digest of sql.
// Callers hash the trimmed up-section body, so checksums are stable under
// leading/trailing whitespace edits and never cover the down section.
func Checksum(sql string) string {
	h := sha256.Sum256([]byte(sql))

	return hex.EncodeToString(h[:])[:checksumLen]
}
