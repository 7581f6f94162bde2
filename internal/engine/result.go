package engine

import "time"

// Options controls a single migrate or rollback call.
type Options struct {
	// DryRun reports what would happen without issuing any mutating
	// database call. No lock is taken and no execution connection is
	// checked out.
	DryRun bool
}

// MigrationResult is the outcome of one apply or rollback attempt.
type MigrationResult struct {
	Success         bool
	Version         string
	Name            string
	ExecutionTimeMs int64
	Err             error // nil on success
}

// RunSummary reports a migrate batch: per-item results for the items
// actually processed, at most one failure (processing stops there), and
// counts.
type RunSummary struct {
	Results      []MigrationResult
	TotalApplied int
	TotalPending int
	Failed       *MigrationResult
	DryRun       bool
}

// RollbackSummary reports a rollback batch, most-recent-first.
type RollbackSummary struct {
	Results         []MigrationResult
	TotalRolledBack int
	Failed          *MigrationResult
	DryRun          bool
}

// MigrationStatus joins a discovered file with its optional tracking record.
type MigrationStatus struct {
	Version         string
	Name            string
	Filename        string
	Applied         bool
	AppliedAt       time.Time // zero when pending
	ExecutionTimeMs int64
	Checksum        string // current file checksum
	// ChecksumMismatch is true iff a record exists and its checksum differs
	// from the current file's. Informational: the engine never blocks on it.
	ChecksumMismatch bool
}

// SummaryCounts are the headline numbers for status displays.
type SummaryCounts struct {
	Total   int
	Applied int
	Pending int
}
