// Package engine orchestrates the catalog, store, and lock coordinator into
// the migrate/rollback/status/create operations consumed by front ends.
package engine

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aqasim81/schemaflow/internal/catalog"
	"github.com/aqasim81/schemaflow/internal/lock"
	"github.com/aqasim81/schemaflow/internal/logging"
	"github.com/aqasim81/schemaflow/internal/store"
	"github.com/aqasim81/schemaflow/internal/validator"
)

// Config is the single explicit way to construct an Engine. The pool must be
// an already-resolved handle; the engine never reads ambient process state.
type Config struct {
	Pool           *pgxpool.Pool
	Dir            string              // migrations directory
	Table          string              // tracking table name, defaults to store.DefaultTable
	LockID         int64               // advisory lock identifier, defaults to lock.DefaultLockID
	DisableLocking bool                // skip the advisory lock entirely
	Logger         logging.Logger      // defaults to logging.Nop()
	Registry       *validator.Registry // nil disables validation reporting
}

// recordStore is the slice of the store the engine depends on, abstracted
// for testability.
type recordStore interface {
	EnsureTable(ctx context.Context) error
	ListApplied(ctx context.Context) ([]store.MigrationRecord, error)
}

// releaser is what lock acquisition hands back.
type releaser interface {
	Release(ctx context.Context)
}

// Engine executes migration batches sequentially within one process. The
// advisory lock defends against other processes; see the lock package.
type Engine struct {
	pool     *pgxpool.Pool
	store    recordStore
	dir      string
	lockID   int64
	locking  bool
	log      logging.Logger
	registry *validator.Registry

	// Seams injected by tests; defaults wired in New.
	listFiles func() ([]catalog.MigrationFile, []catalog.Skipped, error)
	acquire   func(ctx context.Context) (releaser, error)
	applyOne  func(ctx context.Context, f catalog.MigrationFile) (time.Duration, error)
	revertOne func(ctx context.Context, rec store.MigrationRecord, f catalog.MigrationFile) (time.Duration, error)
	now       func() time.Time
}

// New creates an Engine from cfg. A nil pool is a configuration error.
func New(cfg Config) (*Engine, error) {
	if cfg.Pool == nil {
		return nil, ErrNoDatabase
	}

	log := cfg.Logger
	if log == nil {
		log = logging.Nop()
	}

	lockID := cfg.LockID
	if lockID == 0 {
		lockID = lock.DefaultLockID
	}

	st := store.New(cfg.Pool, cfg.Table, log)

	e := &Engine{
		pool:     cfg.Pool,
		store:    st,
		dir:      cfg.Dir,
		lockID:   lockID,
		locking:  !cfg.DisableLocking,
		log:      log,
		registry: cfg.Registry,
		now:      time.Now,
	}

	e.listFiles = func() ([]catalog.MigrationFile, []catalog.Skipped, error) {
		return catalog.List(e.dir)
	}
	e.acquire = func(ctx context.Context) (releaser, error) {
		return lock.TryAcquire(ctx, e.pool, e.lockID, e.log)
	}
	e.applyOne = func(ctx context.Context, f catalog.MigrationFile) (time.Duration, error) {
		return e.runUp(ctx, st, f)
	}
	e.revertOne = func(ctx context.Context, rec store.MigrationRecord, f catalog.MigrationFile) (time.Duration, error) {
		return e.runDown(ctx, st, rec, f)
	}

	return e, nil
}

// EnsureTable creates the tracking table if absent.
func (e *Engine) EnsureTable(ctx context.Context) error {
	return e.store.EnsureTable(ctx)
}

// ListFiles returns all discovered migration files sorted ascending by
// version. Unparseable files are logged as warnings and excluded.
func (e *Engine) ListFiles() ([]catalog.MigrationFile, error) {
	files, skipped, err := e.listFiles()
	if err != nil {
		return nil, err
	}

	for _, s := range skipped {
		e.log.Warn("skipping invalid migration file", "file", s.Filename, "reason", s.Reason)
	}

	return files, nil
}

// ListApplied returns all tracking records sorted ascending by version.
func (e *Engine) ListApplied(ctx context.Context) ([]store.MigrationRecord, error) {
	return e.store.ListApplied(ctx)
}

// Status joins every discovered file with its optional tracking record.
func (e *Engine) Status(ctx context.Context) ([]MigrationStatus, error) {
	files, err := e.ListFiles()
	if err != nil {
		return nil, err
	}

	applied, err := e.store.ListApplied(ctx)
	if err != nil {
		return nil, err
	}

	records := make(map[string]store.MigrationRecord, len(applied))
	for _, rec := range applied {
		records[rec.Version] = rec
	}

	statuses := make([]MigrationStatus, 0, len(files))

	for _, f := range files {
		st := MigrationStatus{
			Version:  f.Version,
			Name:     f.Name,
			Filename: f.Filename,
			Checksum: f.Checksum,
		}

		if rec, ok := records[f.Version]; ok {
			st.Applied = true
			st.AppliedAt = rec.AppliedAt
			st.ExecutionTimeMs = rec.ExecutionTimeMs
			st.ChecksumMismatch = rec.Checksum != f.Checksum
		}

		statuses = append(statuses, st)
	}

	return statuses, nil
}

// Pending returns the discovered files with no tracking record, ascending by
// version.
func (e *Engine) Pending(ctx context.Context) ([]catalog.MigrationFile, error) {
	files, err := e.ListFiles()
	if err != nil {
		return nil, err
	}

	applied, err := e.store.ListApplied(ctx)
	if err != nil {
		return nil, err
	}

	appliedVersions := make(map[string]struct{}, len(applied))
	for _, rec := range applied {
		appliedVersions[rec.Version] = struct{}{}
	}

	var pending []catalog.MigrationFile

	for _, f := range files {
		if _, ok := appliedVersions[f.Version]; !ok {
			pending = append(pending, f)
		}
	}

	return pending, nil
}

// HasPending reports whether any discovered migration is unapplied.
func (e *Engine) HasPending(ctx context.Context) (bool, error) {
	pending, err := e.Pending(ctx)
	if err != nil {
		return false, err
	}

	return len(pending) > 0, nil
}

// SummaryCounts returns total/applied/pending counts over the discovered
// files.
func (e *Engine) SummaryCounts(ctx context.Context) (SummaryCounts, error) {
	statuses, err := e.Status(ctx)
	if err != nil {
		return SummaryCounts{}, err
	}

	counts := SummaryCounts{Total: len(statuses)}

	for _, st := range statuses {
		if st.Applied {
			counts.Applied++
		} else {
			counts.Pending++
		}
	}

	return counts, nil
}

// CreateMigrationFile writes a new templated migration into the configured
// directory. No database interaction.
func (e *Engine) CreateMigrationFile(name string) (catalog.CreatedMigration, error) {
	created, err := catalog.Create(e.dir, name, e.now())
	if err != nil {
		return catalog.CreatedMigration{}, err
	}

	e.log.Info("created migration file", "file", created.Filename)

	return created, nil
}

// ValidateFiles runs the configured anti-pattern rules over every discovered
// migration. Advisory only; an empty result means no findings. Returns nil
// immediately when no registry was configured.
func (e *Engine) ValidateFiles() (map[string][]validator.Warning, error) {
	if e.registry == nil {
		return nil, nil
	}

	files, err := e.ListFiles()
	if err != nil {
		return nil, err
	}

	v := validator.New(e.registry)
	findings := make(map[string][]validator.Warning)

	for _, f := range files {
		if ws := v.Validate(f.UpSQL, f.DownSQL, f.Name); len(ws) > 0 {
			findings[f.Filename] = ws
		}
	}

	return findings, nil
}
