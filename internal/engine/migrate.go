package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aqasim81/schemaflow/internal/catalog"
	"github.com/aqasim81/schemaflow/internal/lock"
	"github.com/aqasim81/schemaflow/internal/store"
)

// txStore is the transactional slice of the store used by the default
// apply/revert paths.
type txStore interface {
	InsertTx(ctx context.Context, tx pgx.Tx, version, name string, executionTimeMs int64, checksum string) error
	DeleteTx(ctx context.Context, tx pgx.Tx, version string) error
}

// Migrate applies every pending migration in ascending version order. The
// batch stops at the first failure; migrations committed before it stay
// committed. With no pending work the advisory lock is never taken.
func (e *Engine) Migrate(ctx context.Context, opts Options) (*RunSummary, error) {
	if err := e.store.EnsureTable(ctx); err != nil {
		return nil, err
	}

	pending, err := e.Pending(ctx)
	if err != nil {
		return nil, err
	}

	summary := &RunSummary{DryRun: opts.DryRun, TotalPending: len(pending)}

	if len(pending) == 0 {
		e.log.Info("no pending migrations")
		return summary, nil
	}

	// A dry run touches nothing beyond the status queries above, so it
	// does not contend for the lock either.
	if e.locking && !opts.DryRun {
		handle, err := e.acquire(ctx)
		if err != nil {
			if errors.Is(err, lock.ErrNotAcquired) {
				return nil, &LockContentionError{LockID: e.lockID}
			}

			return nil, err
		}
		defer handle.Release(ctx)
	}

	for _, f := range pending {
		if opts.DryRun {
			e.log.Info("would apply migration", "version", f.Version, "name", f.Name)
			summary.Results = append(summary.Results, MigrationResult{
				Success: true,
				Version: f.Version,
				Name:    f.Name,
			})
			summary.TotalApplied++

			continue
		}

		e.log.Info("applying migration", "version", f.Version, "name", f.Name)

		elapsed, err := e.applyOne(ctx, f)
		if err != nil {
			e.log.Error("migration failed", "version", f.Version, "name", f.Name, "error", err)

			failed := MigrationResult{
				Version:         f.Version,
				Name:            f.Name,
				ExecutionTimeMs: elapsed.Milliseconds(),
				Err:             err,
			}
			summary.Results = append(summary.Results, failed)
			summary.Failed = &summary.Results[len(summary.Results)-1]

			break
		}

		e.log.Info("applied migration", "version", f.Version, "name", f.Name,
			"duration_ms", elapsed.Milliseconds())

		summary.Results = append(summary.Results, MigrationResult{
			Success:         true,
			Version:         f.Version,
			Name:            f.Name,
			ExecutionTimeMs: elapsed.Milliseconds(),
		})
		summary.TotalApplied++
	}

	return summary, nil
}

// Rollback reverses the last count applied migrations, most recent first.
// Each item needs its file on disk and a non-empty down section; the batch
// stops at the first item that fails either check or whose SQL errors.
func (e *Engine) Rollback(ctx context.Context, count int, opts Options) (*RollbackSummary, error) {
	if err := e.store.EnsureTable(ctx); err != nil {
		return nil, err
	}

	applied, err := e.store.ListApplied(ctx)
	if err != nil {
		return nil, err
	}

	summary := &RollbackSummary{DryRun: opts.DryRun}

	if count <= 0 || len(applied) == 0 {
		e.log.Info("nothing to roll back")
		return summary, nil
	}

	if count > len(applied) {
		count = len(applied)
	}

	// Last count records, most recent first.
	targets := make([]store.MigrationRecord, 0, count)
	for i := len(applied) - 1; i >= len(applied)-count; i-- {
		targets = append(targets, applied[i])
	}

	files, err := e.ListFiles()
	if err != nil {
		return nil, err
	}

	byVersion := make(map[string]catalog.MigrationFile, len(files))
	for _, f := range files {
		byVersion[f.Version] = f
	}

	if e.locking && !opts.DryRun {
		handle, err := e.acquire(ctx)
		if err != nil {
			if errors.Is(err, lock.ErrNotAcquired) {
				return nil, &LockContentionError{LockID: e.lockID}
			}

			return nil, err
		}
		defer handle.Release(ctx)
	}

	for _, rec := range targets {
		f, ok := byVersion[rec.Version]

		var checkErr error

		switch {
		case !ok:
			checkErr = &FileMissingError{Version: rec.Version, Name: rec.Name}
		case f.DownSQL == "":
			checkErr = &RollbackNotPossibleError{Version: rec.Version, Name: rec.Name}
		}

		if checkErr != nil {
			e.log.Error("cannot roll back migration", "version", rec.Version, "error", checkErr)

			failed := MigrationResult{Version: rec.Version, Name: rec.Name, Err: checkErr}
			summary.Results = append(summary.Results, failed)
			summary.Failed = &summary.Results[len(summary.Results)-1]

			break
		}

		if opts.DryRun {
			e.log.Info("would roll back migration", "version", rec.Version, "name", rec.Name)
			summary.Results = append(summary.Results, MigrationResult{
				Success: true,
				Version: rec.Version,
				Name:    rec.Name,
			})
			summary.TotalRolledBack++

			continue
		}

		e.log.Info("rolling back migration", "version", rec.Version, "name", rec.Name)

		elapsed, err := e.revertOne(ctx, rec, f)
		if err != nil {
			e.log.Error("rollback failed", "version", rec.Version, "name", rec.Name, "error", err)

			failed := MigrationResult{
				Version:         rec.Version,
				Name:            rec.Name,
				ExecutionTimeMs: elapsed.Milliseconds(),
				Err:             err,
			}
			summary.Results = append(summary.Results, failed)
			summary.Failed = &summary.Results[len(summary.Results)-1]

			break
		}

		e.log.Info("rolled back migration", "version", rec.Version, "name", rec.Name,
			"duration_ms", elapsed.Milliseconds())

		summary.Results = append(summary.Results, MigrationResult{
			Success:         true,
			Version:         rec.Version,
			Name:            rec.Name,
			ExecutionTimeMs: elapsed.Milliseconds(),
		})
		summary.TotalRolledBack++
	}

	return summary, nil
}

// runUp executes one migration's up SQL and its tracking insert in a single
// transaction on a dedicated pooled connection.
func (e *Engine) runUp(ctx context.Context, ts txStore, f catalog.MigrationFile) (time.Duration, error) {
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquiring connection for migration %s: %w", f.Version, err)
	}
	defer conn.Release()

	start := time.Now()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction for migration %s: %w", f.Version, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit returns ErrTxClosed

	if _, err := tx.Exec(ctx, f.UpSQL); err != nil {
		return time.Since(start), fmt.Errorf("executing migration %s: %w", f.Version, err)
	}

	elapsed := time.Since(start)

	if err := ts.InsertTx(ctx, tx, f.Version, f.Name, elapsed.Milliseconds(), f.Checksum); err != nil {
		return elapsed, err
	}

	if err := tx.Commit(ctx); err != nil {
		return elapsed, fmt.Errorf("committing migration %s: %w", f.Version, err)
	}

	return elapsed, nil
}

// runDown executes one migration's down SQL and the tracking delete in a
// single transaction on a dedicated pooled connection.
func (e *Engine) runDown(ctx context.Context, ts txStore, rec store.MigrationRecord, f catalog.MigrationFile) (time.Duration, error) {
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquiring connection for rollback %s: %w", rec.Version, err)
	}
	defer conn.Release()

	start := time.Now()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction for rollback %s: %w", rec.Version, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit returns ErrTxClosed

	if _, err := tx.Exec(ctx, f.DownSQL); err != nil {
		return time.Since(start), fmt.Errorf("executing rollback %s: %w", rec.Version, err)
	}

	if err := ts.DeleteTx(ctx, tx, rec.Version); err != nil {
		return time.Since(start), err
	}

	elapsed := time.Since(start)

	if err := tx.Commit(ctx); err != nil {
		return elapsed, fmt.Errorf("committing rollback %s: %w", rec.Version, err)
	}

	return elapsed, nil
}
