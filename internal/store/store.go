// Package store manages the migration tracking table. It is the sole source
// of truth for which migrations have been applied.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aqasim81/schemaflow/internal/logging"
)

// DefaultTable is the tracking table name used when none is configured.
const DefaultTable = "schema_migrations"

// uniqueViolation is the PostgreSQL error code for unique constraint hits.
const uniqueViolation = "23505"

// MigrationRecord is one row of the tracking table: a migration that was
// successfully applied and committed.
type MigrationRecord struct {
	ID              int64
	Version         string
	Name            string
	AppliedAt       time.Time
	ExecutionTimeMs int64
	Checksum        string
}

// Store reads and writes migration records.
type Store struct {
	pool  *pgxpool.Pool
	table string // sanitized identifier, safe to splice into SQL
	log   logging.Logger
}

// New creates a Store over the given pool. An empty table name falls back to
// DefaultTable; the name is quoted so it cannot carry SQL along with it.
func New(pool *pgxpool.Pool, table string, log logging.Logger) *Store {
	if table == "" {
		table = DefaultTable
	}

	if log == nil {
		log = logging.Nop()
	}

	return &Store{
		pool:  pool,
		table: pgx.Identifier{table}.Sanitize(),
		log:   log,
	}
}

// EnsureTable creates the tracking table if it does not exist. Idempotent
// and never destructive.
func (s *Store) EnsureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id                BIGSERIAL PRIMARY KEY,
    version           VARCHAR(14) NOT NULL UNIQUE,
    name              TEXT NOT NULL,
    applied_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    execution_time_ms INTEGER NOT NULL DEFAULT 0,
    checksum          VARCHAR(16) NOT NULL
)`, s.table)

	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("%w: %w", ErrTableCreation, err)
	}

	return nil
}

// ListApplied returns all applied migrations ordered ascending by version.
// The table is ensured first so a fresh database is immediately queryable.
func (s *Store) ListApplied(ctx context.Context) ([]MigrationRecord, error) {
	if err := s.EnsureTable(ctx); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, fmt.Sprintf(
		`SELECT id, version, name, applied_at, execution_time_ms, checksum
		 FROM %s
		 ORDER BY version`, s.table,
	))
	if err != nil {
		return nil, fmt.Errorf("querying applied migrations: %w", err)
	}
	defer rows.Close()

	applied, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (MigrationRecord, error) {
		var r MigrationRecord
		if scanErr := row.Scan(&r.ID, &r.Version, &r.Name, &r.AppliedAt, &r.ExecutionTimeMs, &r.Checksum); scanErr != nil {
			return MigrationRecord{}, fmt.Errorf("scanning migration record: %w", scanErr)
		}

		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning applied migrations: %w", err)
	}

	return applied, nil
}

// Insert records one applied migration on the pool.
func (s *Store) Insert(ctx context.Context, version, name string, executionTimeMs int64, checksum string) error {
	return s.insert(ctx, s.pool, version, name, executionTimeMs, checksum)
}

// InsertTx records one applied migration inside the caller's transaction so
// the record commits atomically with the migration's own SQL.
func (s *Store) InsertTx(ctx context.Context, tx pgx.Tx, version, name string, executionTimeMs int64, checksum string) error {
	return s.insert(ctx, tx, version, name, executionTimeMs, checksum)
}

// Delete removes the record for version on the pool. Absent versions are a
// no-op.
func (s *Store) Delete(ctx context.Context, version string) error {
	return s.delete(ctx, s.pool, version)
}

// DeleteTx removes the record for version inside the caller's transaction.
func (s *Store) DeleteTx(ctx context.Context, tx pgx.Tx, version string) error {
	return s.delete(ctx, tx, version)
}

// execer is the subset of pgxpool.Pool and pgx.Tx the write paths need.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (s *Store) insert(ctx context.Context, db execer, version, name string, executionTimeMs int64, checksum string) error {
	_, err := db.Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (version, name, execution_time_ms, checksum)
		 VALUES ($1, $2, $3, $4)`, s.table,
	), version, name, executionTimeMs, checksum)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("migration %s: %w", version, ErrDuplicateVersion)
		}

		return fmt.Errorf("recording migration %s: %w", version, err)
	}

	return nil
}

func (s *Store) delete(ctx context.Context, db execer, version string) error {
	tag, err := db.Exec(ctx, fmt.Sprintf(
		`DELETE FROM %s WHERE version = $1`, s.table,
	), version)
	if err != nil {
		return fmt.Errorf("deleting migration record %s: %w", version, err)
	}

	if tag.RowsAffected() == 0 {
		s.log.Debug("no tracking record to delete", "version", version)
	}

	return nil
}
