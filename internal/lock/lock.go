// Package lock serializes migration batches across process boundaries with a
// PostgreSQL session-level advisory lock.
package lock

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aqasim81/schemaflow/internal/logging"
)

// DefaultLockID is the advisory lock identifier shared by all cooperating
// processes unless an operator configures another. Every instance protecting
// the same database must use the same identifier.
const DefaultLockID int64 = 741953

// ErrNotAcquired indicates the advisory lock is held by another process.
// TryAcquire never waits for it.
var ErrNotAcquired = errors.New("migration lock not acquired")

// Handle owns the dedicated pooled connection holding the advisory lock.
// Session-level locks must be released on the session that took them, so the
// connection stays checked out for the lock's whole lifetime.
type Handle struct {
	conn   *pgxpool.Conn
	lockID int64
	log    logging.Logger
}

// TryAcquire checks out a dedicated connection and issues a non-blocking
// try-lock. Contention returns ErrNotAcquired immediately; callers decide
// whether to retry later. The returned Handle must be released when done.
func TryAcquire(ctx context.Context, pool *pgxpool.Pool, lockID int64, log logging.Logger) (*Handle, error) {
	if log == nil {
		log = logging.Nop()
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring connection for advisory lock: %w", err)
	}

	var acquired bool

	err = conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", lockID).Scan(&acquired)
	if err != nil {
		conn.Release()

		return nil, fmt.Errorf("executing pg_try_advisory_lock: %w", err)
	}

	if !acquired {
		conn.Release()

		return nil, fmt.Errorf("lock %d: %w", lockID, ErrNotAcquired)
	}

	log.Debug("advisory lock acquired", "lock_id", lockID)

	return &Handle{conn: conn, lockID: lockID, log: log}, nil
}

// Release unlocks and returns the connection to the pool. Best-effort: an
// unlock failure is logged, not raised — the lock is session-scoped and dies
// with the connection anyway. Safe to call more than once.
func (h *Handle) Release(ctx context.Context) {
	if h == nil || h.conn == nil {
		return
	}

	if _, err := h.conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", h.lockID); err != nil {
		h.log.Warn("releasing advisory lock failed", "lock_id", h.lockID, "error", err)
	} else {
		h.log.Debug("advisory lock released", "lock_id", h.lockID)
	}

	h.conn.Release()
	h.conn = nil
}
