// Package database builds connection pools for the CLI. The engine only
// ever receives an already-constructed pool; environment-variable resolution
// and SSL defaults live with callers, never in the core.
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// defaultMaxConns keeps the pool small: one connection for the advisory
// lock plus one per in-flight migration transaction is all the engine needs.
const defaultMaxConns = 5

// NewPool creates a pgx connection pool for the given database URL. It
// parses the connection string, caps the pool size, and pings the database
// to verify connectivity.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDatabaseURL, err)
	}

	poolCfg.MaxConns = defaultMaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return pool, nil
}
