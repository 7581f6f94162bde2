//go:build integration

package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/schemaflow/internal/engine"
)

func standardMigrations() map[string]string {
	return map[string]string{
		"20260214110000_create_users.sql": `-- migrate:up
CREATE TABLE users (id BIGSERIAL PRIMARY KEY, name TEXT NOT NULL);

-- migrate:down
DROP TABLE users;
`,
		"20260214120000_create_posts.sql": `-- migrate:up
CREATE TABLE posts (id BIGSERIAL PRIMARY KEY, user_id BIGINT REFERENCES users(id), title TEXT);

-- migrate:down
DROP TABLE posts;
`,
		"20260214130000_add_email.sql": `-- migrate:up
ALTER TABLE users ADD COLUMN email TEXT;

-- migrate:down
ALTER TABLE users DROP COLUMN email;
`,
	}
}

func TestMigrate_appliesAllAndTracks(t *testing.T) {
	t.Parallel()

	pool := SetupPostgres(t)
	ctx := context.Background()
	dir := WriteMigrations(t, standardMigrations())
	eng := NewEngine(t, pool, dir)

	summary, err := eng.Migrate(ctx, engine.Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalApplied)
	assert.Nil(t, summary.Failed)
	require.Len(t, summary.Results, 3)
	assert.Equal(t, "20260214110000", summary.Results[0].Version)
	assert.Equal(t, "20260214130000", summary.Results[2].Version)

	assert.True(t, TableExists(t, pool, "users"))
	assert.True(t, TableExists(t, pool, "posts"))

	applied, err := eng.ListApplied(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 3)

	for _, rec := range applied {
		assert.Len(t, rec.Checksum, 16)
		assert.GreaterOrEqual(t, rec.ExecutionTimeMs, int64(0))
		assert.False(t, rec.AppliedAt.IsZero())
	}
}

func TestMigrate_secondRunAppliesNothing(t *testing.T) {
	t.Parallel()

	pool := SetupPostgres(t)
	ctx := context.Background()
	dir := WriteMigrations(t, standardMigrations())
	eng := NewEngine(t, pool, dir)

	_, err := eng.Migrate(ctx, engine.Options{})
	require.NoError(t, err)

	second, err := eng.Migrate(ctx, engine.Options{})
	require.NoError(t, err)
	assert.Zero(t, second.TotalApplied)
	assert.Empty(t, second.Results)
}

func TestMigrate_failureKeepsEarlierCommits(t *testing.T) {
	t.Parallel()

	pool := SetupPostgres(t)
	ctx := context.Background()

	dir := WriteMigrations(t, map[string]string{
		"20260214110000_good.sql": "-- migrate:up\nCREATE TABLE widgets (id BIGSERIAL PRIMARY KEY);\n\n-- migrate:down\nDROP TABLE widgets;\n",
		"20260214120000_bad.sql":  "-- migrate:up\nCREATE TABLE broken (fk BIGINT REFERENCES nonexistent(id));\n\n-- migrate:down\nDROP TABLE broken;\n",
	})
	eng := NewEngine(t, pool, dir)

	summary, err := eng.Migrate(ctx, engine.Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalApplied)
	require.NotNil(t, summary.Failed)
	assert.Equal(t, "20260214120000", summary.Failed.Version)
	require.Error(t, summary.Failed.Err)

	// The good migration is committed, the bad one left no trace.
	assert.True(t, TableExists(t, pool, "widgets"))
	assert.False(t, TableExists(t, pool, "broken"))

	applied, err := eng.ListApplied(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, "20260214110000", applied[0].Version)
}

func TestMigrate_failedMigrationRollsBackItsOwnWork(t *testing.T) {
	t.Parallel()

	pool := SetupPostgres(t)
	ctx := context.Background()

	// The CREATE succeeds inside the transaction, then the second statement
	// fails. Nothing from this migration may survive.
	dir := WriteMigrations(t, map[string]string{
		"20260214110000_two_statements.sql": "-- migrate:up\nCREATE TABLE half_done (id BIGSERIAL PRIMARY KEY);\nINSERT INTO half_done (missing_col) VALUES (1);\n\n-- migrate:down\nDROP TABLE half_done;\n",
	})
	eng := NewEngine(t, pool, dir)

	summary, err := eng.Migrate(ctx, engine.Options{})
	require.NoError(t, err)
	require.NotNil(t, summary.Failed)

	assert.False(t, TableExists(t, pool, "half_done"))

	applied, err := eng.ListApplied(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestMigrate_dryRunChangesNothing(t *testing.T) {
	t.Parallel()

	pool := SetupPostgres(t)
	ctx := context.Background()
	dir := WriteMigrations(t, standardMigrations())
	eng := NewEngine(t, pool, dir)

	summary, err := eng.Migrate(ctx, engine.Options{DryRun: true})
	require.NoError(t, err)

	assert.True(t, summary.DryRun)
	assert.Equal(t, 3, summary.TotalApplied)
	assert.False(t, TableExists(t, pool, "users"))

	applied, err := eng.ListApplied(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestRollback_reversesInDescendingOrder(t *testing.T) {
	t.Parallel()

	pool := SetupPostgres(t)
	ctx := context.Background()
	dir := WriteMigrations(t, standardMigrations())
	eng := NewEngine(t, pool, dir)

	_, err := eng.Migrate(ctx, engine.Options{})
	require.NoError(t, err)

	summary, err := eng.Rollback(ctx, 2, engine.Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalRolledBack)
	require.Len(t, summary.Results, 2)
	assert.Equal(t, "20260214130000", summary.Results[0].Version)
	assert.Equal(t, "20260214120000", summary.Results[1].Version)

	assert.True(t, TableExists(t, pool, "users"))
	assert.False(t, TableExists(t, pool, "posts"))

	applied, err := eng.ListApplied(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, "20260214110000", applied[0].Version)
}

func TestRollback_thenReapply(t *testing.T) {
	t.Parallel()

	pool := SetupPostgres(t)
	ctx := context.Background()
	dir := WriteMigrations(t, standardMigrations())
	eng := NewEngine(t, pool, dir)

	_, err := eng.Migrate(ctx, engine.Options{})
	require.NoError(t, err)

	_, err = eng.Rollback(ctx, 3, engine.Options{})
	require.NoError(t, err)
	assert.False(t, TableExists(t, pool, "users"))

	summary, err := eng.Migrate(ctx, engine.Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalApplied)
	assert.True(t, TableExists(t, pool, "users"))
}

func TestStatus_reportsChecksumDrift(t *testing.T) {
	t.Parallel()

	pool := SetupPostgres(t)
	ctx := context.Background()

	files := map[string]string{
		"20260214110000_create_users.sql": standardMigrations()["20260214110000_create_users.sql"],
	}
	dir := WriteMigrations(t, files)
	eng := NewEngine(t, pool, dir)

	_, err := eng.Migrate(ctx, engine.Options{})
	require.NoError(t, err)

	// Edit the applied file in place.
	edited := "-- migrate:up\nCREATE TABLE users (id BIGSERIAL PRIMARY KEY, name TEXT NOT NULL, edited BOOLEAN);\n\n-- migrate:down\nDROP TABLE users;\n"
	dir2 := dir
	WriteMigrationsInto(t, dir2, map[string]string{"20260214110000_create_users.sql": edited})

	statuses, err := eng.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Applied)
	assert.True(t, statuses[0].ChecksumMismatch)

	// Drift is informational: migrate still works.
	summary, err := eng.Migrate(ctx, engine.Options{})
	require.NoError(t, err)
	assert.Zero(t, summary.TotalApplied)
}

func TestMigrate_concurrentRunsOneWins(t *testing.T) {
	t.Parallel()

	pool := SetupPostgres(t)
	ctx := context.Background()
	dir := WriteMigrations(t, standardMigrations())

	var wg sync.WaitGroup

	errs := make([]error, 2)
	summaries := make([]*engine.RunSummary, 2)

	for i := range 2 {
		wg.Add(1)

		go func(idx int) {
			defer wg.Done()

			eng := NewEngine(t, pool, dir)
			summaries[idx], errs[idx] = eng.Migrate(ctx, engine.Options{})
		}(i)
	}

	wg.Wait()

	// At least one run succeeds; the loser either hits lock contention or
	// finds nothing pending.
	successes := 0

	for i, err := range errs {
		if err == nil {
			successes++
			continue
		}

		var contention *engine.LockContentionError
		require.ErrorAs(t, err, &contention)
		assert.Nil(t, summaries[i])
	}

	assert.GreaterOrEqual(t, successes, 1)
	assert.True(t, TableExists(t, pool, "users"))
}
