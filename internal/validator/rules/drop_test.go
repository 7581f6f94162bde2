package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/schemaflow/internal/validator"
	"github.com/aqasim81/schemaflow/internal/validator/rules"
)

func TestDropTableRule(t *testing.T) {
	t.Parallel()

	rule := rules.NewDropTableRule()
	assert.Equal(t, "drop-table", rule.ID())

	t.Run("up DROP TABLE without IF EXISTS warns and errors", func(t *testing.T) {
		t.Parallel()

		findings := rule.Check(upSection("DROP TABLE users;"))
		require.Len(t, findings, 2)

		levels := []validator.Level{findings[0].Level, findings[1].Level}
		assert.Contains(t, levels, validator.LevelWarning)
		assert.Contains(t, levels, validator.LevelError)
	})

	t.Run("up DROP TABLE IF EXISTS still warns about data loss", func(t *testing.T) {
		t.Parallel()

		findings := rule.Check(upSection("DROP TABLE IF EXISTS users;"))
		require.Len(t, findings, 1)
		assert.Equal(t, validator.LevelWarning, findings[0].Level)
	})

	t.Run("down DROP TABLE IF EXISTS is clean", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, rule.Check(downSection("DROP TABLE IF EXISTS users CASCADE;")))
	})

	t.Run("down DROP TABLE without IF EXISTS is an error", func(t *testing.T) {
		t.Parallel()

		findings := rule.Check(downSection("DROP TABLE users;"))
		require.Len(t, findings, 1)
		assert.Equal(t, validator.LevelError, findings[0].Level)
	})
}

func TestDropColumnRule(t *testing.T) {
	t.Parallel()

	rule := rules.NewDropColumnRule()

	findings := rule.Check(upSection("ALTER TABLE users DROP COLUMN email;"))
	require.Len(t, findings, 1)
	assert.Equal(t, validator.LevelWarning, findings[0].Level)
	assert.Contains(t, findings[0].Message, "irreversible")

	assert.Empty(t, rule.Check(downSection("ALTER TABLE users DROP COLUMN email;")))
}

func TestDropCascadeRule(t *testing.T) {
	t.Parallel()

	rule := rules.NewDropCascadeRule()

	tests := []struct {
		name      string
		section   *validator.Section
		wantCount int
		wantKind  string
	}{
		{
			name:      "DROP VIEW without CASCADE warns",
			section:   upSection("DROP VIEW IF EXISTS v;"),
			wantCount: 1,
			wantKind:  "VIEW",
		},
		{
			name:      "DROP SEQUENCE without CASCADE warns",
			section:   upSection("DROP SEQUENCE IF EXISTS s;"),
			wantCount: 1,
			wantKind:  "SEQUENCE",
		},
		{
			name:      "CASCADE passes",
			section:   upSection("DROP TABLE IF EXISTS t CASCADE;"),
			wantCount: 0,
		},
		{
			name:      "applies to down sections too",
			section:   downSection("DROP TYPE IF EXISTS mood;"),
			wantCount: 1,
			wantKind:  "TYPE",
		},
		{
			name:      "DROP INDEX is not in the cascade set",
			section:   upSection("DROP INDEX IF EXISTS idx;"),
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			findings := rule.Check(tt.section)
			require.Len(t, findings, tt.wantCount)

			if tt.wantCount > 0 {
				assert.Contains(t, findings[0].Message, tt.wantKind)
			}
		})
	}
}

func TestDropThenCreateRule(t *testing.T) {
	t.Parallel()

	rule := rules.NewDropThenCreateRule()

	t.Run("drop and create of same kind warns once", func(t *testing.T) {
		t.Parallel()

		findings := rule.Check(upSection("DROP TABLE IF EXISTS t CASCADE;\nCREATE TABLE IF NOT EXISTS t (id INT);"))
		require.Len(t, findings, 1)
		assert.Equal(t, validator.LevelWarning, findings[0].Level)
		assert.Contains(t, findings[0].Message, "TABLE")
	})

	t.Run("drop of one kind with create of another passes", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, rule.Check(upSection("DROP VIEW IF EXISTS v CASCADE;\nCREATE TABLE IF NOT EXISTS t (id INT);")))
	})

	t.Run("unique index create pairs with index drop", func(t *testing.T) {
		t.Parallel()

		findings := rule.Check(upSection("DROP INDEX IF EXISTS idx;\nCREATE UNIQUE INDEX IF NOT EXISTS idx ON t (id);"))
		require.Len(t, findings, 1)
	})

	t.Run("down section is not scanned", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, rule.Check(downSection("DROP TABLE t;\nCREATE TABLE t (id INT);")))
	})
}
