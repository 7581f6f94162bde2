package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("defaults the table name", func(t *testing.T) {
		t.Parallel()

		s := New(nil, "", nil)
		require.NotNil(t, s)
		assert.Equal(t, `"schema_migrations"`, s.table)
		assert.NotNil(t, s.log)
	})

	t.Run("quotes the configured table name", func(t *testing.T) {
		t.Parallel()

		s := New(nil, "app_migrations", nil)
		assert.Equal(t, `"app_migrations"`, s.table)
	})

	t.Run("neutralizes hostile table names", func(t *testing.T) {
		t.Parallel()

		// Embedded quotes are doubled so the name stays a single identifier.
		s := New(nil, `m"; DROP TABLE users; --`, nil)
		assert.Equal(t, `"m""; DROP TABLE users; --"`, s.table)
	})
}
