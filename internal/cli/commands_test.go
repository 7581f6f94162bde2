package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/schemaflow/internal/config"
)

// setupTestConfig points AppConfig at a temp migrations directory and
// restores the previous value when the test ends.
func setupTestConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	prev := AppConfig
	t.Cleanup(func() { AppConfig = prev })

	AppConfig = config.New()
	AppConfig.MigrationsDir = dir

	return dir
}

func runCommand(t *testing.T, runE func(*cobra.Command, []string) error, args []string) (string, error) {
	t.Helper()

	var buf bytes.Buffer

	cmd := &cobra.Command{RunE: runE}
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)

	err := runE(cmd, args)

	return buf.String(), err
}

func TestRunNew(t *testing.T) {
	dir := setupTestConfig(t)

	out, err := runCommand(t, runNew, []string{"Add Users Table"})
	require.NoError(t, err)
	assert.Contains(t, out, "Created ")
	assert.Contains(t, out, "_add_users_table.sql")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Regexp(t, `^\d{14}_add_users_table\.sql$`, entries[0].Name())
}

func TestRunNew_rejectsEmptyName(t *testing.T) {
	setupTestConfig(t)

	_, err := runCommand(t, runNew, []string{"???"})
	require.Error(t, err)
}

func TestRunValidate(t *testing.T) {
	t.Run("empty directory", func(t *testing.T) {
		setupTestConfig(t)

		out, err := runCommand(t, runValidate, nil)
		require.NoError(t, err)
		assert.Contains(t, out, "No migration files found.")
	})

	t.Run("clean migrations pass", func(t *testing.T) {
		dir := setupTestConfig(t)
		writeMigration(t, dir, "20260214110000_users.sql",
			"-- migrate:up\nCREATE TABLE IF NOT EXISTS users (id BIGSERIAL PRIMARY KEY);\n\n-- migrate:down\nDROP TABLE IF EXISTS users;\n")

		out, err := runCommand(t, runValidate, nil)
		require.NoError(t, err)
		assert.Contains(t, out, "no findings")
	})

	t.Run("error-level findings fail the command", func(t *testing.T) {
		dir := setupTestConfig(t)
		writeMigration(t, dir, "20260214110000_users.sql",
			"-- migrate:up\nCREATE TABLE users (id BIGSERIAL PRIMARY KEY);\n\n-- migrate:down\nDROP TABLE IF EXISTS users;\n")

		out, err := runCommand(t, runValidate, nil)
		require.ErrorIs(t, err, errValidationFindings)
		assert.Contains(t, out, "20260214110000_users.sql:")
		assert.Contains(t, out, "[error]")
		assert.Contains(t, out, "IF NOT EXISTS")
	})

	t.Run("warning-level findings do not fail", func(t *testing.T) {
		dir := setupTestConfig(t)
		writeMigration(t, dir, "20260214110000_seed.sql",
			"-- migrate:up\nINSERT INTO roles (name) VALUES ('admin');\n\n-- migrate:down\nDELETE FROM roles WHERE name = 'admin';\n")

		out, err := runCommand(t, runValidate, nil)
		require.NoError(t, err)
		assert.Contains(t, out, "[warning]")
	})

	t.Run("skipped files are reported", func(t *testing.T) {
		dir := setupTestConfig(t)
		writeMigration(t, dir, "20260214110000_broken.sql", "CREATE TABLE t (id INT);\n")

		out, err := runCommand(t, runValidate, nil)
		require.NoError(t, err)
		assert.Contains(t, out, "skipped")
	})
}

func writeMigration(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
