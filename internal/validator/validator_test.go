package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/schemaflow/internal/validator"
	"github.com/aqasim81/schemaflow/internal/validator/rules"
)

func TestLevel_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "error", validator.LevelError.String())
	assert.Equal(t, "warning", validator.LevelWarning.String())
}

func TestNewSection_marksDoBlocks(t *testing.T) {
	t.Parallel()

	sql := `CREATE TABLE IF NOT EXISTS t (id INT);
DO $$
BEGIN
    RAISE NOTICE 'inside';
END
$$;
SELECT 1;`

	s := validator.NewSection(validator.Up, "", sql)
	require.Len(t, s.Lines, 7)

	assert.False(t, s.Lines[0].InDo)
	assert.True(t, s.Lines[1].InDo, "DO $$ opener")
	assert.True(t, s.Lines[2].InDo)
	assert.True(t, s.Lines[3].InDo)
	assert.True(t, s.Lines[4].InDo)
	assert.True(t, s.Lines[5].InDo, "closing $$;")
	assert.False(t, s.Lines[6].InDo)
}

func TestNewSection_singleLineDoBlock(t *testing.T) {
	t.Parallel()

	s := validator.NewSection(validator.Up, "", "DO $$ BEGIN RAISE NOTICE 'x'; END $$;")
	require.Len(t, s.Lines, 1)
	assert.True(t, s.Lines[0].InDo)
}

func TestNewSection_emptyBody(t *testing.T) {
	t.Parallel()

	assert.True(t, validator.NewSection(validator.Down, "", "   \n  ").Empty())
	assert.True(t, validator.NewSection(validator.Down, "", "").Empty())
}

func TestValidate_messagesIncludeNameAndLine(t *testing.T) {
	t.Parallel()

	v := validator.New(rules.NewDefaultRegistry())

	findings := v.Validate("SELECT 1;\nCREATE TABLE t (id INT);", "DROP TABLE IF EXISTS t CASCADE;", "add_t")

	require.NotEmpty(t, findings)

	var found bool

	for _, w := range findings {
		if w.Level == validator.LevelError {
			found = true

			assert.Contains(t, w.Message, "migration add_t:")
			assert.Contains(t, w.Message, "IF NOT EXISTS")
			assert.Equal(t, 2, w.Line)
		}
	}

	assert.True(t, found, "expected an error-level finding for unguarded CREATE TABLE")
}

// Mirrors the common authoring case: a plain CREATE TABLE up section and a
// guarded DROP in the down section. Only the up section should be flagged.
func TestValidate_guardedDownSectionIsClean(t *testing.T) {
	t.Parallel()

	v := validator.New(rules.NewDefaultRegistry())

	findings := v.Validate("CREATE TABLE t (id int);", "DROP TABLE IF EXISTS t CASCADE;", "")

	require.Len(t, findings, 1)
	assert.Equal(t, validator.LevelError, findings[0].Level)
	assert.Contains(t, findings[0].Message, "IF NOT EXISTS")
}

func TestValidate_neverMutatesState(t *testing.T) {
	t.Parallel()

	v := validator.New(rules.NewDefaultRegistry())

	first := v.Validate("CREATE TABLE t (id int);", "", "x")
	second := v.Validate("CREATE TABLE t (id int);", "", "x")

	assert.Equal(t, first, second)
}
