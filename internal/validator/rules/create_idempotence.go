package rules

import (
	"regexp"

	"github.com/aqasim81/schemaflow/internal/validator"
)

var (
	createTablePattern = regexp.MustCompile(`\bCREATE\s+TABLE\b`)
	createIndexPattern = regexp.MustCompile(`\bCREATE\s+(UNIQUE\s+)?INDEX\b`)
	ifNotExistsPattern = regexp.MustCompile(`\bIF\s+NOT\s+EXISTS\b`)
)

// CreateTableRule flags CREATE TABLE statements in the up section that lack
// IF NOT EXISTS and therefore break re-run idempotence.
type CreateTableRule struct{}

// NewCreateTableRule creates a new CreateTableRule.
func NewCreateTableRule() *CreateTableRule { return &CreateTableRule{} }

// ID returns the rule identifier.
func (r *CreateTableRule) ID() string { return "create-table-if-not-exists" }

// Check scans up-section lines for unguarded CREATE TABLE.
func (r *CreateTableRule) Check(s *validator.Section) []validator.Warning {
	if s.Kind != validator.Up {
		return nil
	}

	var findings []validator.Warning

	for _, line := range s.Lines {
		if line.InDo || !createTablePattern.MatchString(line.Upper) {
			continue
		}

		if !ifNotExistsPattern.MatchString(line.Upper) {
			findings = append(findings, s.Errorf(line.Num,
				"CREATE TABLE without IF NOT EXISTS breaks re-run idempotence (line %d)", line.Num))
		}
	}

	return findings
}

// CreateIndexRule flags CREATE INDEX and CREATE UNIQUE INDEX statements in
// the up section that lack IF NOT EXISTS. Lower severity than tables since
// a failed index creation loses no data.
type CreateIndexRule struct{}

// NewCreateIndexRule creates a new CreateIndexRule.
func NewCreateIndexRule() *CreateIndexRule { return &CreateIndexRule{} }

// ID returns the rule identifier.
func (r *CreateIndexRule) ID() string { return "create-index-if-not-exists" }

// Check scans up-section lines for unguarded CREATE INDEX.
func (r *CreateIndexRule) Check(s *validator.Section) []validator.Warning {
	if s.Kind != validator.Up {
		return nil
	}

	var findings []validator.Warning

	for _, line := range s.Lines {
		if line.InDo || !createIndexPattern.MatchString(line.Upper) {
			continue
		}

		if !ifNotExistsPattern.MatchString(line.Upper) {
			findings = append(findings, s.Warningf(line.Num,
				"CREATE INDEX without IF NOT EXISTS fails on re-run (line %d)", line.Num))
		}
	}

	return findings
}
