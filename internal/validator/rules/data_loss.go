package rules

import (
	"regexp"

	"github.com/aqasim81/schemaflow/internal/validator"
)

var (
	truncatePattern   = regexp.MustCompile(`\bTRUNCATE\b`)
	deleteFromPattern = regexp.MustCompile(`\bDELETE\s+FROM\b`)
	wherePattern      = regexp.MustCompile(`\bWHERE\b`)
	insertIntoPattern = regexp.MustCompile(`\bINSERT\s+INTO\b`)
	onConflictPattern = regexp.MustCompile(`\bON\s+CONFLICT\b`)
)

// UnboundedDataLossRule flags TRUNCATE and DELETE FROM without a WHERE
// clause in the up section; both remove rows without bound.
type UnboundedDataLossRule struct{}

// NewUnboundedDataLossRule creates a new UnboundedDataLossRule.
func NewUnboundedDataLossRule() *UnboundedDataLossRule { return &UnboundedDataLossRule{} }

// ID returns the rule identifier.
func (r *UnboundedDataLossRule) ID() string { return "unbounded-data-loss" }

// Check scans up-section lines for TRUNCATE and unbounded DELETE.
func (r *UnboundedDataLossRule) Check(s *validator.Section) []validator.Warning {
	if s.Kind != validator.Up {
		return nil
	}

	var findings []validator.Warning

	for i, line := range s.Lines {
		if line.InDo {
			continue
		}

		if truncatePattern.MatchString(line.Upper) {
			findings = append(findings, s.Warningf(line.Num,
				"TRUNCATE removes every row in the table (line %d)", line.Num))
		}

		if deleteFromPattern.MatchString(line.Upper) && !wherePattern.MatchString(s.StatementTail(i)) {
			findings = append(findings, s.Warningf(line.Num,
				"DELETE FROM without WHERE removes every row in the table (line %d)", line.Num))
		}
	}

	return findings
}

// SeedInsertRule flags INSERT INTO statements in the up section without an
// ON CONFLICT clause; seed data makes the migration fail on re-run.
type SeedInsertRule struct{}

// NewSeedInsertRule creates a new SeedInsertRule.
func NewSeedInsertRule() *SeedInsertRule { return &SeedInsertRule{} }

// ID returns the rule identifier.
func (r *SeedInsertRule) ID() string { return "insert-on-conflict" }

// Check scans up-section lines for INSERT INTO without ON CONFLICT.
func (r *SeedInsertRule) Check(s *validator.Section) []validator.Warning {
	if s.Kind != validator.Up {
		return nil
	}

	var findings []validator.Warning

	for i, line := range s.Lines {
		if line.InDo || !insertIntoPattern.MatchString(line.Upper) {
			continue
		}

		if !onConflictPattern.MatchString(s.StatementTail(i)) {
			findings = append(findings, s.Warningf(line.Num,
				"INSERT INTO without ON CONFLICT fails on re-run if the rows already exist (line %d)", line.Num))
		}
	}

	return findings
}
