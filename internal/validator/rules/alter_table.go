package rules

import (
	"regexp"

	"github.com/aqasim81/schemaflow/internal/validator"
)

var (
	addColumnPattern     = regexp.MustCompile(`\bADD\s+COLUMN\b`)
	addConstraintPattern = regexp.MustCompile(`\bADD\s+CONSTRAINT\b`)
	catalogGuardPattern  = regexp.MustCompile(`\bPG_CONSTRAINT\b|\bINFORMATION_SCHEMA\b`)
	alterTypeAddPattern  = regexp.MustCompile(`\bALTER\s+TYPE\b.*\bADD\s+VALUE\b`)
)

// AddColumnRule flags ADD COLUMN without IF NOT EXISTS in either section;
// the rollback path must be as re-runnable as the forward path.
type AddColumnRule struct{}

// NewAddColumnRule creates a new AddColumnRule.
func NewAddColumnRule() *AddColumnRule { return &AddColumnRule{} }

// ID returns the rule identifier.
func (r *AddColumnRule) ID() string { return "add-column-if-not-exists" }

// Check scans lines for unguarded ADD COLUMN.
func (r *AddColumnRule) Check(s *validator.Section) []validator.Warning {
	var findings []validator.Warning

	for _, line := range s.Lines {
		if line.InDo || !addColumnPattern.MatchString(line.Upper) {
			continue
		}

		if !ifNotExistsPattern.MatchString(line.Upper) {
			findings = append(findings, s.Warningf(line.Num,
				"ADD COLUMN without IF NOT EXISTS fails if the column already exists (line %d)", line.Num))
		}
	}

	return findings
}

// AddConstraintRule flags ADD CONSTRAINT in the up section with no
// catalog-existence guard anywhere in the section. PostgreSQL has no
// ADD CONSTRAINT IF NOT EXISTS, so authors are expected to check
// pg_constraint or information_schema first.
type AddConstraintRule struct{}

// NewAddConstraintRule creates a new AddConstraintRule.
func NewAddConstraintRule() *AddConstraintRule { return &AddConstraintRule{} }

// ID returns the rule identifier.
func (r *AddConstraintRule) ID() string { return "add-constraint-guard" }

// Check scans up-section lines for unguarded ADD CONSTRAINT.
func (r *AddConstraintRule) Check(s *validator.Section) []validator.Warning {
	if s.Kind != validator.Up {
		return nil
	}

	if s.Contains(catalogGuardPattern) {
		return nil
	}

	var findings []validator.Warning

	for _, line := range s.Lines {
		if line.InDo || !addConstraintPattern.MatchString(line.Upper) {
			continue
		}

		findings = append(findings, s.Warningf(line.Num,
			"ADD CONSTRAINT fails if the constraint already exists; guard it with a catalog existence check (line %d)", line.Num))
	}

	return findings
}

// AlterTypeAddValueRule flags ALTER TYPE ... ADD VALUE, which cannot run
// inside the transaction the engine wraps around every migration.
type AlterTypeAddValueRule struct{}

// NewAlterTypeAddValueRule creates a new AlterTypeAddValueRule.
func NewAlterTypeAddValueRule() *AlterTypeAddValueRule { return &AlterTypeAddValueRule{} }

// ID returns the rule identifier.
func (r *AlterTypeAddValueRule) ID() string { return "alter-type-add-value" }

// Check scans up-section lines for ALTER TYPE ... ADD VALUE.
func (r *AlterTypeAddValueRule) Check(s *validator.Section) []validator.Warning {
	if s.Kind != validator.Up {
		return nil
	}

	var findings []validator.Warning

	for _, line := range s.Lines {
		if line.InDo || !alterTypeAddPattern.MatchString(line.Upper) {
			continue
		}

		findings = append(findings, s.Warningf(line.Num,
			"ALTER TYPE ... ADD VALUE cannot run inside a transaction block (line %d)", line.Num))
	}

	return findings
}
