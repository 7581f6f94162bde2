package rules

import (
	"fmt"
	"regexp"

	"github.com/aqasim81/schemaflow/internal/validator"
)

var (
	dropTablePattern  = regexp.MustCompile(`\bDROP\s+TABLE\b`)
	dropColumnPattern = regexp.MustCompile(`\bDROP\s+COLUMN\b`)
	ifExistsPattern   = regexp.MustCompile(`\bIF\s+EXISTS\b`)
	cascadePattern    = regexp.MustCompile(`\bCASCADE\b`)

	// Object kinds whose DROP should carry CASCADE, and whose
	// drop-then-create pairing is flagged.
	dropKinds        = []string{"TABLE", "SEQUENCE", "VIEW", "FUNCTION", "TYPE"}
	dropCreateKinds  = []string{"TABLE", "INDEX", "SEQUENCE", "VIEW", "FUNCTION", "TYPE"}
	dropKindPatterns = compileKindPatterns(`\bDROP\s+%s\b`, dropKinds)

	dropPairPatterns   = compileKindPatterns(`\bDROP\s+%s\b`, dropCreateKinds)
	createPairPatterns = compileKindPatterns(`\bCREATE\s+(UNIQUE\s+)?%s\b`, dropCreateKinds)
)

func compileKindPatterns(format string, kinds []string) map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(kinds))
	for _, kind := range kinds {
		patterns[kind] = regexp.MustCompile(fmt.Sprintf(format, kind))
	}

	return patterns
}

// DropTableRule flags DROP TABLE statements. Any DROP TABLE in the up
// section is destructive and warned about; missing IF EXISTS is an error in
// either section because it breaks re-runs.
type DropTableRule struct{}

// NewDropTableRule creates a new DropTableRule.
func NewDropTableRule() *DropTableRule { return &DropTableRule{} }

// ID returns the rule identifier.
func (r *DropTableRule) ID() string { return "drop-table" }

// Check scans lines for DROP TABLE.
func (r *DropTableRule) Check(s *validator.Section) []validator.Warning {
	var findings []validator.Warning

	for _, line := range s.Lines {
		if line.InDo || !dropTablePattern.MatchString(line.Upper) {
			continue
		}

		if s.Kind == validator.Up {
			findings = append(findings, s.Warningf(line.Num,
				"DROP TABLE permanently deletes all data in the table (line %d)", line.Num))
		}

		if !ifExistsPattern.MatchString(line.Upper) {
			findings = append(findings, s.Errorf(line.Num,
				"DROP TABLE without IF EXISTS fails on re-run (line %d)", line.Num))
		}
	}

	return findings
}

// DropColumnRule flags DROP COLUMN in the up section: the column's data is
// gone for good once the migration commits.
type DropColumnRule struct{}

// NewDropColumnRule creates a new DropColumnRule.
func NewDropColumnRule() *DropColumnRule { return &DropColumnRule{} }

// ID returns the rule identifier.
func (r *DropColumnRule) ID() string { return "drop-column" }

// Check scans up-section lines for DROP COLUMN.
func (r *DropColumnRule) Check(s *validator.Section) []validator.Warning {
	if s.Kind != validator.Up {
		return nil
	}

	var findings []validator.Warning

	for _, line := range s.Lines {
		if line.InDo || !dropColumnPattern.MatchString(line.Upper) {
			continue
		}

		findings = append(findings, s.Warningf(line.Num,
			"DROP COLUMN causes irreversible data loss (line %d)", line.Num))
	}

	return findings
}

// DropCascadeRule flags DROP TABLE/SEQUENCE/VIEW/FUNCTION/TYPE statements
// without CASCADE in either section; dependent objects make the bare form
// fail.
type DropCascadeRule struct{}

// NewDropCascadeRule creates a new DropCascadeRule.
func NewDropCascadeRule() *DropCascadeRule { return &DropCascadeRule{} }

// ID returns the rule identifier.
func (r *DropCascadeRule) ID() string { return "drop-cascade" }

// Check scans lines for DROP statements missing CASCADE.
func (r *DropCascadeRule) Check(s *validator.Section) []validator.Warning {
	var findings []validator.Warning

	for _, line := range s.Lines {
		if line.InDo {
			continue
		}

		for _, kind := range dropKinds {
			if !dropKindPatterns[kind].MatchString(line.Upper) {
				continue
			}

			if !cascadePattern.MatchString(line.Upper) {
				findings = append(findings, s.Warningf(line.Num,
					"DROP %s without CASCADE fails when dependent objects exist (line %d)", kind, line.Num))
			}
		}
	}

	return findings
}

// DropThenCreateRule flags up sections that both DROP and CREATE the same
// object kind; idempotent CREATE IF NOT EXISTS is preferred over
// drop-then-create.
type DropThenCreateRule struct{}

// NewDropThenCreateRule creates a new DropThenCreateRule.
func NewDropThenCreateRule() *DropThenCreateRule { return &DropThenCreateRule{} }

// ID returns the rule identifier.
func (r *DropThenCreateRule) ID() string { return "drop-then-create" }

// Check flags drop-and-create pairs of the same object kind.
func (r *DropThenCreateRule) Check(s *validator.Section) []validator.Warning {
	if s.Kind != validator.Up {
		return nil
	}

	var findings []validator.Warning

	for _, kind := range dropCreateKinds {
		if !s.ContainsOutsideDo(createPairPatterns[kind]) {
			continue
		}

		for _, line := range s.Lines {
			if line.InDo || !dropPairPatterns[kind].MatchString(line.Upper) {
				continue
			}

			findings = append(findings, s.Warningf(line.Num,
				"DROP %s followed by CREATE %s; prefer idempotent CREATE IF NOT EXISTS (line %d)", kind, kind, line.Num))

			break // one finding per kind is enough
		}
	}

	return findings
}
