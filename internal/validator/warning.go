package validator

// Level is the advisory severity of a finding. The validator never blocks
// execution; levels only steer how callers present findings.
type Level int

const (
	// LevelWarning flags a pattern that is risky but may be intentional.
	LevelWarning Level = iota
	// LevelError flags a pattern that will fail or break re-runs.
	LevelError
)

// String returns the lowercase label for the level.
func (l Level) String() string {
	if l == LevelError {
		return "error"
	}

	return "warning"
}

// Warning is one finding produced by a rule. Line is 1-based; zero means the
// finding is not attributable to a single line.
type Warning struct {
	Level   Level
	Message string
	Line    int
}
