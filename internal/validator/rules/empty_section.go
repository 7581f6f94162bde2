package rules

import "github.com/aqasim81/schemaflow/internal/validator"

// EmptySectionRule flags migrations with nothing to run or nothing to roll
// back. An empty up section is an error; an empty down section only means
// rollback will be impossible, which is legal at author time.
type EmptySectionRule struct{}

// NewEmptySectionRule creates a new EmptySectionRule.
func NewEmptySectionRule() *EmptySectionRule { return &EmptySectionRule{} }

// ID returns the rule identifier.
func (r *EmptySectionRule) ID() string { return "empty-section" }

// Check flags empty sections.
func (r *EmptySectionRule) Check(s *validator.Section) []validator.Warning {
	if !s.Empty() {
		return nil
	}

	if s.Kind == validator.Up {
		return []validator.Warning{s.Errorf(0, "up section is empty, nothing to run")}
	}

	return []validator.Warning{s.Warningf(0, "down section is empty, rollback will not be possible")}
}
