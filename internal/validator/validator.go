// Package validator inspects migration bodies for SQL anti-patterns before
// they run. It is a heuristic line scanner, not a SQL parser, and its
// findings are purely advisory.
//
// Known blind spots, accepted as limitations of the line-oriented approach:
// statements split across lines in ways the scanner does not special-case
// (clause lookahead stops at the first semicolon), keywords appearing inside
// string literals or comments, and dollar-quoted bodies using tags other
// than the bare $$.
package validator

// Rule is one heuristic check run against a prepared section.
type Rule interface {
	// ID returns a unique kebab-case identifier for the rule.
	ID() string
	// Check scans a section and returns any findings.
	Check(s *Section) []Warning
}

// Registry holds a set of rules.
type Registry struct {
	rules []Rule
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a rule.
func (r *Registry) Register(rule Rule) {
	r.rules = append(r.rules, rule)
}

// Rules returns all registered rules in registration order.
func (r *Registry) Rules() []Rule {
	return r.rules
}

// Validator runs registered rules over a migration's up and down sections.
// Stateless and safe for concurrent use.
type Validator struct {
	registry *Registry
}

// New creates a Validator over the given registry.
func New(registry *Registry) *Validator {
	return &Validator{registry: registry}
}

// Validate scans both sections of a migration and returns every finding, up
// section first. name may be empty; when supplied it is echoed in messages.
func (v *Validator) Validate(upSQL, downSQL, name string) []Warning {
	var findings []Warning

	for _, section := range []*Section{
		NewSection(Up, name, upSQL),
		NewSection(Down, name, downSQL),
	} {
		for _, rule := range v.registry.Rules() {
			findings = append(findings, rule.Check(section)...)
		}
	}

	return findings
}
