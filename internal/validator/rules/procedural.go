package rules

import (
	"regexp"

	"github.com/aqasim81/schemaflow/internal/validator"
)

var (
	raisePattern     = regexp.MustCompile(`\bRAISE\b`)
	txControlPattern = regexp.MustCompile(`^\s*(BEGIN|COMMIT|ROLLBACK)(\s+(TRANSACTION|WORK))?\s*;?\s*$`)
)

// RaiseOutsideDoRule flags RAISE statements outside DO $$ blocks in either
// section; RAISE is only valid in procedural-language bodies.
type RaiseOutsideDoRule struct{}

// NewRaiseOutsideDoRule creates a new RaiseOutsideDoRule.
func NewRaiseOutsideDoRule() *RaiseOutsideDoRule { return &RaiseOutsideDoRule{} }

// ID returns the rule identifier.
func (r *RaiseOutsideDoRule) ID() string { return "raise-outside-do" }

// Check scans lines for RAISE outside DO blocks.
func (r *RaiseOutsideDoRule) Check(s *validator.Section) []validator.Warning {
	var findings []validator.Warning

	for _, line := range s.Lines {
		if line.InDo || !raisePattern.MatchString(line.Upper) {
			continue
		}

		findings = append(findings, s.Errorf(line.Num,
			"RAISE is only valid inside a DO $$ block (line %d)", line.Num))
	}

	return findings
}

// TransactionControlRule flags literal BEGIN/COMMIT/ROLLBACK statements in
// either section; the engine already wraps each migration in a transaction,
// so author-supplied transaction control breaks its failure handling.
type TransactionControlRule struct{}

// NewTransactionControlRule creates a new TransactionControlRule.
func NewTransactionControlRule() *TransactionControlRule { return &TransactionControlRule{} }

// ID returns the rule identifier.
func (r *TransactionControlRule) ID() string { return "transaction-control" }

// Check scans lines for BEGIN/COMMIT/ROLLBACK statements.
func (r *TransactionControlRule) Check(s *validator.Section) []validator.Warning {
	var findings []validator.Warning

	for _, line := range s.Lines {
		if line.InDo || !txControlPattern.MatchString(line.Upper) {
			continue
		}

		findings = append(findings, s.Errorf(line.Num,
			"migrations already run inside a transaction; remove explicit transaction control (line %d)", line.Num))
	}

	return findings
}
