package rules

import "github.com/aqasim81/schemaflow/internal/validator"

// NewDefaultRegistry returns a Registry with all built-in anti-pattern rules.
func NewDefaultRegistry() *validator.Registry {
	r := validator.NewRegistry()
	r.Register(NewEmptySectionRule())
	r.Register(NewCreateTableRule())
	r.Register(NewCreateIndexRule())
	r.Register(NewAddColumnRule())
	r.Register(NewAddConstraintRule())
	r.Register(NewAlterTypeAddValueRule())
	r.Register(NewDropTableRule())
	r.Register(NewDropColumnRule())
	r.Register(NewDropCascadeRule())
	r.Register(NewDropThenCreateRule())
	r.Register(NewUnboundedDataLossRule())
	r.Register(NewSeedInsertRule())
	r.Register(NewRaiseOutsideDoRule())
	r.Register(NewTransactionControlRule())

	return r
}
