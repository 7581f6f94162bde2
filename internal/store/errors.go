package store

import "errors"

// ErrTableCreation indicates the tracking table could not be created.
var ErrTableCreation = errors.New("creating migration tracking table")

// ErrDuplicateVersion indicates an insert hit the unique version constraint.
// The engine filters to pending migrations before applying, so seeing this
// means another process applied the same version concurrently.
var ErrDuplicateVersion = errors.New("migration version already recorded")
