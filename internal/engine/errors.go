package engine

import (
	"errors"
	"fmt"
)

// ErrNoDatabase indicates the engine was constructed without a usable
// database handle.
var ErrNoDatabase = errors.New("engine requires a database connection pool")

// LockContentionError indicates the advisory lock try-acquire failed because
// another process holds it. The batch aborts with zero items processed.
type LockContentionError struct {
	LockID int64
}

func (e *LockContentionError) Error() string {
	return fmt.Sprintf("migration lock %d is held by another process", e.LockID)
}

// FileMissingError indicates a rollback was requested for an applied version
// with no corresponding file on disk.
type FileMissingError struct {
	Version string
	Name    string
}

func (e *FileMissingError) Error() string {
	return fmt.Sprintf("migration file not found for version %s (%s)", e.Version, e.Name)
}

// RollbackNotPossibleError indicates a rollback was requested for a version
// whose file has an empty down section.
type RollbackNotPossibleError struct {
	Version string
	Name    string
}

func (e *RollbackNotPossibleError) Error() string {
	return fmt.Sprintf("migration %s_%s has no down section", e.Version, e.Name)
}
