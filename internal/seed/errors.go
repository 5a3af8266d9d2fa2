package seed

import (
	"context"
	"errors"

	"github.com/iliyamo/wayfind-ar/internal/database"
)

// Error marks a failure that originated in the store while initializing it:
// connectivity loss, a failed transaction or a constraint violation. Only
// these failures are absorbed by Initialize.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "seed: " + e.Op + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// IsStoreError reports whether err should be logged and tolerated at
// startup rather than aborting the process.
func IsStoreError(err error) bool {
	var seedErr *Error
	var migErr *database.MigrationError
	switch {
	case errors.As(err, &seedErr), errors.As(err, &migErr):
		return true
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return true
	}
	return false
}
