// Package lock provides named, process-spanning locks used to serialise
// startup work such as seeding when several server instances boot against
// the same store.
package lock

import (
	"context"
	"errors"
)

// ErrNotAcquired is returned when the lock could not be obtained before the
// context ended or the backend's own timeout elapsed.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker acquires a named lock. The returned release function is safe to
// call exactly once and never blocks longer than the backend round trip.
type Locker interface {
	Acquire(ctx context.Context, name string) (release func(), err error)
}

// Noop is a Locker that always succeeds. It is used with SQLite, whose
// single connection already serialises the seeding transaction.
type Noop struct{}

func (Noop) Acquire(context.Context, string) (func(), error) { return func() {}, nil }
