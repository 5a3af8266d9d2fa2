// Package repository defines the data access layer and the error values
// shared by its repositories. These sentinel values allow higher layers
// such as handlers and the seeder to distinguish between failure scenarios
// with errors.Is instead of inspecting driver errors.
package repository

import "errors"

// ErrBuildingNotFound is returned when no ar_buildings row matches.
var ErrBuildingNotFound = errors.New("building not found")

// ErrUserNotFound is returned when no users row matches.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when registering an email that is taken.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicate is returned when a write violates a natural key, such as a
// second building with the same name. Handlers translate it into 409.
var ErrDuplicate = errors.New("duplicate")
