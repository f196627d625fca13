// Package repository issues the parameterized SQL statements behind each
// entity.  The sentinel values below let the service layer distinguish
// failure kinds without inspecting driver errors.  ErrNotFound means the
// addressed row does not exist, ErrConflict that the requested window is
// already taken and ErrDuplicate that a unique key is already in use.
package repository

import "errors"

// ErrNotFound is returned when a lookup by primary key finds no row.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a reservation would overlap an existing
// booking of the same room on the same date.
var ErrConflict = errors.New("conflict")

// ErrDuplicate is returned when an insert violates a unique constraint,
// such as registering an email twice.
var ErrDuplicate = errors.New("duplicate")

// ErrMissingReference is returned when a row points at a parent that does
// not exist, e.g. a room in an unknown building.
var ErrMissingReference = errors.New("missing reference")
