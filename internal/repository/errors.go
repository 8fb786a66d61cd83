package repository

import "errors"

var (
	// ErrNotFound is returned when an id or key has no entry.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique attribute is already taken.
	ErrDuplicate = errors.New("duplicate entry")
)
