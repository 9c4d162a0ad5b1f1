package repository

import "errors"

var (
	// ErrNotFound is returned by mutating operations whose target row
	// doesn't exist. Single-row getters return nil, nil instead.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert hits a uniqueness
	// constraint that is NOT the expected auto-creation race (that one
	// is absorbed by CreateIfAbsent).
	ErrDuplicate = errors.New("duplicate")
)
