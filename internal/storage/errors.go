package storage

import "errors"

// Storage errors for the signal sink and snapshot archive.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when attempting to insert a record
	// with a key that already exists. Signals are immutable once written.
	ErrDuplicateKey = errors.New("duplicate key: signals are append-only")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
