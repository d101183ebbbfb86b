package store

import "errors"

// Error kinds surfaced by store commands. Every mutation runs inside a
// single transaction that is rolled back on failure, so a returned
// error always means the database is exactly as it was before the call.
var (
	// ErrValidation marks quantity, date or required-field violations.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks an identifier that does not resolve to a live record.
	ErrNotFound = errors.New("not found")

	// ErrLocationInUse marks a location delete blocked by a costume
	// still stored there. Expected outcome, callers branch on it.
	ErrLocationInUse = errors.New("location still in use")
)
