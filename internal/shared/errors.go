package shared

import "errors"

var (
	// ErrNotFound indicates a referenced record does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates caller input was rejected before any mutation.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a unique constraint violation; callers may retry
	// with a freshly generated identifier.
	ErrConflict = errors.New("conflict")
	// ErrPersistence indicates the underlying store is unavailable.
	ErrPersistence = errors.New("persistence failure")
)
