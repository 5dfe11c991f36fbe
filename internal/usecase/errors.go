package usecase

import crerr "github.com/cockroachdb/errors"

// Sentinels wrapped by service errors. The HTTP layer maps each to a status.
var (
	// ErrInvalidInput rejects a request before anything is written.
	ErrInvalidInput = crerr.New("invalid input")
	ErrNotFound     = crerr.New("resource not found")
	// ErrConflict reports state that forbids the operation, such as a second
	// tournament start.
	ErrConflict              = crerr.New("conflict")
	ErrUnauthorized          = crerr.New("unauthorized")
	ErrDependencyUnavailable = crerr.New("dependency unavailable")
)
