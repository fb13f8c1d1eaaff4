package store

import "errors"

var (
	// ErrConflict signals that the expected version no longer matches the
	// stored document; the caller must reload and retry.
	ErrConflict = errors.New("store: version conflict")

	// ErrUnavailable wraps backend I/O failures.
	ErrUnavailable = errors.New("store: unavailable")
)
