package storage

import "errors"

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a record does not exist or is not visible
	// to the calling identity.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a write violates a uniqueness constraint,
	// such as shortlisting the same facility twice for one journey.
	ErrConflict = errors.New("record already exists")
)
