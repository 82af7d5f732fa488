package store

import "errors"

var (
	// ErrUnavailable is returned when the backing store cannot be reached
	// or its API call fails. It is transient: callers retry with backoff.
	ErrUnavailable = errors.New("store: backing store unavailable")

	// ErrStaleHandle is returned when an update addresses a row position
	// that no longer exists. Callers recompute the handle from a fresh
	// read rather than retrying blindly.
	ErrStaleHandle = errors.New("store: row handle no longer valid")
)
