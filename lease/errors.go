package lease

import "errors"

var (
	// ErrInvalidResource indicates a resource name that is empty after normalization.
	ErrInvalidResource = errors.New("lease: resource name is empty")

	// ErrInvalidUser indicates an operation attempted without a requester identity.
	ErrInvalidUser = errors.New("lease: user cannot be empty")

	// ErrNotHolder indicates a release attempted by a user who holds nothing.
	ErrNotHolder = errors.New("lease: user does not hold a resource")

	// ErrStoreUnavailable indicates the backing store could not be reached
	// within the retry budget. Nothing is assumed committed.
	ErrStoreUnavailable = errors.New("lease: store unavailable")
)
