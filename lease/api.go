package lease

import (
	"context"
	"time"

	"github.com/example/sheetlease/types"
)

// Repository translates between raw store rows and typed LeaseRecords.
// It owns the column layout and the unbound-slot encoding; it never
// originates data, only reads and writes what the coordinator decides.
//
// Implementations must be safe for concurrent use. None of the methods
// provide atomicity across calls: callers own reconciliation.
type Repository interface {
	// ListAll returns every decodable record in store order, bound or not.
	//
	// Returns:
	//   - An empty slice (not an error) if the store has no rows yet.
	//   - store.ErrUnavailable if the read fails.
	ListAll(ctx context.Context) ([]types.LeaseRecord, error)

	// FindByResource returns the authoritative record for a resource
	// name: among bound records matching case-insensitively, the one
	// with the earliest AcquiredAt, ties broken by earliest position in
	// the read sequence. This single rule is what every observer uses to
	// decide the current holder when duplicate rows transiently exist.
	//
	// Returns:
	//   - (nil, 0, nil) if no bound record matches.
	//   - store.ErrUnavailable if the read fails.
	FindByResource(ctx context.Context, name string) (*types.LeaseRecord, types.RowHandle, error)

	// FindByUser returns the user's record: the bound record with the
	// latest AcquiredAt where the user is the holder, or failing that the
	// user's own unbound slot left behind by a prior release.
	//
	// Returns:
	//   - (nil, 0, nil) if the user has no row at all.
	//   - store.ErrUnavailable if the read fails.
	FindByUser(ctx context.Context, user types.UserID) (*types.LeaseRecord, types.RowHandle, error)

	// Append writes a new record after the data region. The returned
	// handle's position is not guaranteed to reflect arrival order
	// relative to concurrent appends from other callers.
	//
	// Returns:
	//   - store.ErrUnavailable if the write fails.
	Append(ctx context.Context, rec types.LeaseRecord) (types.RowHandle, error)

	// Update overwrites the record at a known row.
	//
	// Returns:
	//   - store.ErrStaleHandle if the row no longer exists at that position.
	//   - store.ErrUnavailable if the write fails.
	Update(ctx context.Context, handle types.RowHandle, rec types.LeaseRecord) error
}

// AcquireResult reports the outcome of an acquire attempt.
type AcquireResult struct {
	// Status classifies the outcome.
	Status types.AcquireStatus

	// Resource is the normalized resource name.
	Resource string

	// Holder is the authoritative holder after the attempt: the
	// requester when granted, the winning or current holder otherwise.
	Holder types.UserID

	// Waiting reports whether the requester now occupies the waiter slot.
	Waiting bool
}

// ReleaseResult reports the outcome of a successful release.
type ReleaseResult struct {
	// Resource is the name the requester was disconnected from.
	Resource string

	// NotifiedWaiter is the waiter a notification was dispatched to,
	// empty when the waiter slot was vacant. Notification is best-effort
	// and its delivery is not part of the release outcome.
	NotifiedWaiter types.UserID
}

// InspectEntry is one currently-bound resource in a board listing.
type InspectEntry struct {
	Resource   string
	Holder     types.UserID
	AcquiredAt time.Time
	Waiter     types.UserID
}

// Coordinator decides who holds each resource, who is queued behind it,
// and how claims, releases, and waiter enrollment reconcile under
// concurrent, non-atomic access to the store.
//
// Correctness does not depend on any in-process lock: the service may
// run as several stateless instances, so every guarantee comes from the
// write-then-reread reconciliation against the store.
type Coordinator interface {
	// Acquire attempts to claim a resource for the requester.
	//
	// Returns:
	//   - An AcquireResult with status Granted, Queued, or AlreadyHeld.
	//   - ErrInvalidResource if the name is empty after normalization.
	//   - ErrStoreUnavailable after the retry budget is exhausted; no
	//     partial state is assumed committed.
	Acquire(ctx context.Context, resource string, requester types.UserID) (*AcquireResult, error)

	// Release disconnects the requester from the resource they hold and
	// dispatches a best-effort notification to a captured waiter. The
	// waiter is not granted the lease automatically; they must issue a
	// fresh Acquire.
	//
	// Returns:
	//   - ErrNotHolder if the requester holds nothing; no mutation occurs.
	//   - ErrStoreUnavailable after the retry budget is exhausted.
	Release(ctx context.Context, requester types.UserID) (*ReleaseResult, error)

	// Inspect returns all currently-bound resources with their holders
	// and waiters. Pure read, no side effects. Transient duplicate rows
	// are reconciled so each name appears once, represented by its
	// authoritative record.
	Inspect(ctx context.Context) ([]InspectEntry, error)
}
