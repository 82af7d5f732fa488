package types

import "time"

// UserID uniquely identifies a user of the connection board.
// It is the chat handle the command arrived under and the address
// notifications are delivered to.
type UserID string

// RowHandle identifies a row in the backing tabular store by its
// zero-based position within the data region. Rows are never deleted,
// so a handle obtained from a read or append stays addressable.
type RowHandle int

// LeaseRecord is the typed form of one store row: the slot for a single
// resource claim. A record is bound when both Resource and Holder are
// set; a released record keeps its Holder cell as the slot owner and
// clears everything else.
type LeaseRecord struct {
	// Resource is the case-insensitively compared connection name.
	// Empty for an unbound slot.
	Resource string

	// Holder is the user the slot belongs to. For a bound record this
	// is the user currently granted the resource.
	Holder UserID

	// AcquiredAt is the wall-clock claim time. It orders competing
	// candidate rows for the same resource name; zero for unbound slots.
	AcquiredAt time.Time

	// Waiter is the single user queued behind the holder, if any.
	Waiter UserID
}

// Bound reports whether the record currently grants a resource.
func (r LeaseRecord) Bound() bool {
	return r.Resource != "" && r.Holder != ""
}

// HasWaiter reports whether the single waiter slot is occupied.
func (r LeaseRecord) HasWaiter() bool {
	return r.Waiter != ""
}

// AcquireStatus classifies the outcome of an acquire attempt.
type AcquireStatus int

const (
	// AcquireGranted means the claim was confirmed by the post-write read.
	AcquireGranted AcquireStatus = iota

	// AcquireQueued means another user holds the resource and the
	// requester now occupies the waiter slot.
	AcquireQueued

	// AcquireAlreadyHeld means another user holds the resource and the
	// requester could not be queued (the waiter slot was taken).
	AcquireAlreadyHeld
)

// ChatMessage is the rendered result of a command, shaped after the
// chat platform's simple/attachment message split.
type ChatMessage struct {
	// Text is the primary message line.
	Text string

	// Body is an optional attachment body rendered below Text.
	Body string

	// Color is the attachment accent ("good", "danger", or empty).
	Color string
}
