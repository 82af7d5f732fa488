package lease

import "time"

// Time
const (
	// DefaultStoreCallTimeout bounds each store round trip. Expiry
	// surfaces to the caller as a store availability failure.
	DefaultStoreCallTimeout = 10 * time.Second

	// DefaultNotifyTimeout bounds the best-effort waiter notification
	// fired on release.
	DefaultNotifyTimeout = 5 * time.Second

	// DefaultRetryBaseDelay is the initial backoff after a failed store call.
	DefaultRetryBaseDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay caps the backoff between store retries.
	DefaultRetryMaxDelay = 2 * time.Second
)

// Capacity
const (
	// DefaultRetryAttempts is the store retry budget per logical call,
	// including the first attempt.
	DefaultRetryAttempts = 3
)

// Column layout of one board row. The order matches the spreadsheet the
// board has always been kept in; nothing outside the repository may
// depend on it.
const (
	colHolder = iota
	colResource
	colWaiter
	colAcquiredAt
)

// timeLayout encodes claim times. Nanosecond granularity keeps exact
// ties between competing claims rare; read order breaks the rest.
const timeLayout = time.RFC3339Nano
