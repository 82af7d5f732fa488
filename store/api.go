package store

import (
	"context"

	"github.com/example/sheetlease/types"
)

// RowWidth is the number of cells in one board row:
// [holder, resource, waiter, acquiredAt]. What each cell means is the
// repository's concern; the adapter only moves rows of this width.
const RowWidth = 4

// RowStore defines the interface to the tabular backing store holding the
// connection board. Implementations must be safe for concurrent use and
// support context-aware operations for proper cancellation and timeout
// handling.
//
// The store offers no atomicity across calls: there are no transactions,
// no compare-and-swap, and no row-level locking. Row order within one
// ListRows call is stable, but the position an AppendRow lands at is not
// guaranteed to reflect arrival order relative to concurrent appends from
// other callers. Every check-then-act sequence built on this interface is
// a race window; callers own reconciliation.
type RowStore interface {
	// ListRows returns every row in the data region, in stable store order.
	// Rows are padded to RowWidth cells.
	//
	// Returns:
	//   - An empty slice (not an error) if the store has no rows yet.
	//   - ErrUnavailable if the backing store cannot be reached.
	//   - context.Canceled or context.DeadlineExceeded if the context is canceled or expired.
	ListRows(ctx context.Context) ([][]string, error)

	// AppendRow adds a row after the current data region and returns a
	// handle to the position it landed at.
	//
	// Returns:
	//   - ErrUnavailable if the backing store cannot be reached.
	//   - context.Canceled or context.DeadlineExceeded if the context is canceled or expired.
	AppendRow(ctx context.Context, row []string) (types.RowHandle, error)

	// UpdateRow overwrites the row at the given handle.
	//
	// Returns:
	//   - ErrStaleHandle if no row exists at that position.
	//   - ErrUnavailable if the backing store cannot be reached.
	//   - context.Canceled or context.DeadlineExceeded if the context is canceled or expired.
	UpdateRow(ctx context.Context, handle types.RowHandle, row []string) error
}

// padRow returns row extended with empty cells up to RowWidth.
// Rows read back from the sheet may be ragged when trailing cells are empty.
func padRow(row []string) []string {
	if len(row) >= RowWidth {
		return row[:RowWidth]
	}
	padded := make([]string, RowWidth)
	copy(padded, row)
	return padded
}
