package notify

import (
	"context"

	"github.com/example/sheetlease/types"
)

// Notifier delivers a short message directly to a user. Delivery is
// best-effort: callers log failures but never let them change the
// outcome of the operation that triggered the notification.
type Notifier interface {
	// Notify sends text to the given user.
	//
	// Returns:
	//   - nil if the message was handed to the transport.
	//   - A transport error otherwise; no retry is owed.
	Notify(ctx context.Context, user types.UserID, text string) error
}
