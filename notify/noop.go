package notify

import (
	"context"

	"github.com/example/sheetlease/types"
)

// NoOpNotifier is a Notifier that silently drops all notifications.
// NotifyFunc can be set to observe calls in tests.
type NoOpNotifier struct {
	NotifyFunc func(ctx context.Context, user types.UserID, text string) error
}

// Notify implements Notifier; it optionally calls NotifyFunc or discards the message.
func (n *NoOpNotifier) Notify(ctx context.Context, user types.UserID, text string) error {
	if n.NotifyFunc != nil {
		return n.NotifyFunc(ctx, user, text)
	}
	return nil
}

// NewNoOpNotifier returns a Notifier that discards all notifications.
// Can be type-asserted to *NoOpNotifier for injecting test behavior.
func NewNoOpNotifier() Notifier {
	return &NoOpNotifier{}
}
