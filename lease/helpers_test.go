package lease

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/sheetlease/retry"
	"github.com/example/sheetlease/store"
	"github.com/example/sheetlease/types"
)

type mockClock struct {
	mu          sync.Mutex
	currentTime time.Time
}

func newMockClock() *mockClock {
	return &mockClock{currentTime: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (m *mockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Each observation advances the clock so consecutive claims never tie.
	m.currentTime = m.currentTime.Add(time.Microsecond)
	return m.currentTime
}

func (m *mockClock) Since(t time.Time) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentTime.Sub(t)
}

func (m *mockClock) Sleep(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
}

func (m *mockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
}

// recordingNotifier captures notification calls for assertions.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []notification
	err   error
}

type notification struct {
	user types.UserID
	text string
}

func (n *recordingNotifier) Notify(ctx context.Context, user types.UserID, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notification{user: user, text: text})
	return n.err
}

func (n *recordingNotifier) notifications() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notification, len(n.calls))
	copy(out, n.calls)
	return out
}

// fastRetry keeps test runs quick while preserving the retry policy.
func fastRetry() retry.Config {
	return retry.Config{
		MaxAttempts:     DefaultRetryAttempts,
		BaseDelay:       time.Millisecond,
		MaxDelay:        2 * time.Millisecond,
		Multiplier:      2.0,
		RetryableErrors: []error{store.ErrUnavailable},
	}
}

// hookStore wraps a RowStore and runs afterAppend once, right after the
// first successful append. Tests use it to interleave a competing write
// into the window between a claim's write and its confirming re-read.
// It can also make the next updates fail with a stale handle, as if the
// targeted row moved between the read and the write.
type hookStore struct {
	store.RowStore
	mu           sync.Mutex
	afterAppend  func()
	fired        bool
	staleUpdates int
	updateCalls  int
}

// failUpdatesWithStale makes the next n UpdateRow calls fail with
// store.ErrStaleHandle without touching the underlying rows.
func (h *hookStore) failUpdatesWithStale(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.staleUpdates = n
}

func (h *hookStore) updates() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.updateCalls
}

func (h *hookStore) UpdateRow(ctx context.Context, handle types.RowHandle, row []string) error {
	h.mu.Lock()
	h.updateCalls++
	stale := h.staleUpdates > 0
	if stale {
		h.staleUpdates--
	}
	h.mu.Unlock()

	if stale {
		return fmt.Errorf("%w: row moved", store.ErrStaleHandle)
	}
	return h.RowStore.UpdateRow(ctx, handle, row)
}

func (h *hookStore) AppendRow(ctx context.Context, row []string) (types.RowHandle, error) {
	handle, err := h.RowStore.AppendRow(ctx, row)
	if err != nil {
		return handle, err
	}

	h.mu.Lock()
	hook := h.afterAppend
	fired := h.fired
	h.fired = true
	h.mu.Unlock()

	if hook != nil && !fired {
		hook()
	}
	return handle, nil
}
