package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/sheetlease/types"
)

// MemoryStore is an in-process RowStore used for local runs and tests.
// It preserves the adapter's contract (stable row order, append-only
// growth, no cross-call atomicity) without a network round trip.
type MemoryStore struct {
	mu   sync.RWMutex
	rows [][]string

	// failNext forces the next n calls to fail with ErrUnavailable,
	// letting tests exercise the retry path.
	failNext int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// FailNext makes the next n store calls fail with ErrUnavailable.
func (s *MemoryStore) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = n
}

// takeFailure consumes one forced failure if any are pending.
// Caller must hold the write lock.
func (s *MemoryStore) takeFailure() bool {
	if s.failNext > 0 {
		s.failNext--
		return true
	}
	return false
}

// ListRows implements RowStore.
func (s *MemoryStore) ListRows(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.takeFailure() {
		return nil, fmt.Errorf("%w: injected failure", ErrUnavailable)
	}

	out := make([][]string, len(s.rows))
	for i, row := range s.rows {
		cp := make([]string, len(row))
		copy(cp, row)
		out[i] = padRow(cp)
	}
	return out, nil
}

// AppendRow implements RowStore.
func (s *MemoryStore) AppendRow(ctx context.Context, row []string) (types.RowHandle, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.takeFailure() {
		return 0, fmt.Errorf("%w: injected failure", ErrUnavailable)
	}

	cp := make([]string, len(row))
	copy(cp, row)
	s.rows = append(s.rows, padRow(cp))
	return types.RowHandle(len(s.rows) - 1), nil
}

// UpdateRow implements RowStore.
func (s *MemoryStore) UpdateRow(ctx context.Context, handle types.RowHandle, row []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.takeFailure() {
		return fmt.Errorf("%w: injected failure", ErrUnavailable)
	}

	if handle < 0 || int(handle) >= len(s.rows) {
		return fmt.Errorf("%w: row %d of %d", ErrStaleHandle, handle, len(s.rows))
	}

	cp := make([]string, len(row))
	copy(cp, row)
	s.rows[handle] = padRow(cp)
	return nil
}
