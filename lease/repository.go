package lease

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/sheetlease/logger"
	"github.com/example/sheetlease/store"
	"github.com/example/sheetlease/types"
)

// rowRepository implements Repository over a store.RowStore.
type rowRepository struct {
	store       store.RowStore
	callTimeout time.Duration
	logger      logger.Logger
}

// NewRepository returns a Repository over the given row store. Each
// store round trip is bounded by callTimeout; zero or negative selects
// DefaultStoreCallTimeout.
func NewRepository(rs store.RowStore, callTimeout time.Duration, log logger.Logger) Repository {
	if callTimeout <= 0 {
		callTimeout = DefaultStoreCallTimeout
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &rowRepository{
		store:       rs,
		callTimeout: callTimeout,
		logger:      log.WithComponent("repository"),
	}
}

// entry pairs a decoded record with the row position it came from.
type entry struct {
	handle types.RowHandle
	rec    types.LeaseRecord
}

// encodeRecord lays a record out in board column order. A zero
// AcquiredAt encodes as an empty cell.
func encodeRecord(rec types.LeaseRecord) []string {
	row := make([]string, store.RowWidth)
	row[colHolder] = string(rec.Holder)
	row[colResource] = rec.Resource
	row[colWaiter] = string(rec.Waiter)
	if !rec.AcquiredAt.IsZero() {
		row[colAcquiredAt] = rec.AcquiredAt.Format(timeLayout)
	}
	return row
}

// decodeRecord parses one padded row. ok is false when the acquired-at
// cell is present but unparseable; such rows must not compete for
// authority, or a corrupt cell could steal a resource.
func decodeRecord(row []string) (types.LeaseRecord, bool) {
	rec := types.LeaseRecord{
		Holder:   types.UserID(row[colHolder]),
		Resource: row[colResource],
		Waiter:   types.UserID(row[colWaiter]),
	}
	if cell := row[colAcquiredAt]; cell != "" {
		t, err := time.Parse(timeLayout, cell)
		if err != nil {
			return rec, false
		}
		rec.AcquiredAt = t
	}
	return rec, true
}

// withTimeout derives the per-call store deadline.
func (r *rowRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.callTimeout)
}

// mapErr folds per-call deadline expiry into the transient store error
// so callers see one retryable failure kind.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return err
}

// readAll lists and decodes the whole board.
func (r *rowRepository) readAll(ctx context.Context) ([]entry, error) {
	cctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.store.ListRows(cctx)
	if err != nil {
		return nil, mapErr(err)
	}

	entries := make([]entry, 0, len(rows))
	for i, row := range rows {
		rec, ok := decodeRecord(row)
		if !ok {
			r.logger.Warnw("Skipping row with unparseable claim time", "row", i, "cell", row[colAcquiredAt])
			continue
		}
		entries = append(entries, entry{handle: types.RowHandle(i), rec: rec})
	}
	return entries, nil
}

// ListAll implements Repository.
func (r *rowRepository) ListAll(ctx context.Context) ([]types.LeaseRecord, error) {
	entries, err := r.readAll(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]types.LeaseRecord, len(entries))
	for i, e := range entries {
		records[i] = e.rec
	}
	return records, nil
}

// FindByResource implements Repository. Strictly-earlier comparison
// keeps the earliest read position on exact timestamp ties.
func (r *rowRepository) FindByResource(ctx context.Context, name string) (*types.LeaseRecord, types.RowHandle, error) {
	entries, err := r.readAll(ctx)
	if err != nil {
		return nil, 0, err
	}

	var best *entry
	for i := range entries {
		e := &entries[i]
		if !e.rec.Bound() || !types.SameResource(e.rec.Resource, name) {
			continue
		}
		if best == nil || e.rec.AcquiredAt.Before(best.rec.AcquiredAt) {
			best = e
		}
	}
	if best == nil {
		return nil, 0, nil
	}

	rec := best.rec
	return &rec, best.handle, nil
}

// FindByUser implements Repository.
func (r *rowRepository) FindByUser(ctx context.Context, user types.UserID) (*types.LeaseRecord, types.RowHandle, error) {
	entries, err := r.readAll(ctx)
	if err != nil {
		return nil, 0, err
	}

	var bound *entry
	var slot *entry
	for i := range entries {
		e := &entries[i]
		if e.rec.Holder != user {
			continue
		}
		if e.rec.Bound() {
			// Most recent claim wins; later position breaks ties.
			if bound == nil || !e.rec.AcquiredAt.Before(bound.rec.AcquiredAt) {
				bound = e
			}
		} else if slot == nil {
			slot = e
		}
	}

	pick := bound
	if pick == nil {
		pick = slot
	}
	if pick == nil {
		return nil, 0, nil
	}

	rec := pick.rec
	return &rec, pick.handle, nil
}

// Append implements Repository.
func (r *rowRepository) Append(ctx context.Context, rec types.LeaseRecord) (types.RowHandle, error) {
	cctx, cancel := r.withTimeout(ctx)
	defer cancel()

	handle, err := r.store.AppendRow(cctx, encodeRecord(rec))
	if err != nil {
		return 0, mapErr(err)
	}
	return handle, nil
}

// Update implements Repository.
func (r *rowRepository) Update(ctx context.Context, handle types.RowHandle, rec types.LeaseRecord) error {
	cctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return mapErr(r.store.UpdateRow(cctx, handle, encodeRecord(rec)))
}
