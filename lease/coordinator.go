package lease

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/sheetlease/clock"
	"github.com/example/sheetlease/logger"
	"github.com/example/sheetlease/notify"
	"github.com/example/sheetlease/retry"
	"github.com/example/sheetlease/store"
	"github.com/example/sheetlease/types"
)

// coordinator provides a concrete implementation of the Coordinator
// interface. There is no in-process lock: several stateless instances
// may run against the same store, so every guarantee comes from the
// write-then-reread reconciliation protocol below.
type coordinator struct {
	repo     Repository
	notifier notify.Notifier
	config   CoordinatorConfig
	logger   logger.Logger
	metrics  Metrics
	clock    clock.Clock
}

// NewCoordinator creates a new Coordinator over the given repository
// with the provided options.
func NewCoordinator(repo Repository, opts ...CoordinatorOption) Coordinator {
	config := DefaultCoordinatorConfig()
	for _, opt := range opts {
		opt(&config)
	}

	if config.Logger == nil {
		config.Logger = logger.NewNoOpLogger()
	}
	if config.Metrics == nil {
		config.Metrics = NewNoOpMetrics()
	}
	if config.Clock == nil {
		config.Clock = clock.NewStandardClock()
	}
	if config.Notifier == nil {
		config.Notifier = notify.NewNoOpNotifier()
	}

	return &coordinator{
		repo:     repo,
		notifier: config.Notifier,
		config:   config,
		logger:   config.Logger.WithComponent("lease"),
		metrics:  config.Metrics,
		clock:    config.Clock,
	}
}

// Acquire implements Coordinator.
//
// Because the store has no compare-and-swap, the claim path writes,
// re-reads, and defers to whoever the reconciled read says won. The
// deterministic authority rule in FindByResource (earliest AcquiredAt,
// then read order) makes every observer agree on the same winner once
// both writes are visible, which is what keeps the resource from being
// granted twice.
func (c *coordinator) Acquire(ctx context.Context, resource string, requester types.UserID) (*AcquireResult, error) {
	name := types.NormalizeResource(resource)
	if name == "" {
		return nil, ErrInvalidResource
	}
	if requester == "" {
		return nil, ErrInvalidUser
	}

	log := c.logger.WithResource(name).WithUser(requester)

	start := c.clock.Now()
	res, err := c.acquireOnce(ctx, log, name, requester)
	if errors.Is(err, store.ErrStaleHandle) {
		// The row moved under us; recompute from a fresh read and redo
		// the whole logical operation once.
		log.Warnw("Stale handle during acquire, redoing")
		res, err = c.acquireOnce(ctx, log, name, requester)
	}
	c.metrics.ObserveAcquireLatency(c.clock.Since(start))

	if err != nil {
		return nil, c.convertErr(err)
	}

	c.metrics.IncrAcquire(name, res.Status)
	log.Debugw("Acquire resolved", "status", res.Status, "holder", res.Holder)
	return res, nil
}

// acquireOnce runs one pass of the reconciliation protocol.
func (c *coordinator) acquireOnce(ctx context.Context, log logger.Logger, name string, requester types.UserID) (*AcquireResult, error) {
	auth, authHandle, err := c.findByResource(ctx, name)
	if err != nil {
		return nil, err
	}

	// Truly unbound, or the requester re-claiming their own record.
	if auth == nil || auth.Holder == requester {
		return c.claim(ctx, log, name, requester, auth, authHandle)
	}

	// Held by someone else: take the waiter slot if it is free.
	if !auth.HasWaiter() {
		enrolled := *auth
		enrolled.Waiter = requester
		if err := c.update(ctx, authHandle, enrolled); err != nil {
			return nil, err
		}
		return &AcquireResult{
			Status:   types.AcquireQueued,
			Resource: name,
			Holder:   auth.Holder,
			Waiting:  true,
		}, nil
	}

	// Already in the slot: repeating the request changes nothing.
	if auth.Waiter == requester {
		return &AcquireResult{
			Status:   types.AcquireQueued,
			Resource: name,
			Holder:   auth.Holder,
			Waiting:  true,
		}, nil
	}

	return &AcquireResult{
		Status:   types.AcquireAlreadyHeld,
		Resource: name,
		Holder:   auth.Holder,
		Waiting:  false,
	}, nil
}

// claim writes the requester's record and confirms it against a fresh
// authoritative read.
func (c *coordinator) claim(ctx context.Context, log logger.Logger, name string, requester types.UserID, existing *types.LeaseRecord, existingHandle types.RowHandle) (*AcquireResult, error) {
	rec := types.LeaseRecord{
		Resource:   name,
		Holder:     requester,
		AcquiredAt: c.clock.Now(),
	}

	if existing != nil {
		// Idempotent re-claim rewrites the requester's own record in place.
		if err := c.update(ctx, existingHandle, rec); err != nil {
			return nil, err
		}
	} else {
		// Reuse the requester's unbound slot from a prior release, if any.
		slot, slotHandle, err := c.findByUser(ctx, requester)
		if err != nil {
			return nil, err
		}
		if slot != nil && !slot.Bound() {
			if err := c.update(ctx, slotHandle, rec); err != nil {
				return nil, err
			}
		} else {
			if _, err := c.append(ctx, rec); err != nil {
				return nil, err
			}
		}
	}

	// Reconcile: whoever the re-read designates holds the name.
	winner, winnerHandle, err := c.findByResource(ctx, name)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		return nil, fmt.Errorf("%w: claim not visible on re-read", ErrStoreUnavailable)
	}

	if winner.Holder == requester {
		return &AcquireResult{
			Status:   types.AcquireGranted,
			Resource: name,
			Holder:   requester,
		}, nil
	}

	// Demoted: a concurrent writer won the tie-break. The requester's own
	// write stays behind as a row with no authority; enroll them as the
	// winner's waiter if the slot is free.
	c.metrics.IncrDemotedClaim(name)
	log.Infow("Claim demoted by concurrent writer", "winner", winner.Holder)

	if !winner.HasWaiter() {
		enrolled := *winner
		enrolled.Waiter = requester
		if err := c.update(ctx, winnerHandle, enrolled); err != nil {
			return nil, err
		}
		return &AcquireResult{
			Status:   types.AcquireAlreadyHeld,
			Resource: name,
			Holder:   winner.Holder,
			Waiting:  true,
		}, nil
	}

	return &AcquireResult{
		Status:   types.AcquireAlreadyHeld,
		Resource: name,
		Holder:   winner.Holder,
		Waiting:  winner.Waiter == requester,
	}, nil
}

// Release implements Coordinator.
func (c *coordinator) Release(ctx context.Context, requester types.UserID) (*ReleaseResult, error) {
	if requester == "" {
		return nil, ErrInvalidUser
	}

	log := c.logger.WithUser(requester)

	start := c.clock.Now()
	res, err := c.releaseOnce(ctx, requester)
	if errors.Is(err, store.ErrStaleHandle) {
		log.Warnw("Stale handle during release, redoing")
		res, err = c.releaseOnce(ctx, requester)
	}
	c.metrics.ObserveReleaseLatency(c.clock.Since(start))

	if err != nil {
		if !errors.Is(err, ErrNotHolder) {
			return nil, c.convertErr(err)
		}
		c.metrics.IncrRelease("", false)
		return nil, err
	}

	c.metrics.IncrRelease(res.Resource, true)
	log.WithResource(res.Resource).Debugw("Release resolved", "notified", res.NotifiedWaiter)
	return res, nil
}

func (c *coordinator) releaseOnce(ctx context.Context, requester types.UserID) (*ReleaseResult, error) {
	rec, _, err := c.findByUser(ctx, requester)
	if err != nil {
		return nil, err
	}
	if rec == nil || !rec.Bound() {
		return nil, ErrNotHolder
	}

	// Only the authoritative record grants release rights; a row that
	// lost its claim race carries none.
	auth, authHandle, err := c.findByResource(ctx, rec.Resource)
	if err != nil {
		return nil, err
	}
	if auth == nil || auth.Holder != requester {
		return nil, ErrNotHolder
	}

	waiter := auth.Waiter

	// The slot stays addressed to the requester; the binding is cleared.
	cleared := types.LeaseRecord{Holder: requester}
	if err := c.update(ctx, authHandle, cleared); err != nil {
		return nil, err
	}

	res := &ReleaseResult{Resource: auth.Resource}
	if waiter != "" {
		res.NotifiedWaiter = waiter
		c.notifyWaiter(waiter, requester, auth.Resource)
	}
	return res, nil
}

// notifyWaiter dispatches the best-effort notification fired on release.
// It runs on its own bounded context: the release is already committed,
// so caller cancellation must not reach the notifier, and a slow
// transport must not stall the outcome past the configured bound.
func (c *coordinator) notifyWaiter(waiter, holder types.UserID, resource string) {
	nctx, cancel := context.WithTimeout(context.Background(), c.config.NotifyTimeout)
	defer cancel()

	text := fmt.Sprintf("%s is now disconnected from %s", holder, resource)
	if err := c.notifier.Notify(nctx, waiter, text); err != nil {
		c.logger.WithResource(resource).WithUser(waiter).
			Warnw("Waiter notification failed", "error", err)
		c.metrics.IncrNotify(false)
		return
	}
	c.metrics.IncrNotify(true)
}

// Inspect implements Coordinator.
func (c *coordinator) Inspect(ctx context.Context) ([]InspectEntry, error) {
	records, err := retry.DoWithResult(ctx, c.config.Retry, func() ([]types.LeaseRecord, error) {
		return c.repo.ListAll(ctx)
	})
	if err != nil {
		return nil, c.convertErr(err)
	}

	// Reconcile duplicates so each name appears once, represented by its
	// authoritative record. Order follows the first appearance of a name.
	entries := make([]InspectEntry, 0, len(records))
	index := make(map[string]int, len(records))
	for _, rec := range records {
		if !rec.Bound() {
			continue
		}
		key := types.NormalizeResource(rec.Resource)
		if at, seen := index[key]; seen {
			if rec.AcquiredAt.Before(entries[at].AcquiredAt) {
				entries[at] = inspectEntryOf(rec)
			}
			continue
		}
		index[key] = len(entries)
		entries = append(entries, inspectEntryOf(rec))
	}
	return entries, nil
}

func inspectEntryOf(rec types.LeaseRecord) InspectEntry {
	return InspectEntry{
		Resource:   rec.Resource,
		Holder:     rec.Holder,
		AcquiredAt: rec.AcquiredAt,
		Waiter:     rec.Waiter,
	}
}

// convertErr folds store failures into the coordinator's error kinds so
// nothing unwinds past this boundary as a raw transport error.
func (c *coordinator) convertErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidResource),
		errors.Is(err, ErrInvalidUser),
		errors.Is(err, ErrNotHolder),
		errors.Is(err, ErrStoreUnavailable):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	case errors.Is(err, store.ErrUnavailable), errors.Is(err, store.ErrStaleHandle):
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}

// Store access with the configured retry budget. Only transient
// unavailability is retryable; everything else surfaces immediately.

type found struct {
	rec    *types.LeaseRecord
	handle types.RowHandle
}

func (c *coordinator) findByResource(ctx context.Context, name string) (*types.LeaseRecord, types.RowHandle, error) {
	res, err := retry.DoWithResult(ctx, c.config.Retry, func() (found, error) {
		rec, handle, err := c.repo.FindByResource(ctx, name)
		return found{rec: rec, handle: handle}, err
	})
	return res.rec, res.handle, err
}

func (c *coordinator) findByUser(ctx context.Context, user types.UserID) (*types.LeaseRecord, types.RowHandle, error) {
	res, err := retry.DoWithResult(ctx, c.config.Retry, func() (found, error) {
		rec, handle, err := c.repo.FindByUser(ctx, user)
		return found{rec: rec, handle: handle}, err
	})
	return res.rec, res.handle, err
}

func (c *coordinator) append(ctx context.Context, rec types.LeaseRecord) (types.RowHandle, error) {
	return retry.DoWithResult(ctx, c.config.Retry, func() (types.RowHandle, error) {
		return c.repo.Append(ctx, rec)
	})
}

func (c *coordinator) update(ctx context.Context, handle types.RowHandle, rec types.LeaseRecord) error {
	return retry.Do(ctx, c.config.Retry, func() error {
		return c.repo.Update(ctx, handle, rec)
	})
}
