package command

import (
	"context"
	"testing"
	"time"

	"github.com/example/sheetlease/lease"
	"github.com/example/sheetlease/logger"
	"github.com/example/sheetlease/store"
	"github.com/example/sheetlease/testutil"
	"github.com/example/sheetlease/types"
)

// stubCoordinator lets tests script coordinator outcomes directly.
type stubCoordinator struct {
	acquire func(ctx context.Context, resource string, requester types.UserID) (*lease.AcquireResult, error)
	release func(ctx context.Context, requester types.UserID) (*lease.ReleaseResult, error)
	inspect func(ctx context.Context) ([]lease.InspectEntry, error)
}

func (s *stubCoordinator) Acquire(ctx context.Context, resource string, requester types.UserID) (*lease.AcquireResult, error) {
	return s.acquire(ctx, resource, requester)
}

func (s *stubCoordinator) Release(ctx context.Context, requester types.UserID) (*lease.ReleaseResult, error) {
	return s.release(ctx, requester)
}

func (s *stubCoordinator) Inspect(ctx context.Context) ([]lease.InspectEntry, error) {
	return s.inspect(ctx)
}

// newBoardRouter wires a Router over a real coordinator and in-memory
// store, so wordings are tested against observable lease behavior.
func newBoardRouter(t *testing.T) (*Router, lease.Coordinator) {
	t.Helper()
	repo := lease.NewRepository(store.NewMemoryStore(), time.Second, logger.NewNoOpLogger())
	coord := lease.NewCoordinator(repo, lease.WithLogger(logger.NewNoOpLogger()))
	return NewRouter(coord, logger.NewNoOpLogger()), coord
}

func TestRouter_HelpAndEmptyText(t *testing.T) {
	r, _ := newBoardRouter(t)

	for _, text := range []string{"", "   ", "help", "HELP"} {
		msg := r.Handle(context.Background(), Command{RequesterID: "alice", Text: text})
		testutil.AssertContains(t, msg.Text, "/connect whois")
		testutil.AssertContains(t, msg.Text, "/connect disconnect")
	}
}

func TestRouter_ConnectGranted(t *testing.T) {
	r, _ := newBoardRouter(t)

	msg := r.Handle(context.Background(), Command{RequesterID: "alice", Text: "printer"})
	testutil.AssertEqual(t, "Now Connected to printer", msg.Text)
	testutil.AssertEqual(t, "", msg.Color)
}

func TestRouter_ConnectJoinsMultiWordNames(t *testing.T) {
	r, _ := newBoardRouter(t)

	msg := r.Handle(context.Background(), Command{RequesterID: "alice", Text: "build lab"})
	testutil.AssertEqual(t, "Now Connected to build/lab", msg.Text)
}

func TestRouter_ConnectQueuedBehindHolder(t *testing.T) {
	r, _ := newBoardRouter(t)
	ctx := context.Background()

	_ = r.Handle(ctx, Command{RequesterID: "alice", Text: "printer"})

	msg := r.Handle(ctx, Command{RequesterID: "bob", Text: "Printer"})
	testutil.AssertEqual(t, "alice is already connected to *printer*", msg.Text)
	testutil.AssertContains(t, msg.Body, "next in line")
}

func TestRouter_ConnectWaiterSlotTaken(t *testing.T) {
	r, _ := newBoardRouter(t)
	ctx := context.Background()

	_ = r.Handle(ctx, Command{RequesterID: "alice", Text: "printer"})
	_ = r.Handle(ctx, Command{RequesterID: "bob", Text: "printer"})

	msg := r.Handle(ctx, Command{RequesterID: "carol", Text: "printer"})
	testutil.AssertEqual(t, "alice is already connected to *printer*", msg.Text)
	testutil.AssertContains(t, msg.Body, "already waiting")
}

func TestRouter_WhoisEmptyBoard(t *testing.T) {
	r, _ := newBoardRouter(t)

	msg := r.Handle(context.Background(), Command{RequesterID: "alice", Text: "whois"})
	testutil.AssertEqual(t, "Who is currently connected", msg.Text)
	testutil.AssertEqual(t, "No one is currently connected to anyone", msg.Body)
	testutil.AssertEqual(t, "good", msg.Color)
}

func TestRouter_WhoisListsConnectionsAndWaiter(t *testing.T) {
	r, _ := newBoardRouter(t)
	ctx := context.Background()

	_ = r.Handle(ctx, Command{RequesterID: "alice", Text: "printer"})
	_ = r.Handle(ctx, Command{RequesterID: "bob", Text: "printer"})
	_ = r.Handle(ctx, Command{RequesterID: "carol", Text: "lab-3"})

	msg := r.Handle(ctx, Command{RequesterID: "dave", Text: "WHOIS"})
	testutil.AssertEqual(t, "Who is currently connected", msg.Text)
	testutil.AssertContains(t, msg.Body, "alice is connected to *printer* (bob waiting)")
	testutil.AssertContains(t, msg.Body, "carol is connected to *lab-3*")
	testutil.AssertEqual(t, "good", msg.Color)
}

func TestRouter_DisconnectNotConnected(t *testing.T) {
	r, _ := newBoardRouter(t)

	msg := r.Handle(context.Background(), Command{RequesterID: "alice", Text: "disconnect"})
	testutil.AssertEqual(t, "You are not connected to anyone", msg.Text)
}

func TestRouter_DisconnectReleasesConnection(t *testing.T) {
	r, _ := newBoardRouter(t)
	ctx := context.Background()

	_ = r.Handle(ctx, Command{RequesterID: "alice", Text: "printer"})

	msg := r.Handle(ctx, Command{RequesterID: "alice", Text: "Disconnect"})
	testutil.AssertEqual(t, "Now disconnected from printer", msg.Text)

	// clear is an alias and now finds nothing to release.
	msg = r.Handle(ctx, Command{RequesterID: "alice", Text: "clear"})
	testutil.AssertEqual(t, "You are not connected to anyone", msg.Text)
}

func TestRouter_StoreFailureRendersError(t *testing.T) {
	stub := &stubCoordinator{
		acquire: func(context.Context, string, types.UserID) (*lease.AcquireResult, error) {
			return nil, lease.ErrStoreUnavailable
		},
		release: func(context.Context, types.UserID) (*lease.ReleaseResult, error) {
			return nil, lease.ErrStoreUnavailable
		},
		inspect: func(context.Context) ([]lease.InspectEntry, error) {
			return nil, lease.ErrStoreUnavailable
		},
	}
	r := NewRouter(stub, logger.NewNoOpLogger())
	ctx := context.Background()

	for _, text := range []string{"printer", "whois", "disconnect"} {
		msg := r.Handle(ctx, Command{RequesterID: "alice", Text: text})
		testutil.AssertEqual(t, "PSConnectedTo ERROR", msg.Text)
		testutil.AssertEqual(t, "Could not reach the connections sheet", msg.Body)
		testutil.AssertEqual(t, "danger", msg.Color)
	}
}

func TestRouter_InvalidRequesterGetsUsage(t *testing.T) {
	r, _ := newBoardRouter(t)

	msg := r.Handle(context.Background(), Command{RequesterID: "", Text: "printer"})
	testutil.AssertContains(t, msg.Text, "/connect help")
}
