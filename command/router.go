package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/sheetlease/lease"
	"github.com/example/sheetlease/logger"
	"github.com/example/sheetlease/types"
)

const (
	verbHelp       = "help"
	verbWhois      = "whois"
	verbDisconnect = "disconnect"
	verbClear      = "clear"

	colorGood   = "good"
	colorDanger = "danger"

	errorHeader   = "PSConnectedTo ERROR"
	whoisHeader   = "Who is currently connected"
	noConnections = "No one is currently connected to anyone"
	notConnected  = "You are not connected to anyone"
)

// Command is one inbound chat command: who sent it and the raw text
// following the slash command.
type Command struct {
	RequesterID types.UserID
	Text        string
}

// Router turns chat commands into coordinator calls and renders every
// outcome, including failures, as a chat message. It never returns an
// error: whatever happens, the requester gets an answer.
type Router struct {
	coord  lease.Coordinator
	logger logger.Logger
}

// NewRouter creates a Router dispatching to the given coordinator.
func NewRouter(coord lease.Coordinator, log logger.Logger) *Router {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Router{
		coord:  coord,
		logger: log.WithComponent("command"),
	}
}

// Handle dispatches on the first word of the command text. The verb is
// matched case-insensitively; anything that is not a known verb is
// treated as a connection name to claim.
func (r *Router) Handle(ctx context.Context, cmd Command) types.ChatMessage {
	tokens := strings.Fields(cmd.Text)
	verb := ""
	if len(tokens) > 0 {
		verb = strings.ToLower(tokens[0])
	}

	switch verb {
	case "", verbHelp:
		return usageMessage()
	case verbWhois:
		return r.whois(ctx)
	case verbDisconnect, verbClear:
		return r.disconnect(ctx, cmd.RequesterID)
	default:
		// Multi-word names are claimed as one resource, segments
		// joined the way they are written on the board.
		return r.connect(ctx, cmd.RequesterID, strings.Join(tokens, "/"))
	}
}

func usageMessage() types.ChatMessage {
	var b strings.Builder
	b.WriteString("Manage your connections from chat.")
	b.WriteString("\n`/connect <name>` marks you as connected to `<name>`")
	b.WriteString("\n`/connect whois` lists all current connections")
	b.WriteString("\n`/connect disconnect` releases your connection and notifies anyone waiting")
	b.WriteString("\n`/connect clear` same as disconnect")
	b.WriteString("\n`/connect help` shows this message")
	return types.ChatMessage{Text: b.String()}
}

func (r *Router) whois(ctx context.Context) types.ChatMessage {
	entries, err := r.coord.Inspect(ctx)
	if err != nil {
		return r.errorMessage("whois", err)
	}

	if len(entries) == 0 {
		return types.ChatMessage{Text: whoisHeader, Body: noConnections, Color: colorGood}
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		line := fmt.Sprintf("%s is connected to *%s*", e.Holder, e.Resource)
		if e.Waiter != "" {
			line += fmt.Sprintf(" (%s waiting)", e.Waiter)
		}
		lines = append(lines, line)
	}
	return types.ChatMessage{Text: whoisHeader, Body: strings.Join(lines, "\n"), Color: colorGood}
}

func (r *Router) disconnect(ctx context.Context, user types.UserID) types.ChatMessage {
	res, err := r.coord.Release(ctx, user)
	switch {
	case errors.Is(err, lease.ErrNotHolder):
		return types.ChatMessage{Text: notConnected}
	case errors.Is(err, lease.ErrInvalidUser):
		return usageMessage()
	case err != nil:
		return r.errorMessage("disconnect", err)
	}
	return types.ChatMessage{Text: "Now disconnected from " + res.Resource}
}

func (r *Router) connect(ctx context.Context, user types.UserID, resource string) types.ChatMessage {
	res, err := r.coord.Acquire(ctx, resource, user)
	switch {
	case errors.Is(err, lease.ErrInvalidResource), errors.Is(err, lease.ErrInvalidUser):
		return usageMessage()
	case err != nil:
		return r.errorMessage("connect", err)
	}

	switch res.Status {
	case types.AcquireGranted:
		return types.ChatMessage{Text: "Now Connected to " + res.Resource}
	case types.AcquireQueued:
		return types.ChatMessage{
			Text: fmt.Sprintf("%s is already connected to *%s*", res.Holder, res.Resource),
			Body: "You are next in line and will be notified when it is released.",
		}
	default:
		msg := types.ChatMessage{
			Text: fmt.Sprintf("%s is already connected to *%s*", res.Holder, res.Resource),
		}
		if res.Waiting {
			msg.Body = "You are next in line and will be notified when it is released."
		} else {
			msg.Body = "Someone else is already waiting for it."
		}
		return msg
	}
}

// errorMessage renders an operational failure without leaking internals.
func (r *Router) errorMessage(op string, err error) types.ChatMessage {
	r.logger.Errorw("command failed", "op", op, "error", err)

	body := "Something went wrong, please try again"
	if errors.Is(err, lease.ErrStoreUnavailable) {
		body = "Could not reach the connections sheet"
	}
	return types.ChatMessage{Text: errorHeader, Body: body, Color: colorDanger}
}
