package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/slack-go/slack"

	"github.com/example/sheetlease/clock"
	"github.com/example/sheetlease/command"
	"github.com/example/sheetlease/logger"
	"github.com/example/sheetlease/types"
)

// invalidTokenText answers requests whose verification token does not match.
const invalidTokenText = "Invalid Credentials. Seek Admin Help"

// SlashServer exposes the command router over HTTP in the shape the chat
// platform expects: an urlencoded POST per slash command, answered with an
// ephemeral JSON message. Failures are answered in-band so the requester
// always sees something readable.
type SlashServer struct {
	cfg     Config
	router  *command.Router
	logger  logger.Logger
	metrics ServerMetrics
	limiter RateLimiter
	clock   clock.Clock

	handler    http.Handler
	httpServer *http.Server
	started    atomic.Bool
}

// Option applies a configuration setting to a SlashServer during initialization.
type Option func(*SlashServer)

// WithLogger sets the logger for request and lifecycle events.
func WithLogger(l logger.Logger) Option {
	return func(s *SlashServer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m ServerMetrics) Option {
	return func(s *SlashServer) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithRateLimiter overrides the rate limiter built from the config.
func WithRateLimiter(rl RateLimiter) Option {
	return func(s *SlashServer) {
		s.limiter = rl
	}
}

// WithClock sets the clock used for latency observations.
func WithClock(cl clock.Clock) Option {
	return func(s *SlashServer) {
		if cl != nil {
			s.clock = cl
		}
	}
}

// NewSlashServer creates a server answering slash commands through the given
// router. The configuration is validated up front.
func NewSlashServer(cfg Config, router *command.Router, opts ...Option) (*SlashServer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if router == nil {
		return nil, NewConfigError("command router cannot be nil")
	}

	s := &SlashServer{
		cfg:     cfg,
		router:  router,
		logger:  logger.NewNoOpLogger(),
		metrics: NewNoOpServerMetrics(),
		clock:   clock.NewStandardClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("server")

	if s.limiter == nil && cfg.EnableRateLimit {
		s.limiter = NewTokenBucketRateLimiter(
			cfg.RateLimit, cfg.RateLimitBurst, cfg.RateLimitWindow.Std(), s.logger)
	}

	r := mux.NewRouter()
	r.HandleFunc(CommandPath, s.handleCommand).Methods(http.MethodPost)
	r.HandleFunc(HealthPath, s.handleHealth).Methods(http.MethodGet)
	s.handler = r

	return s, nil
}

// Handler returns the HTTP handler serving all routes.
func (s *SlashServer) Handler() http.Handler {
	return s.handler
}

// Start binds the listen address and begins serving in the background.
func (s *SlashServer) Start() error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrServerAlreadyStarted
	}

	ln, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		s.started.Store(false)
		return fmt.Errorf("binding %s: %w", s.cfg.ListenAddress, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorw("server terminated", "error", err)
		}
	}()

	s.logger.Infow("server listening", "address", ln.Addr().String())
	return nil
}

// Stop gracefully shuts the server down, letting in-flight commands finish
// until the context deadline.
func (s *SlashServer) Stop(ctx context.Context) error {
	if !s.started.Load() {
		return ErrServerNotStarted
	}
	s.logger.Infow("server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *SlashServer) handleCommand(w http.ResponseWriter, r *http.Request) {
	start := s.clock.Now()
	reqID := uuid.NewString()
	log := s.logger.With("request_id", reqID)

	if s.limiter != nil && !s.limiter.Allow() {
		s.metrics.IncrRateLimited()
		log.Warnw("request rate limited", "remote", r.RemoteAddr)
		s.writeMessage(w, log, types.ChatMessage{
			Text:  "Too many requests, please try again shortly",
			Color: "danger",
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		log.Warnw("malformed form body", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	token := r.PostFormValue(formFieldToken)
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.VerificationToken)) != 1 {
		s.metrics.IncrAuthFailure()
		log.Warnw("verification token mismatch", "remote", r.RemoteAddr)
		s.writeMessage(w, log, types.ChatMessage{Text: invalidTokenText, Color: "danger"})
		return
	}

	user := types.UserID(r.PostFormValue(formFieldUserName))
	text := r.PostFormValue(formFieldText)
	verb := requestVerb(text)

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout.Std())
	defer cancel()

	msg := s.router.Handle(ctx, command.Command{RequesterID: user, Text: text})

	s.writeMessage(w, log, msg)
	s.metrics.IncrRequest(verb)
	s.metrics.ObserveRequestLatency(s.clock.Since(start))
	log.Debugw("command handled", "verb", verb, "user", user)
}

func (s *SlashServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// writeMessage encodes a chat message in the response format the platform
// renders: top-level text plus an optional colored attachment.
func (s *SlashServer) writeMessage(w http.ResponseWriter, log logger.Logger, msg types.ChatMessage) {
	payload := slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         msg.Text,
	}
	if msg.Body != "" || msg.Color != "" {
		payload.Attachments = []slack.Attachment{{
			Text:       msg.Body,
			Color:      msg.Color,
			MarkdownIn: []string{"text", "pretext"},
		}}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Errorw("encoding response", "error", err)
	}
}

// requestVerb classifies the command text for metrics labels.
func requestVerb(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "help"
	}
	switch v := strings.ToLower(fields[0]); v {
	case "help", "whois", "disconnect", "clear":
		return v
	default:
		return "connect"
	}
}
