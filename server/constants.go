package server

import "time"

const (
	// --- Default server configuration values ---

	// DefaultListenAddress is the default bind address for the HTTP listener.
	DefaultListenAddress = "0.0.0.0:8080"

	// DefaultRequestTimeout is the default timeout for handling one slash command.
	DefaultRequestTimeout = 10 * time.Second

	// DefaultShutdownTimeout is the default timeout for graceful server shutdown.
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultReadHeaderTimeout bounds how long a client may take to send headers.
	DefaultReadHeaderTimeout = 5 * time.Second

	// --- Rate limiting defaults ---

	// DefaultRateLimit is the default number of requests allowed per window.
	DefaultRateLimit = 30

	// DefaultRateLimitBurst is the default burst size for rate limiting.
	DefaultRateLimitBurst = 10

	// DefaultRateLimitWindow is the default time window for rate limiting calculations.
	DefaultRateLimitWindow = time.Minute

	// --- Routes ---

	// CommandPath is where the chat platform posts slash commands.
	CommandPath = "/"

	// HealthPath answers liveness probes.
	HealthPath = "/healthz"

	// --- Form fields posted by the chat platform ---

	formFieldToken    = "token"
	formFieldUserName = "user_name"
	formFieldText     = "text"
)
