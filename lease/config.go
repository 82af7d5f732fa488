package lease

import (
	"time"

	"github.com/example/sheetlease/clock"
	"github.com/example/sheetlease/logger"
	"github.com/example/sheetlease/notify"
	"github.com/example/sheetlease/retry"
	"github.com/example/sheetlease/store"
)

// CoordinatorOption defines a function that applies a configuration setting
// to a Coordinator during initialization.
type CoordinatorOption func(*CoordinatorConfig)

// CoordinatorConfig holds configuration parameters for a Coordinator instance.
type CoordinatorConfig struct {
	// Retry governs how store failures are retried. Only transient
	// store unavailability is retried; stale handles trigger a single
	// transparent redo of the whole logical operation instead.
	Retry retry.Config

	// NotifyTimeout bounds the best-effort waiter notification.
	NotifyTimeout time.Duration

	Notifier notify.Notifier
	Logger   logger.Logger
	Metrics  Metrics
	Clock    clock.Clock
}

// DefaultCoordinatorConfig returns a CoordinatorConfig with sensible defaults
// based on the predefined constants.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		Retry: retry.Config{
			MaxAttempts:     DefaultRetryAttempts,
			BaseDelay:       DefaultRetryBaseDelay,
			MaxDelay:        DefaultRetryMaxDelay,
			Multiplier:      2.0,
			Jitter:          0.1,
			RetryableErrors: []error{store.ErrUnavailable},
		},
		NotifyTimeout: DefaultNotifyTimeout,
	}
}

// WithRetryConfig sets the retry policy for store operations.
func WithRetryConfig(cfg retry.Config) CoordinatorOption {
	return func(c *CoordinatorConfig) {
		if cfg.MaxAttempts > 0 {
			c.Retry = cfg
		}
	}
}

// WithNotifyTimeout bounds the waiter notification dispatched on release.
func WithNotifyTimeout(timeout time.Duration) CoordinatorOption {
	return func(c *CoordinatorConfig) {
		if timeout > 0 {
			c.NotifyTimeout = timeout
		}
	}
}

// WithNotifier sets the notifier informed when a held resource frees up.
func WithNotifier(n notify.Notifier) CoordinatorOption {
	return func(c *CoordinatorConfig) {
		if n != nil {
			c.Notifier = n
		}
	}
}

// WithLogger sets the logger for internal events.
func WithLogger(l logger.Logger) CoordinatorOption {
	return func(c *CoordinatorConfig) {
		if l != nil {
			c.Logger = l
		}
	}
}

// WithMetrics sets the metrics collector for operational data.
func WithMetrics(m Metrics) CoordinatorOption {
	return func(c *CoordinatorConfig) {
		if m != nil {
			c.Metrics = m
		}
	}
}

// WithClock sets the clock used for claim timestamps.
func WithClock(cl clock.Clock) CoordinatorOption {
	return func(c *CoordinatorConfig) {
		if cl != nil {
			c.Clock = cl
		}
	}
}
