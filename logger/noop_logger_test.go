package logger

import "testing"

func TestNoOpLogger(t *testing.T) {
	logger := NewNoOpLogger()

	// Test that all logging methods can be called without panicking
	logger.Debugw("debug message", "key", "value")
	logger.Infow("info message", "key", "value")
	logger.Warnw("warn message", "key", "value")
	logger.Errorw("error message", "key", "value")

	// NoOpLogger.Fatalw should not terminate the process
	logger.Fatalw("fatal message", "key", "value")

	// Test context enrichment methods
	enriched := logger.With("key", "value")
	enriched.Infow("enriched message")

	resLogger := logger.WithResource("lab-3")
	resLogger.Infow("resource message")

	userLogger := logger.WithUser("alice")
	userLogger.Infow("user message")

	compLogger := logger.WithComponent("test")
	compLogger.Infow("component message")

	// Test chaining of context enrichment methods
	chainedLogger := logger.WithComponent("test").WithResource("lab-3").WithUser("alice").With("key", "value")
	chainedLogger.Infow("chained message")
}

func TestNoOpLogger_Overrides(t *testing.T) {
	var captured string
	noop := &NoOpLogger{
		WarnwFunc: func(msg string, kvs ...any) { captured = msg },
	}

	noop.Warnw("slot contention")
	if captured != "slot contention" {
		t.Errorf("expected override to capture message, got %q", captured)
	}

	// Other levels stay silent without overrides.
	noop.Infow("ignored")
	if captured != "slot contention" {
		t.Errorf("unexpected capture change: %q", captured)
	}
}
