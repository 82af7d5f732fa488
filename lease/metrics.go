package lease

import (
	"time"

	"github.com/example/sheetlease/types"
)

// Metrics defines the interface for recording coordinator activity.
// All methods must be safe for concurrent use.
type Metrics interface {
	// IncrAcquire increments counters for acquire attempts by outcome.
	IncrAcquire(resource string, status types.AcquireStatus)

	// IncrDemotedClaim increments counters for claims that lost the
	// post-write reconciliation to a concurrent writer.
	IncrDemotedClaim(resource string)

	// IncrRelease increments counters for release attempts.
	IncrRelease(resource string, success bool)

	// IncrNotify increments counters for waiter notification dispatches.
	IncrNotify(success bool)

	// ObserveAcquireLatency records time taken by a full acquire, retries included.
	ObserveAcquireLatency(latency time.Duration)

	// ObserveReleaseLatency records time taken by a full release.
	ObserveReleaseLatency(latency time.Duration)

	// Reset clears all metrics.
	Reset()
}

// NoOpMetrics is a Metrics implementation that discards all measurements.
type NoOpMetrics struct{}

// NewNoOpMetrics returns a Metrics implementation that does nothing.
func NewNoOpMetrics() Metrics {
	return &NoOpMetrics{}
}

func (m *NoOpMetrics) IncrAcquire(resource string, status types.AcquireStatus) {}
func (m *NoOpMetrics) IncrDemotedClaim(resource string)                        {}
func (m *NoOpMetrics) IncrRelease(resource string, success bool)               {}
func (m *NoOpMetrics) IncrNotify(success bool)                                 {}
func (m *NoOpMetrics) ObserveAcquireLatency(latency time.Duration)             {}
func (m *NoOpMetrics) ObserveReleaseLatency(latency time.Duration)             {}
func (m *NoOpMetrics) Reset()                                                  {}
