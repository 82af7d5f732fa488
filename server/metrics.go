package server

import "time"

// ServerMetrics defines observability hooks for the slash-command server.
// All methods must be safe for concurrent use.
type ServerMetrics interface {
	// IncrRequest increments the count for a handled command.
	// 'verb' is the routed command word ("whois", "disconnect", "connect", ...).
	IncrRequest(verb string)

	// IncrAuthFailure increments the count of verification token mismatches.
	IncrAuthFailure()

	// IncrRateLimited increments the count of requests rejected by rate limiting.
	IncrRateLimited()

	// ObserveRequestLatency records end-to-end latency for one command,
	// including form parsing, coordinator work, and response encoding.
	ObserveRequestLatency(latency time.Duration)
}

// noOpServerMetrics is a metrics implementation that does nothing.
type noOpServerMetrics struct{}

// NewNoOpServerMetrics returns a ServerMetrics that discards all observations.
func NewNoOpServerMetrics() ServerMetrics {
	return &noOpServerMetrics{}
}

func (noOpServerMetrics) IncrRequest(string)                  {}
func (noOpServerMetrics) IncrAuthFailure()                    {}
func (noOpServerMetrics) IncrRateLimited()                    {}
func (noOpServerMetrics) ObserveRequestLatency(time.Duration) {}
