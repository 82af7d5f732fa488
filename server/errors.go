package server

import "errors"

var (
	// ErrServerAlreadyStarted indicates an attempt to start an already running server.
	ErrServerAlreadyStarted = errors.New("server: server already started")

	// ErrServerNotStarted indicates a stop request for a server that never started.
	ErrServerNotStarted = errors.New("server: server not started")
)

// ConfigError represents a validation error in the server configuration.
type ConfigError struct {
	Message string
}

// NewConfigError returns a new ConfigError instance.
func NewConfigError(msg string) *ConfigError {
	return &ConfigError{Message: msg}
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "server config error: " + e.Message
}
