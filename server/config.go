package server

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML configs can use values like "10s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds the configuration settings for the slash-command server.
type Config struct {
	// ListenAddress is the HTTP listener's bind address (e.g., "0.0.0.0:8080").
	ListenAddress string `yaml:"listen_address"`

	// VerificationToken is the shared secret the chat platform includes with
	// every slash command. Requests carrying a different token are answered
	// with an in-band error message, never processed.
	VerificationToken string `yaml:"verification_token"`

	RequestTimeout  Duration `yaml:"request_timeout"`  // Max time to handle one command
	ShutdownTimeout Duration `yaml:"shutdown_timeout"` // Max time allowed for graceful shutdown

	EnableRateLimit bool     `yaml:"enable_rate_limit"` // Whether rate limiting is enforced
	RateLimit       int      `yaml:"rate_limit"`        // Requests allowed per window
	RateLimitBurst  int      `yaml:"rate_limit_burst"`  // Burst capacity
	RateLimitWindow Duration `yaml:"rate_limit_window"` // Time window used for rate calculation
}

// DefaultConfig returns a Config pre-populated with safe defaults.
// Callers must set VerificationToken explicitly.
func DefaultConfig() Config {
	return Config{
		ListenAddress:   DefaultListenAddress,
		RequestTimeout:  Duration(DefaultRequestTimeout),
		ShutdownTimeout: Duration(DefaultShutdownTimeout),
		EnableRateLimit: false,
		RateLimit:       DefaultRateLimit,
		RateLimitBurst:  DefaultRateLimitBurst,
		RateLimitWindow: Duration(DefaultRateLimitWindow),
	}
}

// LoadConfig reads a YAML file over DefaultConfig, so omitted keys keep
// their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks if the server configuration is valid.
func (c *Config) Validate() error {
	if c.ListenAddress == "" {
		return NewConfigError("ListenAddress cannot be empty")
	}
	if c.VerificationToken == "" {
		return NewConfigError("VerificationToken cannot be empty")
	}
	if c.RequestTimeout <= 0 {
		return NewConfigError("RequestTimeout must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return NewConfigError("ShutdownTimeout must be positive")
	}
	if c.EnableRateLimit {
		if c.RateLimit <= 0 {
			return NewConfigError("RateLimit must be positive when rate limiting is enabled")
		}
		if c.RateLimitWindow <= 0 {
			return NewConfigError("RateLimitWindow must be positive when rate limiting is enabled")
		}
	}
	return nil
}
