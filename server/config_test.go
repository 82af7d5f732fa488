package server

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/sheetlease/testutil"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.VerificationToken = "secret"
	return cfg
}

func TestConfig_ValidateDefaultsWithToken(t *testing.T) {
	cfg := validConfig()
	testutil.AssertNoError(t, cfg.Validate())
}

func TestConfig_ValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty listen address", func(c *Config) { c.ListenAddress = "" }},
		{"empty verification token", func(c *Config) { c.VerificationToken = "" }},
		{"zero request timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"zero shutdown timeout", func(c *Config) { c.ShutdownTimeout = 0 }},
		{"rate limiting without a limit", func(c *Config) {
			c.EnableRateLimit = true
			c.RateLimit = 0
		}},
		{"rate limiting without a window", func(c *Config) {
			c.EnableRateLimit = true
			c.RateLimitWindow = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			testutil.AssertError(t, err)

			var cfgErr *ConfigError
			testutil.AssertTrue(t, errors.As(err, &cfgErr), "expected a ConfigError, got %T", err)
		})
	}
}

func TestLoadConfig_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
listen_address: "127.0.0.1:9999"
verification_token: "secret"
request_timeout: "3s"
enable_rate_limit: true
rate_limit: 5
rate_limit_burst: 2
rate_limit_window: "30s"
`)
	testutil.RequireNoError(t, os.WriteFile(path, body, 0o600))

	cfg, err := LoadConfig(path)
	testutil.RequireNoError(t, err)
	testutil.AssertEqual(t, "127.0.0.1:9999", cfg.ListenAddress)
	testutil.AssertEqual(t, "secret", cfg.VerificationToken)
	testutil.AssertEqual(t, 3*time.Second, cfg.RequestTimeout.Std())
	testutil.AssertTrue(t, cfg.EnableRateLimit)
	testutil.AssertEqual(t, 5, cfg.RateLimit)
	testutil.AssertEqual(t, 30*time.Second, cfg.RateLimitWindow.Std())

	// Keys the file omits keep their defaults.
	testutil.AssertEqual(t, DefaultShutdownTimeout, cfg.ShutdownTimeout.Std())
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	testutil.AssertError(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	testutil.RequireNoError(t, os.WriteFile(path, []byte("request_timeout: \"not-a-duration\"\n"), 0o600))
	_, err = LoadConfig(path)
	testutil.AssertError(t, err)
}
