package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// Config defines the configuration for retry logic with exponential backoff.
type Config struct {
	MaxAttempts     int                // Maximum number of attempts, including the first
	BaseDelay       time.Duration      // Initial delay before retrying
	MaxDelay        time.Duration      // Maximum delay between retries
	Multiplier      float64            // Backoff multiplier per attempt
	Jitter          float64            // Jitter factor to randomize delays
	RetryableErrors []error            // Optional target errors matched with errors.Is
	RetryableCheck  func(error) bool   // Optional custom retryability check
}

// DefaultConfig returns a Config with standard retry settings.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Multiplier:  2.0,
		Jitter:      0.1,
	}
}

// Func defines a function signature for operations that may be retried.
type Func func() error

// Do runs the given function with exponential backoff retry logic.
// Retries are attempted according to the provided Config.
func Do(ctx context.Context, config Config, fn Func) error {
	var lastErr error

	for attempt := range config.MaxAttempts {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			if !isRetryable(err, config) {
				return err
			}
		}

		if attempt < config.MaxAttempts-1 {
			delay := calculateBackoff(attempt, config)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return lastErr
}

// DoWithResult is a generic retry wrapper that returns a result and error.
// It retries the function based on the provided Config.
func DoWithResult[T any](ctx context.Context, config Config, fn func() (T, error)) (T, error) {
	var lastErr error
	var zeroValue T

	for attempt := range config.MaxAttempts {
		select {
		case <-ctx.Done():
			return zeroValue, ctx.Err()
		default:
		}

		if result, err := fn(); err == nil {
			return result, nil
		} else {
			lastErr = err
			if !isRetryable(err, config) {
				return zeroValue, err
			}
		}

		if attempt < config.MaxAttempts-1 {
			delay := calculateBackoff(attempt, config)
			select {
			case <-ctx.Done():
				return zeroValue, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return zeroValue, lastErr
}

// isRetryable determines whether the error is retryable based on config.
func isRetryable(err error, config Config) bool {
	for _, target := range config.RetryableErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	if config.RetryableCheck != nil && config.RetryableCheck(err) {
		return true
	}
	// Default to retryable only when no policy is configured.
	return len(config.RetryableErrors) == 0 && config.RetryableCheck == nil
}

// calculateBackoff computes the retry delay for a given attempt using exponential backoff with jitter.
func calculateBackoff(attempt int, config Config) time.Duration {
	delay := min(float64(config.BaseDelay)*math.Pow(config.Multiplier, float64(attempt)), float64(config.MaxDelay))

	if config.Jitter > 0 {
		jitter := delay * config.Jitter * (rand.Float64()*2 - 1)
		delay += jitter
	}

	if delay < 0 {
		delay = float64(config.BaseDelay)
	}

	return time.Duration(delay)
}
