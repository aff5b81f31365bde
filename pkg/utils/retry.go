package utils

import (
	"context"
	"time"
)

// RetryConfig controls the backoff schedule for calls to flaky upstreams.
// ShouldRetry classifies errors: when set, a non-retryable error stops the
// loop on the spot. A nil predicate retries every error.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	ShouldRetry   func(error) bool
}

// APIRetryConfig returns the schedule used for outbound API calls.
func APIRetryConfig(shouldRetry func(error) bool) RetryConfig {
	return RetryConfig{
		MaxAttempts:   4,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      8 * time.Second,
		BackoffFactor: 2.0,
		ShouldRetry:   shouldRetry,
	}
}

// RetryWithResult runs fn with exponential backoff until it succeeds, the
// attempts run out, the error is classified non-retryable, or ctx is done.
// The backoff sleep honors ctx cancellation.
func RetryWithResult[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == cfg.MaxAttempts {
			break
		}
		if cfg.ShouldRetry != nil && !cfg.ShouldRetry(err) {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * cfg.BackoffFactor)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return zero, lastErr
}
