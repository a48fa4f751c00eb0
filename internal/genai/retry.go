package genai

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RetryPolicy describes a bounded exponential backoff schedule.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy returns the gateway policy: up to 3 attempts with
// exponential backoff starting at 4s and capped at 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   4 * time.Second,
		MaxDelay:    10 * time.Second,
	}
}

// Delay returns the backoff delay before the given retry (attempt numbers
// start at 1; the delay applies after that attempt failed).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// SleepFunc pauses for the given duration or until the context is done.
// Extracted so tests can run the retry schedule without real waiting.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// retryWithBackoff runs fn up to policy.MaxAttempts times, sleeping the
// policy's backoff schedule between attempts. Only errors classified as
// transient are retried; the last error is returned on exhaustion.
func retryWithBackoff(ctx context.Context, policy RetryPolicy, sleep SleepFunc, transient func(error) bool, fn func() (string, error)) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !transient(err) {
			slog.Debug("retryWithBackoff non-transient error, giving up", "error", err, "attempt", attempt)
			return "", err
		}
		if attempt == policy.MaxAttempts {
			break
		}

		delay := policy.Delay(attempt)
		slog.Warn("retryWithBackoff transient error, backing off", "error", err, "attempt", attempt, "delay", delay)
		if err := sleep(ctx, delay); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("all %d attempts failed: %w", policy.MaxAttempts, lastErr)
}
