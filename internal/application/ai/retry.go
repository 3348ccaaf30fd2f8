package ai

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"

	"github.com/recipewise/server/internal/ports/outbound"
)

// RetryPolicy controls how transient model failures are retried
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy makes three attempts, waiting 2s then 4s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 2 * time.Second}
}

// Delay returns the wait after the given failed attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	return p.BaseDelay * time.Duration(1<<(attempt-1))
}

// Classifier reports whether an error is worth another attempt
type Classifier func(error) bool

// WithRetry runs op until it succeeds, fails with a non-retryable error, or
// the attempts are exhausted. It returns the number of attempts made.
// There is no wait after the last attempt.
func WithRetry[T any](ctx context.Context, policy RetryPolicy, op func(ctx context.Context) (T, error), retryable Classifier) (T, int, error) {
	var zero T
	maxAttempts := max(policy.MaxAttempts, 1)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, attempt, nil
		}
		lastErr = err

		if ctx.Err() != nil || !retryable(err) || attempt == maxAttempts {
			return zero, attempt, lastErr
		}

		timer := time.NewTimer(policy.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, attempt, errors.Join(lastErr, ctx.Err())
		case <-timer.C:
		}
	}

	return zero, maxAttempts, lastErr
}

// IsTransient is the default classifier. Rate limiting, unavailability,
// timeouts and dropped connections are transient; everything else is fatal.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var modelErr *outbound.ModelError
	if errors.As(err, &modelErr) {
		switch modelErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusServiceUnavailable:
			return true
		case 0:
			// no status, fall through to transport checks on the cause
		default:
			return false
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		// per-attempt timeout; the caller checks the parent context first
		return true
	}

	// *url.Error satisfies net.Error for any cause, so judge what it wraps
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	if errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
