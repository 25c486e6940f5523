package embedder

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	maxRetries     = 3
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 8 * time.Second
)

// retryWithBackoff retries fn with exponential backoff on transient
// failures. Context cancellation aborts between attempts.
func retryWithBackoff[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	backoff := initialBackoff
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return zero, err
		}
	}

	return zero, fmt.Errorf("all %d attempts failed: %w", maxRetries+1, lastErr)
}

// isRetryable reports whether an error is worth retrying. Context
// cancellation and validation errors are terminal.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrEmptyText) || errors.Is(err, ErrBatchTooLarge) || errors.Is(err, ErrMissingCredential) {
		return false
	}
	return true
}
