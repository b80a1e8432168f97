package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/rohmanhakim/store-insights/pkg/failure"
)

// Retry executes fn until it succeeds, returns a non-retryable error,
// exhausts MaxAttempts, or ctx is done. Attempts are separated by a fixed
// Backoff; the wait is abandoned as soon as ctx is done.
//
// A non-retryable error is returned as-is. Exhaustion and cancellation
// return a *RetryError whose Last field holds the final attempt's error.
func Retry[T any](
	ctx context.Context,
	retryParam RetryParam,
	fn func(attempt int) (T, failure.ClassifiedError),
) Result[T] {
	var zero T

	if retryParam.MaxAttempts < 1 {
		return Result[T]{
			value: zero,
			err: &RetryError{
				Message:   "max attempt cannot be 0",
				Cause:     ErrZeroAttempt,
				Retryable: false,
			},
		}
	}

	var lastErr failure.ClassifiedError
	attempt := 0
	for attempt < retryParam.MaxAttempts {
		attempt++
		value, err := fn(attempt)
		if err == nil {
			return Result[T]{value: value, attempts: attempt}
		}
		lastErr = err

		if !isErrorRetryable(err) {
			return Result[T]{value: zero, err: err, attempts: attempt}
		}
		if attempt == retryParam.MaxAttempts {
			break
		}

		if waitErr := sleep(ctx, retryParam.Backoff); waitErr != nil {
			return Result[T]{
				value: zero,
				err: &RetryError{
					Message:   fmt.Sprintf("stopped after %d attempts: %v", attempt, waitErr),
					Cause:     ErrContextDone,
					Retryable: false,
					Last:      lastErr,
				},
				attempts: attempt,
			}
		}
	}

	return Result[T]{
		value: zero,
		err: &RetryError{
			Message:   fmt.Sprintf("exhausted %d attempts. Last error: %v", retryParam.MaxAttempts, lastErr),
			Cause:     ErrExhaustedAttempts,
			Retryable: true,
			Last:      lastErr,
		},
		attempts: attempt,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isErrorRetryable checks if an error should be retried.
// Errors that do not expose IsRetryable are retried.
func isErrorRetryable(err failure.ClassifiedError) bool {
	type hasRetryable interface {
		IsRetryable() bool
	}
	if r, ok := err.(hasRetryable); ok {
		return r.IsRetryable()
	}
	return true
}
