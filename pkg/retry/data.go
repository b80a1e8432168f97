package retry

import (
	"time"

	"github.com/rohmanhakim/store-insights/pkg/failure"
)

// RetryParam holds the parameters for retry logic.
// These parameters are passed from outside (e.g., config) and should not
// be known by the retry handler internally.
type RetryParam struct {
	// MaxAttempts counts the initial attempt, so 2 means one retry.
	MaxAttempts int
	// Backoff is the fixed wait between two attempts.
	Backoff time.Duration
}

func NewRetryParam(maxAttempts int, backoff time.Duration) RetryParam {
	return RetryParam{
		MaxAttempts: maxAttempts,
		Backoff:     backoff,
	}
}

// Result carries the outcome of Retry together with the number of attempts made.
type Result[T any] struct {
	value    T
	err      failure.ClassifiedError
	attempts int
}

func (r Result[T]) Value() T {
	return r.value
}

func (r Result[T]) Err() failure.ClassifiedError {
	return r.err
}

func (r Result[T]) Attempts() int {
	return r.attempts
}

func (r Result[T]) IsFailure() bool {
	return r.err != nil
}
