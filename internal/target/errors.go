package target

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/store-insights/pkg/failure"
)

// ErrInvalidTarget matches every *TargetError via errors.Is.
var ErrInvalidTarget = errors.New("invalid store target")

type TargetErrorCause string

const (
	ErrCauseEmpty             TargetErrorCause = "empty url"
	ErrCauseMalformed         TargetErrorCause = "malformed url"
	ErrCauseUnsupportedScheme TargetErrorCause = "unsupported scheme"
	ErrCauseInvalidHost       TargetErrorCause = "invalid host"
)

type TargetError struct {
	Message   string
	Retryable bool
	Cause     TargetErrorCause
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("target error: %s: %s", e.Cause, e.Message)
}

func (e *TargetError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *TargetError) Unwrap() error {
	return ErrInvalidTarget
}
