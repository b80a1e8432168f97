package enhancer

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/store-insights/internal/metadata"
	"github.com/rohmanhakim/store-insights/pkg/failure"
)

// ErrUnavailable indicates the enhancement service could not be reached.
var ErrUnavailable = errors.New("enhancement service unavailable")

type EnhancementErrorCause string

const (
	ErrCauseUnavailable   EnhancementErrorCause = "service unavailable"
	ErrCauseTimeout       EnhancementErrorCause = "timeout"
	ErrCauseBadStatus     EnhancementErrorCause = "unexpected status"
	ErrCauseDecode        EnhancementErrorCause = "invalid response"
	ErrCauseRequestBuild  EnhancementErrorCause = "failed to build request"
	ErrCauseNotConfigured EnhancementErrorCause = "endpoint not configured"
)

// EnhancementError is always recoverable: the caller keeps the
// unenhanced values.
type EnhancementError struct {
	Message   string
	Retryable bool
	Cause     EnhancementErrorCause
	Err       error
}

func (e *EnhancementError) Error() string {
	return fmt.Sprintf("enhancement error: %s: %s", e.Cause, e.Message)
}

func (e *EnhancementError) Unwrap() error {
	return e.Err
}

func (e *EnhancementError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

// mapEnhancementErrorToMetadataCause maps enhancer-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapEnhancementErrorToMetadataCause(err *EnhancementError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseUnavailable:
		return metadata.CauseNetworkFailure
	case ErrCauseTimeout:
		return metadata.CauseTimeout
	case ErrCauseBadStatus:
		return metadata.CauseUpstreamFailure
	case ErrCauseDecode:
		return metadata.CauseContentInvalid
	case ErrCauseNotConfigured:
		return metadata.CauseInvariantViolation
	default:
		return metadata.CauseUnknown
	}
}
