package aggregator

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/store-insights/internal/metadata"
	"github.com/rohmanhakim/store-insights/pkg/failure"
)

var (
	// ErrTargetUnreachable means the storefront root produced no HTTP
	// response at all.
	ErrTargetUnreachable = errors.New("target unreachable")
	// ErrRunCancelled means the caller cancelled the run before it finished.
	ErrRunCancelled = errors.New("run cancelled")
)

type RunErrorCause string

const (
	ErrCauseUnreachable RunErrorCause = "storefront unreachable"
	ErrCauseCancelled   RunErrorCause = "cancelled by caller"
)

// RunError is the only fatal outcome of a run. Everything else is absorbed
// into the document as field report entries and warnings.
type RunError struct {
	Message   string
	Retryable bool
	Cause     RunErrorCause
	Err       error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run error: %s: %s", e.Cause, e.Message)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

func (e *RunError) Severity() failure.Severity {
	return failure.SeverityFatal
}

// mapRunErrorToMetadataCause maps run-level error semantics to the canonical
// metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapRunErrorToMetadataCause(err *RunError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseUnreachable:
		return metadata.CauseNetworkFailure
	case ErrCauseCancelled:
		return metadata.CauseTimeout
	default:
		return metadata.CauseUnknown
	}
}

func newUnreachableError(domain string, detail string) *RunError {
	return &RunError{
		Message:   fmt.Sprintf("%s did not respond: %s", domain, detail),
		Retryable: true,
		Cause:     ErrCauseUnreachable,
		Err:       ErrTargetUnreachable,
	}
}

func newCancelledError(domain string, ctxErr error) *RunError {
	return &RunError{
		Message: fmt.Sprintf("extraction of %s cancelled", domain),
		Cause:   ErrCauseCancelled,
		Err:     fmt.Errorf("%w: %w", ErrRunCancelled, ctxErr),
	}
}
