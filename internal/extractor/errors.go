package extractor

import (
	"fmt"

	"github.com/rohmanhakim/store-insights/internal/metadata"
	"github.com/rohmanhakim/store-insights/pkg/failure"
)

type ExtractionErrorCause string

const (
	ErrCauseSourceMissing ExtractionErrorCause = "source not available"
	ErrCauseNotHTML       ExtractionErrorCause = "not html"
	ErrCauseNoContent     ExtractionErrorCause = "no content"
	ErrCauseFeedNotJSON   ExtractionErrorCause = "feed is not json"
)

// ExtractionError is always recoverable: a failed extractor only empties its
// own field group.
type ExtractionError struct {
	Message   string
	Retryable bool
	Cause     ExtractionErrorCause
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error: %s: %s", e.Cause, e.Message)
}

func (e *ExtractionError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

// mapExtractionErrorToMetadataCause maps extractor-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapExtractionErrorToMetadataCause(err *ExtractionError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseNotHTML, ErrCauseNoContent, ErrCauseFeedNotJSON:
		return metadata.CauseContentInvalid
	case ErrCauseSourceMissing:
		return metadata.CauseNetworkFailure
	default:
		return metadata.CauseUnknown
	}
}
