package fetcher

import (
	"fmt"

	"github.com/rohmanhakim/store-insights/internal/metadata"
	"github.com/rohmanhakim/store-insights/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCauseTimeout               FetchErrorCause = "timeout"
	ErrCauseContextDone           FetchErrorCause = "context done"
	ErrCauseNetworkFailure        FetchErrorCause = "network issues"
	ErrCauseRequestBuildFailure   FetchErrorCause = "failed to build request"
	ErrCauseReadResponseBodyError FetchErrorCause = "failed to read response body"
	ErrCauseNotFound              FetchErrorCause = "not found"
	ErrCauseRedirectLimitExceeded FetchErrorCause = "reached redirect limit"
	ErrCauseRequestPageForbidden  FetchErrorCause = "forbidden"
	ErrCauseRequestClientError    FetchErrorCause = "4xx"
	ErrCauseRequestTooMany        FetchErrorCause = "too many requests"
	ErrCauseRequest5xx            FetchErrorCause = "5xx"
)

type FetchError struct {
	Message   string
	Retryable bool
	Cause     FetchErrorCause
	// Code is the HTTP status when a response was received, 0 otherwise.
	Code int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetcher error: %s: %s", e.Cause, e.Message)
}

func (e *FetchError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// IsRetryable returns whether this error is retryable
func (e *FetchError) IsRetryable() bool {
	return e.Retryable
}

// mapFetchErrorToMetadataCause maps fetcher-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapFetchErrorToMetadataCause(err *FetchError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseTimeout, ErrCauseContextDone:
		return metadata.CauseTimeout
	case ErrCauseNetworkFailure, ErrCauseRequest5xx, ErrCauseReadResponseBodyError:
		return metadata.CauseNetworkFailure
	case ErrCauseRequestTooMany, ErrCauseRequestPageForbidden:
		return metadata.CausePolicyDisallow
	case ErrCauseNotFound, ErrCauseRequestClientError, ErrCauseRedirectLimitExceeded:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
