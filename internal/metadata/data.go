package metadata

import (
	"time"
)

type FetchEvent struct {
	FetchURL    string
	HTTPStatus  int
	Duration    time.Duration
	ContentType string
	RetryCount  int
	SourceKind  string
}

/*
runStats
  - Represents a terminal, derived summary of one extraction run
  - Contains only aggregate counts and durations
  - Is computed by the aggregator after the document is assembled
  - Is recorded exactly once per run
  - Must not influence extraction, probing, or persistence
*/
type runStats struct {
	domain       string
	success      bool
	productCount int
	warningCount int
	durationMs   int64
}

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, metrics, reporting).

	Rules:
	 - ErrorCause is for observability only.
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause MUST NOT be used for retry, fallback, or abort decisions.
	 - ErrorCause values MUST have stable, package-agnostic semantics.
	 - Pipeline packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.
	Non-goals:
	 - ErrorCause does not encode severity.
	 - ErrorCause does not imply retryability.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown

Meaning:
  - The failure does not map cleanly to any known category.

# CauseNetworkFailure

Meaning:
  - Failure caused by network transport or remote availability.

Examples:
  - DNS resolution failures
  - Connection refused or reset
  - HTTP 5xx after retries

# CausePolicyDisallow

Meaning:
  - The storefront explicitly refused access.

Examples:
  - HTTP 401 / 403
  - HTTP 429 after retries

# CauseContentInvalid

Meaning:
  - Content was fetched but could not be processed meaningfully.

Examples:
  - Product feed that is not JSON
  - Empty or unextractable document bodies

# CauseStorageFailure

Meaning:
  - Failure while persisting an insight document.

# CauseInvariantViolation

Meaning:
  - A document-level invariant was violated and repaired.

Examples:
  - Duplicate product ids
  - Duplicate FAQ questions

# CauseTimeout

Meaning:
  - A per-request or whole-run deadline elapsed.

# CauseUpstreamFailure

Meaning:
  - An optional collaborator (the enhancer) failed or returned garbage.
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CausePolicyDisallow
	CauseContentInvalid
	CauseStorageFailure
	CauseInvariantViolation
	CauseTimeout
	CauseUpstreamFailure
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseInvariantViolation:
		return "invariant_violation"
	case CauseTimeout:
		return "timeout"
	case CauseUpstreamFailure:
		return "upstream_failure"
	default:
		return "unknown"
	}
}

type ErrorRecord struct {
	PackageName string
	Action      string
	Cause       ErrorCause
	ErrorString string
	ObservedAt  time.Time
	Attrs       []Attribute
}

type ArtifactKind string

const (
	ArtifactDocument ArtifactKind = "document"
	ArtifactDatabase ArtifactKind = "database"
)

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrTime       AttributeKey = "time"
	AttrURL        AttributeKey = "url"
	AttrHost       AttributeKey = "host"
	AttrPath       AttributeKey = "path"
	AttrField      AttributeKey = "field"
	AttrSource     AttributeKey = "source"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrWritePath  AttributeKey = "write_path"
	AttrDomain     AttributeKey = "domain"
	AttrRunID      AttributeKey = "run_id"
)
