package metadata

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

/*
Metadata Collected
- Fetch timestamps, status codes and durations
- Per-field extraction outcomes
- Persisted artifact locations
- One terminal summary per run

Structured logging is required. Allowed values are primitives,
timestamps, URLs as strings, hashes, status codes, durations and identifiers.

Metadata is write-only.
No component may read metadata to influence extraction decisions.
*/

/*
Recorder captures structured run events and forwards them to zap.
It must not:
- perform I/O decisions
- affect control flow
Ordering guarantees:
- Events from one goroutine are logged in the order they are recorded.
- No global ordering across concurrent probes or extractors is guaranteed.
*/
type Recorder struct {
	runID  string
	logger *zap.Logger
}

// NewRecorder returns a Recorder tagged with a freshly generated run id.
func NewRecorder(logger *zap.Logger) *Recorder {
	return NewRecorderWithRunID(logger, uuid.NewString())
}

func NewRecorderWithRunID(logger *zap.Logger, runID string) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		runID:  runID,
		logger: logger.With(zap.String(string(AttrRunID), runID)),
	}
}

func (r *Recorder) RunID() string {
	return r.runID
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
	record := ErrorRecord{
		PackageName: packageName,
		Action:      action,
		Cause:       cause,
		ErrorString: errorString,
		ObservedAt:  observedAt,
		Attrs:       attrs,
	}
	fields := append([]zap.Field{
		zap.String("package", record.PackageName),
		zap.String("action", record.Action),
		zap.Stringer("cause", record.Cause),
		zap.String("error", record.ErrorString),
		zap.Time("observed_at", record.ObservedAt),
	}, attrFields(record.Attrs)...)
	r.logger.Warn("pipeline error", fields...)
}

func (r *Recorder) RecordFetch(
	fetchURL string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
	sourceKind string,
) {
	event := FetchEvent{
		FetchURL:    fetchURL,
		HTTPStatus:  httpStatus,
		Duration:    duration,
		ContentType: contentType,
		RetryCount:  retryCount,
		SourceKind:  sourceKind,
	}
	r.logger.Debug("fetch",
		zap.String(string(AttrURL), event.FetchURL),
		zap.Int(string(AttrHTTPStatus), event.HTTPStatus),
		zap.Duration("duration", event.Duration),
		zap.String("content_type", event.ContentType),
		zap.Int("retry_count", event.RetryCount),
		zap.String(string(AttrSource), event.SourceKind),
	)
}

func (r *Recorder) RecordExtraction(field string, found bool, count int, attrs []Attribute) {
	fields := append([]zap.Field{
		zap.String(string(AttrField), field),
		zap.Bool("found", found),
		zap.Int("count", count),
	}, attrFields(attrs)...)
	r.logger.Debug("extraction", fields...)
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	fields := append([]zap.Field{
		zap.String("kind", string(kind)),
		zap.String(string(AttrWritePath), path),
	}, attrFields(attrs)...)
	r.logger.Info("artifact written", fields...)
}

/*
RecordRunStats records a terminal, derived summary of a completed run.

Contract:
  - MUST be called exactly once per extraction run.
  - MUST be called only after the document has been assembled.
  - Recorded stats MUST NOT influence control flow.
*/
func (r *Recorder) RecordRunStats(
	domain string,
	success bool,
	productCount int,
	warningCount int,
	duration time.Duration,
) {
	stats := runStats{
		domain:       domain,
		success:      success,
		productCount: productCount,
		warningCount: warningCount,
		durationMs:   duration.Milliseconds(),
	}
	r.logger.Info("run finished",
		zap.String(string(AttrDomain), stats.domain),
		zap.Bool("success", stats.success),
		zap.Int("products", stats.productCount),
		zap.Int("warnings", stats.warningCount),
		zap.Int64("duration_ms", stats.durationMs),
	)
}

func attrFields(attrs []Attribute) []zap.Field {
	fields := make([]zap.Field, 0, len(attrs))
	for _, a := range attrs {
		fields = append(fields, zap.String(string(a.Key), a.Value))
	}
	return fields
}

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchURL string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		retryCount int,
		sourceKind string,
	)
	RecordExtraction(field string, found bool, count int, attrs []Attribute)
	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
}

type RunFinalizer interface {
	RecordRunStats(
		domain string,
		success bool,
		productCount int,
		warningCount int,
		duration time.Duration,
	)
}

// NoopSink implements MetadataSink and RunFinalizer but does nothing.
// Callers (or tests) decide whether to inject a Recorder or a NoopSink.
type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchURL string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
	sourceKind string,
) {
}

func (n *NoopSink) RecordExtraction(field string, found bool, count int, attrs []Attribute) {}

func (n *NoopSink) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {}

func (n *NoopSink) RecordRunStats(domain string, success bool, productCount int, warningCount int, duration time.Duration) {
}
