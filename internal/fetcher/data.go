package fetcher

import (
	"net/url"
	"time"
)

// Status is the terminal classification of one fetch.
type Status int

const (
	StatusOk Status = iota
	StatusNotFound
	StatusTimeout
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusNotFound:
		return "not_found"
	case StatusTimeout:
		return "timeout"
	default:
		return "error"
	}
}

// HTTP boundary

type FetchParam struct {
	fetchURL  url.URL
	userAgent string
	timeout   time.Duration
	label     string
}

// NewFetchParam builds the parameters for one fetch. timeout bounds each
// attempt; label names the source kind in observability events only.
func NewFetchParam(fetchURL url.URL, userAgent string, timeout time.Duration, label string) FetchParam {
	return FetchParam{
		fetchURL:  fetchURL,
		userAgent: userAgent,
		timeout:   timeout,
		label:     label,
	}
}

func (p FetchParam) URL() url.URL {
	return p.fetchURL
}

func (p FetchParam) Label() string {
	return p.label
}

// FetchResult is always returned, whatever happened on the wire.
type FetchResult struct {
	url         url.URL
	body        []byte
	status      Status
	code        int
	contentType string
	truncated   bool
	unreachable bool
	fetchedAt   time.Time
	attempts    int
	errMessage  string
}

func (f FetchResult) URL() url.URL {
	return f.url
}

func (f FetchResult) Body() []byte {
	return f.body
}

func (f FetchResult) Status() Status {
	return f.status
}

// Code is the last HTTP status received, 0 when no response arrived.
func (f FetchResult) Code() int {
	return f.code
}

func (f FetchResult) ContentType() string {
	return f.contentType
}

// Truncated reports that the body was cut, either at the size cap or by a
// connection that dropped mid-body.
func (f FetchResult) Truncated() bool {
	return f.truncated
}

// Unreachable reports that no HTTP response was received from the host.
func (f FetchResult) Unreachable() bool {
	return f.unreachable
}

func (f FetchResult) FetchedAt() time.Time {
	return f.fetchedAt
}

func (f FetchResult) Attempts() int {
	return f.attempts
}

// Err describes the failure for non-Ok results, empty otherwise.
func (f FetchResult) Err() string {
	return f.errMessage
}

// NewFetchResultForTest creates a FetchResult for testing purposes.
// This allows test packages to construct FetchResult values without
// accessing unexported fields directly.
func NewFetchResultForTest(
	u url.URL,
	body []byte,
	status Status,
	code int,
	unreachable bool,
) FetchResult {
	return FetchResult{
		url:         u,
		body:        body,
		status:      status,
		code:        code,
		unreachable: unreachable,
		fetchedAt:   time.Now(),
		attempts:    1,
	}
}
