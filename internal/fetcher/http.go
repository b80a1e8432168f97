package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/rohmanhakim/store-insights/internal/metadata"
	"github.com/rohmanhakim/store-insights/pkg/failure"
	"github.com/rohmanhakim/store-insights/pkg/retry"
)

/*
Responsibilities

- Perform paced, bounded HTTP GET requests
- Apply headers and per-attempt timeouts
- Bound redirect chains and body size
- Classify every outcome into a Status

Fetch Semantics

- Fetch never returns an error; failures are encoded in FetchResult
- 404 and 410 are NotFound and never retried
- Other 4xx, 429 and 5xx are terminal errors
- Only per-attempt timeouts and transport failures are retried
- A done parent context ends the fetch as Timeout without further attempts
- Bodies larger than the cap are cut at the cap and flagged truncated
- Every attempt closes its response body

The fetcher never parses content; it only returns bytes and metadata.
*/

const maxRedirects = 5

type HTTPFetcher struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
	limiter      *rate.Limiter
	retryParam   retry.RetryParam
	maxBodyBytes int64
}

// NewHTTPFetcher builds a fetcher for one run. The limiter paces every
// attempt, retries included, and is shared by all fetches of the run.
func NewHTTPFetcher(
	metadataSink metadata.MetadataSink,
	limiter *rate.Limiter,
	retryParam retry.RetryParam,
	maxBodyBytes int64,
) *HTTPFetcher {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &HTTPFetcher{
		metadataSink: metadataSink,
		httpClient: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		limiter:      limiter,
		retryParam:   retryParam,
		maxBodyBytes: maxBodyBytes,
	}
}

func (h *HTTPFetcher) Fetch(ctx context.Context, fetchParam FetchParam) FetchResult {
	callerMethod := "HTTPFetcher.Fetch"
	startTime := time.Now()

	outcome := retry.Retry(ctx, h.retryParam, func(attempt int) (FetchResult, failure.ClassifiedError) {
		return h.performFetch(ctx, fetchParam)
	})

	var result FetchResult
	if outcome.IsFailure() {
		result = resultFromError(fetchParam.fetchURL, outcome.Err())
		h.recordFetchError(callerMethod, fetchParam, outcome.Err())
	} else {
		result = outcome.Value()
	}
	result.attempts = outcome.Attempts()
	result.fetchedAt = startTime

	h.metadataSink.RecordFetch(
		fetchParam.fetchURL.String(),
		result.code,
		time.Since(startTime),
		result.contentType,
		max(result.attempts-1, 0),
		fetchParam.label,
	)

	return result
}

// resultFromError turns the terminal error of a retried fetch into a
// FetchResult. RetryError wraps the last FetchError, so errors.As reaches it.
func resultFromError(fetchURL url.URL, err failure.ClassifiedError) FetchResult {
	result := FetchResult{
		url:        fetchURL,
		status:     StatusError,
		errMessage: err.Error(),
	}

	var retryErr *retry.RetryError
	if errors.As(err, &retryErr) && retryErr.Cause == retry.ErrContextDone {
		result.status = StatusTimeout
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			result.code = fetchErr.Code
		}
		return result
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		return result
	}
	result.code = fetchErr.Code

	switch fetchErr.Cause {
	case ErrCauseNotFound:
		result.status = StatusNotFound
	case ErrCauseTimeout, ErrCauseContextDone:
		result.status = StatusTimeout
	case ErrCauseNetworkFailure:
		result.unreachable = true
	}
	return result
}

func (h *HTTPFetcher) recordFetchError(callerMethod string, fetchParam FetchParam, err failure.ClassifiedError) {
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		h.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			callerMethod,
			metadata.CauseTimeout,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, fetchParam.fetchURL.String()),
				metadata.NewAttr(metadata.AttrSource, fetchParam.label),
			},
		)
		return
	}
	// a missing optional page is expected and already visible in RecordFetch
	if fetchErr.Cause == ErrCauseNotFound {
		return
	}
	h.metadataSink.RecordError(
		time.Now(),
		"fetcher",
		callerMethod,
		mapFetchErrorToMetadataCause(fetchErr),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, fetchParam.fetchURL.String()),
			metadata.NewAttr(metadata.AttrSource, fetchParam.label),
			metadata.NewAttr(metadata.AttrHTTPStatus, fmt.Sprintf("%d", fetchErr.Code)),
		},
	)
}

func (h *HTTPFetcher) performFetch(ctx context.Context, fetchParam FetchParam) (FetchResult, failure.ClassifiedError) {
	if err := h.limiter.Wait(ctx); err != nil {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("rate limiter wait: %v", err),
			Retryable: false,
			Cause:     ErrCauseContextDone,
		}
	}

	attemptCtx := ctx
	if fetchParam.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, fetchParam.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, fetchParam.fetchURL.String(), nil)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseRequestBuildFailure,
		}
	}
	for key, value := range requestHeaders(fetchParam.userAgent) {
		req.Header.Set(key, value)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return FetchResult{}, classifyTransportError(ctx, attemptCtx, err)
	}
	defer resp.Body.Close()

	if fetchErr := classifyStatus(resp.StatusCode); fetchErr != nil {
		return FetchResult{}, fetchErr
	}

	body, truncated, readErr := readCapped(resp.Body, h.maxBodyBytes)
	if readErr != nil {
		if len(body) == 0 {
			return FetchResult{}, classifyReadError(ctx, attemptCtx, readErr, resp.StatusCode)
		}
		// a partial body is still useful to tolerant parsers
		truncated = true
	}

	return FetchResult{
		url:         fetchParam.fetchURL,
		body:        body,
		status:      StatusOk,
		code:        resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		truncated:   truncated,
	}, nil
}

func classifyStatus(code int) *FetchError {
	switch {
	case code == http.StatusNotFound || code == http.StatusGone:
		return &FetchError{
			Message:   fmt.Sprintf("page not found (%d)", code),
			Retryable: false,
			Cause:     ErrCauseNotFound,
			Code:      code,
		}
	case code == http.StatusTooManyRequests:
		return &FetchError{
			Message:   "rate limited (429)",
			Retryable: false,
			Cause:     ErrCauseRequestTooMany,
			Code:      code,
		}
	case code >= 500:
		return &FetchError{
			Message:   fmt.Sprintf("server error: %d", code),
			Retryable: false,
			Cause:     ErrCauseRequest5xx,
			Code:      code,
		}
	case code == http.StatusForbidden || code == http.StatusUnauthorized:
		return &FetchError{
			Message:   fmt.Sprintf("access denied (%d)", code),
			Retryable: false,
			Cause:     ErrCauseRequestPageForbidden,
			Code:      code,
		}
	case code >= 400:
		return &FetchError{
			Message:   fmt.Sprintf("client error: %d", code),
			Retryable: false,
			Cause:     ErrCauseRequestClientError,
			Code:      code,
		}
	case code >= 300:
		return &FetchError{
			Message:   fmt.Sprintf("redirect error: %d", code),
			Retryable: false,
			Cause:     ErrCauseRedirectLimitExceeded,
			Code:      code,
		}
	}
	return nil
}

func classifyTransportError(parent, attemptCtx context.Context, err error) *FetchError {
	if parent.Err() != nil {
		return &FetchError{
			Message:   fmt.Sprintf("request abandoned: %v", parent.Err()),
			Retryable: false,
			Cause:     ErrCauseContextDone,
		}
	}
	var netErr net.Error
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &FetchError{
			Message:   fmt.Sprintf("request timed out: %v", err),
			Retryable: true,
			Cause:     ErrCauseTimeout,
		}
	}
	return &FetchError{
		Message:   fmt.Sprintf("request failed: %v", err),
		Retryable: true,
		Cause:     ErrCauseNetworkFailure,
	}
}

func classifyReadError(parent, attemptCtx context.Context, err error, code int) *FetchError {
	if parent.Err() != nil {
		return &FetchError{
			Message:   fmt.Sprintf("body read abandoned: %v", parent.Err()),
			Retryable: false,
			Cause:     ErrCauseContextDone,
			Code:      code,
		}
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return &FetchError{
			Message:   fmt.Sprintf("body read timed out: %v", err),
			Retryable: true,
			Cause:     ErrCauseTimeout,
			Code:      code,
		}
	}
	return &FetchError{
		Message:   fmt.Sprintf("failed to read response body: %v", err),
		Retryable: true,
		Cause:     ErrCauseReadResponseBodyError,
		Code:      code,
	}
}

// readCapped reads at most limit bytes and reports whether more were available.
func readCapped(r io.Reader, limit int64) ([]byte, bool, error) {
	if limit <= 0 {
		body, err := io.ReadAll(r)
		return body, false, err
	}
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if int64(len(body)) > limit {
		return body[:limit], true, nil
	}
	return body, false, err
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
	}
}
