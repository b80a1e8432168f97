package enhancer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rohmanhakim/store-insights/internal/insight"
	"github.com/rohmanhakim/store-insights/internal/metadata"
)

/*
Responsibilities
- Offer an optional second pass over brand context and FAQs
- Never block the pipeline: every failure leaves the input untouched

The enhancer only refines text fields. It never adds products,
policies or handles, and an empty value in a response never
overwrites a non-empty input value.
*/

// Input is the subset of a document the enhancer may refine.
type Input struct {
	Domain       string               `json:"domain"`
	BrandContext insight.BrandContext `json:"brand_context"`
	FAQs         []insight.FAQEntry   `json:"faqs"`
}

type Output struct {
	BrandContext insight.BrandContext `json:"brand_context"`
	FAQs         []insight.FAQEntry   `json:"faqs"`
}

type Enhancer interface {
	Enhance(ctx context.Context, in Input) (Output, error)
}

// Compile-time interface checks
var (
	_ Enhancer = Noop{}
	_ Enhancer = (*HTTPEnhancer)(nil)
)

// Noop returns its input unchanged.
type Noop struct{}

func (Noop) Enhance(_ context.Context, in Input) (Output, error) {
	return Output{BrandContext: in.BrandContext, FAQs: in.FAQs}, nil
}

const maxResponseBytes = 1 << 20

// HTTPEnhancer posts the input as JSON to an external service and merges
// the answer back over the input.
type HTTPEnhancer struct {
	endpoint     string
	httpClient   *http.Client
	metadataSink metadata.MetadataSink
}

func NewHTTPEnhancer(endpoint string, timeout time.Duration, metadataSink metadata.MetadataSink) *HTTPEnhancer {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &HTTPEnhancer{
		endpoint: strings.TrimSpace(endpoint),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metadataSink: metadataSink,
	}
}

// Enhance returns the merged output, or the unchanged input together with
// an *EnhancementError.
func (h *HTTPEnhancer) Enhance(ctx context.Context, in Input) (Output, error) {
	fallback := Output{BrandContext: in.BrandContext, FAQs: in.FAQs}

	out, err := h.enhance(ctx, in)
	if err != nil {
		h.metadataSink.RecordError(
			time.Now(),
			"enhancer",
			"HTTPEnhancer.Enhance",
			mapEnhancementErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, h.endpoint),
				metadata.NewAttr(metadata.AttrDomain, in.Domain),
			},
		)
		return fallback, err
	}
	return merge(in, out), nil
}

func (h *HTTPEnhancer) enhance(ctx context.Context, in Input) (Output, *EnhancementError) {
	if h.endpoint == "" {
		return Output{}, &EnhancementError{
			Message: "no enhancer endpoint",
			Cause:   ErrCauseNotConfigured,
		}
	}

	reqBody, err := json.Marshal(in)
	if err != nil {
		return Output{}, &EnhancementError{
			Message: fmt.Sprintf("marshal request: %v", err),
			Cause:   ErrCauseRequestBuild,
			Err:     err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return Output{}, &EnhancementError{
			Message: fmt.Sprintf("create request: %v", err),
			Cause:   ErrCauseRequestBuild,
			Err:     err,
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		cause := ErrCauseUnavailable
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			cause = ErrCauseTimeout
		}
		return Output{}, &EnhancementError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     cause,
			Err:       fmt.Errorf("%w: %w", ErrUnavailable, err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return Output{}, &EnhancementError{
			Message:   fmt.Sprintf("enhancer returned %d", resp.StatusCode),
			Retryable: resp.StatusCode >= http.StatusInternalServerError,
			Cause:     ErrCauseBadStatus,
		}
	}

	var out Output
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return Output{}, &EnhancementError{
			Message: fmt.Sprintf("decode response: %v", err),
			Cause:   ErrCauseDecode,
			Err:     err,
		}
	}
	return out, nil
}

func isTimeout(err error) bool {
	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}

// merge lays non-empty response values over the input.
func merge(in Input, out Output) Output {
	merged := Output{BrandContext: in.BrandContext, FAQs: in.FAQs}

	if name := strings.TrimSpace(out.BrandContext.Name); name != "" {
		merged.BrandContext.Name = name
	}
	if desc := strings.TrimSpace(out.BrandContext.Description); desc != "" {
		merged.BrandContext.Description = desc
	}
	if about := strings.TrimSpace(out.BrandContext.About); about != "" {
		merged.BrandContext.About = about
	}

	if len(out.FAQs) > 0 {
		faqs := make([]insight.FAQEntry, 0, len(out.FAQs))
		for _, f := range out.FAQs {
			if strings.TrimSpace(f.Question) == "" || strings.TrimSpace(f.Answer) == "" {
				continue
			}
			faqs = append(faqs, f)
		}
		if len(faqs) > 0 {
			merged.FAQs = faqs
		}
	}
	if merged.FAQs == nil {
		merged.FAQs = []insight.FAQEntry{}
	}
	return merged
}
