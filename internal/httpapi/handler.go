package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rohmanhakim/store-insights/internal/aggregator"
	"github.com/rohmanhakim/store-insights/internal/build"
	"github.com/rohmanhakim/store-insights/internal/insight"
	"github.com/rohmanhakim/store-insights/internal/target"
	"go.uber.org/zap"
)

/*
Responsibilities
- Accept extraction requests over HTTP
- Bound the number of concurrent runs
- Map run errors to status codes
- Hand successful documents to persistence without waiting for it
*/

// InsightExtractor runs one extraction.
type InsightExtractor interface {
	ExtractInsights(ctx context.Context, rawURL string) (insight.Document, error)
}

// DocumentSubmitter accepts documents for background persistence.
type DocumentSubmitter interface {
	Submit(doc insight.Document) error
}

type ExtractRequest struct {
	WebsiteURL string `json:"website_url" binding:"required"`
}

// Response is the envelope of every API reply.
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    *insight.Document `json:"data"`
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	extractor InsightExtractor
	submitter DocumentSubmitter
	slots     chan struct{}
	logger    *zap.Logger
}

// NewHandler creates a handler allowing at most maxConcurrentRuns
// extractions at once. A nil submitter skips persistence.
func NewHandler(
	extractor InsightExtractor,
	submitter DocumentSubmitter,
	maxConcurrentRuns int,
	logger *zap.Logger,
) *Handler {
	if maxConcurrentRuns < 1 {
		maxConcurrentRuns = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		extractor: extractor,
		submitter: submitter,
		slots:     make(chan struct{}, maxConcurrentRuns),
		logger:    logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "store-insights",
		"version": build.FullVersion(),
	})
}

// ExtractInsights runs the pipeline for the posted website URL.
func (h *Handler) ExtractInsights(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Message: "website_url is required"})
		return
	}

	ctx := c.Request.Context()
	select {
	case h.slots <- struct{}{}:
		defer func() { <-h.slots }()
	case <-ctx.Done():
		c.JSON(http.StatusServiceUnavailable, Response{Message: "server is busy, try again later"})
		return
	}

	doc, err := h.extractor.ExtractInsights(ctx, req.WebsiteURL)
	if err != nil {
		status, message := statusFor(err)
		_ = c.Error(err)
		c.JSON(status, Response{Message: message})
		return
	}

	if h.submitter != nil {
		if submitErr := h.submitter.Submit(doc); submitErr != nil {
			h.logger.Warn("document not persisted",
				zap.String("domain", doc.Domain),
				zap.Error(submitErr),
			)
		}
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "Brand insights extracted successfully",
		Data:    &doc,
	})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, target.ErrInvalidTarget):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, aggregator.ErrTargetUnreachable):
		return http.StatusUnauthorized, "Website not found or not accessible"
	case errors.Is(err, aggregator.ErrRunCancelled):
		return http.StatusServiceUnavailable, "extraction cancelled"
	default:
		return http.StatusInternalServerError, "Internal server error: " + err.Error()
	}
}
