package aggregator_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rohmanhakim/store-insights/internal/aggregator"
	"github.com/rohmanhakim/store-insights/internal/enhancer"
	"github.com/rohmanhakim/store-insights/internal/insight"
	"github.com/rohmanhakim/store-insights/internal/metadata"
	"github.com/rohmanhakim/store-insights/internal/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hostOf(t *testing.T, raw string) string {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Host
}

func TestExtractInsights_FullStorefront(t *testing.T) {
	sf := newStorefront(t, fullRoutes())
	agg := aggregator.NewAggregatorWithDeps(testConfig(t), nil, nil, nil)

	doc, err := agg.ExtractInsights(context.Background(), sf.server.URL)
	require.NoError(t, err)

	assert.Equal(t, hostOf(t, sf.server.URL), doc.Domain)
	assert.True(t, doc.ExtractionSuccess)
	assert.False(t, doc.ExtractionTimestamp.IsZero())
	assert.NotEmpty(t, doc.Fingerprint)

	// products
	require.Len(t, doc.ProductCatalog, 3)
	assert.Equal(t, 3, doc.TotalProducts)
	assert.Equal(t, 1, doc.FeedStats.Skipped)
	assert.Equal(t, []string{"cotton", "basics", "winter", "socks"}, doc.Tags)
	assert.Contains(t, doc.Warnings, "product feed: skipped 1 malformed records")

	// hero products resolve against the catalog or fall back to minimal ones
	require.Len(t, doc.HeroProducts, 2)
	assert.Equal(t, "1", doc.HeroProducts[0].ID)
	assert.Equal(t, "mystery-box", doc.HeroProducts[1].Handle)

	// social
	require.Len(t, doc.SocialHandles, 1)
	ig, ok := doc.Social(insight.PlatformInstagram)
	require.True(t, ok)
	require.NotNil(t, ig.Username)
	assert.Equal(t, "examplebrand", *ig.Username)

	// contact
	assert.Equal(t, []string{"hello@examplebrand.com"}, doc.ContactInfo.Emails)

	// policies: privacy missing, return present
	require.Len(t, doc.Policies, 1)
	ret, ok := doc.Policy(insight.PolicyReturn)
	require.True(t, ok)
	assert.Contains(t, ret.Content, "30 days")
	_, ok = doc.Policy(insight.PolicyPrivacy)
	assert.False(t, ok)
	policies := doc.FieldReport[insight.FieldPolicies]
	assert.True(t, policies.Found)
	assert.Contains(t, policies.Note, "privacy")

	// faqs
	require.Len(t, doc.FAQs, 1)
	assert.Equal(t, "How long does delivery take?", doc.FAQs[0].Question)
	require.NotNil(t, doc.FAQs[0].Category)
	assert.Equal(t, "Shipping", *doc.FAQs[0].Category)

	assert.NotEmpty(t, doc.ImportantLinks)
	assert.Equal(t, "Example Brand", doc.BrandName)
	assert.Equal(t, "Organic cotton basics.", doc.BrandContext.Description)

	products := doc.FieldReport[insight.FieldProducts]
	assert.Equal(t, insight.FieldStatus{Found: true, Count: 3, Source: "product_feed"}, products)
	for _, field := range insight.FieldGroups() {
		_, ok := doc.FieldReport[field]
		assert.True(t, ok, "field report misses %s", field)
	}
}

func TestExtractInsights_FeedUnavailable(t *testing.T) {
	routes := fullRoutes()
	delete(routes, "/products.json")
	sf := newStorefront(t, routes)
	agg := aggregator.NewAggregatorWithDeps(testConfig(t), nil, nil, nil)

	doc, err := agg.ExtractInsights(context.Background(), sf.server.URL)
	require.NoError(t, err)

	assert.False(t, doc.ExtractionSuccess)
	assert.NotNil(t, doc.ProductCatalog)
	assert.Empty(t, doc.ProductCatalog)
	assert.Equal(t, 0, doc.TotalProducts)
	assert.Contains(t, doc.Warnings, "product feed unavailable (not_found)")

	// hero products degrade to minimal products without a catalog
	require.Len(t, doc.HeroProducts, 2)
	assert.Equal(t, "classic-tee", doc.HeroProducts[0].Handle)
	assert.Len(t, doc.SocialHandles, 1)
}

func TestExtractInsights_FeedOnly(t *testing.T) {
	sf := newStorefront(t, map[string]http.HandlerFunc{
		"/products.json": jsonHandler(feedJSON),
	})
	agg := aggregator.NewAggregatorWithDeps(testConfig(t), nil, nil, nil)

	doc, err := agg.ExtractInsights(context.Background(), sf.server.URL)
	require.NoError(t, err)

	assert.True(t, doc.ExtractionSuccess)
	assert.Len(t, doc.ProductCatalog, 3)
	assert.NotNil(t, doc.HeroProducts)
	assert.Empty(t, doc.HeroProducts)
	assert.Empty(t, doc.SocialHandles)
	assert.Empty(t, doc.ContactInfo.Emails)
	assert.Nil(t, doc.ContactInfo.ContactFormURL)
	assert.Empty(t, doc.Policies)
	assert.Empty(t, doc.FAQs)
	assert.Empty(t, doc.ImportantLinks)
	assert.NotEmpty(t, doc.BrandName)
	assert.False(t, doc.FieldReport[insight.FieldFAQs].Found)
}

func TestExtractInsights_OverallTimeoutKeepsPartialResults(t *testing.T) {
	routes := fullRoutes()
	routes["/pages/faq"] = slowHandler(3 * time.Second)
	sf := newStorefront(t, routes)

	cfg, err := testConfigBuilder().WithOverallTimeout(400 * time.Millisecond).Build()
	require.NoError(t, err)
	agg := aggregator.NewAggregatorWithDeps(cfg, nil, nil, nil)

	doc, err := agg.ExtractInsights(context.Background(), sf.server.URL)
	require.NoError(t, err)

	assert.Empty(t, doc.FAQs)
	assert.Contains(t, doc.Warnings, "faq_page timed out")
	assert.Len(t, doc.ProductCatalog, 3)
	assert.True(t, doc.ExtractionSuccess)
}

func TestExtractInsights_UnreachableTarget(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	closedURL := server.URL
	server.Close()

	sink := &spyMetadataSink{}
	agg := aggregator.NewAggregatorWithDeps(testConfig(t), nil, sink, nil)

	_, err := agg.ExtractInsights(context.Background(), closedURL)
	require.Error(t, err)
	assert.ErrorIs(t, err, aggregator.ErrTargetUnreachable)

	var runErr *aggregator.RunError
	require.True(t, errors.As(err, &runErr))
	assert.Equal(t, aggregator.ErrCauseUnreachable, runErr.Cause)
	assert.Contains(t, sink.causes, metadata.CauseNetworkFailure)
}

func TestExtractInsights_InvalidInputMakesNoRequests(t *testing.T) {
	sf := newStorefront(t, fullRoutes())
	sink := &spyMetadataSink{}
	agg := aggregator.NewAggregatorWithDeps(testConfig(t), nil, sink, nil)

	for _, raw := range []string{"", "ftp://example.com", "not a url at all"} {
		_, err := agg.ExtractInsights(context.Background(), raw)
		require.Error(t, err, raw)
		assert.ErrorIs(t, err, target.ErrInvalidTarget)
	}
	assert.Zero(t, sink.fetches)
	assert.Zero(t, sf.hits.Load())
}

func TestExtractInsights_CancelledContext(t *testing.T) {
	sf := newStorefront(t, fullRoutes())
	agg := aggregator.NewAggregatorWithDeps(testConfig(t), nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := agg.ExtractInsights(ctx, sf.server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, aggregator.ErrRunCancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractInsights_Idempotent(t *testing.T) {
	sf := newStorefront(t, fullRoutes())
	agg := aggregator.NewAggregatorWithDeps(testConfig(t), nil, nil, nil)

	first, err := agg.ExtractInsights(context.Background(), sf.server.URL)
	require.NoError(t, err)
	second, err := agg.ExtractInsights(context.Background(), sf.server.URL)
	require.NoError(t, err)

	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, first.FingerprintView(), second.FingerprintView())
}

func TestExtractInsights_EnhancerFallback(t *testing.T) {
	sf := newStorefront(t, fullRoutes())
	enh := &fakeEnhancer{err: enhancer.ErrUnavailable}
	agg := aggregator.NewAggregatorWithDeps(testConfig(t), nil, nil, enh)

	doc, err := agg.ExtractInsights(context.Background(), sf.server.URL)
	require.NoError(t, err)

	assert.Equal(t, int64(1), enh.calls.Load())
	assert.Equal(t, "Example Brand", doc.BrandName)
	assert.Len(t, doc.FAQs, 1)

	var skipped bool
	for _, w := range doc.Warnings {
		if strings.HasPrefix(w, "enhancement skipped") {
			skipped = true
		}
	}
	assert.True(t, skipped, "warnings: %v", doc.Warnings)
}

func TestExtractInsights_EnhancerApplied(t *testing.T) {
	sf := newStorefront(t, fullRoutes())
	enh := &fakeEnhancer{out: enhancer.Output{
		BrandContext: insight.BrandContext{Name: "Example Brand Co.", Description: "Sustainable basics."},
		FAQs: []insight.FAQEntry{
			{Question: "Q1?", Answer: "A1"},
			{Question: "Q2?", Answer: "A2"},
		},
	}}
	agg := aggregator.NewAggregatorWithDeps(testConfig(t), nil, nil, enh)

	doc, err := agg.ExtractInsights(context.Background(), sf.server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Example Brand Co.", doc.BrandName)
	assert.Equal(t, "Sustainable basics.", doc.BrandContext.Description)
	assert.Len(t, doc.FAQs, 2)
	assert.Equal(t, 2, doc.FieldReport[insight.FieldFAQs].Count)
}

func TestExtractInsights_RecordsRunStats(t *testing.T) {
	sf := newStorefront(t, fullRoutes())
	finalizer := &spyFinalizer{}
	agg := aggregator.NewAggregatorWithDeps(testConfig(t), finalizer, nil, nil)

	_, err := agg.ExtractInsights(context.Background(), sf.server.URL)
	require.NoError(t, err)

	assert.Equal(t, 1, finalizer.calls)
	assert.Equal(t, hostOf(t, sf.server.URL), finalizer.domain)
	assert.True(t, finalizer.success)
	assert.Equal(t, 3, finalizer.products)
}
