package aggregator_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rohmanhakim/store-insights/internal/config"
	"github.com/rohmanhakim/store-insights/internal/enhancer"
	"github.com/rohmanhakim/store-insights/internal/metadata"
	"github.com/stretchr/testify/require"
)

const feedJSON = `{"products":[
	{"id":1,"title":"Classic Tee","handle":"classic-tee","tags":["cotton","basics"]},
	{"id":2,"title":"Relaxed Hoodie","handle":"relaxed-hoodie","tags":["cotton","winter"]},
	{"id":3,"title":"Everyday Sock","handle":"everyday-sock","tags":"basics, socks"},
	{"title":"Broken record","handle":"broken"}
]}`

const homeHTML = `<!doctype html><html><head>
	<title>Example Brand – Organic Basics</title>
	<meta property="og:site_name" content="Example Brand">
	<meta name="description" content="Organic cotton basics.">
</head><body>
	<header><nav><a href="/pages/faq">FAQ</a><a href="/blogs/news">Blog</a></nav></header>
	<main>
		<section class="featured-products">
			<a href="/products/classic-tee">Classic Tee</a>
			<a href="/products/mystery-box">Mystery Box</a>
		</section>
	</main>
	<footer>
		<a href="https://instagram.com/examplebrand">Instagram</a>
		<a href="https://instagram.com//">Instagram</a>
		<a href="mailto:hello@examplebrand.com">Email</a>
		<a href="/pages/contact">Contact us</a>
	</footer>
</body></html>`

const returnPolicyHTML = `<html><head><title>Refund policy</title></head><body>
	<div class="shopify-policy__container"><h1>Refund policy</h1>
	<div class="shopify-policy__body"><div class="rte"><p>Returns are accepted within 30 days of delivery.</p></div></div></div>
</body></html>`

const faqHTML = `<html><body><h1>FAQ</h1>
	<h2>Shipping</h2>
	<details><summary>How long does delivery take?</summary><p>Three to five business days.</p></details>
</body></html>`

// storefront serves exact paths and 404s everything else.
type storefront struct {
	server *httptest.Server
	hits   atomic.Int64
}

func newStorefront(t *testing.T, routes map[string]http.HandlerFunc) *storefront {
	t.Helper()
	sf := &storefront{}
	sf.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sf.hits.Add(1)
		if h, ok := routes[r.URL.Path]; ok {
			h(w, r)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(sf.server.Close)
	return sf
}

func htmlHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func slowHandler(delay time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(delay):
			_, _ = w.Write([]byte("<html><body>late</body></html>"))
		}
	}
}

func fullRoutes() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"/products.json":          jsonHandler(feedJSON),
		"/":                       htmlHandler(homeHTML),
		"/policies/refund-policy": htmlHandler(returnPolicyHTML),
		"/pages/faq":              htmlHandler(faqHTML),
	}
}

func testConfigBuilder() *config.Config {
	return config.WithDefault().
		WithOverallTimeout(5 * time.Second).
		WithFetchTimeout(2 * time.Second).
		WithRetryBackoff(time.Millisecond).
		WithRequestsPerSecond(1000).
		WithRequestBurst(100)
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := testConfigBuilder().Build()
	require.NoError(t, err)
	return cfg
}

// spyFinalizer captures run statistics
type spyFinalizer struct {
	mu       sync.Mutex
	domain   string
	success  bool
	products int
	calls    int
}

func (s *spyFinalizer) RecordRunStats(domain string, success bool, productCount int, warningCount int, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domain = domain
	s.success = success
	s.products = productCount
	s.calls++
}

// spyMetadataSink counts fetches and errors
type spyMetadataSink struct {
	metadata.NoopSink
	mu      sync.Mutex
	fetches int
	causes  []metadata.ErrorCause
}

func (s *spyMetadataSink) RecordFetch(fetchURL string, httpStatus int, duration time.Duration, contentType string, retryCount int, sourceKind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
}

func (s *spyMetadataSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	errorString string,
	attrs []metadata.Attribute,
) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.causes = append(s.causes, cause)
}

// fakeEnhancer returns a fixed output or error
type fakeEnhancer struct {
	out   enhancer.Output
	err   error
	calls atomic.Int64
}

func (f *fakeEnhancer) Enhance(ctx context.Context, in enhancer.Input) (enhancer.Output, error) {
	f.calls.Add(1)
	if f.err != nil {
		return enhancer.Output{BrandContext: in.BrandContext, FAQs: in.FAQs}, f.err
	}
	return f.out, nil
}
