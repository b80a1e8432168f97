package storage_test

import (
	"context"
	"sync"
	"time"

	"github.com/rohmanhakim/store-insights/internal/insight"
	"github.com/rohmanhakim/store-insights/internal/metadata"
	"github.com/rohmanhakim/store-insights/internal/storage"
)

// metadataSinkSpy records errors and artifacts
type metadataSinkSpy struct {
	metadata.NoopSink
	mu            sync.Mutex
	errorCauses   []metadata.ErrorCause
	artifactKinds []metadata.ArtifactKind
	artifactPaths []string
}

func (m *metadataSinkSpy) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCauses = append(m.errorCauses, cause)
}

func (m *metadataSinkSpy) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifactKinds = append(m.artifactKinds, kind)
	m.artifactPaths = append(m.artifactPaths, path)
}

// gatedSink blocks each write until released
type gatedSink struct {
	started chan string
	release chan struct{}
	mu      sync.Mutex
	written []string
}

func newGatedSink() *gatedSink {
	return &gatedSink{
		started: make(chan string, 16),
		release: make(chan struct{}),
	}
}

func (g *gatedSink) Write(ctx context.Context, doc insight.Document) (storage.WriteResult, error) {
	g.started <- doc.Domain
	<-g.release
	g.mu.Lock()
	defer g.mu.Unlock()
	g.written = append(g.written, doc.Domain)
	return storage.NewWriteResult(doc.Domain, "", doc.Fingerprint), nil
}

func (g *gatedSink) domains() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.written...)
}

func sampleDocument() insight.Document {
	doc := insight.NewDocument("acme-goods.com", "https://acme-goods.com")
	doc.BrandName = "Acme-goods"
	doc.ExtractionSuccess = true
	doc.ExtractionTimestamp = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc.Fingerprint = "f1e2d3"
	doc.ProductCatalog = []insight.Product{
		{ID: "1", Title: "Classic Tee", Handle: "classic-tee", Tags: []string{"cotton"}, URL: "https://acme-goods.com/products/classic-tee"},
	}
	doc.TotalProducts = 1
	doc.Tags = []string{"cotton"}
	username := "acmegoods"
	doc.SocialHandles = []insight.SocialHandle{
		{Platform: insight.PlatformInstagram, URL: "https://instagram.com/acmegoods", Username: &username},
	}
	doc.ContactInfo.Emails = []string{"hello@acme-goods.com"}
	doc.Policies = []insight.Policy{
		{Kind: insight.PolicyReturn, Title: "Refund policy", Content: "30 days.", Markdown: "30 days.", SourceURL: "https://acme-goods.com/policies/refund-policy"},
	}
	doc.FAQs = []insight.FAQEntry{{Question: "Do you ship abroad?", Answer: "Yes."}}
	return doc
}
