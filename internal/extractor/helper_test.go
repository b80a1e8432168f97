package extractor_test

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rohmanhakim/store-insights/internal/extractor"
	"github.com/rohmanhakim/store-insights/internal/fetcher"
	"github.com/rohmanhakim/store-insights/internal/metadata"
	"github.com/rohmanhakim/store-insights/internal/source"
	"github.com/stretchr/testify/require"
)

// spyMetadataSink captures recorded errors and extraction outcomes
type spyMetadataSink struct {
	metadata.NoopSink
	errors      []recordedError
	extractions []recordedExtraction
}

type recordedError struct {
	PackageName string
	Action      string
	Cause       metadata.ErrorCause
}

type recordedExtraction struct {
	Field string
	Found bool
	Count int
}

func (s *spyMetadataSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	errorString string,
	attrs []metadata.Attribute,
) {
	s.errors = append(s.errors, recordedError{PackageName: packageName, Action: action, Cause: cause})
}

func (s *spyMetadataSink) RecordExtraction(field string, found bool, count int, attrs []metadata.Attribute) {
	s.extractions = append(s.extractions, recordedExtraction{Field: field, Found: found, Count: count})
}

const shopRoot = "https://shop.example.com"

func mustParseURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func okSource(t *testing.T, kind source.Kind, rawURL string, body string) source.RawSource {
	t.Helper()
	return source.RawSource{
		Kind:   kind,
		URL:    mustParseURL(t, rawURL),
		Body:   []byte(body),
		Status: fetcher.StatusOk,
		Code:   200,
	}
}

func pageFromHTML(t *testing.T, kind source.Kind, rawURL string, body string) extractor.Page {
	t.Helper()
	page, err := extractor.ParsePage(okSource(t, kind, rawURL, body))
	require.Nil(t, err)
	return page
}

func homePage(t *testing.T, body string) extractor.Page {
	t.Helper()
	return pageFromHTML(t, source.KindHomePage, shopRoot, body)
}

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("fixture", name))
	require.NoError(t, err, "failed to read fixture %s", name)
	return string(data)
}
