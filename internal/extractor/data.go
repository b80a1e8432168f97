package extractor

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/store-insights/internal/insight"
	"github.com/rohmanhakim/store-insights/internal/source"
)

// Partial is the outcome of one extractor: the best value obtainable, whether
// anything was found, which source supplied it, and a note when it is empty.
type Partial[T any] struct {
	Found  bool
	Value  T
	Source source.Kind
	Note   string
}

func found[T any](value T, src source.Kind) Partial[T] {
	return Partial[T]{Found: true, Value: value, Source: src}
}

func notFound[T any](empty T, note string) Partial[T] {
	return Partial[T]{Found: false, Value: empty, Note: note}
}

// Page is a parsed HTML source. The document is shared read-only between
// extractors; anything that needs to mutate it works on a clone.
type Page struct {
	Kind source.Kind
	URL  url.URL
	Doc  *goquery.Document
}

func (p Page) Valid() bool {
	return p.Doc != nil
}

// Root is the storefront root the page belongs to.
func (p Page) Root() url.URL {
	return url.URL{Scheme: p.URL.Scheme, Host: p.URL.Host}
}

// FeedOptions bounds product feed parsing.
type FeedOptions struct {
	// Cap is the maximum number of products kept.
	Cap int
	// Root is the storefront root used to build product URLs.
	Root url.URL
	// PageSize is the number of records the feed returns per page.
	PageSize int
}

type ProductsResult struct {
	Products []insight.Product
	Stats    insight.FeedStats
	// ShopName is the optional top-level shop.name of the feed.
	ShopName string
	Found    bool
	Note     string
}

// Options bounds the HTML extractors.
type Options struct {
	ProductCap int
	HeroLimit  int
	FAQLimit   int
}

func DefaultOptions() Options {
	return Options{
		ProductCap: 250,
		HeroLimit:  10,
		FAQLimit:   50,
	}
}

// BrandInput gathers every signal the brand-name chain consults.
type BrandInput struct {
	ShopName string
	Home     Page
	About    Page
	Host     string
}
