package extractor

import (
	"net/url"
	"time"

	"github.com/rohmanhakim/store-insights/internal/insight"
	"github.com/rohmanhakim/store-insights/internal/mdconvert"
	"github.com/rohmanhakim/store-insights/internal/metadata"
	"github.com/rohmanhakim/store-insights/internal/sanitizer"
	"github.com/rohmanhakim/store-insights/internal/source"
)

/*
Responsibilities
- Turn fetched sources into typed field groups
- Isolate field groups: a failing extractor never affects another
- Report per-field outcomes and recoverable errors to metadata

Every method is safe for concurrent use. Pages are read-only; regions
that need cleanup are sanitized on a clone.
*/

type Extractor struct {
	metadataSink metadata.MetadataSink
	registry     *Registry
	sanitizer    sanitizer.HTMLSanitizer
	rule         mdconvert.ConvertRule
	options      Options
}

func NewExtractor(metadataSink metadata.MetadataSink, registry *Registry, options Options) *Extractor {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	if registry == nil {
		registry = DefaultRegistry()
	}
	defaults := DefaultOptions()
	if options.ProductCap <= 0 {
		options.ProductCap = defaults.ProductCap
	}
	if options.HeroLimit <= 0 {
		options.HeroLimit = defaults.HeroLimit
	}
	if options.FAQLimit <= 0 {
		options.FAQLimit = defaults.FAQLimit
	}
	return &Extractor{
		metadataSink: metadataSink,
		registry:     registry,
		sanitizer:    sanitizer.NewHTMLSanitizer(metadataSink),
		rule:         mdconvert.NewRule(metadataSink),
		options:      options,
	}
}

// ParseSource parses a raw HTML source. Absent sources are reported by the
// fetcher already; only content errors are recorded here.
func (e *Extractor) ParseSource(raw source.RawSource) (Page, bool) {
	page, err := ParsePage(raw)
	if err != nil {
		if extractionErr, ok := err.(*ExtractionError); ok && extractionErr.Cause != ErrCauseSourceMissing {
			e.recordError("Extractor.ParseSource", extractionErr, raw.URL)
		}
		return Page{}, false
	}
	return page, true
}

func (e *Extractor) Products(raw source.RawSource, root url.URL) ProductsResult {
	result := ExtractProducts(raw, FeedOptions{Cap: e.options.ProductCap, Root: root})
	if result.Note == string(ErrCauseFeedNotJSON) {
		e.recordError("Extractor.Products", &ExtractionError{
			Message: "product feed body is not json",
			Cause:   ErrCauseFeedNotJSON,
		}, raw.URL)
	}
	e.recordExtraction(insight.FieldProducts, result.Found, len(result.Products))
	return result
}

func (e *Extractor) HeroProducts(home Page, catalog []insight.Product) Partial[[]insight.Product] {
	p := ExtractHeroProducts(home, catalog, e.options.HeroLimit)
	e.recordExtraction(insight.FieldHeroProducts, p.Found, len(p.Value))
	return p
}

func (e *Extractor) SocialHandles(pages ...Page) Partial[[]insight.SocialHandle] {
	p := ExtractSocialHandles(e.registry.SocialRecognizers(), pages...)
	e.recordExtraction(insight.FieldSocialHandles, p.Found, len(p.Value))
	return p
}

func (e *Extractor) ContactInfo(pages ...Page) Partial[insight.ContactInfo] {
	p := ExtractContactInfo(pages...)
	e.recordExtraction(insight.FieldContactInfo, p.Found, len(p.Value.Emails)+len(p.Value.Phones))
	return p
}

func (e *Extractor) Policy(page Page, kind insight.PolicyKind) Partial[insight.Policy] {
	p := ExtractPolicy(page, kind, &e.sanitizer, e.rule)
	count := 0
	if p.Found {
		count = 1
	}
	e.recordExtraction(insight.FieldPolicies+"."+string(kind), p.Found, count)
	return p
}

func (e *Extractor) FAQs(page Page) Partial[[]insight.FAQEntry] {
	p := ExtractFAQs(page, e.registry.FAQMatchers(), e.options.FAQLimit)
	e.recordExtraction(insight.FieldFAQs, p.Found, len(p.Value))
	return p
}

func (e *Extractor) ImportantLinks(pages ...Page) Partial[[]insight.ImportantLink] {
	p := ExtractImportantLinks(e.registry.LinkRules(), pages...)
	e.recordExtraction(insight.FieldImportantLinks, p.Found, len(p.Value))
	return p
}

func (e *Extractor) Brand(in BrandInput) Partial[insight.BrandContext] {
	p := ExtractBrand(in)
	count := 0
	if p.Found {
		count = 1
	}
	e.recordExtraction(insight.FieldBrand, p.Found, count)
	return p
}

func (e *Extractor) recordExtraction(field string, found bool, count int) {
	e.metadataSink.RecordExtraction(field, found, count, nil)
}

func (e *Extractor) recordError(action string, err *ExtractionError, u url.URL) {
	e.metadataSink.RecordError(
		time.Now(),
		"extractor",
		action,
		mapExtractionErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, u.String()),
		},
	)
}
