package aggregator

import (
	"fmt"
	"strings"
	"time"

	"github.com/rohmanhakim/store-insights/internal/extractor"
	"github.com/rohmanhakim/store-insights/internal/fetcher"
	"github.com/rohmanhakim/store-insights/internal/insight"
	"github.com/rohmanhakim/store-insights/internal/metadata"
	"github.com/rohmanhakim/store-insights/internal/source"
	"github.com/rohmanhakim/store-insights/internal/target"
	"golang.org/x/sync/errgroup"
)

// policySources pairs each policy kind with the source kind it is read from.
//
//nolint:gochecknoglobals // static lookup table
var policySources = map[insight.PolicyKind]source.Kind{
	insight.PolicyPrivacy:  source.KindPrivacyPolicy,
	insight.PolicyReturn:   source.KindReturnPolicy,
	insight.PolicyTerms:    source.KindTermsPolicy,
	insight.PolicyShipping: source.KindShippingPolicy,
	insight.PolicyCookie:   source.KindCookiePolicy,
}

// extraction holds the outcome of every extractor of one run. Each field is
// written by exactly one goroutine.
type extraction struct {
	products extractor.ProductsResult
	hero     extractor.Partial[[]insight.Product]
	brand    extractor.Partial[insight.BrandContext]
	social   extractor.Partial[[]insight.SocialHandle]
	contact  extractor.Partial[insight.ContactInfo]
	policies []extractor.Partial[insight.Policy]
	faqs     extractor.Partial[[]insight.FAQEntry]
	links    extractor.Partial[[]insight.ImportantLink]
	// failures holds one slot per extractor goroutine so that warnings keep
	// a stable order.
	failures []string
}

// assemble runs the extractors concurrently and merges their partial
// results into one validated document.
func (a *Aggregator) assemble(t target.StoreTarget, sources sourceSet) insight.Document {
	pages := make(map[source.Kind]extractor.Page)
	for _, kind := range source.Kinds() {
		if kind == source.KindProductFeed {
			continue
		}
		if page, ok := a.extractor.ParseSource(sources.get(kind)); ok {
			pages[kind] = page
		}
	}
	home := pages[source.KindHomePage]
	contactPages := []extractor.Page{home, pages[source.KindContactPage], pages[source.KindAboutPage]}

	policyKinds := insight.PolicyKinds()
	ex := extraction{
		policies: make([]extractor.Partial[insight.Policy], len(policyKinds)),
	}
	tasks := []struct {
		name string
		run  func()
	}{
		{insight.FieldProducts, func() {
			ex.products = a.extractor.Products(sources.get(source.KindProductFeed), t.Root())
			ex.hero = a.extractor.HeroProducts(home, ex.products.Products)
			ex.brand = a.extractor.Brand(extractor.BrandInput{
				ShopName: ex.products.ShopName,
				Home:     home,
				About:    pages[source.KindAboutPage],
				Host:     t.Hostname(),
			})
		}},
		{insight.FieldSocialHandles, func() {
			ex.social = a.extractor.SocialHandles(contactPages...)
		}},
		{insight.FieldContactInfo, func() {
			ex.contact = a.extractor.ContactInfo(contactPages...)
		}},
		{insight.FieldPolicies, func() {
			for i, kind := range policyKinds {
				ex.policies[i] = a.extractor.Policy(pages[policySources[kind]], kind)
			}
		}},
		{insight.FieldFAQs, func() {
			ex.faqs = a.extractor.FAQs(pages[source.KindFAQPage])
		}},
		{insight.FieldImportantLinks, func() {
			ex.links = a.extractor.ImportantLinks(home, pages[source.KindNavPage])
		}},
	}

	ex.failures = make([]string, len(tasks))
	g := new(errgroup.Group)
	for i, task := range tasks {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					ex.failures[i] = fmt.Sprintf("%s extractor failed: %v", task.name, r)
					a.metadataSink.RecordError(
						time.Now(),
						"aggregator",
						"Aggregator.assemble",
						metadata.CauseInvariantViolation,
						ex.failures[i],
						[]metadata.Attribute{
							metadata.NewAttr(metadata.AttrField, task.name),
							metadata.NewAttr(metadata.AttrDomain, t.Domain()),
						},
					)
				}
			}()
			task.run()
			return nil
		})
	}
	_ = g.Wait()

	return merge(t, sources, ex)
}

func merge(t target.StoreTarget, sources sourceSet, ex extraction) insight.Document {
	doc := insight.NewDocument(t.Domain(), t.String())
	feed := sources.get(source.KindProductFeed)

	if ex.products.Products != nil {
		doc.ProductCatalog = ex.products.Products
	}
	doc.FeedStats = ex.products.Stats
	doc.ExtractionSuccess = feed.OK() && len(doc.ProductCatalog) > 0

	if ex.hero.Value != nil {
		doc.HeroProducts = ex.hero.Value
	}
	if ex.social.Value != nil {
		doc.SocialHandles = ex.social.Value
	}
	if ex.contact.Value.Emails != nil && ex.contact.Value.Phones != nil {
		doc.ContactInfo = ex.contact.Value
	}
	for _, p := range ex.policies {
		if p.Found {
			doc.Policies = append(doc.Policies, p.Value)
		}
	}
	if ex.faqs.Value != nil {
		doc.FAQs = ex.faqs.Value
	}
	if ex.links.Value != nil {
		doc.ImportantLinks = ex.links.Value
	}
	doc.BrandContext = ex.brand.Value
	doc.BrandName = ex.brand.Value.Name
	doc.Tags = collectTags(doc.ProductCatalog)

	doc.Warnings = append(doc.Warnings, validate(&doc)...)
	doc.TotalProducts = len(doc.ProductCatalog)

	doc.FieldReport = fieldReport(doc, feed, ex)
	doc.Warnings = append(doc.Warnings, sourceWarnings(sources, ex)...)
	for _, f := range ex.failures {
		if f != "" {
			doc.Warnings = append(doc.Warnings, f)
		}
	}
	return doc
}

// collectTags unions product tags in first-seen order.
func collectTags(products []insight.Product) []string {
	tags := []string{}
	seen := make(map[string]struct{})
	for _, p := range products {
		for _, tag := range p.Tags {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	return tags
}

func fieldReport(doc insight.Document, feed source.RawSource, ex extraction) insight.FieldReport {
	report := insight.FieldReport{}

	productNote := ex.products.Note
	if productNote == "" && !feed.OK() {
		productNote = "product feed " + feed.Status.String()
	}
	report[insight.FieldProducts] = status(len(doc.ProductCatalog) > 0, len(doc.ProductCatalog), sourceIf(ex.products.Found, source.KindProductFeed), productNote)
	report[insight.FieldHeroProducts] = partialStatus(ex.hero, len(doc.HeroProducts))
	report[insight.FieldSocialHandles] = partialStatus(ex.social, len(doc.SocialHandles))
	report[insight.FieldContactInfo] = partialStatus(ex.contact, len(doc.ContactInfo.Emails)+len(doc.ContactInfo.Phones))
	report[insight.FieldFAQs] = partialStatus(ex.faqs, len(doc.FAQs))
	report[insight.FieldImportantLinks] = partialStatus(ex.links, len(doc.ImportantLinks))

	brand := partialStatus(ex.brand, 0)
	if brand.Found {
		brand.Count = 1
	}
	report[insight.FieldBrand] = brand

	var missing []string
	var policySource string
	for _, p := range ex.policies {
		if !p.Found {
			missing = append(missing, string(p.Value.Kind))
		} else if policySource == "" {
			policySource = string(p.Source)
		}
	}
	policyNote := ""
	if len(missing) > 0 {
		policyNote = "missing: " + strings.Join(missing, ", ")
	}
	report[insight.FieldPolicies] = status(len(doc.Policies) > 0, len(doc.Policies), policySource, policyNote)
	return report
}

func partialStatus[T any](p extractor.Partial[T], count int) insight.FieldStatus {
	return status(p.Found, count, string(p.Source), p.Note)
}

func status(found bool, count int, src string, note string) insight.FieldStatus {
	return insight.FieldStatus{Found: found, Count: count, Source: src, Note: note}
}

func sourceIf(ok bool, kind source.Kind) string {
	if ok {
		return string(kind)
	}
	return ""
}

// sourceWarnings reports degraded sources and feed limits in a fixed order.
func sourceWarnings(sources sourceSet, ex extraction) []string {
	var warnings []string

	feed := sources.get(source.KindProductFeed)
	stats := ex.products.Stats
	if !feed.OK() {
		warnings = append(warnings, fmt.Sprintf("product feed unavailable (%s)", feed.Status))
	}
	if stats.Skipped > 0 {
		warnings = append(warnings, fmt.Sprintf("product feed: skipped %d malformed records", stats.Skipped))
	}
	if stats.CapHit {
		warnings = append(warnings, fmt.Sprintf("product feed: product cap reached at %d", stats.Parsed))
	}
	if stats.Truncated {
		warnings = append(warnings, "product feed: response truncated")
	}
	if stats.PageFull {
		warnings = append(warnings, "product feed: first page is full, later pages not fetched")
	}

	for _, kind := range source.Kinds() {
		raw := sources.get(kind)
		switch {
		case raw.Status == fetcher.StatusTimeout:
			warnings = append(warnings, fmt.Sprintf("%s timed out", kind))
		case raw.Truncated && kind != source.KindProductFeed:
			warnings = append(warnings, fmt.Sprintf("%s body truncated", kind))
		}
	}
	return warnings
}
