package extractor

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/store-insights/internal/insight"
	"github.com/rohmanhakim/store-insights/internal/sanitizer"
	"github.com/rohmanhakim/store-insights/internal/source"
	"github.com/rohmanhakim/store-insights/pkg/urlutil"
)

const (
	maxTitleNameRunes = 40
	maxAboutRunes     = 2000
)

//nolint:gochecknoglobals // static lookup table
var genericTitleParts = map[string]struct{}{
	"home": {}, "homepage": {}, "home page": {}, "welcome": {}, "shop": {},
	"store": {}, "online store": {}, "official site": {}, "official website": {},
	"official store": {}, "shop online": {},
}

//nolint:gochecknoglobals // static lookup table
var aboutRegionSelectors = []string{".rte", "main", "article", "[role=main]", "#MainContent", ".page-content"}

// Brand name sources reported in the field report.
const (
	BrandSourceFeed   = "feed"
	BrandSourceOG     = "og:site_name"
	BrandSourceTitle  = "title"
	BrandSourceDomain = "domain"
)

// ExtractBrand resolves the brand name through the chain feed shop name,
// og:site_name, page title, then host label. The name is always resolved
// when the host is known. Note carries the source of the name.
func ExtractBrand(in BrandInput) Partial[insight.BrandContext] {
	var ctx insight.BrandContext
	var nameSource string

	switch {
	case strings.TrimSpace(in.ShopName) != "":
		ctx.Name, nameSource = sanitizer.CollapseWhitespace(in.ShopName), BrandSourceFeed
	case in.Home.Valid() && metaContent(in.Home.Doc, `meta[property="og:site_name"]`) != "":
		ctx.Name, nameSource = metaContent(in.Home.Doc, `meta[property="og:site_name"]`), BrandSourceOG
	case in.Home.Valid() && nameFromTitle(in.Home.Doc) != "":
		ctx.Name, nameSource = nameFromTitle(in.Home.Doc), BrandSourceTitle
	default:
		ctx.Name, nameSource = urlutil.HostLabel(in.Host), BrandSourceDomain
	}

	if in.Home.Valid() {
		ctx.Description = metaContent(in.Home.Doc, `meta[name="description"]`)
		if ctx.Description == "" {
			ctx.Description = metaContent(in.Home.Doc, `meta[property="og:description"]`)
		}
	}
	if in.About.Valid() {
		ctx.About = aboutText(in.About)
	}

	if ctx.Name == "" {
		return notFound(ctx, "brand name unresolved")
	}
	src := source.KindHomePage
	if nameSource == BrandSourceFeed {
		src = source.KindProductFeed
	}
	result := found(ctx, src)
	result.Note = nameSource
	return result
}

// nameFromTitle picks the shortest non-generic part of the page title.
func nameFromTitle(doc *goquery.Document) string {
	title := sanitizer.CollapseWhitespace(doc.Find("title").First().Text())
	if title == "" {
		return ""
	}
	parts := []string{title}
	for _, sep := range titleSeparators {
		if strings.Contains(title, sep) {
			parts = strings.Split(title, sep)
			break
		}
	}

	best := ""
	for _, part := range parts {
		part = strings.TrimSpace(part)
		lower := strings.ToLower(part)
		for _, prefix := range []string{"welcome to ", "shop "} {
			if strings.HasPrefix(lower, prefix) {
				part = strings.TrimSpace(part[len(prefix):])
				lower = strings.ToLower(part)
			}
		}
		if _, generic := genericTitleParts[lower]; generic || part == "" {
			continue
		}
		if best == "" || utf8.RuneCountInString(part) < utf8.RuneCountInString(best) {
			best = part
		}
	}
	if utf8.RuneCountInString(best) > maxTitleNameRunes {
		return ""
	}
	return best
}

func aboutText(page Page) string {
	region := firstRegion(page.Doc, aboutRegionSelectors)
	if region == nil {
		return ""
	}
	return truncateRunes(selectionText(region), maxAboutRunes)
}

// truncateRunes cuts s to at most n runes at a word boundary.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:n])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}
