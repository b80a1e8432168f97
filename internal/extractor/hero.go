package extractor

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/store-insights/internal/insight"
	"github.com/rohmanhakim/store-insights/internal/sanitizer"
	"github.com/rohmanhakim/store-insights/pkg/urlutil"
)

var productHandlePattern = regexp.MustCompile(`(?i)/products/([^/?#]+)`)

// ExtractHeroProducts collects products linked from the featured region of
// the home page. The first region holding product links wins. Handles found
// in the catalog map to the full product; others become minimal products.
func ExtractHeroProducts(page Page, catalog []insight.Product, limit int) Partial[[]insight.Product] {
	empty := []insight.Product{}
	if !page.Valid() {
		return notFound(empty, "home page unavailable")
	}
	if limit <= 0 {
		limit = DefaultOptions().HeroLimit
	}

	byHandle := make(map[string]insight.Product, len(catalog))
	for _, p := range catalog {
		byHandle[strings.ToLower(p.Handle)] = p
	}

	for _, selector := range heroRegionSelectors {
		var heroes []insight.Product
		page.Doc.Find(selector).EachWithBreak(func(_ int, region *goquery.Selection) bool {
			heroes = heroLinks(page, region, byHandle, limit)
			return len(heroes) == 0
		})
		if len(heroes) > 0 {
			return found(heroes, page.Kind)
		}
	}
	return notFound(empty, "no product links in featured regions")
}

func heroLinks(page Page, region *goquery.Selection, byHandle map[string]insight.Product, limit int) []insight.Product {
	var heroes []insight.Product
	seen := make(map[string]struct{})
	region.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		resolved, ok := urlutil.Resolve(page.URL, href)
		if !ok || !strings.EqualFold(resolved.Hostname(), page.URL.Hostname()) {
			return true
		}
		handle := handleFromPath(resolved.Path)
		if handle == "" {
			return true
		}
		if _, dup := seen[handle]; dup {
			return true
		}
		seen[handle] = struct{}{}

		if p, ok := byHandle[handle]; ok {
			heroes = append(heroes, p)
		} else {
			heroes = append(heroes, minimalProduct(page, a, handle))
		}
		return len(heroes) < limit
	})
	return heroes
}

func handleFromPath(path string) string {
	m := productHandlePattern.FindStringSubmatch(path)
	if m == nil {
		return ""
	}
	handle, err := url.PathUnescape(m[1])
	if err != nil {
		handle = m[1]
	}
	handle = strings.ToLower(strings.TrimSpace(handle))
	if handle == "" || strings.HasSuffix(handle, ".json") || strings.HasSuffix(handle, ".js") {
		return ""
	}
	return handle
}

func minimalProduct(page Page, a *goquery.Selection, handle string) insight.Product {
	title, _ := a.Attr("title")
	title = sanitizer.CollapseWhitespace(title)
	if title == "" {
		title = selectionText(a)
	}
	if title == "" {
		if alt, ok := a.Find("img[alt]").First().Attr("alt"); ok {
			title = sanitizer.CollapseWhitespace(alt)
		}
	}
	if title == "" {
		title = handle
	}
	return insight.Product{
		Title:  title,
		Handle: handle,
		URL:    productURL(page.Root(), handle),
	}.Normalize()
}
