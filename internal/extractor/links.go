package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/store-insights/internal/insight"
	"github.com/rohmanhakim/store-insights/internal/sanitizer"
	"github.com/rohmanhakim/store-insights/internal/source"
	"github.com/rohmanhakim/store-insights/pkg/urlutil"
)

// LinkRule maps navigation links to a canonical label. A link matches when
// its text contains a keyword or its path contains a path hint.
type LinkRule struct {
	Label     string
	Keywords  []string
	PathHints []string
}

func (r LinkRule) matches(text, path string) bool {
	for _, k := range r.Keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	for _, h := range r.PathHints {
		if strings.Contains(path, h) {
			return true
		}
	}
	return false
}

// DefaultLinkRules returns the built-in vocabulary in label priority order.
func DefaultLinkRules() []LinkRule {
	return []LinkRule{
		{
			Label:     "track order",
			Keywords:  []string{"track order", "track your order", "track my order", "order tracking", "order status"},
			PathHints: []string{"/apps/track", "track-order", "order-status", "/tracking"},
		},
		{
			Label:     "contact us",
			Keywords:  []string{"contact"},
			PathHints: []string{"/pages/contact", "/contact"},
		},
		{
			Label:     "blog",
			Keywords:  []string{"blog", "journal"},
			PathHints: []string{"/blogs/"},
		},
		{
			Label:     "FAQ",
			Keywords:  []string{"faq", "frequently asked"},
			PathHints: []string{"/pages/faq", "/faq"},
		},
		{
			Label:     "account",
			Keywords:  []string{"my account", "account", "log in", "login", "sign in"},
			PathHints: []string{"/account"},
		},
		{
			Label:     "support",
			Keywords:  []string{"support", "help", "customer care", "customer service"},
			PathHints: []string{"/pages/support", "/pages/help"},
		},
		{
			Label:     "about us",
			Keywords:  []string{"about"},
			PathHints: []string{"/pages/about"},
		},
		{
			Label:     "size guide",
			Keywords:  []string{"size guide", "size chart", "sizing"},
			PathHints: []string{"size-guide", "size-chart"},
		},
	}
}

// ExtractImportantLinks classifies navigation links. Home pages contribute
// their nav, header and footer links; navigation pages contribute every link.
// The first link per label wins.
func ExtractImportantLinks(rules []LinkRule, pages ...Page) Partial[[]insight.ImportantLink] {
	links := []insight.ImportantLink{}
	seen := make(map[string]struct{})
	var src source.Kind

	for _, page := range pages {
		if !page.Valid() {
			continue
		}
		anchors := page.Doc.Find(navRegionSelector)
		if page.Kind == source.KindNavPage {
			anchors = page.Doc.Find("body a[href]")
		}
		anchors.Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			resolved, ok := urlutil.Resolve(page.URL, href)
			if !ok {
				return
			}
			text := anchorText(a)
			lowerText := strings.ToLower(text)
			lowerPath := strings.ToLower(resolved.Path)
			for _, rule := range rules {
				if !rule.matches(lowerText, lowerPath) {
					continue
				}
				if _, dup := seen[rule.Label]; dup {
					continue
				}
				seen[rule.Label] = struct{}{}
				resolved.Fragment = ""
				links = append(links, insight.ImportantLink{
					Label: rule.Label,
					Text:  text,
					URL:   resolved.String(),
				})
				if src == "" {
					src = page.Kind
				}
				return
			}
		})
	}

	if len(links) == 0 {
		return notFound(links, "no recognizable navigation links")
	}
	return found(links, src)
}

// anchorText falls back to aria-label and title for icon-only links.
func anchorText(a *goquery.Selection) string {
	if t := selectionText(a); t != "" {
		return t
	}
	for _, attr := range []string{"aria-label", "title"} {
		if v, ok := a.Attr(attr); ok {
			if v = sanitizer.CollapseWhitespace(v); v != "" {
				return v
			}
		}
	}
	return ""
}
