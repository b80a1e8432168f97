package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/store-insights/internal/insight"
	"github.com/rohmanhakim/store-insights/internal/mdconvert"
	"github.com/rohmanhakim/store-insights/internal/sanitizer"
	"golang.org/x/net/html"
)

//nolint:gochecknoglobals // static lookup table
var titleSeparators = []string{" | ", " – ", " — ", " - ", " :: ", " · "}

// ExtractPolicy reads one policy page. Any Ok page yields a policy even when
// its body is empty; the title falls back to the kind's default.
func ExtractPolicy(
	page Page,
	kind insight.PolicyKind,
	htmlSanitizer sanitizer.Sanitizer,
	rule mdconvert.ConvertRule,
) Partial[insight.Policy] {
	policy := insight.Policy{Kind: kind}
	if !page.Valid() {
		return notFound(policy, string(kind)+" policy page unavailable")
	}
	policy.SourceURL = page.URL.String()

	region := firstRegion(page.Doc, policyRegionSelectors)
	if region == nil {
		region = page.Doc.Find("body").First()
	}

	policy.Title = policyTitle(page.Doc, region, kind)

	var node *html.Node
	if region != nil && region.Length() > 0 {
		node = region.Nodes[0]
	}
	sanitized, err := htmlSanitizer.Sanitize(node)
	if err != nil {
		result := found(policy, page.Kind)
		result.Note = "policy page has no readable content"
		return result
	}
	policy.Content = sanitized.GetText()

	converted, convErr := rule.Convert(sanitized, mdconvert.ConvertParam{BaseURL: rootString(page)})
	if convErr == nil {
		policy.Markdown = converted.String()
	}

	result := found(policy, page.Kind)
	if convErr != nil {
		result.Note = "markdown conversion failed"
	}
	return result
}

func policyTitle(doc *goquery.Document, region *goquery.Selection, kind insight.PolicyKind) string {
	if region != nil {
		if t := selectionText(region.Find("h1").First()); t != "" {
			return t
		}
	}
	if t := selectionText(doc.Find("h1").First()); t != "" {
		return t
	}
	if t := titlePrefix(doc); t != "" {
		return t
	}
	return kind.DefaultTitle()
}

// titlePrefix returns the <title> text before the first site separator.
func titlePrefix(doc *goquery.Document) string {
	title := sanitizer.CollapseWhitespace(doc.Find("title").First().Text())
	for _, sep := range titleSeparators {
		if before, _, ok := strings.Cut(title, sep); ok {
			return strings.TrimSpace(before)
		}
	}
	return title
}

func rootString(page Page) string {
	root := page.Root()
	return root.String()
}
