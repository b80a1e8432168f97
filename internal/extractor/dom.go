package extractor

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/store-insights/internal/source"
	"github.com/rohmanhakim/store-insights/internal/sanitizer"
	"github.com/rohmanhakim/store-insights/pkg/failure"
	"golang.org/x/net/html"
)

/*
Responsibilities
- Parse fetched HTML into a shared, read-only DOM
- Locate content regions through prioritized selectors
- Reject regions that carry no meaningful text

Parsing never fails on malformed markup; the HTML5 parser repairs it.
Only absent or empty sources yield an error.
*/

// ParsePage parses an Ok RawSource. The error is recoverable and only
// signals that the page's field groups stay empty.
func ParsePage(raw source.RawSource) (Page, failure.ClassifiedError) {
	if !raw.Usable() {
		return Page{}, &ExtractionError{
			Message: fmt.Sprintf("%s is %s", raw.Kind, raw.Status),
			Cause:   ErrCauseSourceMissing,
		}
	}
	if looksLikeJSON(raw.Body) {
		return Page{}, &ExtractionError{
			Message: fmt.Sprintf("%s returned a json body", raw.Kind),
			Cause:   ErrCauseNotHTML,
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Body))
	if err != nil {
		return Page{}, &ExtractionError{
			Message: fmt.Sprintf("failed to parse HTML: %v", err),
			Cause:   ErrCauseNotHTML,
		}
	}
	return Page{Kind: raw.Kind, URL: raw.URL, Doc: doc}, nil
}

func looksLikeJSON(body []byte) bool {
	trimmed := bytes.TrimLeftFunc(body, unicode.IsSpace)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

// firstRegion returns the first selector match holding meaningful content.
func firstRegion(doc *goquery.Document, selectors []string) *goquery.Selection {
	for _, selector := range selectors {
		var region *goquery.Selection
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if isMeaningful(s.Nodes[0]) {
				region = s
				return false
			}
			return true
		})
		if region != nil {
			return region
		}
	}
	return nil
}

// isMeaningful reports whether a node carries readable text rather than
// navigation only. A node is meaningful when it has visible text and is
// not dominated by link text.
func isMeaningful(node *html.Node) bool {
	if node == nil {
		return false
	}

	var stats struct {
		nonWhitespace  int
		textLength     int
		links          int
		linkTextLength int
	}

	var walk func(n *html.Node, inLink bool)
	walk = func(n *html.Node, inLink bool) {
		switch n.Type {
		case html.TextNode:
			trimmed := strings.TrimSpace(n.Data)
			stats.textLength += len(trimmed)
			for _, r := range trimmed {
				if !unicode.IsSpace(r) {
					stats.nonWhitespace++
				}
			}
			if inLink {
				stats.linkTextLength += len(trimmed)
			}
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			case "a":
				stats.links++
				inLink = true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inLink)
		}
	}
	walk(node, false)

	const minNonWhitespace = 20
	const maxLinkDensity = 0.8

	if stats.nonWhitespace < minNonWhitespace {
		return false
	}
	if stats.textLength > 0 && stats.links > 2 {
		if float64(stats.linkTextLength)/float64(stats.textLength) > maxLinkDensity {
			return false
		}
	}
	return true
}

// selectionText returns the whitespace-collapsed visible text of s.
func selectionText(s *goquery.Selection) string {
	if s == nil || s.Length() == 0 {
		return ""
	}
	var parts []string
	for _, n := range s.Nodes {
		if t := sanitizer.NormalizedText(n); t != "" {
			parts = append(parts, t)
		}
	}
	return sanitizer.CollapseWhitespace(strings.Join(parts, " "))
}

// metaContent returns the content attribute of the first matching meta tag.
func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return sanitizer.CollapseWhitespace(content)
}

// documentOrder indexes every node of the document in traversal order so that
// extractors can compare positions of unrelated nodes.
func documentOrder(doc *goquery.Document) map[*html.Node]int {
	order := make(map[*html.Node]int)
	i := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		order[n] = i
		i++
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, root := range doc.Nodes {
		walk(root)
	}
	return order
}
