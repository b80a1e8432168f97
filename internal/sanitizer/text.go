package sanitizer

import (
	"strings"

	"golang.org/x/net/html"
)

var blockElements = map[string]bool{
	"address": true, "article": true, "blockquote": true, "br": true, "dd": true,
	"div": true, "dl": true, "dt": true, "figcaption": true, "figure": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"hr": true, "li": true, "main": true, "ol": true, "p": true, "pre": true,
	"section": true, "summary": true, "details": true, "table": true, "tr": true, "ul": true,
}

var invisibleElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true, "head": true,
}

// NormalizedText returns the visible text of n. Runs of whitespace collapse
// to one space, every block element starts a new line and blank lines are dropped.
func NormalizedText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var raw strings.Builder
	writeText(&raw, n)

	lines := strings.Split(raw.String(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if collapsed := strings.Join(strings.Fields(line), " "); collapsed != "" {
			out = append(out, collapsed)
		}
	}
	return strings.Join(out, "\n")
}

// CollapseWhitespace joins all whitespace-separated fields of s with single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(strings.ReplaceAll(n.Data, "\n", " "))
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		if invisibleElements[n.Data] {
			return
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		b.WriteString("\n")
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		writeText(b, child)
	}
	if block {
		b.WriteString("\n")
	}
	if n.Type == html.ElementNode && (n.Data == "td" || n.Data == "th") {
		b.WriteString(" ")
	}
}
