package extractor

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/store-insights/internal/insight"
	"github.com/rohmanhakim/store-insights/internal/sanitizer"
	"golang.org/x/net/html"
)

/*
Responsibilities
- Recognize question/answer pairs through an ordered list of matchers
- Attach the nearest preceding section heading as category
- Deduplicate questions and cap the result

Matchers run from most to least structured; the first one producing
entries wins so that loose heuristics never mix with structured data.
*/

// FAQCandidate is a question/answer pair found by a matcher. Node and Level
// locate the question in the page for category lookup; Node is nil for
// pairs that come from embedded data.
type FAQCandidate struct {
	Question string
	Answer   string
	Node     *html.Node
	Level    int
}

// FAQMatcher recognizes one page pattern.
type FAQMatcher struct {
	Name  string
	Match func(doc *goquery.Document) []FAQCandidate
}

// questionLevel ranks non-heading question elements below every heading.
const questionLevel = 7

// DefaultFAQMatchers returns the built-in matchers in priority order.
func DefaultFAQMatchers() []FAQMatcher {
	return []FAQMatcher{
		{Name: "json-ld", Match: matchJSONLD},
		{Name: "microdata", Match: matchMicrodata},
		{Name: "details", Match: matchDetails},
		{Name: "definition-list", Match: matchDefinitionList},
		{Name: "question-heading", Match: matchQuestionHeadings},
	}
}

// ExtractFAQs runs the matchers against the page and keeps the entries of
// the first matcher that produces any.
func ExtractFAQs(page Page, matchers []FAQMatcher, limit int) Partial[[]insight.FAQEntry] {
	entries := []insight.FAQEntry{}
	if !page.Valid() {
		return notFound(entries, "faq page unavailable")
	}
	if limit <= 0 {
		limit = DefaultOptions().FAQLimit
	}

	for _, matcher := range matchers {
		candidates := matcher.Match(page.Doc)
		if len(candidates) == 0 {
			continue
		}
		entries = buildFAQEntries(page.Doc, candidates, limit)
		if len(entries) > 0 {
			return found(entries, page.Kind)
		}
	}
	return notFound(entries, "no question and answer pairs")
}

func buildFAQEntries(doc *goquery.Document, candidates []FAQCandidate, limit int) []insight.FAQEntry {
	categories := newCategoryIndex(doc)
	entries := []insight.FAQEntry{}
	seen := make(map[string]struct{})

	for _, c := range candidates {
		question := sanitizer.CollapseWhitespace(c.Question)
		answer := strings.TrimSpace(c.Answer)
		if question == "" || answer == "" {
			continue
		}
		key := strings.ToLower(question)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		entry := insight.FAQEntry{Question: question, Answer: answer}
		if c.Node != nil {
			entry.Category = categories.categoryFor(c.Node, c.Level)
		}
		entries = append(entries, entry)
		if len(entries) >= limit {
			break
		}
	}
	return entries
}

// JSON-LD

func matchJSONLD(doc *goquery.Document) []FAQCandidate {
	var out []FAQCandidate
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var payload any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &payload); err != nil {
			return
		}
		out = append(out, faqFromLD(payload)...)
	})
	return out
}

func faqFromLD(v any) []FAQCandidate {
	switch node := v.(type) {
	case []any:
		var out []FAQCandidate
		for _, item := range node {
			out = append(out, faqFromLD(item)...)
		}
		return out
	case map[string]any:
		if graph, ok := node["@graph"]; ok {
			return faqFromLD(graph)
		}
		if !hasLDType(node["@type"], "FAQPage") {
			return nil
		}
		var out []FAQCandidate
		for _, q := range asList(node["mainEntity"]) {
			question, ok := q.(map[string]any)
			if !ok || !hasLDType(question["@type"], "Question") {
				continue
			}
			name, _ := question["name"].(string)
			var answer string
			for _, a := range asList(question["acceptedAnswer"]) {
				if am, ok := a.(map[string]any); ok {
					if text, ok := am["text"].(string); ok {
						answer = fragmentText(text)
						break
					}
				}
			}
			out = append(out, FAQCandidate{Question: name, Answer: answer})
		}
		return out
	}
	return nil
}

func hasLDType(v any, want string) bool {
	for _, t := range asList(v) {
		if s, ok := t.(string); ok && strings.EqualFold(s, want) {
			return true
		}
	}
	return false
}

func asList(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{t}
	}
}

// fragmentText strips markup from an HTML fragment embedded in data.
func fragmentText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return sanitizer.CollapseWhitespace(fragment)
	}
	return selectionText(doc.Find("body"))
}

// Microdata

func matchMicrodata(doc *goquery.Document) []FAQCandidate {
	var out []FAQCandidate
	doc.Find(`[itemtype*="schema.org/Question"]`).Each(func(_ int, q *goquery.Selection) {
		name := q.Find(`[itemprop="name"]`).First()
		answer := q.Find(`[itemprop="acceptedAnswer"] [itemprop="text"]`).First()
		if answer.Length() == 0 {
			answer = q.Find(`[itemprop="acceptedAnswer"]`).First()
		}
		if name.Length() == 0 {
			return
		}
		out = append(out, FAQCandidate{
			Question: selectionText(name),
			Answer:   blockText(answer),
			Node:     name.Nodes[0],
			Level:    questionLevel,
		})
	})
	return out
}

// Disclosure widgets

func matchDetails(doc *goquery.Document) []FAQCandidate {
	var out []FAQCandidate
	doc.Find("details").Each(func(_ int, d *goquery.Selection) {
		summary := d.ChildrenFiltered("summary").First()
		if summary.Length() == 0 {
			return
		}
		body := d.Clone()
		body.ChildrenFiltered("summary").Remove()
		out = append(out, FAQCandidate{
			Question: selectionText(summary),
			Answer:   blockText(body),
			Node:     summary.Nodes[0],
			Level:    questionLevel,
		})
	})
	return out
}

// Definition lists

func matchDefinitionList(doc *goquery.Document) []FAQCandidate {
	var out []FAQCandidate
	doc.Find("dl").Each(func(_ int, dl *goquery.Selection) {
		dl.ChildrenFiltered("dt").Each(func(_ int, dt *goquery.Selection) {
			var answers []string
			for sib := dt.Next(); sib.Length() > 0 && goquery.NodeName(sib) == "dd"; sib = sib.Next() {
				if t := blockText(sib); t != "" {
					answers = append(answers, t)
				}
			}
			out = append(out, FAQCandidate{
				Question: selectionText(dt),
				Answer:   strings.Join(answers, "\n"),
				Node:     dt.Nodes[0],
				Level:    questionLevel,
			})
		})
	})
	return out
}

// Question headings

func matchQuestionHeadings(doc *goquery.Document) []FAQCandidate {
	var out []FAQCandidate
	doc.Find(faqQuestionSelector).Each(func(_ int, q *goquery.Selection) {
		question := selectionText(q)
		if !strings.HasSuffix(question, "?") {
			return
		}
		// Nested matches like <h3><strong>..?</strong></h3> are read once,
		// from the outer element.
		nested := false
		q.ParentsFiltered(faqQuestionSelector).EachWithBreak(func(_ int, p *goquery.Selection) bool {
			nested = selectionText(p) == question
			return !nested
		})
		if nested {
			return
		}
		block := questionBlock(q)
		var answers []string
		for sib := block.Next(); sib.Length() > 0; sib = sib.Next() {
			if startsNewSection(sib) {
				break
			}
			if t := blockText(sib); t != "" {
				answers = append(answers, t)
			}
		}
		out = append(out, FAQCandidate{
			Question: question,
			Answer:   strings.Join(answers, "\n"),
			Node:     q.Nodes[0],
			Level:    headingLevel(q.Nodes[0]),
		})
	})
	return out
}

// questionBlock climbs from a question element to the outermost ancestor
// whose text is the question alone, so that answers are read from the
// siblings of that block.
func questionBlock(q *goquery.Selection) *goquery.Selection {
	block := q
	text := selectionText(q)
	for {
		parent := block.Parent()
		if parent.Length() == 0 || goquery.NodeName(parent) == "body" {
			return block
		}
		if selectionText(parent) != text {
			return block
		}
		block = parent
	}
}

func startsNewSection(s *goquery.Selection) bool {
	if s.Is(headingSelector) {
		return true
	}
	if s.Is(faqQuestionSelector) && strings.HasSuffix(selectionText(s), "?") {
		return true
	}
	found := false
	s.Find(faqQuestionSelector).EachWithBreak(func(_ int, inner *goquery.Selection) bool {
		t := selectionText(inner)
		if strings.HasSuffix(t, "?") && t == selectionText(s) {
			found = true
			return false
		}
		return true
	})
	return found
}

// blockText returns visible text keeping block boundaries as newlines.
func blockText(s *goquery.Selection) string {
	if s == nil || s.Length() == 0 {
		return ""
	}
	var parts []string
	for _, n := range s.Nodes {
		if t := sanitizer.NormalizedText(n); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

func headingLevel(n *html.Node) int {
	if n == nil || n.Type != html.ElementNode {
		return questionLevel
	}
	if len(n.Data) == 2 && n.Data[0] == 'h' && n.Data[1] >= '1' && n.Data[1] <= '6' {
		return int(n.Data[1] - '0')
	}
	return questionLevel
}

// categoryIndex resolves the nearest preceding section heading of a node.
type categoryIndex struct {
	order    map[*html.Node]int
	headings []categoryHeading
}

type categoryHeading struct {
	pos   int
	level int
	text  string
}

func newCategoryIndex(doc *goquery.Document) categoryIndex {
	idx := categoryIndex{order: documentOrder(doc)}
	doc.Find(headingSelector).Each(func(_ int, h *goquery.Selection) {
		text := selectionText(h)
		level := headingLevel(h.Nodes[0])
		// h1 is the page title, not a section.
		if text == "" || level == 1 || strings.HasSuffix(text, "?") {
			return
		}
		idx.headings = append(idx.headings, categoryHeading{
			pos:   idx.order[h.Nodes[0]],
			level: level,
			text:  text,
		})
	})
	return idx
}

func (c categoryIndex) categoryFor(n *html.Node, level int) *string {
	pos, ok := c.order[n]
	if !ok {
		return nil
	}
	for i := len(c.headings) - 1; i >= 0; i-- {
		h := c.headings[i]
		if h.pos >= pos {
			continue
		}
		if h.level < level {
			category := h.text
			return &category
		}
	}
	return nil
}
