package extractor

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/store-insights/internal/insight"
	"github.com/rohmanhakim/store-insights/internal/sanitizer"
	"github.com/rohmanhakim/store-insights/internal/source"
	"github.com/rohmanhakim/store-insights/pkg/urlutil"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\(?\d[\d \t().-]{7,}\d`)
)

//nolint:gochecknoglobals // static lookup table
var assetSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".avif", ".ico", ".css", ".js"}

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

// ExtractContactInfo gathers emails, phone numbers and a contact form URL.
// mailto: and tel: links are read before free text; values keep first
// discovery order across pages.
func ExtractContactInfo(pages ...Page) Partial[insight.ContactInfo] {
	info := insight.EmptyContactInfo()
	emails := newOrderedSet()
	phones := newOrderedSet()
	var src source.Kind

	note := func(kind source.Kind) {
		if src == "" {
			src = kind
		}
	}

	for _, page := range pages {
		if !page.Valid() {
			continue
		}
		page.Doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			href = strings.TrimSpace(href)
			lower := strings.ToLower(href)
			switch {
			case strings.HasPrefix(lower, "mailto:"):
				if email, ok := normalizeEmail(mailtoAddress(href)); ok && emails.add(email, email) {
					note(page.Kind)
				}
			case strings.HasPrefix(lower, "tel:"):
				if phone, digits, ok := normalizePhone(telNumber(href)); ok && phones.add(digits, phone) {
					note(page.Kind)
				}
			}
		})
	}

	for _, page := range pages {
		if !page.Valid() {
			continue
		}
		text := pageText(page)
		for _, match := range emailPattern.FindAllString(text, -1) {
			if email, ok := normalizeEmail(match); ok && emails.add(email, email) {
				note(page.Kind)
			}
		}
		for _, match := range phonePattern.FindAllString(text, -1) {
			if !looksLikeFormattedPhone(match) {
				continue
			}
			if phone, digits, ok := normalizePhone(match); ok && phones.add(digits, phone) {
				note(page.Kind)
			}
		}
	}

	if formURL, ok := contactFormURL(pages); ok {
		info.ContactFormURL = &formURL
		note(source.KindContactPage)
	}

	info.Emails = emails.values()
	info.Phones = phones.values()
	if len(info.Emails) == 0 && len(info.Phones) == 0 && info.ContactFormURL == nil {
		return notFound(info, "no contact details")
	}
	return found(info, src)
}

// pageText keeps block boundaries as newlines so that numbers in separate
// blocks never merge into one match.
func pageText(page Page) string {
	var parts []string
	for _, n := range page.Doc.Find("body").Nodes {
		parts = append(parts, sanitizer.NormalizedText(n))
	}
	return strings.Join(parts, "\n")
}

func mailtoAddress(href string) string {
	addr := href[len("mailto:"):]
	addr, _, _ = strings.Cut(addr, "?")
	if unescaped, err := url.PathUnescape(addr); err == nil {
		addr = unescaped
	}
	addr, _, _ = strings.Cut(addr, ",")
	return addr
}

func telNumber(href string) string {
	number := href[len("tel:"):]
	if unescaped, err := url.PathUnescape(number); err == nil {
		number = unescaped
	}
	return number
}

func normalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.Trim(strings.TrimSpace(raw), "."))
	if !emailPattern.MatchString(email) || emailPattern.FindString(email) != email {
		return "", false
	}
	if strings.Contains(email, "@2x") || strings.Contains(email, "@3x") {
		return "", false
	}
	for _, suffix := range assetSuffixes {
		if strings.HasSuffix(email, suffix) {
			return "", false
		}
	}
	return email, true
}

// normalizePhone returns the trimmed display form and its digit key.
func normalizePhone(raw string) (string, string, bool) {
	phone := sanitizer.CollapseWhitespace(raw)
	phone = strings.Trim(phone, " .-")
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n := digits.Len()
	if n < minPhoneDigits || n > maxPhoneDigits {
		return "", "", false
	}
	return phone, digits.String(), true
}

// looksLikeFormattedPhone rejects bare digit runs in free text, which are
// far more often order numbers or ids than phone numbers.
func looksLikeFormattedPhone(match string) bool {
	if strings.HasPrefix(match, "+") {
		return true
	}
	return strings.ContainsAny(match, " -.()")
}

func contactFormURL(pages []Page) (string, bool) {
	for _, page := range pages {
		if page.Valid() && page.Kind == source.KindContactPage && page.Doc.Find("form").Length() > 0 {
			return page.URL.String(), true
		}
	}
	for _, page := range pages {
		if !page.Valid() {
			continue
		}
		var formURL string
		page.Doc.Find("form").EachWithBreak(func(_ int, form *goquery.Selection) bool {
			action, _ := form.Attr("action")
			id, _ := form.Attr("id")
			class, _ := form.Attr("class")
			if !strings.Contains(strings.ToLower(action+" "+id+" "+class), "contact") {
				return true
			}
			if strings.TrimSpace(action) == "" {
				formURL = page.URL.String()
				return false
			}
			if resolved, ok := urlutil.Resolve(page.URL, action); ok {
				formURL = resolved.String()
				return false
			}
			return true
		})
		if formURL != "" {
			return formURL, true
		}
	}
	return "", false
}

// orderedSet keeps first-seen values keyed by a normalized form.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{}), items: []string{}}
}

func (s *orderedSet) add(key, value string) bool {
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	s.items = append(s.items, value)
	return true
}

func (s *orderedSet) values() []string {
	return s.items
}
