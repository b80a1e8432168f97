package urlutil

import (
	"net"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Canonicalize applies a deterministic normalization to a URL, producing a canonical form.
// It maps equivalent URL spellings to a single canonical representation.
//
// The normalization follows these rules:
//   - Scheme and host are lowercased
//   - Path is cleaned (trailing slashes removed, except for root "/")
//   - Fragments are removed
//   - Query parameters are removed
//   - Default ports are omitted (e.g., :80 for http, :443 for https)
//
// Properties:
//   - Pure: no state, no memory
//   - Deterministic: same input always produces same output
//   - Idempotent: Canonicalize(Canonicalize(url)) == Canonicalize(url)
func Canonicalize(sourceUrl url.URL) url.URL {
	canonical := sourceUrl

	canonical.Scheme = lowerASCII(canonical.Scheme)
	canonical.Host = lowerASCII(canonical.Host)

	if host, port := canonical.Hostname(), canonical.Port(); port != "" {
		if (canonical.Scheme == "http" && port == "80") ||
			(canonical.Scheme == "https" && port == "443") {
			canonical.Host = host
		}
	}

	if len(canonical.Path) > 1 {
		canonical.Path = stripTrailingSlash(canonical.Path)
		canonical.RawPath = ""
	}

	canonical.Fragment = ""
	canonical.RawFragment = ""
	canonical.RawQuery = ""
	canonical.ForceQuery = false
	canonical.User = nil

	return canonical
}

// Resolve turns an href found on a page into an absolute http(s) URL.
// It reports false for empty hrefs, pseudo-schemes (mailto:, tel:,
// javascript:, data:), fragment-only links and unparseable values.
func Resolve(base url.URL, href string) (url.URL, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return url.URL{}, false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return url.URL{}, false
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return url.URL{}, false
	}
	if resolved.Host == "" {
		return url.URL{}, false
	}
	return *resolved, true
}

// WithPath returns root with its path and raw query replaced by pathAndQuery,
// e.g. WithPath(root, "/products.json?limit=250").
func WithPath(root url.URL, pathAndQuery string) url.URL {
	out := root
	out.Fragment = ""
	out.RawFragment = ""
	out.RawPath = ""
	path, query, _ := strings.Cut(pathAndQuery, "?")
	out.Path = path
	out.RawQuery = query
	return out
}

// HostLabel returns the registrable-looking label of a host, capitalized:
// "www.acme-goods.com" → "Acme-goods", "shop.brand.co.uk" → "Brand".
func HostLabel(host string) string {
	host = lowerASCII(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if net.ParseIP(host) != nil {
		return host
	}
	host = strings.TrimPrefix(host, "www.")
	labels := strings.Split(host, ".")
	if len(labels) == 0 || labels[0] == "" {
		return ""
	}

	label := labels[0]
	switch {
	case len(labels) >= 3 && isSecondLevelSuffix(labels[len(labels)-2]):
		label = labels[len(labels)-3]
	case len(labels) >= 3 && labels[len(labels)-2] != "myshopify":
		label = labels[len(labels)-2]
	}
	return capitalize(label)
}

func isSecondLevelSuffix(label string) bool {
	switch label {
	case "co", "com", "org", "net", "ac", "gov":
		return true
	}
	return false
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// lowerASCII converts ASCII characters to lowercase without allocating.
// This is faster than strings.ToLower for ASCII-only strings.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// stripTrailingSlash removes trailing slashes from a path.
func stripTrailingSlash(path string) string {
	for len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
