package target

import (
	"net"
	"net/url"
	"strings"
	"unicode"

	"github.com/rohmanhakim/store-insights/pkg/urlutil"
)

// StoreTarget is the normalized root of a storefront: scheme and host only,
// lowercase, default port stripped, no path, query or fragment.
type StoreTarget struct {
	root url.URL
}

// Parse validates raw and returns its normalized StoreTarget. A missing scheme
// defaults to https. No network activity happens here.
func Parse(raw string) (StoreTarget, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return StoreTarget{}, &TargetError{Message: "website url is required", Cause: ErrCauseEmpty}
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return StoreTarget{}, &TargetError{Message: err.Error(), Cause: ErrCauseMalformed}
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return StoreTarget{}, &TargetError{
			Message: "scheme must be http or https, got " + parsed.Scheme,
			Cause:   ErrCauseUnsupportedScheme,
		}
	}

	hostname := strings.ToLower(parsed.Hostname())
	if !validHost(hostname) {
		return StoreTarget{}, &TargetError{
			Message: "host " + strings.TrimSpace(parsed.Host) + " is not a valid storefront host",
			Cause:   ErrCauseInvalidHost,
		}
	}

	root := urlutil.Canonicalize(url.URL{Scheme: scheme, Host: parsed.Host})
	root.Path = ""
	return StoreTarget{root: root}, nil
}

// MustParse is Parse for literals known to be valid; it panics otherwise.
func MustParse(raw string) StoreTarget {
	t, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return t
}

func validHost(hostname string) bool {
	if hostname == "" {
		return false
	}
	if strings.IndexFunc(hostname, unicode.IsSpace) >= 0 {
		return false
	}
	if hostname == "localhost" || net.ParseIP(hostname) != nil {
		return true
	}
	if !strings.Contains(hostname, ".") || strings.HasPrefix(hostname, ".") || strings.HasSuffix(hostname, ".") {
		return false
	}
	return !strings.Contains(hostname, "..")
}

// Root returns a copy of the root URL.
func (t StoreTarget) Root() url.URL {
	return t.root
}

// Domain is the host as it appears in the root URL, port included when non-default.
func (t StoreTarget) Domain() string {
	return t.root.Host
}

// Hostname is the host without any port.
func (t StoreTarget) Hostname() string {
	return t.root.Hostname()
}

func (t StoreTarget) String() string {
	return t.root.String()
}

// URL resolves a path (optionally with a query) against the root.
func (t StoreTarget) URL(pathAndQuery string) url.URL {
	return urlutil.WithPath(t.root, pathAndQuery)
}

func (t StoreTarget) IsZero() bool {
	return t.root.Host == ""
}
