package source

import (
	"net/url"
	"time"

	"github.com/rohmanhakim/store-insights/internal/fetcher"
)

// Kind names a logical source of storefront data.
type Kind string

const (
	KindProductFeed    Kind = "product_feed"
	KindHomePage       Kind = "home_page"
	KindPrivacyPolicy  Kind = "privacy_policy"
	KindReturnPolicy   Kind = "return_policy"
	KindTermsPolicy    Kind = "terms_policy"
	KindShippingPolicy Kind = "shipping_policy"
	KindCookiePolicy   Kind = "cookie_policy"
	KindFAQPage        Kind = "faq_page"
	KindContactPage    Kind = "contact_page"
	KindAboutPage      Kind = "about_page"
	KindNavPage        Kind = "nav_page"
)

// Kinds lists every source kind in resolution order.
func Kinds() []Kind {
	return []Kind{
		KindProductFeed,
		KindHomePage,
		KindPrivacyPolicy,
		KindReturnPolicy,
		KindTermsPolicy,
		KindShippingPolicy,
		KindCookiePolicy,
		KindFAQPage,
		KindContactPage,
		KindAboutPage,
		KindNavPage,
	}
}

// RawSource is the fetched content of one source kind. It belongs to a single
// run, is never persisted and must not be mutated after the probe returns it.
type RawSource struct {
	Kind        Kind
	URL         url.URL
	Body        []byte
	Status      fetcher.Status
	Code        int
	ContentType string
	FetchedAt   time.Time
	Truncated   bool
	Unreachable bool
}

func (r RawSource) OK() bool {
	return r.Status == fetcher.StatusOk
}

// Usable reports whether the source has content worth handing to an extractor.
func (r RawSource) Usable() bool {
	return r.OK() && len(r.Body) > 0
}

// FromFetchResult tags a fetch outcome with its source kind.
func FromFetchResult(kind Kind, result fetcher.FetchResult) RawSource {
	return RawSource{
		Kind:        kind,
		URL:         result.URL(),
		Body:        result.Body(),
		Status:      result.Status(),
		Code:        result.Code(),
		ContentType: result.ContentType(),
		FetchedAt:   result.FetchedAt(),
		Truncated:   result.Truncated(),
		Unreachable: result.Unreachable(),
	}
}

// Missing builds a body-less RawSource with the given status, used when a
// kind could not be fetched at all.
func Missing(kind Kind, u url.URL, status fetcher.Status) RawSource {
	return RawSource{
		Kind:      kind,
		URL:       u,
		Status:    status,
		FetchedAt: time.Now(),
	}
}

// Candidate lists the conventional URLs of one kind in priority order.
type Candidate struct {
	Kind Kind
	URLs []url.URL
}

// ProbeParam carries the per-request settings applied to every candidate URL.
type ProbeParam struct {
	UserAgent string
	Timeout   time.Duration
}
