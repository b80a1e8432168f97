package source

import (
	"context"
	"net/url"

	"github.com/rohmanhakim/store-insights/internal/fetcher"
	"github.com/rohmanhakim/store-insights/internal/target"
)

/*
Responsibilities

- Map a store target to conventional candidate URLs per source kind
- Probe candidates in priority order and keep the first usable page

Resolution is deterministic: the same target always yields the same
candidates in the same order. Pages of one kind are never merged.
*/

// FeedPageSize is the page size requested from the product feed.
const FeedPageSize = 250

var candidatePaths = map[Kind][]string{
	KindProductFeed: {"/products.json?limit=250"},
	KindHomePage:    {"/"},
	KindPrivacyPolicy: {
		"/policies/privacy-policy",
		"/pages/privacy-policy",
		"/privacy-policy",
		"/pages/privacy",
	},
	KindReturnPolicy: {
		"/policies/refund-policy",
		"/pages/return-policy",
		"/pages/refund-policy",
		"/pages/returns",
	},
	KindTermsPolicy: {
		"/policies/terms-of-service",
		"/pages/terms-of-service",
		"/pages/terms",
		"/terms",
	},
	KindShippingPolicy: {
		"/policies/shipping-policy",
		"/pages/shipping-policy",
		"/pages/shipping",
	},
	KindCookiePolicy: {
		"/pages/cookie-policy",
		"/policies/cookie-policy",
	},
	KindFAQPage: {
		"/pages/faq",
		"/pages/faqs",
		"/faq",
		"/pages/frequently-asked-questions",
		"/pages/help",
	},
	KindContactPage: {
		"/pages/contact",
		"/pages/contact-us",
		"/contact",
	},
	KindAboutPage: {
		"/pages/about",
		"/pages/about-us",
		"/about",
	},
	KindNavPage: {
		"/pages/sitemap",
		"/sitemap",
	},
}

type Resolver struct{}

func NewResolver() Resolver {
	return Resolver{}
}

// Resolve returns one Candidate per kind, in Kinds() order.
func (Resolver) Resolve(t target.StoreTarget) []Candidate {
	kinds := Kinds()
	candidates := make([]Candidate, 0, len(kinds))
	for _, kind := range kinds {
		paths := candidatePaths[kind]
		urls := make([]url.URL, 0, len(paths))
		for _, p := range paths {
			urls = append(urls, t.URL(p))
		}
		candidates = append(candidates, Candidate{Kind: kind, URLs: urls})
	}
	return candidates
}

// Probe fetches the candidate URLs in order and returns the first Ok result.
// When none is Ok it returns the last non-Ok result; once ctx is done it
// stops and reports Timeout.
func Probe(ctx context.Context, f fetcher.Fetcher, param ProbeParam, candidate Candidate) RawSource {
	if len(candidate.URLs) == 0 {
		return Missing(candidate.Kind, url.URL{}, fetcher.StatusNotFound)
	}

	last := Missing(candidate.Kind, candidate.URLs[0], fetcher.StatusNotFound)
	for _, u := range candidate.URLs {
		if ctx.Err() != nil {
			return Missing(candidate.Kind, u, fetcher.StatusTimeout)
		}

		result := f.Fetch(ctx, fetcher.NewFetchParam(u, param.UserAgent, param.Timeout, string(candidate.Kind)))
		raw := FromFetchResult(candidate.Kind, result)
		if raw.OK() {
			return raw
		}
		last = raw
	}

	if ctx.Err() != nil && last.Status != fetcher.StatusTimeout {
		last.Status = fetcher.StatusTimeout
	}
	return last
}
