package extractor

import "sync"

// Registry holds the pluggable recognizers used by the HTML extractors:
// FAQ matchers, social platform recognizers and the important-link
// vocabulary. It is safe for concurrent use; readers get copies.
type Registry struct {
	mu                sync.RWMutex
	faqMatchers       []FAQMatcher
	socialRecognizers []SocialRecognizer
	linkRules         []LinkRule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry returns a registry loaded with the built-in recognizers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, m := range DefaultFAQMatchers() {
		r.RegisterFAQMatcher(m)
	}
	for _, s := range DefaultSocialRecognizers() {
		r.RegisterSocialRecognizer(s)
	}
	for _, l := range DefaultLinkRules() {
		r.RegisterLinkRule(l)
	}
	return r
}

// RegisterFAQMatcher appends a matcher after the existing ones.
func (r *Registry) RegisterFAQMatcher(m FAQMatcher) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faqMatchers = append(r.faqMatchers, m)
	return r
}

// RegisterSocialRecognizer appends a platform recognizer. Recognizers are
// consulted in registration order, so a platform registered twice keeps the
// first host rules for overlapping hosts.
func (r *Registry) RegisterSocialRecognizer(s SocialRecognizer) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.socialRecognizers = append(r.socialRecognizers, s)
	return r
}

func (r *Registry) RegisterLinkRule(l LinkRule) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.linkRules = append(r.linkRules, l)
	return r
}

func (r *Registry) FAQMatchers() []FAQMatcher {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]FAQMatcher(nil), r.faqMatchers...)
}

func (r *Registry) SocialRecognizers() []SocialRecognizer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]SocialRecognizer(nil), r.socialRecognizers...)
}

func (r *Registry) LinkRules() []LinkRule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]LinkRule(nil), r.linkRules...)
}
