package aggregator

import (
	"fmt"

	"github.com/rohmanhakim/store-insights/internal/insight"
)

// validate enforces the cross-field invariants of a document in place:
// unique product ids and handles, one social handle per platform and one
// policy per kind. Offending entries are dropped, later ones first, and
// each repair is returned as a warning.
func validate(doc *insight.Document) []string {
	var warnings []string

	ids := make(map[string]struct{}, len(doc.ProductCatalog))
	handles := make(map[string]struct{}, len(doc.ProductCatalog))
	catalog := make([]insight.Product, 0, len(doc.ProductCatalog))
	for _, p := range doc.ProductCatalog {
		_, dupID := ids[p.ID]
		_, dupHandle := handles[p.Handle]
		if dupID || dupHandle {
			warnings = append(warnings, fmt.Sprintf("dropped duplicate product %q", p.Handle))
			continue
		}
		ids[p.ID] = struct{}{}
		handles[p.Handle] = struct{}{}
		catalog = append(catalog, p)
	}
	doc.ProductCatalog = catalog

	platforms := make(map[insight.Platform]struct{}, len(doc.SocialHandles))
	social := make([]insight.SocialHandle, 0, len(doc.SocialHandles))
	for _, h := range doc.SocialHandles {
		if _, dup := platforms[h.Platform]; dup {
			warnings = append(warnings, fmt.Sprintf("dropped second %s handle", h.Platform))
			continue
		}
		platforms[h.Platform] = struct{}{}
		social = append(social, h)
	}
	doc.SocialHandles = social

	kinds := make(map[insight.PolicyKind]struct{}, len(doc.Policies))
	policies := make([]insight.Policy, 0, len(doc.Policies))
	for _, p := range doc.Policies {
		if _, dup := kinds[p.Kind]; dup {
			warnings = append(warnings, fmt.Sprintf("dropped second %s policy", p.Kind))
			continue
		}
		kinds[p.Kind] = struct{}{}
		policies = append(policies, p)
	}
	doc.Policies = policies

	heroes := make(map[string]struct{}, len(doc.HeroProducts))
	hero := make([]insight.Product, 0, len(doc.HeroProducts))
	for _, p := range doc.HeroProducts {
		if _, dup := heroes[p.Handle]; dup {
			continue
		}
		heroes[p.Handle] = struct{}{}
		hero = append(hero, p)
	}
	doc.HeroProducts = hero

	return warnings
}
