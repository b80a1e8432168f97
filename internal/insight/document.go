package insight

import "time"

// Field groups reported in FieldReport.
const (
	FieldProducts       = "product_catalog"
	FieldHeroProducts   = "hero_products"
	FieldSocialHandles  = "social_handles"
	FieldContactInfo    = "contact_info"
	FieldPolicies       = "policies"
	FieldFAQs           = "faqs"
	FieldImportantLinks = "important_links"
	FieldBrand          = "brand_context"
)

// FieldGroups lists the field groups in report order.
func FieldGroups() []string {
	return []string{
		FieldProducts,
		FieldHeroProducts,
		FieldSocialHandles,
		FieldContactInfo,
		FieldPolicies,
		FieldFAQs,
		FieldImportantLinks,
		FieldBrand,
	}
}

// FieldStatus records whether a field group was found, how many items it
// holds, which source kind supplied it and why it is empty when it is.
type FieldStatus struct {
	Found  bool   `json:"found"`
	Count  int    `json:"count"`
	Source string `json:"source,omitempty"`
	Note   string `json:"note,omitempty"`
}

type FieldReport map[string]FieldStatus

type FeedStats struct {
	Parsed    int  `json:"parsed"`
	Skipped   int  `json:"skipped"`
	CapHit    bool `json:"cap_hit"`
	Truncated bool `json:"truncated"`
	PageFull  bool `json:"page_full"`
}

// Document is the single output of one extraction run. Every collection is
// non-nil so that it serializes as [] rather than null.
type Document struct {
	BrandName           string          `json:"brand_name"`
	Domain              string          `json:"domain"`
	WebsiteURL          string          `json:"website_url"`
	TotalProducts       int             `json:"total_products"`
	ProductCatalog      []Product       `json:"product_catalog"`
	HeroProducts        []Product       `json:"hero_products"`
	SocialHandles       []SocialHandle  `json:"social_handles"`
	ContactInfo         ContactInfo     `json:"contact_info"`
	Tags                []string        `json:"tags"`
	Policies            []Policy        `json:"policies"`
	FAQs                []FAQEntry      `json:"faqs"`
	ImportantLinks      []ImportantLink `json:"important_links"`
	BrandContext        BrandContext    `json:"brand_context"`
	ExtractionTimestamp time.Time       `json:"extraction_timestamp"`
	ExtractionSuccess   bool            `json:"extraction_success"`
	FieldReport         FieldReport     `json:"field_report"`
	FeedStats           FeedStats       `json:"feed_stats"`
	Warnings            []string        `json:"warnings"`
	Fingerprint         string          `json:"fingerprint"`
}

// NewDocument returns a document with every collection initialized empty.
func NewDocument(domain, websiteURL string) Document {
	return Document{
		Domain:         domain,
		WebsiteURL:     websiteURL,
		ProductCatalog: []Product{},
		HeroProducts:   []Product{},
		SocialHandles:  []SocialHandle{},
		ContactInfo:    EmptyContactInfo(),
		Tags:           []string{},
		Policies:       []Policy{},
		FAQs:           []FAQEntry{},
		ImportantLinks: []ImportantLink{},
		FieldReport:    FieldReport{},
		Warnings:       []string{},
	}
}

// Policy returns the policy of the given kind, if present.
func (d Document) Policy(kind PolicyKind) (Policy, bool) {
	for _, p := range d.Policies {
		if p.Kind == kind {
			return p, true
		}
	}
	return Policy{}, false
}

// Social returns the handle for a platform, if present.
func (d Document) Social(platform Platform) (SocialHandle, bool) {
	for _, h := range d.SocialHandles {
		if h.Platform == platform {
			return h, true
		}
	}
	return SocialHandle{}, false
}

// FingerprintView is the document with run-specific values cleared. Two runs
// over unchanged sources produce equal views.
func (d Document) FingerprintView() Document {
	view := d
	view.ExtractionTimestamp = time.Time{}
	view.Fingerprint = ""
	return view
}
