package insight

import "time"

type Variant struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Price          string `json:"price"`
	CompareAtPrice string `json:"compare_at_price,omitempty"`
	SKU            string `json:"sku,omitempty"`
	Available      bool   `json:"available"`
}

type Product struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Handle      string     `json:"handle"`
	Vendor      string     `json:"vendor"`
	ProductType string     `json:"product_type"`
	Tags        []string   `json:"tags"`
	Variants    []Variant  `json:"variants"`
	Images      []string   `json:"images"`
	URL         string     `json:"url"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// Normalize replaces nil collections with empty ones.
func (p Product) Normalize() Product {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Variants == nil {
		p.Variants = []Variant{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return p
}

type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformTwitter   Platform = "twitter"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformPinterest Platform = "pinterest"
)

type SocialHandle struct {
	Platform Platform `json:"platform"`
	URL      string   `json:"url"`
	Username *string  `json:"username"`
}

type ContactInfo struct {
	Emails         []string `json:"emails"`
	Phones         []string `json:"phone_numbers"`
	ContactFormURL *string  `json:"contact_form_url"`
}

func EmptyContactInfo() ContactInfo {
	return ContactInfo{Emails: []string{}, Phones: []string{}}
}

type PolicyKind string

const (
	PolicyPrivacy  PolicyKind = "privacy"
	PolicyReturn   PolicyKind = "return"
	PolicyTerms    PolicyKind = "terms"
	PolicyShipping PolicyKind = "shipping"
	PolicyCookie   PolicyKind = "cookie"
)

// PolicyKinds lists policy kinds in document order.
func PolicyKinds() []PolicyKind {
	return []PolicyKind{PolicyPrivacy, PolicyReturn, PolicyTerms, PolicyShipping, PolicyCookie}
}

// DefaultTitle is used when a policy page carries no usable heading.
func (k PolicyKind) DefaultTitle() string {
	switch k {
	case PolicyPrivacy:
		return "Privacy Policy"
	case PolicyReturn:
		return "Return Policy"
	case PolicyTerms:
		return "Terms of Service"
	case PolicyShipping:
		return "Shipping Policy"
	case PolicyCookie:
		return "Cookie Policy"
	}
	return string(k)
}

type Policy struct {
	Kind      PolicyKind `json:"kind"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Markdown  string     `json:"markdown"`
	SourceURL string     `json:"url"`
}

type FAQEntry struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Category *string `json:"category"`
}

type ImportantLink struct {
	Label string `json:"label"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

type BrandContext struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	About       string `json:"about"`
}
