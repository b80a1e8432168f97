package extractor

// policyRegionSelectors locate the body of a policy page, most specific first.
// Shopify serves /policies/* through .shopify-policy__body; themes wrap
// custom pages in .rte.
//
//nolint:gochecknoglobals // static lookup table
var policyRegionSelectors = []string{
	".shopify-policy__body",
	".rte",
	"main",
	"article",
	"[role=main]",
	"#MainContent",
	".page-content",
	"body",
}

// heroRegionSelectors locate the featured area of a home page.
//
//nolint:gochecknoglobals // static lookup table
var heroRegionSelectors = []string{
	"[class*=featured]",
	"[class*=hero]",
	"[id*=featured]",
	"[class*=collection]",
	"main",
}

// navRegionSelector covers every navigation-like region of a page.
const navRegionSelector = "nav a[href], header a[href], footer a[href], [role=navigation] a[href]"

// faqQuestionSelector lists elements that may carry a question as text.
const faqQuestionSelector = "h2, h3, h4, h5, h6, strong, b, button, [class*=question], [class*=accordion__title]"

// headingSelector lists category heading candidates in FAQ pages.
const headingSelector = "h1, h2, h3, h4, h5, h6"
