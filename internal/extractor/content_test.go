package extractor_test

import (
	"testing"

	"github.com/rohmanhakim/store-insights/internal/extractor"
	"github.com/rohmanhakim/store-insights/internal/insight"
	"github.com/rohmanhakim/store-insights/internal/mdconvert"
	"github.com/rohmanhakim/store-insights/internal/sanitizer"
	"github.com/rohmanhakim/store-insights/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func policyDeps() (*sanitizer.HTMLSanitizer, mdconvert.ConvertRule) {
	s := sanitizer.NewHTMLSanitizer(nil)
	return &s, mdconvert.NewRule(nil)
}

func TestExtractPolicy_ShopifyPolicyPage(t *testing.T) {
	body := `<html><head><title>Refund policy – Example Brand</title></head><body>
		<header><nav><a href="/">Home</a></nav></header>
		<main><div class="shopify-policy__container">
			<div class="shopify-policy__title"><h1>Refund policy</h1></div>
			<div class="shopify-policy__body"><div class="rte">
				<p>We accept returns within 30 days of delivery for a full refund.</p>
				<p>Items must be <a href="/pages/contact">unused</a> and in original packaging.</p>
			</div></div>
		</div></main>
		<footer><p>Footer text that should not appear anywhere</p></footer>
	</body></html>`
	page := pageFromHTML(t, source.KindReturnPolicy, shopRoot+"/policies/refund-policy", body)
	s, rule := policyDeps()

	result := extractor.ExtractPolicy(page, insight.PolicyReturn, s, rule)

	require.True(t, result.Found)
	policy := result.Value
	assert.Equal(t, insight.PolicyReturn, policy.Kind)
	assert.Equal(t, "Refund policy", policy.Title)
	assert.Equal(t, shopRoot+"/policies/refund-policy", policy.SourceURL)
	assert.Contains(t, policy.Content, "We accept returns within 30 days")
	assert.NotContains(t, policy.Content, "Footer text")
	assert.Contains(t, policy.Markdown, "30 days")
	assert.Contains(t, policy.Markdown, "unused")
}

func TestExtractPolicy_DefaultTitleAndShortBody(t *testing.T) {
	page := pageFromHTML(t, source.KindPrivacyPolicy, shopRoot+"/policies/privacy-policy",
		`<html><body><p>Short</p></body></html>`)
	s, rule := policyDeps()

	result := extractor.ExtractPolicy(page, insight.PolicyPrivacy, s, rule)

	require.True(t, result.Found)
	assert.Equal(t, "Privacy Policy", result.Value.Title)
	assert.Equal(t, "Short", result.Value.Content)
}

func TestExtractPolicy_TitleFromDocumentTitle(t *testing.T) {
	page := pageFromHTML(t, source.KindShippingPolicy, shopRoot+"/policies/shipping-policy",
		`<html><head><title>Shipping Info | Example Brand</title></head><body><main><p>We ship worldwide within five business days.</p></main></body></html>`)
	s, rule := policyDeps()

	result := extractor.ExtractPolicy(page, insight.PolicyShipping, s, rule)

	assert.Equal(t, "Shipping Info", result.Value.Title)
}

func TestExtractPolicy_UnavailablePage(t *testing.T) {
	s, rule := policyDeps()

	result := extractor.ExtractPolicy(extractor.Page{}, insight.PolicyTerms, s, rule)

	assert.False(t, result.Found)
	assert.Equal(t, insight.PolicyTerms, result.Value.Kind)
}

func faqPage(t *testing.T, body string) extractor.Page {
	return pageFromHTML(t, source.KindFAQPage, shopRoot+"/pages/faq", body)
}

func TestExtractFAQs_JSONLD(t *testing.T) {
	body := `<html><head><script type="application/ld+json">
		{"@context":"https://schema.org","@type":"FAQPage","mainEntity":[
			{"@type":"Question","name":"Do you ship abroad?","acceptedAnswer":{"@type":"Answer","text":"<p>Yes, to 40 countries.</p>"}}
		]}
	</script></head><body><details><summary>Ignored?</summary><p>Because JSON-LD wins.</p></details></body></html>`

	result := extractor.ExtractFAQs(faqPage(t, body), extractor.DefaultFAQMatchers(), 50)

	require.True(t, result.Found)
	require.Len(t, result.Value, 1)
	assert.Equal(t, "Do you ship abroad?", result.Value[0].Question)
	assert.Equal(t, "Yes, to 40 countries.", result.Value[0].Answer)
	assert.Nil(t, result.Value[0].Category)
}

func TestExtractFAQs_DetailsWithCategories(t *testing.T) {
	body := `<html><body>
		<h1>FAQ</h1>
		<h2>Shipping</h2>
		<details><summary>How long does shipping take?</summary><p>3-5 business days.</p></details>
		<h2>Returns</h2>
		<details><summary>Can I return an item?</summary><p>Within 30 days.</p></details>
		<details><summary>How long does shipping take?</summary><p>Duplicate.</p></details>
	</body></html>`

	result := extractor.ExtractFAQs(faqPage(t, body), extractor.DefaultFAQMatchers(), 50)

	require.Len(t, result.Value, 2)
	assert.Equal(t, "How long does shipping take?", result.Value[0].Question)
	assert.Equal(t, "3-5 business days.", result.Value[0].Answer)
	require.NotNil(t, result.Value[0].Category)
	assert.Equal(t, "Shipping", *result.Value[0].Category)
	require.NotNil(t, result.Value[1].Category)
	assert.Equal(t, "Returns", *result.Value[1].Category)
}

func TestExtractFAQs_QuestionHeadings(t *testing.T) {
	body := `<html><body>
		<h2>Orders</h2>
		<h3>Can I change my order?</h3>
		<p>Yes, within 1 hour.</p>
		<p>Contact us.</p>
		<h3>Do you offer gift cards?</h3>
		<div><p>Yes.</p></div>
		<h2>Other</h2>
		<p><strong>Where are you based?</strong></p>
		<p>London.</p>
	</body></html>`

	result := extractor.ExtractFAQs(faqPage(t, body), extractor.DefaultFAQMatchers(), 50)

	require.Len(t, result.Value, 3)
	assert.Equal(t, "Can I change my order?", result.Value[0].Question)
	assert.Equal(t, "Yes, within 1 hour.\nContact us.", result.Value[0].Answer)
	assert.Equal(t, "Orders", *result.Value[0].Category)
	assert.Equal(t, "Yes.", result.Value[1].Answer)
	assert.Equal(t, "Orders", *result.Value[1].Category)
	assert.Equal(t, "Where are you based?", result.Value[2].Question)
	assert.Equal(t, "London.", result.Value[2].Answer)
	assert.Equal(t, "Other", *result.Value[2].Category)
}

func TestExtractFAQs_DefinitionList(t *testing.T) {
	body := `<html><body><dl>
		<dt>Is the fabric organic?</dt><dd>Yes, GOTS certified.</dd>
		<dt>Where is it made?</dt><dd>Portugal.</dd>
	</dl></body></html>`

	result := extractor.ExtractFAQs(faqPage(t, body), extractor.DefaultFAQMatchers(), 50)

	require.Len(t, result.Value, 2)
	assert.Equal(t, "Portugal.", result.Value[1].Answer)
}

func TestExtractFAQs_Limit(t *testing.T) {
	body := `<html><body>
		<details><summary>One?</summary>1</details>
		<details><summary>Two?</summary>2</details>
		<details><summary>Three?</summary>3</details>
	</body></html>`

	result := extractor.ExtractFAQs(faqPage(t, body), extractor.DefaultFAQMatchers(), 2)

	assert.Len(t, result.Value, 2)
}

func TestExtractFAQs_NoPairs(t *testing.T) {
	result := extractor.ExtractFAQs(faqPage(t, `<html><body><p>Contact us anytime.</p></body></html>`), extractor.DefaultFAQMatchers(), 50)

	assert.False(t, result.Found)
	assert.NotNil(t, result.Value)
}

func TestExtractImportantLinks(t *testing.T) {
	body := `<html><body>
		<header><nav>
			<a href="/pages/contact">Contact</a>
			<a href="/blogs/news">Journal</a>
			<a href="/account/login" aria-label="Log in"><svg></svg></a>
			<a href="mailto:hello@example.com">Mail</a>
			<a href="#">Top</a>
		</nav></header>
		<main><a href="/pages/about">About in main</a></main>
		<footer>
			<a href="/pages/faq">FAQ</a>
			<a href="/apps/track-order">Track your order</a>
			<a href="/pages/contact-2">Contact us again</a>
		</footer>
	</body></html>`

	result := extractor.ExtractImportantLinks(extractor.DefaultLinkRules(), homePage(t, body))

	require.True(t, result.Found)
	labels := make([]string, 0, len(result.Value))
	for _, l := range result.Value {
		labels = append(labels, l.Label)
	}
	assert.Equal(t, []string{"contact us", "blog", "account", "FAQ", "track order"}, labels)
	assert.Equal(t, shopRoot+"/pages/contact", result.Value[0].URL)
	assert.Equal(t, "Contact", result.Value[0].Text)
	assert.Equal(t, "Log in", result.Value[2].Text)
}

func TestExtractImportantLinks_TakenLabelFallsThroughToLaterRules(t *testing.T) {
	body := `<html><body><footer>
		<a href="/pages/contact">Contact</a>
		<a href="/pages/help-desk">Help &amp; Contact</a>
	</footer></body></html>`

	result := extractor.ExtractImportantLinks(extractor.DefaultLinkRules(), homePage(t, body))

	require.Len(t, result.Value, 2)
	assert.Equal(t, "contact us", result.Value[0].Label)
	assert.Equal(t, "support", result.Value[1].Label)
	assert.Equal(t, "Help & Contact", result.Value[1].Text)
	assert.Equal(t, shopRoot+"/pages/help-desk", result.Value[1].URL)
}

func TestExtractImportantLinks_NavigationPageUsesAllLinks(t *testing.T) {
	nav := pageFromHTML(t, source.KindNavPage, shopRoot+"/pages/help",
		`<html><body><div><a href="/pages/size-guide">Size chart</a></div></body></html>`)

	result := extractor.ExtractImportantLinks(extractor.DefaultLinkRules(), nav)

	require.Len(t, result.Value, 1)
	assert.Equal(t, "size guide", result.Value[0].Label)
	assert.Equal(t, source.KindNavPage, result.Source)
}

func TestExtractBrand_NameChain(t *testing.T) {
	home := homePage(t, `<html><head>
		<title>Home – Example Brand</title>
		<meta property="og:site_name" content="Example Brand Co">
		<meta name="description" content="  Sustainable basics.  ">
	</head><body></body></html>`)
	titleOnly := homePage(t, `<html><head><title>Home – Example Brand</title></head><body></body></html>`)
	bare := homePage(t, `<html><body></body></html>`)

	tests := []struct {
		name       string
		input      extractor.BrandInput
		wantName   string
		wantSource string
	}{
		{"feed shop name", extractor.BrandInput{ShopName: "Acme Goods", Home: home, Host: "shop.example.com"}, "Acme Goods", extractor.BrandSourceFeed},
		{"og site name", extractor.BrandInput{Home: home, Host: "shop.example.com"}, "Example Brand Co", extractor.BrandSourceOG},
		{"title heuristic", extractor.BrandInput{Home: titleOnly, Host: "shop.example.com"}, "Example Brand", extractor.BrandSourceTitle},
		{"host label", extractor.BrandInput{Home: bare, Host: "www.acme-goods.com"}, "Acme-goods", extractor.BrandSourceDomain},
		{"no home page", extractor.BrandInput{Host: "www.acme-goods.com"}, "Acme-goods", extractor.BrandSourceDomain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractor.ExtractBrand(tt.input)
			require.True(t, result.Found)
			assert.Equal(t, tt.wantName, result.Value.Name)
			assert.Equal(t, tt.wantSource, result.Note)
		})
	}
}

func TestExtractBrand_DescriptionAndAbout(t *testing.T) {
	home := homePage(t, `<html><head><meta name="description" content="  Sustainable basics.  "></head><body></body></html>`)
	about := pageFromHTML(t, source.KindAboutPage, shopRoot+"/pages/about",
		`<html><body><nav><a href="/">Home</a></nav><main><p>Founded in 2015 by two friends in Lisbon.</p></main></body></html>`)

	result := extractor.ExtractBrand(extractor.BrandInput{Home: home, About: about, Host: "shop.example.com"})

	assert.Equal(t, "Sustainable basics.", result.Value.Description)
	assert.Equal(t, "Founded in 2015 by two friends in Lisbon.", result.Value.About)
}
