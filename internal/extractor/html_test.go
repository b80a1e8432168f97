package extractor_test

import (
	"testing"

	"github.com/rohmanhakim/store-insights/internal/extractor"
	"github.com/rohmanhakim/store-insights/internal/fetcher"
	"github.com/rohmanhakim/store-insights/internal/insight"
	"github.com/rohmanhakim/store-insights/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePage(t *testing.T) {
	t.Run("unavailable source", func(t *testing.T) {
		raw := source.Missing(source.KindHomePage, mustParseURL(t, shopRoot), fetcher.StatusTimeout)
		_, err := extractor.ParsePage(raw)
		require.NotNil(t, err)
		var extractionErr *extractor.ExtractionError
		require.ErrorAs(t, err, &extractionErr)
		assert.Equal(t, extractor.ErrCauseSourceMissing, extractionErr.Cause)
	})

	t.Run("json body", func(t *testing.T) {
		_, err := extractor.ParsePage(okSource(t, source.KindFAQPage, shopRoot+"/pages/faq", ` {"error":"x"}`))
		require.NotNil(t, err)
		var extractionErr *extractor.ExtractionError
		require.ErrorAs(t, err, &extractionErr)
		assert.Equal(t, extractor.ErrCauseNotHTML, extractionErr.Cause)
	})

	t.Run("malformed html is repaired", func(t *testing.T) {
		page, err := extractor.ParsePage(okSource(t, source.KindHomePage, shopRoot, "<div><p>unclosed"))
		require.Nil(t, err)
		assert.True(t, page.Valid())
		root := page.Root()
		assert.Equal(t, "https://shop.example.com", root.String())
	})
}

func TestExtractHeroProducts(t *testing.T) {
	body := `<html><body>
		<header><a href="/products/nav-item">Nav</a></header>
		<section class="featured-collection">
			<a href="/products/tee">Tee</a>
			<a href="/collections/all/products/cap?variant=1" title="Cap Title"></a>
			<a href="/products/tee">Tee again</a>
			<a href="https://other.example.org/products/elsewhere">Elsewhere</a>
		</section>
	</body></html>`
	catalog := []insight.Product{
		{ID: "1", Title: "Catalog Tee", Handle: "tee", URL: shopRoot + "/products/tee"},
	}

	result := extractor.ExtractHeroProducts(homePage(t, body), catalog, 10)

	require.True(t, result.Found)
	require.Len(t, result.Value, 2)
	assert.Equal(t, "Catalog Tee", result.Value[0].Title)
	assert.Equal(t, "1", result.Value[0].ID)
	assert.Equal(t, "cap", result.Value[1].Handle)
	assert.Equal(t, "Cap Title", result.Value[1].Title)
	assert.Equal(t, shopRoot+"/products/cap", result.Value[1].URL)
	assert.NotNil(t, result.Value[1].Tags)
}

func TestExtractHeroProducts_FallsBackToMainAndLimits(t *testing.T) {
	body := `<html><body><main>
		<a href="/products/a">A</a><a href="/products/b">B</a><a href="/products/c">C</a>
	</main></body></html>`

	result := extractor.ExtractHeroProducts(homePage(t, body), nil, 2)

	require.Len(t, result.Value, 2)
	assert.Equal(t, "a", result.Value[0].Handle)
	assert.Equal(t, "b", result.Value[1].Handle)
}

func TestExtractHeroProducts_NoLinks(t *testing.T) {
	result := extractor.ExtractHeroProducts(homePage(t, "<html><body><main>Welcome</main></body></html>"), nil, 10)

	assert.False(t, result.Found)
	assert.NotNil(t, result.Value)
	assert.Empty(t, result.Value)
}

func TestExtractSocialHandles_FirstProfilePerPlatform(t *testing.T) {
	body := `<html><body><footer>
		<a href="https://instagram.com/examplebrand">Instagram</a>
		<a href="https://www.facebook.com/sharer/sharer.php?u=https://shop.example.com">Share</a>
		<a href="https://facebook.com/ExampleBrand">Facebook</a>
		<a href="https://twitter.com/intent/tweet?text=hello">Tweet</a>
		<a href="https://www.tiktok.com/@examplebrand">TikTok</a>
		<a href="https://instagram.com//">Broken</a>
		<a href="https://instagram.com/otherbrand">Other</a>
	</footer></body></html>`

	result := extractor.ExtractSocialHandles(extractor.DefaultSocialRecognizers(), homePage(t, body))

	require.True(t, result.Found)
	require.Len(t, result.Value, 3)

	instagram := result.Value[0]
	assert.Equal(t, insight.PlatformInstagram, instagram.Platform)
	require.NotNil(t, instagram.Username)
	assert.Equal(t, "examplebrand", *instagram.Username)
	assert.Equal(t, "https://www.instagram.com/examplebrand", instagram.URL)

	assert.Equal(t, insight.PlatformFacebook, result.Value[1].Platform)
	assert.Equal(t, "ExampleBrand", *result.Value[1].Username)

	assert.Equal(t, insight.PlatformTikTok, result.Value[2].Platform)
	assert.Equal(t, "examplebrand", *result.Value[2].Username)
	assert.Equal(t, "https://www.tiktok.com/@examplebrand", result.Value[2].URL)
}

func TestExtractSocialHandles_MalformedOnlyYieldsNothing(t *testing.T) {
	body := `<html><body><a href="https://instagram.com//">Broken</a><a href="https://www.instagram.com/p/Cx123/">Post</a></body></html>`

	result := extractor.ExtractSocialHandles(extractor.DefaultSocialRecognizers(), homePage(t, body))

	assert.False(t, result.Found)
	assert.Empty(t, result.Value)
}

func TestExtractSocialHandles_PlatformPaths(t *testing.T) {
	body := `<html><body>
		<a href="https://www.youtube.com/channel/UC123abc">YouTube</a>
		<a href="https://www.linkedin.com/company/example-brand/">LinkedIn</a>
		<a href="https://x.com/examplebrand/status/1">Tweet</a>
		<a href="https://x.com/ExampleBrand">X</a>
		<a href="https://www.pinterest.co.uk/examplebrand/">Pinterest</a>
		<a href="https://www.facebook.com/profile.php?id=100">Profile</a>
	</body></html>`

	result := extractor.ExtractSocialHandles(extractor.DefaultSocialRecognizers(), homePage(t, body))

	require.Len(t, result.Value, 5)
	byPlatform := map[insight.Platform]insight.SocialHandle{}
	for _, h := range result.Value {
		byPlatform[h.Platform] = h
	}
	assert.Equal(t, "UC123abc", *byPlatform[insight.PlatformYouTube].Username)
	assert.Equal(t, "https://www.youtube.com/channel/UC123abc", byPlatform[insight.PlatformYouTube].URL)
	assert.Equal(t, "example-brand", *byPlatform[insight.PlatformLinkedIn].Username)
	assert.Equal(t, "ExampleBrand", *byPlatform[insight.PlatformTwitter].Username)
	assert.Equal(t, "examplebrand", *byPlatform[insight.PlatformPinterest].Username)
	assert.Nil(t, byPlatform[insight.PlatformFacebook].Username)
	assert.Equal(t, "https://www.facebook.com/profile.php", byPlatform[insight.PlatformFacebook].URL)
}

func TestExtractSocialHandles_AcrossPagesKeepsPageOrder(t *testing.T) {
	home := homePage(t, `<html><body><a href="https://instagram.com/homebrand">IG</a></body></html>`)
	contact := pageFromHTML(t, source.KindContactPage, shopRoot+"/pages/contact",
		`<html><body><a href="https://instagram.com/contactbrand">IG</a><a href="https://facebook.com/brand">FB</a></body></html>`)

	result := extractor.ExtractSocialHandles(extractor.DefaultSocialRecognizers(), home, extractor.Page{}, contact)

	require.Len(t, result.Value, 2)
	assert.Equal(t, "homebrand", *result.Value[0].Username)
	assert.Equal(t, source.KindHomePage, result.Source)
}

func TestExtractContactInfo(t *testing.T) {
	body := `<html><body>
		<a href="mailto:Hello@ExampleBrand.com?subject=Hi">Email us</a>
		<a href="tel:+1-555-123-4567">Call</a>
		<p>Write to support@examplebrand.com or hello@examplebrand.com</p>
		<p>Phone: (555) 987-6543</p>
		<p>Order 12345678901</p>
		<p>icon sprite@2x.png</p>
		<script>var x = "tracking@analytics.example";</script>
	</body></html>`

	result := extractor.ExtractContactInfo(homePage(t, body))

	require.True(t, result.Found)
	assert.Equal(t, []string{"hello@examplebrand.com", "support@examplebrand.com"}, result.Value.Emails)
	assert.Equal(t, []string{"+1-555-123-4567", "(555) 987-6543"}, result.Value.Phones)
	assert.Nil(t, result.Value.ContactFormURL)
}

func TestExtractContactInfo_ContactPageForm(t *testing.T) {
	home := homePage(t, `<html><body><p>Nothing here</p></body></html>`)
	contact := pageFromHTML(t, source.KindContactPage, shopRoot+"/pages/contact",
		`<html><body><form method="post" action="/contact#contact_form"><input name="email"></form></body></html>`)

	result := extractor.ExtractContactInfo(home, contact)

	require.True(t, result.Found)
	require.NotNil(t, result.Value.ContactFormURL)
	assert.Equal(t, shopRoot+"/pages/contact", *result.Value.ContactFormURL)
	assert.Empty(t, result.Value.Emails)
	assert.NotNil(t, result.Value.Emails)
}

func TestExtractContactInfo_ContactFormOnOtherPage(t *testing.T) {
	home := homePage(t, `<html><body>
		<form action="/search"><input name="q"></form>
		<form id="ContactFooter" action="/contact"><input name="email"></form>
	</body></html>`)

	result := extractor.ExtractContactInfo(home)

	require.NotNil(t, result.Value.ContactFormURL)
	assert.Equal(t, shopRoot+"/contact", *result.Value.ContactFormURL)
}

func TestExtractContactInfo_NothingFound(t *testing.T) {
	result := extractor.ExtractContactInfo(homePage(t, `<html><body><p>Hello</p></body></html>`))

	assert.False(t, result.Found)
	assert.NotNil(t, result.Value.Emails)
	assert.NotNil(t, result.Value.Phones)
}
