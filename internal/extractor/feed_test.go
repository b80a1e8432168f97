package extractor_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rohmanhakim/store-insights/internal/extractor"
	"github.com/rohmanhakim/store-insights/internal/fetcher"
	"github.com/rohmanhakim/store-insights/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedOptions(t *testing.T) extractor.FeedOptions {
	return extractor.FeedOptions{Cap: 250, Root: mustParseURL(t, shopRoot)}
}

func feedSource(t *testing.T, body string) source.RawSource {
	return okSource(t, source.KindProductFeed, shopRoot+"/products.json?limit=250", body)
}

func TestExtractProducts_SkipsMalformedRecords(t *testing.T) {
	body := `{"products":[
		{"id":1,"title":"Tee","handle":"tee","vendor":"Acme","product_type":"Shirts",
		 "tags":["cotton"," summer ",""],
		 "variants":[{"id":11,"title":"S","price":"19.99","compare_at_price":null,"sku":"T-S","available":true}],
		 "images":[{"src":"https://cdn.example.com/tee.jpg"}],
		 "created_at":"2024-01-02T03:04:05-05:00","updated_at":"not a date"},
		{"id":"2","title":"Cap","handle":"cap","tags":"hat, wool"},
		{"id":3,"title":"Mug","handle":"mug"},
		{"title":"No id","handle":"no-id"}
	]}`

	result := extractor.ExtractProducts(feedSource(t, body), feedOptions(t))

	require.True(t, result.Found)
	require.Len(t, result.Products, 3)
	assert.Equal(t, 3, result.Stats.Parsed)
	assert.Equal(t, 1, result.Stats.Skipped)
	assert.False(t, result.Stats.CapHit)
	assert.False(t, result.Stats.Truncated)

	tee := result.Products[0]
	assert.Equal(t, "1", tee.ID)
	assert.Equal(t, "Tee", tee.Title)
	assert.Equal(t, "Acme", tee.Vendor)
	assert.Equal(t, "Shirts", tee.ProductType)
	assert.Equal(t, []string{"cotton", "summer"}, tee.Tags)
	assert.Equal(t, "https://shop.example.com/products/tee", tee.URL)
	assert.Equal(t, []string{"https://cdn.example.com/tee.jpg"}, tee.Images)
	require.Len(t, tee.Variants, 1)
	assert.Equal(t, "11", tee.Variants[0].ID)
	assert.Equal(t, "19.99", tee.Variants[0].Price)
	assert.Empty(t, tee.Variants[0].CompareAtPrice)
	assert.True(t, tee.Variants[0].Available)
	require.NotNil(t, tee.CreatedAt)
	assert.True(t, tee.CreatedAt.Equal(time.Date(2024, 1, 2, 8, 4, 5, 0, time.UTC)))
	assert.Nil(t, tee.UpdatedAt)

	second := result.Products[1]
	assert.Equal(t, "2", second.ID)
	assert.Equal(t, []string{"hat", "wool"}, second.Tags)
	assert.NotNil(t, second.Variants)
	assert.NotNil(t, second.Images)
}

func TestExtractProducts_PriceLiteralsKeepSourceFormatting(t *testing.T) {
	body := `{"products":[
		{"id":1,"title":"Tee","handle":"tee","variants":[
			{"id":11,"price":19.90,"compare_at_price":1e2},
			{"id":12,"price":" 24.50 ","compare_at_price":null},
			{"id":13,"price":true,"compare_at_price":"30"}
		]}
	]}`

	result := extractor.ExtractProducts(feedSource(t, body), feedOptions(t))

	require.Len(t, result.Products, 1)
	variants := result.Products[0].Variants
	require.Len(t, variants, 3)
	assert.Equal(t, "19.90", variants[0].Price)
	assert.Equal(t, "1e2", variants[0].CompareAtPrice)
	assert.Equal(t, "24.50", variants[1].Price)
	assert.Empty(t, variants[1].CompareAtPrice)
	assert.Empty(t, variants[2].Price)
	assert.Equal(t, "30", variants[2].CompareAtPrice)
}

func TestExtractProducts_RejectsDuplicatesAndNonObjects(t *testing.T) {
	body := `{"products":[
		"not a product",
		{"id":1,"title":"A","handle":"a"},
		{"id":1,"title":"A again","handle":"a-again"},
		{"id":2,"title":"B","handle":"a"},
		{"id":3,"title":"","handle":"c"},
		{"id":4,"title":"D","handle":"d","vendor":42}
	]}`

	result := extractor.ExtractProducts(feedSource(t, body), feedOptions(t))

	require.Len(t, result.Products, 2)
	assert.Equal(t, "a", result.Products[0].Handle)
	assert.Equal(t, "d", result.Products[1].Handle)
	assert.Empty(t, result.Products[1].Vendor)
	assert.Equal(t, 4, result.Stats.Skipped)
}

func TestExtractProducts_LargeNumericIDKeepsDigits(t *testing.T) {
	body := `{"products":[{"id":7890123456789012,"title":"A","handle":"a"}]}`

	result := extractor.ExtractProducts(feedSource(t, body), feedOptions(t))

	require.Len(t, result.Products, 1)
	assert.Equal(t, "7890123456789012", result.Products[0].ID)
}

func TestExtractProducts_CapStopsReading(t *testing.T) {
	var records []string
	for i := 1; i <= 5; i++ {
		records = append(records, fmt.Sprintf(`{"id":%d,"title":"P%d","handle":"p-%d"}`, i, i, i))
	}
	body := `{"products":[` + strings.Join(records, ",") + `]}`
	opts := feedOptions(t)
	opts.Cap = 2

	result := extractor.ExtractProducts(feedSource(t, body), opts)

	assert.Len(t, result.Products, 2)
	assert.True(t, result.Stats.CapHit)
	assert.False(t, result.Stats.PageFull)
}

func TestExtractProducts_PageFull(t *testing.T) {
	body := `{"products":[
		{"id":1,"title":"A","handle":"a"},
		{"id":2,"title":"B","handle":"b"},
		{"id":3,"title":"C","handle":"c"}
	]}`
	opts := feedOptions(t)
	opts.PageSize = 3

	result := extractor.ExtractProducts(feedSource(t, body), opts)

	assert.Len(t, result.Products, 3)
	assert.True(t, result.Stats.PageFull)
}

func TestExtractProducts_TruncatedStreamKeepsDecodedRecords(t *testing.T) {
	body := `{"products":[{"id":1,"title":"A","handle":"a"},{"id":2,"tit`

	result := extractor.ExtractProducts(feedSource(t, body), feedOptions(t))

	require.Len(t, result.Products, 1)
	assert.True(t, result.Stats.Truncated)
	assert.True(t, result.Found)
}

func TestExtractProducts_BodyCutByFetcherIsTruncated(t *testing.T) {
	raw := feedSource(t, `{"products":[{"id":1,"title":"A","handle":"a"}]}`)
	raw.Truncated = true

	result := extractor.ExtractProducts(raw, feedOptions(t))

	assert.Len(t, result.Products, 1)
	assert.True(t, result.Stats.Truncated)
}

func TestExtractProducts_ShopNameAndTopLevelArray(t *testing.T) {
	withShop := `{"shop":{"name":" Acme Goods "},"products":[{"id":1,"title":"A","handle":"a"}]}`
	result := extractor.ExtractProducts(feedSource(t, withShop), feedOptions(t))
	assert.Equal(t, "Acme Goods", result.ShopName)
	assert.Len(t, result.Products, 1)

	array := `[{"id":1,"title":"A","handle":"a"},{"id":2,"title":"B","handle":"b"}]`
	result = extractor.ExtractProducts(feedSource(t, array), feedOptions(t))
	assert.Len(t, result.Products, 2)
}

func TestExtractProducts_NotJSON(t *testing.T) {
	result := extractor.ExtractProducts(feedSource(t, "<html><body>Store</body></html>"), feedOptions(t))

	assert.False(t, result.Found)
	assert.Empty(t, result.Products)
	assert.NotNil(t, result.Products)
	assert.Equal(t, "feed is not json", result.Note)
}

func TestExtractProducts_UnavailableFeed(t *testing.T) {
	raw := source.Missing(source.KindProductFeed, mustParseURL(t, shopRoot+"/products.json"), fetcher.StatusNotFound)

	result := extractor.ExtractProducts(raw, feedOptions(t))

	assert.False(t, result.Found)
	assert.NotNil(t, result.Products)
	assert.Equal(t, "product feed not_found", result.Note)
}

func TestExtractProducts_EmptyProductList(t *testing.T) {
	result := extractor.ExtractProducts(feedSource(t, `{"products":[]}`), feedOptions(t))

	assert.False(t, result.Found)
	assert.Equal(t, 0, result.Stats.Parsed)
	assert.False(t, result.Stats.Truncated)
}
