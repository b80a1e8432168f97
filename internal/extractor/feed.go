package extractor

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rohmanhakim/store-insights/internal/insight"
	"github.com/rohmanhakim/store-insights/internal/source"
	"github.com/rohmanhakim/store-insights/pkg/urlutil"
)

/*
Responsibilities
- Stream the storefront product feed record by record
- Skip malformed records and count them
- Stop at the product cap
- Keep every record decoded before a truncated or broken tail

A record is malformed when it is not an object, lacks an id, title or
handle, or repeats an id or handle already seen.
*/

type feedProduct struct {
	ID          json.RawMessage   `json:"id"`
	Title       string            `json:"title"`
	Handle      string            `json:"handle"`
	Vendor      string            `json:"vendor"`
	ProductType string            `json:"product_type"`
	Tags        json.RawMessage   `json:"tags"`
	Variants    []feedVariant     `json:"variants"`
	Images      []json.RawMessage `json:"images"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`
}

type feedVariant struct {
	ID             json.RawMessage `json:"id"`
	Title          string          `json:"title"`
	Price          json.RawMessage `json:"price"`
	CompareAtPrice json.RawMessage `json:"compare_at_price"`
	SKU            string          `json:"sku"`
	Available      bool            `json:"available"`
}

type feedShop struct {
	Name string `json:"name"`
}

type feedState struct {
	opts     FeedOptions
	products []insight.Product
	seenIDs  map[string]struct{}
	seenHdl  map[string]struct{}
	records  int
	stats    insight.FeedStats
}

// ExtractProducts parses a product feed body. A feed that is not JSON yields
// no products; a feed that breaks mid-stream keeps what was decoded before.
func ExtractProducts(raw source.RawSource, opts FeedOptions) ProductsResult {
	if !raw.Usable() {
		return ProductsResult{Products: []insight.Product{}, Note: "product feed " + raw.Status.String()}
	}
	if opts.Cap <= 0 {
		opts.Cap = DefaultOptions().ProductCap
	}
	if opts.PageSize <= 0 {
		opts.PageSize = source.FeedPageSize
	}

	state := &feedState{
		opts:     opts,
		products: []insight.Product{},
		seenIDs:  make(map[string]struct{}),
		seenHdl:  make(map[string]struct{}),
	}

	dec := json.NewDecoder(bytes.NewReader(raw.Body))
	dec.UseNumber()

	var shopName string
	var notJSON bool
	tok, err := dec.Token()
	switch {
	case err != nil:
		notJSON = true
	case tok == json.Delim('['):
		state.readArray(dec)
	case tok == json.Delim('{'):
		shopName = state.readObject(dec)
	default:
		notJSON = true
	}

	if raw.Truncated {
		state.stats.Truncated = true
	}
	state.stats.Parsed = len(state.products)
	state.stats.PageFull = !state.stats.CapHit && state.records >= opts.PageSize

	result := ProductsResult{
		Products: state.products,
		Stats:    state.stats,
		ShopName: shopName,
		Found:    len(state.products) > 0,
	}
	switch {
	case notJSON:
		result.Note = string(ErrCauseFeedNotJSON)
	case !result.Found:
		result.Note = "product feed has no valid products"
	}
	return result
}

// readObject walks the top-level feed object and returns shop.name if present.
func (s *feedState) readObject(dec *json.Decoder) string {
	var shopName string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			s.stats.Truncated = true
			return shopName
		}
		key, _ := keyTok.(string)
		switch key {
		case "products":
			tok, err := dec.Token()
			if err != nil {
				s.stats.Truncated = true
				return shopName
			}
			if tok == json.Delim('{') {
				if !skipOpened(dec) {
					s.stats.Truncated = true
					return shopName
				}
				continue
			}
			if tok != json.Delim('[') {
				continue
			}
			if !s.readArray(dec) {
				return shopName
			}
		case "shop":
			var rawShop json.RawMessage
			if err := dec.Decode(&rawShop); err != nil {
				s.stats.Truncated = true
				return shopName
			}
			var shop feedShop
			if json.Unmarshal(rawShop, &shop) == nil {
				shopName = strings.TrimSpace(shop.Name)
			}
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				s.stats.Truncated = true
				return shopName
			}
		}
	}
	return shopName
}

// readArray consumes product records after the opening bracket. It returns
// false when reading must stop: the cap was hit or the stream broke.
func (s *feedState) readArray(dec *json.Decoder) bool {
	for dec.More() {
		if len(s.products) >= s.opts.Cap {
			s.stats.CapHit = true
			return false
		}
		var record json.RawMessage
		if err := dec.Decode(&record); err != nil {
			s.stats.Truncated = true
			return false
		}
		s.records++
		product, ok := s.parseRecord(record)
		if !ok {
			s.stats.Skipped++
			continue
		}
		s.products = append(s.products, product)
	}
	if _, err := dec.Token(); err != nil {
		s.stats.Truncated = true
		return false
	}
	return true
}

// skipOpened consumes the remainder of an object or array whose opening
// delimiter was already read.
func skipOpened(dec *json.Decoder) bool {
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return false
		}
		switch tok {
		case json.Delim('{'), json.Delim('['):
			depth++
		case json.Delim('}'), json.Delim(']'):
			depth--
		}
	}
	return true
}

func (s *feedState) parseRecord(record json.RawMessage) (insight.Product, bool) {
	trimmed := bytes.TrimSpace(record)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return insight.Product{}, false
	}

	var fp feedProduct
	if err := json.Unmarshal(trimmed, &fp); err != nil {
		// Type mismatches on optional fields leave the rest populated.
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return insight.Product{}, false
		}
	}

	id, ok := renderID(fp.ID)
	title := strings.TrimSpace(fp.Title)
	handle := strings.TrimSpace(fp.Handle)
	if !ok || title == "" || handle == "" {
		return insight.Product{}, false
	}
	if _, dup := s.seenIDs[id]; dup {
		return insight.Product{}, false
	}
	if _, dup := s.seenHdl[handle]; dup {
		return insight.Product{}, false
	}
	s.seenIDs[id] = struct{}{}
	s.seenHdl[handle] = struct{}{}

	product := insight.Product{
		ID:          id,
		Title:       title,
		Handle:      handle,
		Vendor:      strings.TrimSpace(fp.Vendor),
		ProductType: strings.TrimSpace(fp.ProductType),
		Tags:        parseTags(fp.Tags),
		Variants:    parseVariants(fp.Variants),
		Images:      parseImages(fp.Images),
		URL:         productURL(s.opts.Root, handle),
		CreatedAt:   parseTime(fp.CreatedAt),
		UpdatedAt:   parseTime(fp.UpdatedAt),
	}
	return product.Normalize(), true
}

// renderID renders numeric ids in decimal without exponent and keeps string
// ids verbatim.
func renderID(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		s = strings.TrimSpace(s)
		return s, s != ""
	}
	return renderNumber(string(raw))
}

func renderNumber(literal string) (string, bool) {
	if _, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return literal, true
	}
	if _, err := strconv.ParseUint(literal, 10, 64); err == nil {
		return literal, true
	}
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return "", false
	}
	if f == math.Trunc(f) {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	return "", false
}

// renderPrice keeps prices as written in the feed. Quoted values are
// unquoted and trimmed; numeric values keep their literal form.
func renderPrice(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return ""
	}
	return string(raw)
}

// parseTags accepts both an array of strings and a comma separated string.
func parseTags(raw json.RawMessage) []string {
	tags := []string{}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return tags
	}

	var list []string
	if raw[0] == '[' {
		var items []json.RawMessage
		if json.Unmarshal(raw, &items) != nil {
			return tags
		}
		for _, item := range items {
			var s string
			if json.Unmarshal(item, &s) == nil {
				list = append(list, s)
			}
		}
	} else if raw[0] == '"' {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return tags
		}
		list = strings.Split(s, ",")
	}

	for _, tag := range list {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func parseVariants(variants []feedVariant) []insight.Variant {
	out := make([]insight.Variant, 0, len(variants))
	for _, v := range variants {
		id, _ := renderID(v.ID)
		out = append(out, insight.Variant{
			ID:             id,
			Title:          strings.TrimSpace(v.Title),
			Price:          renderPrice(v.Price),
			CompareAtPrice: renderPrice(v.CompareAtPrice),
			SKU:            strings.TrimSpace(v.SKU),
			Available:      v.Available,
		})
	}
	return out
}

// parseImages accepts image objects carrying src and bare URL strings.
func parseImages(images []json.RawMessage) []string {
	out := make([]string, 0, len(images))
	for _, raw := range images {
		var src string
		var obj struct {
			Src string `json:"src"`
		}
		if json.Unmarshal(raw, &obj) == nil {
			src = obj.Src
		} else if json.Unmarshal(raw, &src) != nil {
			continue
		}
		if src = strings.TrimSpace(src); src != "" {
			out = append(out, src)
		}
	}
	return out
}

func parseTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func productURL(root url.URL, handle string) string {
	u := urlutil.WithPath(root, "")
	u.Path = "/products/" + handle
	return u.String()
}
