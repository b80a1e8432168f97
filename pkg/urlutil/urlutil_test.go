package urlutil

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "trailing slash removed",
			input:    "https://shop.example.com/pages/faq/",
			expected: "https://shop.example.com/pages/faq",
		},
		{
			name:     "fragment and query removed",
			input:    "https://shop.example.com/pages/faq?utm_source=ig#shipping",
			expected: "https://shop.example.com/pages/faq",
		},
		{
			name:     "scheme and host lowercased",
			input:    "HTTPS://SHOP.Example.COM/pages/faq",
			expected: "https://shop.example.com/pages/faq",
		},
		{
			name:     "default https port omitted",
			input:    "https://shop.example.com:443/",
			expected: "https://shop.example.com/",
		},
		{
			name:     "non default port kept",
			input:    "http://127.0.0.1:8080/products",
			expected: "http://127.0.0.1:8080/products",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.input)
			require.NoError(t, err)
			got := Canonicalize(*u)
			assert.Equal(t, tt.expected, got.String())

			again := Canonicalize(got)
			assert.Equal(t, got.String(), again.String(), "must be idempotent")
		})
	}
}

func TestResolve(t *testing.T) {
	base, err := url.Parse("https://shop.example.com/pages/about")
	require.NoError(t, err)

	tests := []struct {
		href     string
		expected string
		ok       bool
	}{
		{href: "/products/tee", expected: "https://shop.example.com/products/tee", ok: true},
		{href: "contact", expected: "https://shop.example.com/pages/contact", ok: true},
		{href: "//instagram.com/brand", expected: "https://instagram.com/brand", ok: true},
		{href: "  https://x.com/brand  ", expected: "https://x.com/brand", ok: true},
		{href: "mailto:hi@example.com", ok: false},
		{href: "tel:+15550100", ok: false},
		{href: "javascript:void(0)", ok: false},
		{href: "#top", ok: false},
		{href: "", ok: false},
		{href: "http://[::1", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			got, ok := Resolve(*base, tt.href)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got.String())
			}
		})
	}
}

func TestWithPath(t *testing.T) {
	root, err := url.Parse("https://shop.example.com")
	require.NoError(t, err)

	feed := WithPath(*root, "/products.json?limit=250")
	assert.Equal(t, "https://shop.example.com/products.json?limit=250", feed.String())

	home := WithPath(*root, "/")
	assert.Equal(t, "https://shop.example.com/", home.String())
}

func TestHostLabel(t *testing.T) {
	tests := map[string]string{
		"www.acme-goods.com":      "Acme-goods",
		"acme.myshopify.com":      "Acme",
		"shop.brand.co.uk":        "Brand",
		"shop.brand.com":          "Brand",
		"EXAMPLE.com":             "Example",
		"examplebrand.com:8443":   "Examplebrand",
		"127.0.0.1":               "127.0.0.1",
		"":                        "",
	}
	for host, expected := range tests {
		assert.Equal(t, expected, HostLabel(host), host)
	}
}
