package mdconvert

// Representation

type ConversionResult struct {
	markdownContent []byte
}

func NewConversionResult(markdownContent []byte) ConversionResult {
	return ConversionResult{
		markdownContent: markdownContent,
	}
}

func (c *ConversionResult) String() string {
	return string(c.markdownContent)
}

// ConvertParam carries per-document conversion settings.
type ConvertParam struct {
	// BaseURL resolves relative links and images, e.g. "https://shop.example.com".
	// Empty leaves them untouched.
	BaseURL string
}
