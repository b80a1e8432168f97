package sanitizer

import (
	"github.com/rohmanhakim/store-insights/pkg/failure"
	"golang.org/x/net/html"
)

// Sanitizer strips page chrome from a content region so that only the
// region's own text and structure remain.
type Sanitizer interface {
	// Sanitize never mutates inputContentNode; it works on a deep copy.
	Sanitize(inputContentNode *html.Node) (SanitizedHTMLDoc, failure.ClassifiedError)
}

// Compile-time interface check
var _ Sanitizer = (*HTMLSanitizer)(nil)
