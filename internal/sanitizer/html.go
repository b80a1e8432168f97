/*
Responsibilities
- Detach the content region from the shared page DOM
- Remove page chrome (navigation, header, footer, sidebars, scripts, forms)
- Remove comments, empty containers and repeated blocks
- Produce whitespace-normalized text

Sanitization is deterministic: the same region always yields the same output.
*/
package sanitizer

import (
	"time"

	"github.com/rohmanhakim/store-insights/internal/metadata"
	"github.com/rohmanhakim/store-insights/pkg/failure"
	"golang.org/x/net/html"
)

type HTMLSanitizer struct {
	metadataSink metadata.MetadataSink
}

func NewHTMLSanitizer(metadataSink metadata.MetadataSink) HTMLSanitizer {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return HTMLSanitizer{
		metadataSink: metadataSink,
	}
}

func (h *HTMLSanitizer) Sanitize(inputContentNode *html.Node) (SanitizedHTMLDoc, failure.ClassifiedError) {
	doc, err := sanitize(inputContentNode)
	if err != nil {
		h.metadataSink.RecordError(
			time.Now(),
			"sanitizer",
			"HTMLSanitizer.Sanitize",
			mapSanitizationErrorToMetadataCause(err),
			err.Error(),
			nil,
		)
		return SanitizedHTMLDoc{}, err
	}
	return doc, nil
}

func sanitize(input *html.Node) (SanitizedHTMLDoc, *SanitizationError) {
	if input == nil {
		return SanitizedHTMLDoc{}, &SanitizationError{
			Message:   "nil content node",
			Retryable: false,
			Cause:     ErrCauseBrokenDOM,
		}
	}

	root := cloneTree(input)
	removeBoilerplate(root)
	removeEmptyNodesBottomUp(root)
	removeDuplicateNodes(root)

	text := NormalizedText(root)
	if text == "" {
		return SanitizedHTMLDoc{}, &SanitizationError{
			Message:   "content region holds no visible text",
			Retryable: false,
			Cause:     ErrCauseEmptyContent,
		}
	}

	return SanitizedHTMLDoc{contentNode: root, text: text}, nil
}

// cloneTree deep-copies n and its descendants into a detached tree.
func cloneTree(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		clone.Attr = make([]html.Attribute, len(n.Attr))
		copy(clone.Attr, n.Attr)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		clone.AppendChild(cloneTree(child))
	}
	return clone
}
