package sanitizer

import (
	"golang.org/x/net/html"
)

type SanitizedHTMLDoc struct {
	contentNode *html.Node
	text        string
}

// GetContentNode returns the cleaned, detached copy of the input node.
func (s *SanitizedHTMLDoc) GetContentNode() *html.Node {
	return s.contentNode
}

// GetText returns the visible text of the cleaned node, one block per line.
func (s *SanitizedHTMLDoc) GetText() string {
	return s.text
}

// NewSanitizedHTMLDoc creates a SanitizedHTMLDoc for testing purposes.
// The fields remain private to maintain immutability.
func NewSanitizedHTMLDoc(contentNode *html.Node, text string) SanitizedHTMLDoc {
	return SanitizedHTMLDoc{
		contentNode: contentNode,
		text:        text,
	}
}
