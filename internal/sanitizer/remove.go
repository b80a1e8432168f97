package sanitizer

import (
	"strings"

	"golang.org/x/net/html"
)

// boilerplateTags are removed together with their whole subtree.
var boilerplateTags = map[string]bool{
	"nav": true, "header": true, "footer": true, "aside": true,
	"script": true, "style": true, "form": true, "noscript": true,
	"iframe": true, "template": true, "svg": true, "button": true,
}

// boilerplateRoles mark chrome that is not expressed with a semantic tag.
var boilerplateRoles = map[string]bool{
	"navigation": true, "banner": true, "contentinfo": true, "complementary": true,
}

// removeBoilerplate drops chrome elements and comments anywhere below root.
// The root itself is never removed, even when it is e.g. a <header>.
func removeBoilerplate(root *html.Node) {
	var children []*html.Node
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		children = append(children, child)
	}

	for _, child := range children {
		if child.Type == html.CommentNode || isBoilerplate(child) {
			root.RemoveChild(child)
			continue
		}
		removeBoilerplate(child)
	}
}

func isBoilerplate(node *html.Node) bool {
	if node.Type != html.ElementNode {
		return false
	}
	if boilerplateTags[node.Data] {
		return true
	}
	for _, attr := range node.Attr {
		switch attr.Key {
		case "role":
			if boilerplateRoles[strings.ToLower(strings.TrimSpace(attr.Val))] {
				return true
			}
		case "aria-hidden":
			if strings.EqualFold(strings.TrimSpace(attr.Val), "true") {
				return true
			}
		case "hidden":
			return true
		}
	}
	return false
}

// removeEmptyNodesBottomUp performs a post-order traversal to remove empty nodes.
// This ensures nested empty containers are fully cleaned (innermost first).
func removeEmptyNodesBottomUp(node *html.Node) {
	if node == nil {
		return
	}

	// removing nodes mutates the sibling list, so snapshot it first
	var children []*html.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		children = append(children, child)
	}

	for _, child := range children {
		removeEmptyNodesBottomUp(child)
	}

	if node.Type == html.ElementNode && isEmptyNode(node) && shouldRemoveEmptyElement(node.Data) {
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}
	}
}

// shouldRemoveEmptyElement returns true if an empty element of this type should be removed.
// Some empty elements like <img>, <br>, <hr> are valid even when empty.
func shouldRemoveEmptyElement(tag string) bool {
	voidElements := map[string]bool{
		"area": true, "base": true, "br": true, "col": true, "embed": true,
		"hr": true, "img": true, "input": true, "link": true, "meta": true,
		"param": true, "source": true, "track": true, "wbr": true,
	}

	if voidElements[tag] {
		return false
	}

	// table cells keep their grid even when blank
	structuralElements := map[string]bool{
		"html": true, "head": true, "body": true, "main": true,
		"td": true, "th": true, "tr": true,
	}

	return !structuralElements[tag]
}

// isEmptyNode checks if a node is empty (has no children or only whitespace text nodes).
func isEmptyNode(node *html.Node) bool {
	if node == nil || node.Type != html.ElementNode {
		return false
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.ElementNode:
			return false
		case html.TextNode:
			if strings.TrimSpace(child.Data) != "" {
				return false
			}
		}
	}

	return true
}

// removeDuplicateNodes removes repeated sibling blocks, keeping the first occurrence.
// Storefront themes often render the same paragraph twice for mobile and desktop.
func removeDuplicateNodes(root *html.Node) {
	if root == nil {
		return
	}

	seen := make(map[string]bool)
	var children []*html.Node
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		children = append(children, child)
	}

	for _, child := range children {
		if child.Type == html.ElementNode && isMeaningfulElement(child.Data) {
			sig := nodeSignature(child)
			if seen[sig] {
				root.RemoveChild(child)
				continue
			}
			seen[sig] = true
		}
		removeDuplicateNodes(child)
	}
}

func isMeaningfulElement(tag string) bool {
	switch tag {
	case "p", "li", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre", "table", "ul", "ol", "section":
		return true
	}
	return false
}

// nodeSignature identifies a node by tag, attributes and normalized text.
func nodeSignature(node *html.Node) string {
	var sig strings.Builder
	sig.WriteString(node.Data)
	sig.WriteString("|")
	for _, attr := range node.Attr {
		sig.WriteString(attr.Key)
		sig.WriteString("=")
		sig.WriteString(attr.Val)
		sig.WriteString(",")
	}
	sig.WriteString("|")
	sig.WriteString(NormalizedText(node))
	return sig.String()
}
