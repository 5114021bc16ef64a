package feed

import (
	"strings"

	"golang.org/x/net/html"
)

// Text extracts the readable text content from rendered HTML for the feed's
// content_text field. Script and style subtrees are skipped, and whitespace
// runs are collapsed to single spaces.
func Text(rendered []byte) string {
	root, err := html.Parse(strings.NewReader(string(rendered)))
	if err != nil {
		// html.Parse only fails on reader errors; a strings.Reader never
		// produces one, but keep the fallback cheap anyway.
		return strings.TrimSpace(string(rendered))
	}

	var sb strings.Builder
	collectText(root, &sb)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func collectText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript":
			return
		case "p", "div", "li", "br", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre", "tr":
			// Block boundaries become whitespace so adjacent text does not fuse.
			sb.WriteByte(' ')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
	if n.Type == html.ElementNode {
		sb.WriteByte(' ')
	}
}
