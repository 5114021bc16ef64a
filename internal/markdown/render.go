// Package markdown renders markup bodies to HTML.
//
// Rendering is deterministic: the same input always yields byte-identical
// output, which keeps full site builds reproducible.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// newMarkdown builds the shared goldmark instance. Footnotes and auto heading
// IDs match the constructs the content store uses; WithUnsafe passes embedded
// raw HTML through, since all content is authored in-house.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.Footnote,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			renderer.WithNodeRenderers(
				util.Prioritized(newCodeBlockRenderer(html.WithUnsafe()), 100),
			),
		),
	)
}

var md = newMarkdown()

// Render converts a markup body to HTML. Unterminated constructs (e.g. an
// open code fence) extend to the end of the document rather than failing.
func Render(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.Bytes(), nil
}
