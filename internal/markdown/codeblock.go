package markdown

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// runnableAnnotation marks a fenced code block as executable by the
// client-side runner script. The pipeline only tags the block; execution
// behavior lives entirely in the browser.
const runnableAnnotation = "runnable"

// codeBlockRenderer renders fenced code blocks, preserving literal content
// and emitting a data-runnable attribute for annotated blocks.
type codeBlockRenderer struct {
	html.Config
}

func newCodeBlockRenderer(opts ...html.Option) renderer.NodeRenderer {
	r := &codeBlockRenderer{Config: html.NewConfig()}
	for _, opt := range opts {
		opt.SetHTMLOption(&r.Config)
	}
	return r
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.FencedCodeBlock)
	if !entering {
		_, _ = w.WriteString("</code></pre>\n")
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString("<pre><code")
	if language := n.Language(source); language != nil {
		_, _ = w.WriteString(` class="language-`)
		r.Writer.Write(w, language)
		_, _ = w.WriteString(`"`)
	}
	if hasRunnableAnnotation(n, source) {
		_, _ = w.WriteString(` data-runnable="true"`)
	}
	_ = w.WriteByte('>')

	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		r.Writer.RawWrite(w, line.Value(source))
	}
	return ast.WalkContinue, nil
}

// hasRunnableAnnotation checks the fence info line for the runnable word
// anywhere after the language.
func hasRunnableAnnotation(n *ast.FencedCodeBlock, source []byte) bool {
	if n.Info == nil {
		return false
	}
	info := string(n.Info.Segment.Value(source))
	for _, field := range strings.Fields(info) {
		if field == runnableAnnotation {
			return true
		}
	}
	return false
}
