package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRender_BasicConstructs(t *testing.T) {
	out, err := Render([]byte("# Heading\n\nSome *emphasis* and a [link](https://example.com) and ![img](/a.png).\n"))
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "<h1 id=\"heading\">Heading</h1>")
	assert.Contains(t, html, "<em>emphasis</em>")
	assert.Contains(t, html, `<a href="https://example.com">link</a>`)
	assert.Contains(t, html, `<img src="/a.png" alt="img"`)
}

func TestRender_FencedCodeBlockVerbatim(t *testing.T) {
	src := "```go\nfmt.Println(\"*not emphasis*\")\n```\n"
	out, err := Render([]byte(src))
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, `<pre><code class="language-go">`)
	assert.Contains(t, html, "*not emphasis*")
	assert.NotContains(t, html, "<em>")
}

func TestRender_RunnableAnnotation(t *testing.T) {
	src := "```go runnable\nfmt.Println(\"hi\")\n```\n"
	out, err := Render([]byte(src))
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, `class="language-go"`)
	assert.Contains(t, html, `data-runnable="true"`)
}

func TestRender_NonRunnableBlockHasNoAttribute(t *testing.T) {
	out, err := Render([]byte("```go\nx\n```\n"))
	require.NoError(t, err)
	assert.NotContains(t, string(out), "data-runnable")
}

func TestRender_UnterminatedFenceRunsToEOF(t *testing.T) {
	src := "intro\n\n```go\nnever closed\nstill code *here*\n"
	out, err := Render([]byte(src))
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "<pre><code")
	assert.Contains(t, html, "still code *here*")
	assert.Contains(t, html, "</code></pre>")
	assert.NotContains(t, html, "<em>here</em>")
}

func TestRender_CodeContentEscaped(t *testing.T) {
	out, err := Render([]byte("```\n<script>alert(1)</script>\n```\n"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "&lt;script&gt;")
}

func TestRender_Footnotes(t *testing.T) {
	src := "Text with a note.[^1]\n\n[^1]: The note body.\n"
	out, err := Render([]byte(src))
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "fn:1")
	assert.Contains(t, html, "The note body.")
}

func TestRender_Idempotent(t *testing.T) {
	src := []byte("# T\n\npara with [l](/x) and `code`.\n\n```go runnable\nf()\n```\n")

	first, err := Render(src)
	require.NoError(t, err)
	second, err := Render(src)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// Determinism property: for arbitrary input, two renders are byte-identical.
func TestRender_DeterministicProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		src := []byte(rapid.String().Draw(t, "src"))

		first, err1 := Render(src)
		second, err2 := Render(src)
		require.NoError(t, err1)
		require.NoError(t, err2)
		require.Equal(t, first, second)
	})
}
