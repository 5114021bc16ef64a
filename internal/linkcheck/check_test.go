package linkcheck

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLinks(t *testing.T) {
	base, _ := url.Parse("https://blog.example.com")
	page := `<html><body>
<a href="/posts/one/">internal</a>
<a href="https://blog.example.com/posts/two/">same host</a>
<a href="https://other.example.org/">external</a>
<a href="mailto:hi@example.com">mail</a>
<img src="/images/pic.png">
<link href="/feed.json" rel="alternate">
</body></html>`

	links, err := ExtractLinks(strings.NewReader(page), base)
	require.NoError(t, err)
	require.Len(t, links, 6)

	internal := 0
	for _, l := range links {
		if l.IsInternal {
			internal++
		}
	}
	assert.Equal(t, 4, internal)
}

func writeOutput(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestCheckerFindsBrokenLinks(t *testing.T) {
	out := t.TempDir()
	writeOutput(t, out, "index.html",
		`<a href="/posts/exists/">ok</a> <a href="/posts/missing/">broken</a>`)
	writeOutput(t, out, "posts/exists/index.html",
		`<a href="/">home</a> <a href="https://external.example.org/x">external</a>`)

	c, err := NewChecker(out, "https://blog.example.com")
	require.NoError(t, err)

	broken, err := c.Run()
	require.NoError(t, err)
	require.Len(t, broken, 1)
	assert.Equal(t, "index.html", broken[0].Page)
	assert.Equal(t, "/posts/missing/", broken[0].URL)
	assert.Equal(t, "posts/missing", broken[0].Target)
}

func TestCheckerResolvesRelativeLinks(t *testing.T) {
	out := t.TempDir()
	writeOutput(t, out, "posts/a/index.html", `<a href="../b/">sibling</a>`)
	writeOutput(t, out, "posts/b/index.html", `ok`)

	c, err := NewChecker(out, "")
	require.NoError(t, err)

	broken, err := c.Run()
	require.NoError(t, err)
	assert.Empty(t, broken)
}

func TestCheckerIgnoresFragments(t *testing.T) {
	out := t.TempDir()
	writeOutput(t, out, "index.html", `<a href="#section">anchor</a>`)

	c, err := NewChecker(out, "")
	require.NoError(t, err)

	broken, err := c.Run()
	require.NoError(t, err)
	assert.Empty(t, broken)
}
