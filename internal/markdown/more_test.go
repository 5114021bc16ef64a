package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMore_NoMarker(t *testing.T) {
	body := []byte("just a body\n")
	excerpt, content, found := SplitMore(body)
	assert.False(t, found)
	assert.Nil(t, excerpt)
	assert.Equal(t, body, content)
}

func TestSplitMore_SplitsAtMarker(t *testing.T) {
	body := []byte("intro paragraph\n\n<!--more-->\n\nthe rest\n")
	excerpt, content, found := SplitMore(body)
	require.True(t, found)
	assert.Equal(t, "intro paragraph\n\n", string(excerpt))
	assert.Equal(t, "intro paragraph\n\n\n\nthe rest\n", string(content))
}

func TestSplitMore_SpacedSpelling(t *testing.T) {
	body := []byte("a\n<!-- more -->\nb\n")
	excerpt, _, found := SplitMore(body)
	require.True(t, found)
	assert.Equal(t, "a\n", string(excerpt))
}

func TestSplitMore_MarkerInsideFenceIgnored(t *testing.T) {
	body := []byte("a\n```\n<!--more-->\n```\nb\n<!--more-->\nc\n")
	excerpt, _, found := SplitMore(body)
	require.True(t, found)
	assert.Equal(t, "a\n```\n<!--more-->\n```\nb\n", string(excerpt))
}

func TestSplitMore_InfoStringLineDoesNotCloseFence(t *testing.T) {
	// A ```go line inside an open fence is literal code, not a closer, so the
	// marker after it is still inside the fence.
	body := []byte("a\n```\n```go\n<!--more-->\n```\nb\n")
	_, content, found := SplitMore(body)
	assert.False(t, found)
	assert.Equal(t, body, content)
}

func TestSplitMore_MarkerInsideUnterminatedFenceIgnored(t *testing.T) {
	body := []byte("a\n```\n<!--more-->\nnever closed\n")
	_, content, found := SplitMore(body)
	assert.False(t, found)
	assert.Equal(t, body, content)
}

func TestFirstParagraph(t *testing.T) {
	body := []byte("# Heading\n\nFirst real paragraph.\n\nSecond.\n")
	assert.Equal(t, "First real paragraph.", FirstParagraph(body))

	assert.Equal(t, "", FirstParagraph([]byte("# only heading\n")))
	assert.Equal(t, "text", FirstParagraph([]byte("```\ncode\n```\n\ntext\n")))
}
