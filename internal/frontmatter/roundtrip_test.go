package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// Round-trip property: serializing a header mapping and parsing it back yields
// the same mapping for any well-formed set of string fields.
func TestSerializeParse_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		keys := rapid.SliceOfNDistinct(
			rapid.StringMatching(`[a-z][a-z0-9_]{0,15}`), 1, 8,
			func(s string) string { return s },
		).Draw(t, "keys")

		fields := make(map[string]any, len(keys))
		for _, k := range keys {
			fields[k] = rapid.String().Draw(t, "value-"+k)
		}

		raw, err := SerializeYAML(fields, Style{})
		require.NoError(t, err)

		parsed, err := ParseYAML(raw)
		require.NoError(t, err)
		require.Equal(t, fields, parsed)
	})
}

// Split/Join property: any body without a leading delimiter passes through
// Split untouched, and Join reassembles what Split separated.
func TestSplitJoin_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		body := rapid.StringMatching(`[^-].{0,80}`).Draw(t, "body")

		fm, out, had, style, err := Split([]byte(body))
		require.NoError(t, err)
		require.False(t, had)
		require.Empty(t, fm)
		require.Equal(t, body, string(Join(fm, out, had, style)))
	})
}
