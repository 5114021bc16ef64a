package buildlog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

func TestRecordAndRecent(t *testing.T) {
	l, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		err := l.Record(ctx, site.Summary{
			BuildID:       fmt.Sprintf("build-%d", i),
			Outcome:       "success",
			Posts:         5,
			Pages:         2,
			RenderedPages: 10,
			DurationMS:    int64(100 + i),
			Finished:      time.Now(),
		})
		require.NoError(t, err)
	}

	entries, err := l.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Newest first.
	assert.Equal(t, "build-2", entries[0].BuildID)
	assert.Equal(t, "build-1", entries[1].BuildID)
	assert.Equal(t, 5, entries[0].Posts)
	assert.Equal(t, "success", entries[0].Outcome)
}

func TestRecentEmpty(t *testing.T) {
	l, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	entries, err := l.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecentDefaultLimit(t *testing.T) {
	l, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	ctx := context.Background()
	for i := 0; i < 25; i++ {
		require.NoError(t, l.Record(ctx, site.Summary{
			BuildID:  fmt.Sprintf("b%d", i),
			Outcome:  "success",
			Finished: time.Now(),
		}))
	}
	entries, err := l.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}
