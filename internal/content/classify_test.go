package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_PostWithDatePrefix(t *testing.T) {
	doc := &Document{
		Name:       "2022-05-27-what-is-an-automated-test-again",
		Collection: CollectionPosts,
		Meta:       Metadata{},
	}

	require.NoError(t, Classify(doc))
	assert.Equal(t, StatePublished, doc.State)
	assert.Equal(t, "2022-05-27-what-is-an-automated-test-again", doc.Slug)
	assert.Equal(t, time.Date(2022, 5, 27, 0, 0, 0, 0, time.UTC), doc.PublishedAt)
}

func TestClassify_PostWithoutDateFails(t *testing.T) {
	doc := &Document{
		Name:       "no-date-here",
		Collection: CollectionPosts,
		Meta:       Metadata{},
	}

	err := Classify(doc)
	require.ErrorIs(t, err, ErrNoDateInFilename)
}

func TestClassify_MetadataDateOverridesFilename(t *testing.T) {
	doc := &Document{
		Name:       "2022-05-27-some-post",
		Collection: CollectionPosts,
		Meta:       Metadata{"date": "2022-06-01"},
	}

	require.NoError(t, Classify(doc))
	assert.Equal(t, time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC), doc.PublishedAt)
}

func TestClassify_DraftCollection(t *testing.T) {
	doc := &Document{
		Name:       "work-in-progress",
		Collection: CollectionDrafts,
		Meta:       Metadata{},
	}

	require.NoError(t, Classify(doc))
	assert.Equal(t, StateDraft, doc.State)
	assert.Equal(t, "work-in-progress", doc.Slug)
}

func TestClassify_Page(t *testing.T) {
	doc := &Document{
		Name:       "about",
		Collection: CollectionPages,
		Meta:       Metadata{},
	}

	require.NoError(t, Classify(doc))
	assert.Equal(t, StatePage, doc.State)
	assert.Equal(t, "about", doc.Slug)
}

func TestClassify_DraftFlagForcesDraftEvenUnderPosts(t *testing.T) {
	doc := &Document{
		Name:       "2022-05-27-not-ready",
		Collection: CollectionPosts,
		Meta:       Metadata{"draft": true},
	}

	require.NoError(t, Classify(doc))
	assert.Equal(t, StateDraft, doc.State)
}

func TestClassify_CountsWords(t *testing.T) {
	doc := &Document{
		Name:       "about",
		Collection: CollectionPages,
		Meta:       Metadata{},
		Body:       []byte("one two three, four!"),
	}

	require.NoError(t, Classify(doc))
	assert.Equal(t, 4, doc.WordCount)
}

func TestMetadata_Categories(t *testing.T) {
	tests := []struct {
		name string
		meta Metadata
		want []string
	}{
		{"comma separated", Metadata{"categories": "testing, golang ,ci"}, []string{"testing", "golang", "ci"}},
		{"yaml list", Metadata{"categories": []any{"testing", "golang"}}, []string{"testing", "golang"}},
		{"string slice", Metadata{"categories": []string{"a"}}, []string{"a"}},
		{"absent", Metadata{}, nil},
		{"blank entries dropped", Metadata{"categories": "a,, ,b"}, []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.meta.Categories())
		})
	}
}

func TestMetadata_Date(t *testing.T) {
	d, ok := Metadata{"date": "2022-05-27"}.Date()
	require.True(t, ok)
	assert.Equal(t, 2022, d.Year())

	_, ok = Metadata{"date": "not a date"}.Date()
	assert.False(t, ok)

	now := time.Now()
	d, ok = Metadata{"date": now}.Date()
	require.True(t, ok)
	assert.Equal(t, now, d)
}

func TestMetadata_Draft(t *testing.T) {
	assert.True(t, Metadata{"draft": true}.Draft())
	assert.True(t, Metadata{"draft": "true"}.Draft())
	assert.False(t, Metadata{"draft": false}.Draft())
	assert.False(t, Metadata{}.Draft())
}

func TestDocument_TitleFallsBackToSlug(t *testing.T) {
	doc := &Document{
		Name:       "2022-05-27-what-is-an-automated-test-again",
		Collection: CollectionPosts,
		Meta:       Metadata{},
	}
	require.NoError(t, Classify(doc))
	assert.Equal(t, "What Is An Automated Test Again", doc.Title())

	doc.Meta["title"] = "Explicit"
	assert.Equal(t, "Explicit", doc.Title())
}
