package site

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func fixtureConfig(t *testing.T) *config.Config {
	t.Helper()
	contentDir := t.TempDir()
	outputDir := t.TempDir()

	writeFile(t, contentDir, "posts/2022-05-27-what-is-an-automated-test-again.md", `---
title: What is an automated test, again?
categories: testing, philosophy
---
An automated test checks behavior.

<!--more-->

The long part of the discussion goes here.
`)
	writeFile(t, contentDir, "posts/2023-11-02-second-post.md", `---
title: Second Post
categories: testing
---
Short and to the point.
`)
	writeFile(t, contentDir, "drafts/an-idea.md", `---
title: An Idea
---
Not finished yet.
`)
	writeFile(t, contentDir, "about.md", `---
title: About
---
This is the about page.
`)

	return &config.Config{
		Site: config.SiteConfig{
			Title:    "Test Blog",
			BaseURL:  "https://blog.example.com",
			Language: "en",
		},
		Content: config.ContentConfig{Dir: contentDir, PostsDir: "posts", DraftsDir: "drafts"},
		Output:  config.OutputConfig{Directory: outputDir},
		Feed:    config.FeedConfig{Path: "feed.json", Limit: 15},
	}
}

func TestBuildProducesExpectedTree(t *testing.T) {
	cfg := fixtureConfig(t)
	a, err := NewAssembler(cfg)
	require.NoError(t, err)

	report, err := a.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, report.Outcome)
	assert.Equal(t, 2, report.Posts)
	assert.Equal(t, 1, report.Pages)
	assert.Equal(t, 1, report.Drafts)
	assert.Equal(t, 2, report.FeedItems)

	out := cfg.Output.Directory
	for _, rel := range []string{
		"index.html",
		"posts/2022-05-27-what-is-an-automated-test-again/index.html",
		"posts/2023-11-02-second-post/index.html",
		"about/index.html",
		"categories/testing/index.html",
		"categories/philosophy/index.html",
		"feed.json",
	} {
		_, err := os.Stat(filepath.Join(out, rel))
		assert.NoError(t, err, "expected output file %s", rel)
	}

	// Drafts stay out of the tree without the drafts flag.
	_, err = os.Stat(filepath.Join(out, "drafts"))
	assert.True(t, os.IsNotExist(err))

	page, err := os.ReadFile(filepath.Join(out, "posts/2022-05-27-what-is-an-automated-test-again/index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "What is an automated test, again?")
	assert.Contains(t, string(page), "The long part of the discussion")
	assert.Contains(t, string(page), `datetime="2022-05-27"`)

	index, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	// Newest post first.
	first := string(index)
	assert.Less(t,
		indexOf(first, "Second Post"),
		indexOf(first, "What is an automated test, again?"))
	// The excerpt above the more marker shows in listings.
	assert.Contains(t, first, "An automated test checks behavior.")
	assert.NotContains(t, first, "The long part of the discussion")
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func TestBuildIsByteIdentical(t *testing.T) {
	cfg := fixtureConfig(t)
	a, err := NewAssembler(cfg)
	require.NoError(t, err)

	_, err = a.Build(context.Background())
	require.NoError(t, err)
	firstTree := readTree(t, cfg.Output.Directory)

	_, err = a.Build(context.Background())
	require.NoError(t, err)
	secondTree := readTree(t, cfg.Output.Directory)

	require.Equal(t, len(firstTree), len(secondTree))
	for rel, data := range firstTree {
		assert.Equal(t, data, secondTree[rel], "file %s differs between builds", rel)
	}
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	tree := make(map[string]string)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		tree[rel] = string(data)
		return nil
	})
	require.NoError(t, err)
	return tree
}

func TestBuildIncludesDraftsWhenAsked(t *testing.T) {
	cfg := fixtureConfig(t)
	a, err := NewAssembler(cfg)
	require.NoError(t, err)
	a.IncludeDrafts(true)

	_, err = a.Build(context.Background())
	require.NoError(t, err)

	draft, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "drafts/an-idea/index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(draft), "An Idea")
	assert.Contains(t, string(draft), "Draft")

	// Drafts never reach the feed or the front page.
	feedData, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "feed.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(feedData), "An Idea")
	index, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "index.html"))
	require.NoError(t, err)
	assert.NotContains(t, string(index), "An Idea")
}

func TestBuildSkipsPostWithoutDatePrefix(t *testing.T) {
	cfg := fixtureConfig(t)
	writeFile(t, cfg.Content.Dir, "posts/no-date-here.md", "---\ntitle: Lost\n---\nBody.\n")

	a, err := NewAssembler(cfg)
	require.NoError(t, err)

	report, err := a.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeWarning, report.Outcome)
	assert.Equal(t, 1, report.SkippedDocuments)
	assert.Equal(t, 2, report.Posts)

	_, err = os.Stat(filepath.Join(cfg.Output.Directory, "posts/no-date-here"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuildDefersFutureDatedPosts(t *testing.T) {
	cfg := fixtureConfig(t)
	writeFile(t, cfg.Content.Dir, "posts/2099-01-01-from-the-future.md", "---\ntitle: From The Future\n---\nBody.\n")

	a, err := NewAssembler(cfg)
	require.NoError(t, err)
	a.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	report, err := a.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, report.Outcome)

	_, err = os.Stat(filepath.Join(cfg.Output.Directory, "posts/2099-01-01-from-the-future"))
	assert.True(t, os.IsNotExist(err))

	// Once the clock passes the publish date the post appears.
	a.now = func() time.Time { return time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC) }
	_, err = a.Build(context.Background())
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.Output.Directory, "posts/2099-01-01-from-the-future/index.html"))
	assert.NoError(t, err)
}

func TestBuildOverwritesStaleOutput(t *testing.T) {
	cfg := fixtureConfig(t)
	writeFile(t, cfg.Output.Directory, "index.html", "stale")

	a, err := NewAssembler(cfg)
	require.NoError(t, err)
	_, err = a.Build(context.Background())
	require.NoError(t, err)

	index, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "index.html"))
	require.NoError(t, err)
	assert.NotEqual(t, "stale", string(index))
}

func TestBuildRecoversUnclosedFrontMatter(t *testing.T) {
	cfg := fixtureConfig(t)
	writeFile(t, cfg.Content.Dir, "posts/2024-01-05-broken-header.md", "---\ntitle: Broken\nBody without closing delimiter.\n")

	a, err := NewAssembler(cfg)
	require.NoError(t, err)

	report, err := a.Build(context.Background())
	require.NoError(t, err)
	// The document still renders; its header is treated as body text.
	assert.Equal(t, 3, report.Posts)
	_, err = os.Stat(filepath.Join(cfg.Output.Directory, "posts/2024-01-05-broken-header/index.html"))
	assert.NoError(t, err)
}

func TestBuildHonorsLayoutOverrides(t *testing.T) {
	cfg := fixtureConfig(t)
	layoutDir := t.TempDir()
	writeFile(t, layoutDir, "base.html", `<html><body data-custom="yes">{{ block "main" . }}{{ end }}</body></html>`)
	cfg.Content.Layouts = layoutDir

	a, err := NewAssembler(cfg)
	require.NoError(t, err)
	_, err = a.Build(context.Background())
	require.NoError(t, err)

	index, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), `data-custom="yes"`)
}

// syncRecorder captures content-sync observations.
type syncRecorder struct {
	metrics.NoopRecorder
	repo    string
	success bool
	calls   int
}

func (r *syncRecorder) ObserveContentSyncDuration(repo string, _ time.Duration, success bool) {
	r.repo = repo
	r.success = success
	r.calls++
}

func TestBuildRecordsContentSyncMetric(t *testing.T) {
	cfg := fixtureConfig(t)
	a, err := NewAssembler(cfg)
	require.NoError(t, err)

	rec := &syncRecorder{}
	a.SetRecorder(rec)
	a.SetContentSync(func(context.Context) error { return nil })

	_, err = a.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, "local", rec.repo)
	assert.True(t, rec.success)
}

func TestBuildRecordsFailedContentSync(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.Content.Repository = &config.Repository{URL: "https://git.example.com/blog.git"}
	a, err := NewAssembler(cfg)
	require.NoError(t, err)

	rec := &syncRecorder{}
	a.SetRecorder(rec)
	a.SetContentSync(func(context.Context) error { return errors.New("remote unreachable") })

	report, err := a.Build(context.Background())
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, "https://git.example.com/blog.git", rec.repo)
	assert.False(t, rec.success)
}

func TestSyncRunsRegisteredFunc(t *testing.T) {
	cfg := fixtureConfig(t)
	a, err := NewAssembler(cfg)
	require.NoError(t, err)

	// Without a registered sync this is a no-op.
	require.NoError(t, a.Sync(context.Background()))

	var called bool
	a.SetContentSync(func(context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, a.Sync(context.Background()))
	assert.True(t, called)
}

func TestBuildCanceledContext(t *testing.T) {
	cfg := fixtureConfig(t)
	a, err := NewAssembler(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := a.Build(ctx)
	require.Error(t, err)
	assert.Equal(t, OutcomeCanceled, report.Outcome)
}
