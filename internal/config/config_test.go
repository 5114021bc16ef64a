package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blogbuilder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "site:\n  title: Test Blog\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Test Blog", cfg.Site.Title)
	assert.Equal(t, "./content", cfg.Content.Dir)
	assert.Equal(t, "posts", cfg.Content.PostsDir)
	assert.Equal(t, "drafts", cfg.Content.DraftsDir)
	assert.Equal(t, "./site", cfg.Output.Directory)
	assert.Equal(t, "feed.json", cfg.Feed.Path)
	assert.Equal(t, 15, cfg.Feed.Limit)
	assert.Equal(t, ":8080", cfg.Serve.Addr)
	assert.Equal(t, "en", cfg.Site.Language)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidBaseURLFails(t *testing.T) {
	path := writeConfig(t, "site:\n  title: X\n  base_url: example.com\n")
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "base_url")
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("BLOG_TITLE_FOR_TEST", "From Env")
	path := writeConfig(t, "site:\n  title: ${BLOG_TITLE_FOR_TEST}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "From Env", cfg.Site.Title)
}

func TestLoad_ParsesRebuildInterval(t *testing.T) {
	path := writeConfig(t, "site:\n  title: X\nserve:\n  rebuild_interval: 90s\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Serve.RebuildInterval.Std())
}

func TestLoad_RepositoryRequiresURL(t *testing.T) {
	path := writeConfig(t, "site:\n  title: X\ncontent:\n  repository:\n    branch: main\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestCanonicalBaseURL_TrimsTrailingSlash(t *testing.T) {
	cfg := &Config{Site: SiteConfig{BaseURL: "https://example.com/"}}
	assert.Equal(t, "https://example.com", cfg.CanonicalBaseURL())
}

func TestInit_RefusesOverwriteWithoutForce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blogbuilder.yaml")
	require.NoError(t, Init(path, false))
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))

	// Example config must itself load cleanly.
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "My Blog", cfg.Site.Title)
	assert.Equal(t, 10*time.Minute, cfg.Serve.RebuildInterval.Std())
}

func TestNormalizeLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, NormalizeLogLevel("DEBUG"))
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel("warning"))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("bogus"))
}

func TestNormalizeLogFormat(t *testing.T) {
	assert.Equal(t, LogFormatJSON, NormalizeLogFormat("JSON"))
	assert.Equal(t, LogFormatText, NormalizeLogFormat(""))
}
