package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	blderrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
)

// Config represents the application configuration. It is constructed once at
// build start and passed by reference to every component that needs it.
type Config struct {
	Site          SiteConfig           `yaml:"site"`
	Content       ContentConfig        `yaml:"content"`
	Output        OutputConfig         `yaml:"output"`
	Feed          FeedConfig           `yaml:"feed"`
	Serve         ServeConfig          `yaml:"serve"`
	Notifications *NotificationsConfig `yaml:"notifications,omitempty"`
	Logging       LoggingConfig        `yaml:"logging"`
}

// SiteConfig holds site-wide values consumed by layouts and the feed.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
	Author      string `yaml:"author,omitempty"`
	Language    string `yaml:"language,omitempty"`
	Icon        string `yaml:"icon,omitempty"`
	Favicon     string `yaml:"favicon,omitempty"`
}

// ContentConfig locates the content store.
type ContentConfig struct {
	Dir        string      `yaml:"dir"`
	PostsDir   string      `yaml:"posts_dir,omitempty"`
	DraftsDir  string      `yaml:"drafts_dir,omitempty"`
	Layouts    string      `yaml:"layouts,omitempty"`    // optional layout override directory
	Repository *Repository `yaml:"repository,omitempty"` // optional remote content source
}

// Repository describes a remote Git repository holding the content tree.
type Repository struct {
	URL    string      `yaml:"url"`
	Branch string      `yaml:"branch,omitempty"`
	Path   string      `yaml:"path,omitempty"` // subdirectory within the repo holding content
	Auth   *AuthConfig `yaml:"auth,omitempty"`
}

// AuthConfig represents authentication for the content repository.
type AuthConfig struct {
	Type     string `yaml:"type"` // "token" or "basic"
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Token    string `yaml:"token,omitempty"`
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Clean output directory before build
}

// FeedConfig controls the syndication feed.
type FeedConfig struct {
	Path  string `yaml:"path,omitempty"`
	Limit int    `yaml:"limit,omitempty"`
}

// ServeConfig controls the local preview server.
type ServeConfig struct {
	Addr            string   `yaml:"addr,omitempty"`
	Metrics         bool     `yaml:"metrics,omitempty"`
	RebuildInterval Duration `yaml:"rebuild_interval,omitempty"` // periodic rebuild, publishes future-dated posts
	HistoryDB       string   `yaml:"history_db,omitempty"`       // sqlite build history, empty disables
}

// Duration wraps time.Duration with YAML support for "30s"/"5m" style values.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// NotificationsConfig enables post-build notifications.
type NotificationsConfig struct {
	NATS *NATSConfig `yaml:"nats,omitempty"`
}

// NATSConfig configures the NATS build-summary publisher.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content so secrets (e.g. repo
	// tokens) can live in the environment instead of the file.
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// loadEnvFiles loads .env/.env.local if present. Existing process environment
// variables are never overwritten (godotenv semantics).
func loadEnvFiles() {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Site.Title == "" {
		c.Site.Title = "Blog"
	}
	if c.Site.Language == "" {
		c.Site.Language = "en"
	}
	if c.Content.Dir == "" {
		c.Content.Dir = "./content"
	}
	if c.Content.PostsDir == "" {
		c.Content.PostsDir = "posts"
	}
	if c.Content.DraftsDir == "" {
		c.Content.DraftsDir = "drafts"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "./site"
	}
	if c.Feed.Path == "" {
		c.Feed.Path = "feed.json"
	}
	if c.Feed.Limit <= 0 {
		c.Feed.Limit = 15
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = ":8080"
	}
	if c.Content.Repository != nil && c.Content.Repository.Branch == "" {
		c.Content.Repository.Branch = "main"
	}
}

// Validate reports fatal misconfiguration. Recoverable issues (missing
// optional sections) are handled by defaults instead.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Site.Title) == "" {
		return blderrors.New(blderrors.CategoryValidation, blderrors.SeverityFatal,
			"site.title must not be empty")
	}
	if c.Site.BaseURL != "" && !strings.HasPrefix(c.Site.BaseURL, "http://") && !strings.HasPrefix(c.Site.BaseURL, "https://") {
		return blderrors.New(blderrors.CategoryValidation, blderrors.SeverityFatal,
			"site.base_url must be an absolute http(s) URL").WithContext("base_url", c.Site.BaseURL)
	}
	if c.Content.Repository != nil && c.Content.Repository.URL == "" {
		return blderrors.New(blderrors.CategoryValidation, blderrors.SeverityFatal,
			"content.repository.url must be set when content.repository is present")
	}
	if c.Notifications != nil && c.Notifications.NATS != nil && c.Notifications.NATS.URL == "" {
		return blderrors.New(blderrors.CategoryValidation, blderrors.SeverityFatal,
			"notifications.nats.url must be set when notifications.nats is present")
	}
	return nil
}

// CanonicalBaseURL returns the base URL without a trailing slash.
func (c *Config) CanonicalBaseURL() string {
	return strings.TrimRight(c.Site.BaseURL, "/")
}
