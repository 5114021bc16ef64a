// Package feed produces the site's JSON Feed (jsonfeed.org version 1.1).
package feed

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/zeebo/blake3"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
)

// Version is the JSON Feed schema identifier.
const Version = "https://jsonfeed.org/version/1.1"

// Feed is the top-level syndication document.
type Feed struct {
	Version     string   `json:"version"`
	Title       string   `json:"title"`
	HomePageURL string   `json:"home_page_url,omitempty"`
	FeedURL     string   `json:"feed_url,omitempty"`
	Description string   `json:"description,omitempty"`
	Icon        string   `json:"icon,omitempty"`
	Favicon     string   `json:"favicon,omitempty"`
	Language    string   `json:"language,omitempty"`
	Authors     []Author `json:"authors,omitempty"`
	Items       []Item   `json:"items"`
}

// Author identifies a feed or item author.
type Author struct {
	Name string `json:"name,omitempty"`
}

// Item is the projection of one published document into the feed.
type Item struct {
	ID            string   `json:"id"`
	URL           string   `json:"url,omitempty"`
	Title         string   `json:"title,omitempty"`
	ContentHTML   string   `json:"content_html,omitempty"`
	ContentText   string   `json:"content_text,omitempty"`
	DatePublished string   `json:"date_published,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Authors       []Author `json:"authors,omitempty"`
}

// Source pairs a classified document with its rendered HTML and canonical URL.
type Source struct {
	Doc  *content.Document
	HTML []byte
	URL  string
}

// Generate builds and serializes the feed for the most recently published
// documents.
func Generate(cfg *config.Config, sources []Source) ([]byte, error) {
	f := Build(cfg, sources)
	return Encode(f)
}

// Build assembles the feed document. Only Published documents are eligible;
// anything flagged draft: true is excluded even if it reached Published
// storage. At most cfg.Feed.Limit items are emitted, ordered by publish date
// descending with the slug as tiebreaker.
func Build(cfg *config.Config, sources []Source) *Feed {
	eligible := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s.Doc.State != content.StatePublished {
			continue
		}
		if s.Doc.Meta.Draft() {
			continue
		}
		eligible = append(eligible, s)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		di, dj := eligible[i].Doc, eligible[j].Doc
		if !di.PublishedAt.Equal(dj.PublishedAt) {
			return di.PublishedAt.After(dj.PublishedAt)
		}
		return di.Slug > dj.Slug
	})

	limit := cfg.Feed.Limit
	if limit <= 0 {
		limit = 15
	}
	if len(eligible) > limit {
		eligible = eligible[:limit]
	}

	f := Feed{
		Version:     Version,
		Title:       cfg.Site.Title,
		HomePageURL: homePageURL(cfg),
		FeedURL:     feedURL(cfg),
		Description: cfg.Site.Description,
		Icon:        cfg.Site.Icon,
		Favicon:     cfg.Site.Favicon,
		Language:    cfg.Site.Language,
		Items:       make([]Item, 0, len(eligible)),
	}
	if cfg.Site.Author != "" {
		f.Authors = []Author{{Name: cfg.Site.Author}}
	}

	for _, s := range eligible {
		item := Item{
			ID:          ItemID(s.URL),
			URL:         s.URL,
			Title:       s.Doc.Title(),
			ContentHTML: string(s.HTML),
			ContentText: Text(s.HTML),
			Tags:        s.Doc.Meta.Categories(),
		}
		if !s.Doc.PublishedAt.IsZero() {
			item.DatePublished = s.Doc.PublishedAt.Format(time.RFC3339)
		}
		if author := s.Doc.Meta.Author(); author != "" {
			item.Authors = []Author{{Name: author}}
		}
		f.Items = append(f.Items, item)
	}
	return &f
}

// Encode serializes a feed as indented JSON with a trailing newline.
func Encode(f *Feed) ([]byte, error) {
	out, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal feed: %w", err)
	}
	return append(out, '\n'), nil
}

// ItemID returns the stable feed identifier for a canonical URL.
func ItemID(canonicalURL string) string {
	sum := blake3.Sum256([]byte(canonicalURL))
	return hex.EncodeToString(sum[:])
}

func homePageURL(cfg *config.Config) string {
	if cfg.Site.BaseURL == "" {
		return ""
	}
	return cfg.CanonicalBaseURL() + "/"
}

func feedURL(cfg *config.Config) string {
	if cfg.Site.BaseURL == "" {
		return ""
	}
	return cfg.CanonicalBaseURL() + "/" + cfg.Feed.Path
}
