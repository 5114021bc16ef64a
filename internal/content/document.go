package content

import (
	"fmt"
	"strings"
	"time"
)

// State is a document's publication state, determined by its storage location
// and metadata at classification time. It is not a mutable lifecycle field.
type State string

const (
	StatePublished State = "published"
	StateDraft     State = "draft"
	StatePage      State = "page"
)

// Collection identifies which part of the content store a document came from.
type Collection string

const (
	CollectionPosts  Collection = "posts"
	CollectionDrafts Collection = "drafts"
	CollectionPages  Collection = "pages"
)

// Document represents one source content file. Instances are created by
// scanning the content store at build time and are immutable for the duration
// of one build.
type Document struct {
	Path         string     // Absolute path to the source file
	RelativePath string     // Path relative to the content directory
	Collection   Collection // Which collection the file was found under
	Name         string     // File name without extension
	Meta         Metadata   // Parsed front matter (unknown keys preserved)
	Body         []byte     // Raw markup body (front matter removed)

	// Derived fields, populated by Classify.
	State       State
	Slug        string
	PublishedAt time.Time
	WordCount   int
}

// Metadata is a typed mapping from front matter keys to a small set of value
// variants (string, date, list-of-string). Named accessors cover the
// recognized keys; everything else passes through verbatim via Get.
type Metadata map[string]any

// Get returns the raw value for key.
func (m Metadata) Get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// String returns the value for key as a string.
func (m Metadata) String(key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	switch vv := v.(type) {
	case string:
		return vv, true
	case fmt.Stringer:
		return vv.String(), true
	default:
		return fmt.Sprint(vv), true
	}
}

// Title returns the title field, or empty when absent.
func (m Metadata) Title() string {
	s, _ := m.String("title")
	return s
}

// Layout returns the layout field, or fallback when absent.
func (m Metadata) Layout(fallback string) string {
	if s, ok := m.String("layout"); ok && s != "" {
		return s
	}
	return fallback
}

// Description returns the description field, or empty when absent.
func (m Metadata) Description() string {
	s, _ := m.String("description")
	return s
}

// Author returns the author field, or empty when absent.
func (m Metadata) Author() string {
	s, _ := m.String("author")
	return s
}

// Draft reports whether the document is explicitly flagged draft: true.
func (m Metadata) Draft() bool {
	v, ok := m["draft"]
	if !ok {
		return false
	}
	switch vv := v.(type) {
	case bool:
		return vv
	case string:
		return strings.EqualFold(strings.TrimSpace(vv), "true")
	default:
		return false
	}
}

// dateLayouts are tried in order when the date field is a string.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Date returns the publish date field if present and parseable.
func (m Metadata) Date() (time.Time, bool) {
	v, ok := m["date"]
	if !ok {
		return time.Time{}, false
	}
	switch vv := v.(type) {
	case time.Time:
		return vv, true
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(vv)); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Categories returns the categories field as a list of trimmed strings.
// The field is free-form: either a YAML list or a comma-separated string.
// No canonical taxonomy exists.
func (m Metadata) Categories() []string {
	v, ok := m["categories"]
	if !ok {
		return nil
	}

	var raw []string
	switch vv := v.(type) {
	case string:
		raw = strings.Split(vv, ",")
	case []string:
		raw = vv
	case []any:
		for _, item := range vv {
			raw = append(raw, fmt.Sprint(item))
		}
	default:
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, c := range raw {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Title returns the document title: the metadata title when present,
// otherwise a title-cased form of the slug's name portion.
func (d *Document) Title() string {
	if t := d.Meta.Title(); t != "" {
		return t
	}
	name := d.Slug
	if d.Collection == CollectionPosts {
		if _, rest, ok := splitDatePrefix(d.Slug); ok {
			name = rest
		}
	}
	return TitleFromSlug(name)
}

// Excerpt returns the document's short description: the metadata description
// when present, otherwise empty (the renderer derives one from the body).
func (d *Document) Excerpt() string {
	return d.Meta.Description()
}
