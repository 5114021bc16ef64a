package linkcheck

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// Broken describes an internal link whose target is missing from the output
// tree.
type Broken struct {
	Page   string // output-relative path of the page holding the link
	URL    string // the link as written
	Target string // resolved output-relative path that was not found
}

func (b Broken) String() string {
	return fmt.Sprintf("%s: %s -> %s", b.Page, b.URL, b.Target)
}

// Checker verifies internal links against a built output directory.
type Checker struct {
	outputDir string
	base      *url.URL
}

// NewChecker creates a Checker for an output tree. baseURL may be empty when
// the site has no canonical host configured.
func NewChecker(outputDir, baseURL string) (*Checker, error) {
	var base *url.URL
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		base = u
	}
	return &Checker{outputDir: filepath.Clean(outputDir), base: base}, nil
}

// Run walks every HTML file in the output directory and returns the broken
// internal links found. External links are never fetched.
func (c *Checker) Run() ([]Broken, error) {
	var broken []Broken
	var pages int

	err := filepath.WalkDir(c.outputDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".html") {
			return nil
		}
		rel, err := filepath.Rel(c.outputDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		pages++

		found, err := c.checkPage(p, rel)
		if err != nil {
			return err
		}
		broken = append(broken, found...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk output directory: %w", err)
	}

	slog.Info("link check completed",
		slog.Int("pages", pages), slog.Int("broken", len(broken)))
	return broken, nil
}

func (c *Checker) checkPage(fullPath, relPath string) ([]Broken, error) {
	f, err := os.Open(filepath.Clean(fullPath))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	links, err := ExtractLinks(f, c.base)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", relPath, err)
	}

	var broken []Broken
	for _, l := range links {
		if !l.IsInternal || strings.HasPrefix(l.URL, "#") {
			continue
		}
		target, ok := c.resolve(relPath, l.URL)
		if !ok {
			continue
		}
		if !c.targetExists(target) {
			slog.Debug("broken internal link",
				logfields.File(relPath), logfields.URL(l.URL))
			broken = append(broken, Broken{Page: relPath, URL: l.URL, Target: target})
		}
	}
	return broken, nil
}

// resolve maps a link to an output-relative path. Returns ok=false for links
// that carry no checkable path (pure fragments, empty paths on own host).
func (c *Checker) resolve(fromPage, raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	p := u.Path
	if p == "" {
		return "", false
	}
	if !strings.HasPrefix(p, "/") {
		// Relative to the directory holding the current page.
		p = path.Join("/", path.Dir(fromPage), p)
	}
	return strings.TrimPrefix(path.Clean(p), "/"), true
}

// targetExists checks the output tree for the resolved path, accepting both
// direct files and directory-style URLs served as index.html.
func (c *Checker) targetExists(rel string) bool {
	full := filepath.Join(c.outputDir, filepath.FromSlash(rel))
	if fi, err := os.Stat(full); err == nil {
		if !fi.IsDir() {
			return true
		}
		_, err := os.Stat(filepath.Join(full, "index.html"))
		return err == nil
	}
	if rel == "" {
		_, err := os.Stat(filepath.Join(c.outputDir, "index.html"))
		return err == nil
	}
	return false
}
