package content

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// Store reads source documents from a directory tree. Layout:
//
//	<dir>/<postsDir>/YYYY-MM-DD-title.md  -> posts collection
//	<dir>/<draftsDir>/title.md            -> drafts collection
//	<dir>/**/*.md (anything else)         -> standalone pages
type Store struct {
	dir       string
	postsDir  string
	draftsDir string
}

// NewStore creates a content store rooted at dir.
func NewStore(dir, postsDir, draftsDir string) *Store {
	return &Store{dir: dir, postsDir: postsDir, draftsDir: draftsDir}
}

// Dir returns the content root directory.
func (s *Store) Dir() string { return s.dir }

// Scan walks the content tree and returns one Document per markdown file,
// with front matter parsed and the body loaded. Files whose header block has
// no closing delimiter are kept with the whole file as body (a warning is
// logged). Scan does not classify; callers run Classify per document.
func (s *Store) Scan() ([]*Document, error) {
	info, err := os.Stat(s.dir)
	if err != nil {
		return nil, fmt.Errorf("content directory not readable: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content path is not a directory: %s", s.dir)
	}

	var documents []*Document
	err = filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Hidden directories (e.g. .git in a cloned content repo) are skipped.
			if d.Name() != "." && strings.HasPrefix(d.Name(), ".") && path != s.dir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || !isMarkdownFile(d.Name()) {
			return nil
		}

		relPath, err := filepath.Rel(s.dir, path)
		if err != nil {
			return fmt.Errorf("invalid relative path for %s: %w", path, err)
		}

		doc, err := s.readDocument(path, relPath)
		if err != nil {
			return err
		}
		documents = append(documents, doc)
		slog.Debug("Discovered document",
			logfields.File(relPath),
			logfields.Collection(string(doc.Collection)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("content scan failed: %w", err)
	}

	slog.Info("Content store scanned", logfields.Path(s.dir), logfields.Count(len(documents)))
	return documents, nil
}

func (s *Store) readDocument(path, relPath string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	fm, body, had, _, err := frontmatter.Split(raw)
	if err != nil {
		if !errors.Is(err, frontmatter.ErrMissingClosingDelimiter) {
			return nil, fmt.Errorf("split front matter in %s: %w", path, err)
		}
		// Unclosed header: treat the entire file as body.
		slog.Warn("Front matter has no closing delimiter, treating file as body",
			logfields.File(relPath))
		fm, body, had = nil, raw, false
	}

	meta := Metadata{}
	if had {
		fields, err := frontmatter.Parse(fm)
		if err != nil {
			return nil, fmt.Errorf("parse front matter in %s: %w", path, err)
		}
		meta = Metadata(fields)
	}

	name := strings.TrimSuffix(filepath.Base(relPath), filepath.Ext(relPath))
	return &Document{
		Path:         path,
		RelativePath: filepath.ToSlash(relPath),
		Collection:   s.collectionOf(relPath),
		Name:         name,
		Meta:         meta,
		Body:         body,
	}, nil
}

// collectionOf maps a content-relative path to its collection.
func (s *Store) collectionOf(relPath string) Collection {
	parts := strings.Split(filepath.ToSlash(relPath), "/")
	if len(parts) > 1 {
		switch parts[0] {
		case s.postsDir:
			return CollectionPosts
		case s.draftsDir:
			return CollectionDrafts
		}
	}
	return CollectionPages
}

func isMarkdownFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".md" || ext == ".markdown" || ext == ".mdown" || ext == ".mkd"
}
