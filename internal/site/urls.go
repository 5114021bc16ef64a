package site

import (
	"path"
	"strings"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
)

// outputRelPath returns the output-tree path for a document, always a
// directory-style index.html so URLs stay extensionless.
//
//	posts  -> posts/<slug>/index.html
//	drafts -> drafts/<slug>/index.html
//	pages  -> <slug>/index.html (nested directories preserved)
func outputRelPath(doc *content.Document) string {
	switch doc.State {
	case content.StateDraft:
		return path.Join("drafts", doc.Slug, "index.html")
	case content.StatePage:
		return path.Join(pageDir(doc), "index.html")
	default:
		return path.Join("posts", doc.Slug, "index.html")
	}
}

// pageDir preserves the directory nesting of a page within the content tree,
// slugifying each path segment.
func pageDir(doc *content.Document) string {
	rel := strings.TrimSuffix(doc.RelativePath, path.Ext(doc.RelativePath))
	segments := strings.Split(path.Clean(rel), "/")
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		if s := content.Slugify(seg); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return doc.Slug
	}
	// The final segment follows the classified slug in case metadata overrode it.
	out[len(out)-1] = doc.Slug
	return path.Join(out...)
}

// categoryRelPath returns the output path of a category listing page.
func categoryRelPath(category string) string {
	return path.Join("categories", content.Slugify(category), "index.html")
}

// permalink joins the canonical base URL with an output-relative page path,
// turning ".../index.html" into a trailing-slash directory URL. Without a
// configured base URL the result is a root-relative path.
func permalink(cfg *config.Config, relPath string) string {
	p := strings.TrimSuffix(relPath, "index.html")
	p = "/" + strings.TrimPrefix(p, "/")
	if cfg.Site.BaseURL == "" {
		return p
	}
	return cfg.CanonicalBaseURL() + p
}
