package site

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"git.home.luguber.info/inful/blogbuilder/internal/content"
)

// stageIndexes renders the front page and one listing page per category.
// Listings hold published posts only, newest first.
func stageIndexes(_ context.Context, bs *buildState) error {
	a := bs.Assembler

	posts := make([]renderedDoc, len(bs.posts))
	copy(posts, bs.posts)
	sort.SliceStable(posts, func(i, j int) bool {
		di, dj := posts[i].doc, posts[j].doc
		if !di.PublishedAt.Equal(dj.PublishedAt) {
			return di.PublishedAt.After(dj.PublishedAt)
		}
		return di.Slug > dj.Slug
	})

	if err := a.renderListing(bs, "index.html", a.cfg.Site.Title, posts); err != nil {
		return newFatalStageError(StageIndexes, fmt.Errorf("front page: %w", err))
	}
	bs.Report.RenderedPages++

	byCategory := make(map[string][]renderedDoc)
	for _, p := range posts {
		for _, c := range p.doc.Meta.Categories() {
			key := content.Slugify(c)
			byCategory[key] = append(byCategory[key], p)
		}
	}

	// Deterministic page order regardless of map iteration.
	keys := make([]string, 0, len(byCategory))
	for k := range byCategory {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		group := byCategory[key]
		title := categoryTitle(group, key)
		if err := a.renderListing(bs, categoryRelPath(key), title, group); err != nil {
			return newFatalStageError(StageIndexes, fmt.Errorf("category %s: %w", key, err))
		}
		bs.Report.RenderedPages++
	}
	return nil
}

// categoryTitle returns the display name of a category as written in the
// first post carrying it.
func categoryTitle(group []renderedDoc, slug string) string {
	for _, p := range group {
		for _, c := range p.doc.Meta.Categories() {
			if content.Slugify(c) == slug {
				return c
			}
		}
	}
	return content.TitleFromSlug(slug)
}

func (a *Assembler) renderListing(bs *buildState, relPath, title string, posts []renderedDoc) error {
	data := listData{
		Site:      a.siteData(),
		Title:     title,
		Permalink: permalink(a.cfg, relPath),
		Posts:     make([]postRef, 0, len(posts)),
	}
	for _, p := range posts {
		ref := postRef{
			Title:   p.doc.Title(),
			URL:     p.url,
			Excerpt: p.excerpt,
		}
		if !p.doc.PublishedAt.IsZero() {
			ref.Date = p.doc.PublishedAt.Format("January 2, 2006")
			ref.ISODate = p.doc.PublishedAt.Format("2006-01-02")
		}
		data.Posts = append(data.Posts, ref)
	}

	var buf bytes.Buffer
	if err := a.layouts.lookup(LayoutList).Execute(&buf, data); err != nil {
		return fmt.Errorf("execute list layout: %w", err)
	}
	bs.Files[relPath] = buf.Bytes()
	return nil
}
