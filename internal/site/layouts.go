package site

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
)

// Layout names resolvable from front matter via the "layout" key.
const (
	LayoutPost = "post"
	LayoutPage = "page"
	LayoutList = "list"
)

// layoutSet holds the parsed templates, one composed template per layout.
type layoutSet struct {
	templates map[string]*template.Template
}

// loadLayouts parses the embedded default layouts, replacing individual ones
// with files from overrideDir (base.html, post.html, page.html, list.html)
// when present.
func loadLayouts(overrideDir string) (*layoutSet, error) {
	sources := map[string]string{
		"base": baseLayout,
		"post": postLayout,
		"page": pageLayout,
		"list": listLayout,
	}

	if overrideDir != "" {
		for name := range sources {
			p := filepath.Join(overrideDir, name+".html")
			data, err := os.ReadFile(p)
			if os.IsNotExist(err) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("read layout override %s: %w", p, err)
			}
			sources[name] = string(data)
		}
	}

	ls := &layoutSet{templates: make(map[string]*template.Template, 3)}
	for _, name := range []string{"post", "page", "list"} {
		t, err := template.New("base").Parse(sources["base"])
		if err != nil {
			return nil, fmt.Errorf("parse base layout: %w", err)
		}
		if _, err := t.Parse(sources[name]); err != nil {
			return nil, fmt.Errorf("parse %s layout: %w", name, err)
		}
		ls.templates[name] = t
	}
	return ls, nil
}

// lookup returns the composed template for a layout name, falling back to the
// post layout for unknown names.
func (ls *layoutSet) lookup(name string) *template.Template {
	if t, ok := ls.templates[name]; ok {
		return t
	}
	return ls.templates[LayoutPost]
}

// siteData is the site-wide template context, identical on every page.
type siteData struct {
	Title       string
	Description string
	Author      string
	Language    string
	FeedURL     string
}

// categoryRef links a category name to its listing page.
type categoryRef struct {
	Name string
	URL  string
}

// pageData is the per-page template context.
type pageData struct {
	Site        siteData
	Title       string
	Description string
	Permalink   string
	Content     template.HTML
	Date        string // e.g. "May 27, 2022"; empty for pages
	ISODate     string // machine-readable form for <time datetime>
	Categories  []categoryRef
	ReadingTime int
	WordCount   int
	Draft       bool
}

// postRef is one entry in a listing page.
type postRef struct {
	Title   string
	URL     string
	Date    string
	ISODate string
	Excerpt template.HTML
}

// listData is the template context for index and category pages.
type listData struct {
	Site        siteData
	Title       string
	Description string
	Permalink   string
	Posts       []postRef
}

const baseLayout = `<!DOCTYPE html>
<html lang="{{ .Site.Language }}">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ if .Title }}{{ .Title }} - {{ end }}{{ .Site.Title }}</title>
{{- if .Description }}
  <meta name="description" content="{{ .Description }}">
{{- end }}
{{- if .Site.FeedURL }}
  <link rel="alternate" type="application/feed+json" title="{{ .Site.Title }}" href="{{ .Site.FeedURL }}">
{{- end }}
</head>
<body>
  <header class="site-header">
    <a class="site-title" href="/">{{ .Site.Title }}</a>
  </header>
  <main>
{{ block "main" . }}{{ end }}
  </main>
  <footer class="site-footer">
{{- if .Site.Author }}
    <span>{{ .Site.Author }}</span>
{{- end }}
  </footer>
</body>
</html>
`

const postLayout = `{{ define "main" }}
<article>
  <header>
    <h1>{{ .Title }}</h1>
{{- if .Draft }}
    <p class="draft-notice">Draft</p>
{{- end }}
{{- if .Date }}
    <p class="meta"><time datetime="{{ .ISODate }}">{{ .Date }}</time> &middot; {{ .ReadingTime }} min read</p>
{{- end }}
{{- if .Categories }}
    <ul class="categories">
{{- range .Categories }}
      <li><a href="{{ .URL }}">{{ .Name }}</a></li>
{{- end }}
    </ul>
{{- end }}
  </header>
  <div class="content">
{{ .Content }}
  </div>
</article>
{{ end }}`

const pageLayout = `{{ define "main" }}
<article>
  <header>
    <h1>{{ .Title }}</h1>
  </header>
  <div class="content">
{{ .Content }}
  </div>
</article>
{{ end }}`

const listLayout = `{{ define "main" }}
<section>
  <header>
    <h1>{{ .Title }}</h1>
  </header>
  <div class="post-list">
{{- range .Posts }}
    <article>
      <h2><a href="{{ .URL }}">{{ .Title }}</a></h2>
{{- if .Date }}
      <p class="meta"><time datetime="{{ .ISODate }}">{{ .Date }}</time></p>
{{- end }}
{{- if .Excerpt }}
      <div class="excerpt">{{ .Excerpt }}</div>
{{- end }}
    </article>
{{- end }}
  </div>
</section>
{{ end }}`
