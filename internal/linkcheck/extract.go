// Package linkcheck verifies that internal links in the generated site
// resolve to files in the output tree.
package linkcheck

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Link is one reference extracted from a generated HTML page.
type Link struct {
	URL        string // raw attribute value
	Tag        string // a, img, link, script
	Attribute  string // href or src
	IsInternal bool
}

// ExtractLinks parses HTML and returns every link-bearing attribute.
func ExtractLinks(r io.Reader, base *url.URL) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if raw, attr := linkAttr(n); raw != "" {
				links = append(links, Link{
					URL:        raw,
					Tag:        n.Data,
					Attribute:  attr,
					IsInternal: isInternal(raw, base),
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func linkAttr(n *html.Node) (value, attr string) {
	switch n.Data {
	case "a", "link":
		return getAttr(n, "href"), "href"
	case "img", "script", "video", "audio", "source":
		return getAttr(n, "src"), "src"
	}
	return "", ""
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// isInternal reports whether a link targets this site: relative URLs,
// fragments, and absolute URLs on the configured host.
func isInternal(raw string, base *url.URL) bool {
	if strings.HasPrefix(raw, "mailto:") || strings.HasPrefix(raw, "tel:") {
		return false
	}
	if strings.HasPrefix(raw, "#") {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme == "" && u.Host == "" {
		return true
	}
	return base != nil && u.Host == base.Host
}
