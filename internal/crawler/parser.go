package crawler

import (
	"io"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
)

// ParseResult is what a single page contributes to the corpus.
type ParseResult struct {
	// Title is the text of the <title> element, if any.
	Title string

	// Links holds the cleaned href values of all <a> elements in document
	// order. Duplicates are kept; the graph builder collapses them.
	Links []string
}

// Parse reads one HTML document and extracts its title and local links.
//
// Only relative references survive: absolute URLs, scheme-only links such
// as mailto: and javascript:, and fragment-only links are skipped. Query
// strings and fragments are stripped and the path is cleaned, so
// "./2.html#top" becomes "2.html".
func Parse(r io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Links: make([]string, 0),
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if result.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					result.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "a":
				if link := cleanHref(getAttr(n, "href")); link != "" {
					result.Links = append(result.Links, link)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return result, nil
}

// cleanHref reduces an href to a corpus-relative path, or "" when the
// reference cannot point at another page of the corpus.
func cleanHref(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	// mailto:, javascript:, tel:, http://... all carry a scheme.
	if u.Scheme != "" || u.Host != "" || u.Opaque != "" {
		return ""
	}
	if u.Path == "" {
		return ""
	}

	cleaned := path.Clean(u.Path)
	if cleaned == "." || cleaned == "/" {
		return ""
	}
	return cleaned
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
