// Package listing fetches and parses HTML directory-listing pages as
// served by nginx, Apache autoindex, and similar file servers.
package listing

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Entry is a single row of a directory listing: either a subdirectory
// or a file, with its href resolved to an absolute URL.
type Entry struct {
	Name  string // decoded display name, no trailing slash
	IsDir bool
	URL   *url.URL
}

// Parse extracts directory entries from raw listing markup. Relative
// hrefs are resolved against pageURL; anything resolving outside base
// is dropped, as are parent-directory and sort-control links. Markup
// that yields no anchors is a legitimate empty directory.
func Parse(body string, pageURL, base *url.URL) []Entry {
	var entries []Entry

	tz := html.NewTokenizer(strings.NewReader(body))
	for {
		tt := tz.Next()
		if tt == html.ErrorToken {
			return entries
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		tok := tz.Token()
		if tok.DataAtom != atom.A {
			continue
		}
		href := ""
		for _, a := range tok.Attr {
			if a.Key == "href" {
				href = strings.TrimSpace(a.Val)
				break
			}
		}
		if e, ok := entryFromHref(href, pageURL, base); ok {
			entries = append(entries, e)
		}
	}
}

func entryFromHref(href string, pageURL, base *url.URL) (Entry, bool) {
	switch href {
	case "", "..", "../", "/":
		return Entry{}, false
	}
	// Sort-control and fragment links on autoindex pages.
	if strings.HasPrefix(href, "?") || strings.HasPrefix(href, "#") {
		return Entry{}, false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return Entry{}, false
	}
	resolved := pageURL.ResolveReference(ref)

	// Off-site links and anything escaping the crawl base.
	if !strings.HasPrefix(resolved.String(), base.String()) {
		return Entry{}, false
	}
	// Self-referential link back to the listing page.
	if resolved.Path == pageURL.Path {
		return Entry{}, false
	}

	isDir := strings.HasSuffix(href, "/")
	name := path.Base(strings.TrimSuffix(resolved.Path, "/"))
	if name == "" || name == "." || name == ".." || name == "/" {
		return Entry{}, false
	}

	return Entry{Name: name, IsDir: isDir, URL: resolved}, true
}
