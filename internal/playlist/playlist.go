// Package playlist assembles crawl and metadata results into an
// extended-M3U playlist grouped by category.
package playlist

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dirstream/m3ugen/internal/app"
	"github.com/dirstream/m3ugen/internal/tmdb"
)

// unmatchedSuffix marks groups whose entries had no metadata match.
const unmatchedSuffix = " [Unmatched]"

// Entry is one playable item of the output playlist.
type Entry struct {
	Category string
	Title    string
	URL      string
	Logo     string
	Overview string
}

// FromResolved merges resolved files into playlist entries, applying
// the category mapping and the matched/unmatched display rules.
func FromResolved(resolved []tmdb.Resolved, cfg app.PlaylistConfig) []Entry {
	entries := make([]Entry, 0, len(resolved))

	for _, r := range resolved {
		category := Category(r.File.Segments, cfg.CategoryDepth, cfg.DefaultCategory)

		e := Entry{URL: r.File.URL.String()}
		if r.Found {
			e.Category = category
			e.Title = displayTitle(r.Match.Title, r.Match.Year)
			e.Logo = r.Match.Logo()
			e.Overview = r.Match.Overview
		} else {
			e.Category = category + unmatchedSuffix
			e.Title = displayTitle(r.Title, r.Year)
		}
		entries = append(entries, e)
	}

	return entries
}

func displayTitle(title, year string) string {
	if year != "" {
		return fmt.Sprintf("%s (%s)", title, year)
	}
	return title
}

// Render produces the playlist file content. Entries are sorted by
// category, then title, then URL (case-insensitive), so identical
// input always renders byte-identical output.
func Render(entries []Entry) string {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if ca, cb := strings.ToLower(a.Category), strings.ToLower(b.Category); ca != cb {
			return ca < cb
		}
		if ta, tb := strings.ToLower(a.Title), strings.ToLower(b.Title); ta != tb {
			return ta < tb
		}
		return a.URL < b.URL
	})

	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	for _, e := range sorted {
		fmt.Fprintf(&b, `#EXTINF:-1 tvg-name="%s" tvg-logo="%s" group-title="%s" tvg-plot="%s",%s`+"\n",
			attr(e.Title), attr(e.Logo), attr(e.Category), attr(e.Overview), attr(e.Title))
		b.WriteString(e.URL)
		b.WriteString("\n\n")
	}
	return b.String()
}

// attr makes a value safe inside a double-quoted EXTINF attribute.
func attr(s string) string {
	s = strings.ReplaceAll(s, `"`, "'")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}
