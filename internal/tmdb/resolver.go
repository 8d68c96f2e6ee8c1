package tmdb

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dirstream/m3ugen/internal/crawl"
	"github.com/dirstream/m3ugen/internal/title"
)

// Resolved pairs a crawled file with its metadata lookup outcome.
// Title and Year are the cleaned values parsed from the filename and
// serve as the display fallback when no match was found.
type Resolved struct {
	File  crawl.File
	Title string
	Year  string
	Match Match
	Found bool
}

// ResolveAll looks up metadata for every file using a bounded pool of
// concurrent API calls. Lookup failures degrade to "no metadata" for
// the affected file; they never abort the run. Results are returned in
// input order.
func ResolveAll(ctx context.Context, c *Client, files []crawl.File, concurrency int) []Resolved {
	var g errgroup.Group
	g.SetLimit(max(concurrency, 1))

	out := make([]Resolved, len(files))

	for i, f := range files {
		g.Go(func() error {
			name, year := title.Parse(f.Name)
			m, found, err := c.Lookup(ctx, name, year)
			if err != nil {
				slog.Warn("metadata lookup failed", "file", f.Name, "title", name, "error", err)
			}
			out[i] = Resolved{File: f, Title: name, Year: year, Match: m, Found: found}
			return nil
		})
	}

	_ = g.Wait()
	return out
}
