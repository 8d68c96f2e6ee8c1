// Package crawl walks a remote directory-listing tree and collects
// qualifying video files.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"slices"
	"strings"

	"github.com/dirstream/m3ugen/internal/app"
	"github.com/dirstream/m3ugen/internal/listing"
)

// File is one discovered video file: its absolute URL, decoded
// filename, and the folder names between the crawl base and the file.
type File struct {
	URL      *url.URL
	Name     string
	Segments []string
}

// Walker performs a depth-first crawl of a directory-listing tree.
type Walker struct {
	fetcher  *listing.Fetcher
	base     *url.URL
	allowed  map[string]bool
	maxDepth int
}

// NewWalker builds a Walker from the crawl configuration.
func NewWalker(cfg app.CrawlConfig) (*Walker, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL %q: %w", cfg.BaseURL, err)
	}

	allowed := make(map[string]bool, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		allowed[strings.ToLower(ext)] = true
	}

	return &Walker{
		fetcher:  listing.NewFetcher(cfg.Timeout),
		base:     base,
		allowed:  allowed,
		maxDepth: cfg.MaxDepth,
	}, nil
}

type node struct {
	url      *url.URL
	segments []string
	depth    int
}

// Walk crawls the tree rooted at the base URL. An unreachable root is
// fatal; a fetch failure anywhere below the root is logged and that
// subtree skipped. Files reachable through more than one path are
// reported once.
func (w *Walker) Walk(ctx context.Context) ([]File, error) {
	var files []File

	stack := []node{{url: w.base}}
	visited := map[string]bool{w.base.String(): true}
	seen := map[string]bool{}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return files, err
		}

		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		body, err := w.fetcher.Fetch(ctx, n.url)
		if err != nil {
			if n.depth == 0 {
				return nil, fmt.Errorf("fetching crawl root: %w", err)
			}
			slog.Warn("skipping unreachable directory", "url", n.url.String(), "error", err)
			continue
		}

		slog.Debug("crawled directory", "url", n.url.String(), "depth", n.depth)

		for _, e := range listing.Parse(body, n.url, w.base) {
			if e.IsDir {
				if n.depth+1 > w.maxDepth {
					slog.Debug("max depth reached, not descending", "url", e.URL.String())
					continue
				}
				if visited[e.URL.String()] {
					continue
				}
				visited[e.URL.String()] = true
				stack = append(stack, node{
					url:      e.URL,
					segments: append(slices.Clone(n.segments), e.Name),
					depth:    n.depth + 1,
				})
				continue
			}

			if !w.allowed[strings.ToLower(path.Ext(e.Name))] {
				continue
			}
			if seen[e.URL.String()] {
				continue
			}
			seen[e.URL.String()] = true
			files = append(files, File{URL: e.URL, Name: e.Name, Segments: n.segments})
		}
	}

	return files, nil
}
