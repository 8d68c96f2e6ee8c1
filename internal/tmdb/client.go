// Package tmdb looks up movie metadata (poster, synopsis) on The Movie
// Database search API.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dirstream/m3ugen/internal/app"
)

const searchPath = "/search/movie"

// ServiceError reports a failure answered by the metadata service
// itself: bad API key, rate limiting, or a server-side error.
type ServiceError struct {
	Status int
}

func (e *ServiceError) Error() string {
	switch e.Status {
	case http.StatusUnauthorized:
		return "tmdb: invalid API key"
	case http.StatusTooManyRequests:
		return "tmdb: rate limited"
	default:
		return fmt.Sprintf("tmdb: HTTP %d", e.Status)
	}
}

// Match holds the metadata selected for one title.
type Match struct {
	Title       string
	Year        string
	Overview    string
	PosterURL   string
	BackdropURL string
}

// Logo returns the artwork URL for a playlist entry: the poster when
// present, else the backdrop.
func (m Match) Logo() string {
	if m.PosterURL != "" {
		return m.PosterURL
	}
	return m.BackdropURL
}

type lookupResult struct {
	match Match
	found bool
}

// Client queries the TMDB search endpoint. Lookups are memoized per
// (title, year) for the lifetime of the client, and concurrent lookups
// for the same key are collapsed into one API call. Client is safe for
// concurrent use.
type Client struct {
	cfg        app.TMDBConfig
	httpClient *http.Client
	searchURL  string
	retryDelay time.Duration

	group singleflight.Group
	mu    sync.Mutex
	cache map[string]lookupResult
}

// NewClient creates a Client from the TMDB configuration.
func NewClient(cfg app.TMDBConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		searchURL:  cfg.APIBase + searchPath,
		retryDelay: 2 * time.Second,
		cache:      make(map[string]lookupResult),
	}
}

// Lookup searches for a movie by cleaned title and optional year hint.
// The returned bool is false when the service has no match for the
// title; that is not an error. An error means the service could not be
// consulted at all.
func (c *Client) Lookup(ctx context.Context, title, year string) (Match, bool, error) {
	key := title + "|" + year

	c.mu.Lock()
	if r, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return r.match, r.found, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (any, error) {
		r, err := c.lookup(ctx, title, year)
		if err != nil {
			return lookupResult{}, err
		}
		c.mu.Lock()
		c.cache[key] = r
		c.mu.Unlock()
		return r, nil
	})
	if err != nil {
		return Match{}, false, err
	}

	r := v.(lookupResult)
	return r.match, r.found, nil
}

func (c *Client) lookup(ctx context.Context, title, year string) (lookupResult, error) {
	results, err := c.search(ctx, title, year)
	if err != nil {
		return lookupResult{}, err
	}

	// A year hint that filters everything out is retried unhinted.
	if len(results) == 0 && year != "" {
		if results, err = c.search(ctx, title, ""); err != nil {
			return lookupResult{}, err
		}
	}
	if len(results) == 0 {
		return lookupResult{}, nil
	}

	best := results[0]
	if year != "" {
		for _, r := range results {
			if r.year() == year {
				best = r
				break
			}
		}
	}

	m := Match{
		Title:    best.Title,
		Year:     best.year(),
		Overview: best.Overview,
	}
	if m.Title == "" {
		m.Title = title
	}
	if m.Year == "" {
		m.Year = year
	}
	if best.PosterPath != "" {
		m.PosterURL = c.cfg.ImageBase + best.PosterPath
	}
	if best.BackdropPath != "" {
		m.BackdropURL = c.cfg.ImageBase + best.BackdropPath
	}
	return lookupResult{match: m, found: true}, nil
}

type movieResult struct {
	Title        string `json:"title"`
	ReleaseDate  string `json:"release_date"`
	Overview     string `json:"overview"`
	PosterPath   string `json:"poster_path"`
	BackdropPath string `json:"backdrop_path"`
}

func (r movieResult) year() string {
	if len(r.ReleaseDate) >= 4 {
		return r.ReleaseDate[:4]
	}
	return ""
}

// search calls the search endpoint with bounded retry. Transport
// failures, rate limiting, and server errors are retried with
// increasing delay; an invalid API key is not.
func (c *Client) search(ctx context.Context, title, year string) ([]movieResult, error) {
	q := url.Values{}
	q.Set("api_key", c.cfg.APIKey)
	q.Set("query", title)
	q.Set("language", c.cfg.Language)
	if year != "" {
		q.Set("primary_release_year", year)
	}
	reqURL := c.searchURL + "?" + q.Encode()

	var lastErr error
	for attempt := 0; attempt < c.cfg.Retries; attempt++ {
		if attempt > 0 {
			slog.Debug("retrying metadata search", "title", title, "attempt", attempt+1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.retryDelay):
			}
		}

		results, err := c.searchOnce(ctx, reqURL)
		if err == nil {
			return results, nil
		}
		lastErr = err

		var se *ServiceError
		if errors.As(err, &se) && se.Status == http.StatusUnauthorized {
			return nil, err
		}
	}
	return nil, fmt.Errorf("searching %q: %w", title, lastErr)
}

func (c *Client) searchOnce(ctx context.Context, reqURL string) ([]movieResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ServiceError{Status: resp.StatusCode}
	}

	var payload struct {
		Results []movieResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return payload.Results, nil
}
