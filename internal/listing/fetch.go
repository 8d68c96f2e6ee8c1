package listing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// userAgent identifies the crawler to the file server.
const userAgent = "Mozilla/5.0 (compatible; M3U-Scraper/1.0)"

// StatusError reports a directory fetch that was answered with a
// non-success HTTP status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d", e.URL, e.Code)
}

// Fetcher retrieves directory-listing pages over HTTP.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher whose requests time out after timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch issues a GET against a directory URL and returns the raw
// listing body. A non-2xx response yields a *StatusError; transport
// failures are returned wrapped.
func (f *Fetcher) Fetch(ctx context.Context, u *url.URL) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", u, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{URL: u.String(), Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", u, err)
	}
	return string(body), nil
}
