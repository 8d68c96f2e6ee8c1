package tmdb

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/dirstream/m3ugen/internal/crawl"
)

func testFile(t *testing.T, rawURL, name string, segments ...string) crawl.File {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatal(err)
	}
	return crawl.File{URL: u, Name: name, Segments: segments}
}

func TestResolveAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") == "The Raid" {
			fmt.Fprint(w, `{"results":[{"title":"The Raid","release_date":"2011-03-23",
				"overview":"Trapped.","poster_path":"/abc.jpg"}]}`)
			return
		}
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	files := []crawl.File{
		testFile(t, "http://example.test/movies/Action/The.Raid.2011.mkv", "The.Raid.2011.mkv", "Action"),
		testFile(t, "http://example.test/movies/Unknown.Thing.mkv", "Unknown.Thing.mkv"),
	}

	resolved := ResolveAll(context.Background(), c, files, 4)
	if len(resolved) != 2 {
		t.Fatalf("got %d results, want 2", len(resolved))
	}

	// Results stay in input order regardless of completion order.
	if resolved[0].File.Name != "The.Raid.2011.mkv" || resolved[1].File.Name != "Unknown.Thing.mkv" {
		t.Fatalf("result order changed: %q, %q", resolved[0].File.Name, resolved[1].File.Name)
	}

	if !resolved[0].Found {
		t.Error("expected a match for The Raid")
	}
	if resolved[0].Match.PosterURL == "" || resolved[0].Match.Overview == "" {
		t.Errorf("match incomplete: %+v", resolved[0].Match)
	}
	if resolved[0].Title != "The Raid" || resolved[0].Year != "2011" {
		t.Errorf("parsed title/year = %q/%q", resolved[0].Title, resolved[0].Year)
	}

	if resolved[1].Found {
		t.Error("expected no match for Unknown.Thing")
	}
	if resolved[1].Title != "Unknown Thing" {
		t.Errorf("fallback title = %q", resolved[1].Title)
	}
}

func TestResolveAllDegradesOnServiceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	files := []crawl.File{
		testFile(t, "http://example.test/movies/A.2001.mkv", "A.2001.mkv"),
		testFile(t, "http://example.test/movies/B.2002.mkv", "B.2002.mkv"),
	}

	resolved := ResolveAll(context.Background(), c, files, 2)
	if len(resolved) != 2 {
		t.Fatalf("got %d results, want 2: service failure must not drop files", len(resolved))
	}
	for _, r := range resolved {
		if r.Found {
			t.Errorf("%s: expected degraded no-metadata result", r.File.Name)
		}
	}
}
