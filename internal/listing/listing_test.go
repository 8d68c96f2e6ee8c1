package listing

import (
	"net/url"
	"testing"
)

const nginxListing = `<html>
<head><title>Index of /movies/</title></head>
<body>
<h1>Index of /movies/</h1><hr><pre><a href="../">../</a>
<a href="?C=N&amp;O=D">Name</a>
<a href="Action/">Action/</a>
<a href="Sci-Fi/">Sci-Fi/</a>
<a href="The.Raid.2011.mkv">The.Raid.2011.mkv</a>
<a href="Hot%20Fuzz.2007.mp4">Hot Fuzz.2007.mp4</a>
<a href="readme.txt">readme.txt</a>
<a href="https://other.example.com/x.mkv">offsite</a>
<a href="/movies/">self</a>
</pre><hr></body>
</html>`

func mustURL(t *testing.T, s string) *url.URL {
	t.Helper()
	u, err := url.Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestParse(t *testing.T) {
	base := mustURL(t, "http://example.test/movies/")
	entries := Parse(nginxListing, base, base)

	want := []struct {
		name  string
		isDir bool
		url   string
	}{
		{"Action", true, "http://example.test/movies/Action/"},
		{"Sci-Fi", true, "http://example.test/movies/Sci-Fi/"},
		{"The.Raid.2011.mkv", false, "http://example.test/movies/The.Raid.2011.mkv"},
		{"Hot Fuzz.2007.mp4", false, "http://example.test/movies/Hot%20Fuzz.2007.mp4"},
		{"readme.txt", false, "http://example.test/movies/readme.txt"},
	}

	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(entries), len(want), entries)
	}
	for i, w := range want {
		got := entries[i]
		if got.Name != w.name {
			t.Errorf("entry %d: name = %q, want %q", i, got.Name, w.name)
		}
		if got.IsDir != w.isDir {
			t.Errorf("entry %d (%s): isDir = %v, want %v", i, got.Name, got.IsDir, w.isDir)
		}
		if got.URL.String() != w.url {
			t.Errorf("entry %d (%s): url = %q, want %q", i, got.Name, got.URL, w.url)
		}
	}
}

func TestParseNeverReturnsParentOrSelf(t *testing.T) {
	base := mustURL(t, "http://example.test/movies/")
	page := mustURL(t, "http://example.test/movies/Action/")

	body := `<a href="../">../</a><a href="..">..</a><a href="/">/</a>
<a href="/movies/Action/">self</a><a href="#frag">frag</a><a href="?C=M;O=A">sort</a>`

	entries := Parse(body, page, base)
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %+v", entries)
	}
}

func TestParseRelativeHrefsResolveAgainstPage(t *testing.T) {
	base := mustURL(t, "http://example.test/movies/")
	page := mustURL(t, "http://example.test/movies/Action/")

	entries := Parse(`<a href="Sub/">Sub/</a>`, page, base)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if got := entries[0].URL.String(); got != "http://example.test/movies/Action/Sub/" {
		t.Errorf("url = %q", got)
	}
}

func TestParseMalformedMarkupIsEmptyDirectory(t *testing.T) {
	base := mustURL(t, "http://example.test/movies/")
	for _, body := range []string{"", "not html at all", "<html><body><p>no links"} {
		if entries := Parse(body, base, base); len(entries) != 0 {
			t.Errorf("body %q: expected no entries, got %+v", body, entries)
		}
	}
}
