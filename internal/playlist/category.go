package playlist

import "strings"

// categorySeparator joins folder segments into a category label.
const categorySeparator = " > "

// Category reduces folder-path segments to a bounded-depth label: the
// first min(len, depth) segments joined by " > ". Files sitting
// directly under the crawl base get the fallback label.
func Category(segments []string, depth int, fallback string) string {
	if len(segments) == 0 {
		return fallback
	}
	if len(segments) > depth {
		segments = segments[:depth]
	}
	return strings.Join(segments, categorySeparator)
}
