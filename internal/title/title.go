// Package title derives a searchable movie title and year hint from a
// scene-release filename.
package title

import (
	"path"
	"regexp"
	"strings"
)

var (
	separators = regexp.MustCompile(`[._]`)
	yearToken  = regexp.MustCompile(`\b(19|20)\d{2}\b`)

	// Quality and encoding tags: everything from the first tag onward
	// is release noise, not title.
	noiseTail = regexp.MustCompile(`(?i)\s+(1080p|720p|480p|4k|2160p|uhd|bluray|blu ray|bdrip|brrip|webrip|` +
		`web dl|web|hdtv|hdcam|cam|hdrip|x264|x265|hevc|avc|aac|dts|ac3|` +
		`h264|h265|dvdrip|dvdscr|extended|remastered|theatrical|proper|` +
		`yify|yts|rarbg|10bit|hdr|dolby|atmos|directors cut|unrated|retail).*$`)

	brackets = regexp.MustCompile(`[\[\]()]`)
)

// Parse extracts a clean title and an optional year hint from a
// filename. The year hint is empty when no plausible release year is
// present.
func Parse(filename string) (title, year string) {
	name := strings.TrimSuffix(filename, path.Ext(filename))
	name = separators.ReplaceAllString(name, " ")

	if loc := yearToken.FindStringIndex(name); loc != nil {
		year = name[loc[0]:loc[1]]
		title = strings.TrimSpace(name[:loc[0]])
	} else {
		title = name
	}

	title = noiseTail.ReplaceAllString(title, "")
	title = strings.Trim(title, " -[]()")
	title = strings.TrimSpace(brackets.ReplaceAllString(title, ""))
	return title, year
}
