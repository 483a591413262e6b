package scanner

import (
	"regexp"
	"strconv"
	"strings"
)

// Year extraction: first 4-digit run wins, with or without ()/[] brackets.
// Titles containing other 4-digit numbers (catalog numbers, band names) are
// a known false-positive source.
var yearPattern = regexp.MustCompile(`[\(\[]?(\d{4})[\)\]]?`)

// Quality and source tokens removed from titles, case-insensitive.
var qualityPattern = regexp.MustCompile(`(?i)\b(720p|1080p|2160p|4k|bluray|web-?dl|webrip|hdtv)\b`)

// Episode markers: S01E05 style first, then 1x05 style.
var (
	seasonEpisodePattern = regexp.MustCompile(`(?i)s(\d+)e(\d+)`)
	crossEpisodePattern  = regexp.MustCompile(`(?i)(\d+)x(\d+)`)
)

// ParseTitleYear extracts a display title and optional release year from a
// bare filename. The extension is stripped, the first 4-digit run is taken
// as the year, quality tokens are removed, and separator characters are
// normalized to spaces. A zero year means no year was found.
func ParseTitleYear(filename string) (string, int) {
	name := filename
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}

	year := 0
	if m := yearPattern.FindStringSubmatchIndex(name); m != nil {
		if y, err := strconv.Atoi(name[m[2]:m[3]]); err == nil {
			year = y
			name = name[:m[0]] + name[m[1]:]
		}
	}

	name = qualityPattern.ReplaceAllString(name, "")

	replacer := strings.NewReplacer(".", " ", "_", " ", "-", " ")
	name = replacer.Replace(name)

	return strings.Join(strings.Fields(name), " "), year
}

// ParseEpisode extracts season and episode numbers from a filename. The
// SxxExx form is tried first, then the NxNN form; there are no further
// heuristics. ok is false when neither matches, which callers treat as
// "not a TV episode".
func ParseEpisode(filename string) (season, episode int, ok bool) {
	if m := seasonEpisodePattern.FindStringSubmatch(filename); m != nil {
		return mustAtoi(m[1]), mustAtoi(m[2]), true
	}
	if m := crossEpisodePattern.FindStringSubmatch(filename); m != nil {
		return mustAtoi(m[1]), mustAtoi(m[2]), true
	}
	return 0, 0, false
}

// mustAtoi converts digit-only regex captures; the patterns guarantee the
// input parses.
func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
