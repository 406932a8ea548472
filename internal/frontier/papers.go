// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package frontier seeds the author frontier from fetched paper listings
// and grows it with co-authors found on profile pages.
package frontier

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Paper is one (title, authors) pair found in a listing.
type Paper struct {
	Title   string
	Authors []string
}

const (
	minTitleLen     = 6
	maxTitleLen     = 220
	minNameLen      = 2
	maxNameLen      = 80
	maxNamesPerLine = 12
	maxPapers       = 200
)

var (
	linkLike    = regexp.MustCompile(`(?i)https?://|doi\.org|arxiv|openreview|acm\.org|ieee\.org`)
	authorSplit = regexp.MustCompile(`,| and `)
	nameNoise   = regexp.MustCompile(`[^A-Za-zÀ-ÿ' \-]`)
	spaceRun    = regexp.MustCompile(`\s{2,}`)
)

// ParsePapers scans text for a title line directly followed by an author
// line. A title is 6 to 220 characters with no link-like token; an author
// line holds a comma or " and " and yields 1 to 12 names of 2 to 80
// characters after punctuation and digits are stripped. At most 200 pairs
// are returned.
func ParsePapers(text string) []Paper {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	var out []Paper
	for i := 0; i+1 < len(lines) && len(out) < maxPapers; i++ {
		title, authors := lines[i], lines[i+1]
		n := utf8.RuneCountInString(title)
		if n < minTitleLen || n > maxTitleLen {
			continue
		}
		if !strings.Contains(authors, ",") && !strings.Contains(authors, " and ") {
			continue
		}
		if linkLike.MatchString(title) {
			continue
		}
		names := splitNames(authors)
		if len(names) < 1 || len(names) > maxNamesPerLine {
			continue
		}
		out = append(out, Paper{Title: title, Authors: names})
	}
	return out
}

func splitNames(line string) []string {
	var names []string
	for _, raw := range authorSplit.Split(line, -1) {
		name := strings.TrimSpace(spaceRun.ReplaceAllString(nameNoise.ReplaceAllString(raw, ""), " "))
		if n := utf8.RuneCountInString(name); n >= minNameLen && n <= maxNameLen {
			names = append(names, name)
		}
	}
	return names
}
