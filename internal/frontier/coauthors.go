// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package frontier

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/pdiddy/talent-scout/internal/fetch"
	"github.com/pdiddy/talent-scout/pkg/types"
)

// maxCoauthorsPerPage caps names taken from one profile page.
const maxCoauthorsPerPage = 30

var personPattern = regexp.MustCompile(`(?i)"name"\s*:\s*"([^"]+)"\s*,\s*"@type"\s*:\s*"Person"`)

// Coauthors returns the people linked from a profile page: anchors to other
// OpenReview profiles on openreview.net, JSON-LD persons on
// semanticscholar.org. Other pages yield nothing.
func Coauthors(rawHTML, pageURL string) []string {
	var names []string
	switch {
	case strings.Contains(pageURL, "openreview.net/profile"):
		doc, err := html.Parse(strings.NewReader(rawHTML))
		if err != nil {
			return nil
		}
		for _, a := range fetch.Elements(doc, "a") {
			if strings.Contains(fetch.Attr(a, "href"), "openreview.net/profile?id=") || strings.HasPrefix(fetch.Attr(a, "href"), "/profile?id=") {
				names = append(names, strings.Join(strings.Fields(fetch.Text(a)), " "))
			}
		}
	case strings.Contains(pageURL, "semanticscholar.org/author"):
		for _, m := range personPattern.FindAllStringSubmatch(rawHTML, -1) {
			names = append(names, strings.TrimSpace(m[1]))
		}
	}

	var out []string
	seen := map[string]bool{}
	for _, n := range names {
		if l := utf8.RuneCountInString(n); l < minNameLen || l > maxNameLen || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
		if len(out) >= maxCoauthorsPerPage {
			break
		}
	}
	return out
}

// Expand adds co-authors found in fetched OpenReview and Semantic Scholar
// profile pages until the frontier holds MaxWithCoauthors authors. Names
// already on the frontier are skipped.
func (s *Seeder) Expand(st *types.ResearchState) types.Diff {
	urls := make([]string, 0, len(st.SourcesHTML))
	for u := range st.SourcesHTML {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	size := len(st.Frontier)
	seen := map[string]bool{}
	var entries []types.FrontierEntry
	for _, u := range urls {
		for _, name := range Coauthors(st.SourcesHTML[u], u) {
			if s.cfg.MaxWithCoauthors > 0 && size >= s.cfg.MaxWithCoauthors {
				break
			}
			if _, ok := st.Author(name); ok || seen[name] {
				continue
			}
			seen[name] = true
			entries = append(entries, types.FrontierEntry{Name: name, Origin: types.OriginCoauthor})
			size++
		}
	}
	s.logger.Info("expanded frontier with co-authors",
		zap.Int("round", st.Round),
		zap.Int("new_authors", len(entries)),
		zap.Int("frontier", size))
	return types.Diff{Frontier: entries}
}
