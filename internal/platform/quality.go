// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package platform

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/pdiddy/talent-scout/internal/httputil"
	"github.com/pdiddy/talent-scout/pkg/types"
)

var (
	personalPath = regexp.MustCompile(`(?i)(/~|/people/|/faculty/|/staff/|/users/|/homepages?/|/students?/|/members?/)`)
	directoryURL = regexp.MustCompile(`(?i)(/pub/dir/|/directory|/search|[?&](q|query|keywords|search)=|/results|/people/?$|/members/?$|/students/?$|/team/?$)`)
	listingURL   = regexp.MustCompile(`(?i)([?&]page=|/tag/|/tags/|/category/|/posts?/|/news/|/blog/|/events?/|/list/|/papers/?$|/publications/?$)`)
)

// Quality scores how well u fits as p's profile for the named person.
// Profile-shaped paths, name tokens in the URL and extractable identifiers
// add weight; directory and listing patterns subtract it.
func Quality(p types.Platform, u, name string, w types.QualityWeights) float64 {
	u = httputil.NormalizeURL(u)
	lower := strings.ToLower(u)
	score := 0.0

	switch p {
	case types.PlatformHomepage, types.PlatformUniversity:
		if personalPath.MatchString(lower) || strings.HasSuffix(httputil.DomainOf(u), ".github.io") {
			score += w.ProfilePath
		}
	default:
		if Valid(p, u) {
			score += w.ProfilePath
		}
	}

	words := urlText(lower)
	score += w.NameInPath * overlap(name, func(tok string) bool { return strings.Contains(words, tok) })

	if directoryURL.MatchString(lower) {
		score -= w.DirectoryPenalty
	}
	if listingURL.MatchString(lower) {
		score -= w.ListingPenalty
	}
	if ExtractIDs(u)[p] != "" {
		score += w.IdentifierBonus
	}
	return score
}

// ShouldReplace reports whether candidate should take p's slot from
// current. An empty slot always takes a candidate; otherwise the candidate
// must score strictly higher, by at least w.SocialReplaceMargin on social
// platforms.
func ShouldReplace(p types.Platform, current, candidate, name string, w types.QualityWeights) bool {
	if candidate == "" {
		return false
	}
	if current == "" {
		return true
	}
	if httputil.NormalizeURL(current) == httputil.NormalizeURL(candidate) {
		return false
	}
	margin := 0.0
	if TierOf(p) == TierSocial {
		margin = w.SocialReplaceMargin
	}
	return Quality(p, candidate, name, w) > Quality(p, current, name, w)+margin
}

// NameTokens splits a display name into lower-cased tokens of at least two
// letters, dropping initials and punctuation.
func NameTokens(name string) []string {
	var out []string
	for _, f := range strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	}) {
		f = strings.Trim(f, "'")
		if len([]rune(f)) >= 2 {
			out = append(out, f)
		}
	}
	return out
}

// NameOverlap returns the fraction of name tokens that occur as whole
// words in text, in [0,1]. Matching is case-insensitive; an empty name
// scores 0.
func NameOverlap(name, text string) float64 {
	words := make(map[string]bool)
	for _, w := range NameTokens(text) {
		words[w] = true
	}
	return overlap(name, func(tok string) bool { return words[tok] })
}

func overlap(name string, present func(string) bool) float64 {
	tokens := NameTokens(name)
	if len(tokens) == 0 {
		return 0
	}
	hit := 0
	for _, tok := range tokens {
		if present(tok) {
			hit++
		}
	}
	return float64(hit) / float64(len(tokens))
}

// urlText turns the host and path of a URL into space-separated words so
// "jane-doe" and "janedoe" both contain the name tokens.
func urlText(lower string) string {
	lower = strings.TrimPrefix(strings.TrimPrefix(lower, "https://"), "http://")
	return strings.NewReplacer("-", " ", "_", " ", ".", " ", "/", " ").Replace(lower)
}
