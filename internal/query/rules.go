// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/talent-scout/pkg/types"
)

var (
	countPattern  = regexp.MustCompile(`(?i)\b(?:top\s+)?(\d{1,3})\s+(?:(?:current|strong|promising|top|senior|junior|young|early-career)\s+)*(?:ph\.?d|msc|master'?s?|graduate|undergrad\w*|candidates?|people|persons?|researchers?|students?|authors?|interns?)\b`)
	topPattern    = regexp.MustCompile(`(?i)\btop[\s-]+(\d{1,3})\b`)
	yearToken     = regexp.MustCompile(`\b(19[9]\d|20\d{2})\b`)
	quotedPattern = regexp.MustCompile(`["“]([^"”]{2,60})["”]`)
	topicPattern  = regexp.MustCompile(`(?i)\b(?:in|on|about|working on|researching)\s+([a-z][a-z0-9\- ]{2,48}?)(?:\s+(?:at|from|in|for|who|with|published|papers?|and)\b|[,.;:!?]|$)`)
	notStudent    = regexp.MustCompile(`(?i)\b(?:not (?:necessarily )?(?:a )?students?|any career stage|non-students?|faculty|professors?|senior researchers?|industry researchers?)\b`)
)

// knownKeywords are technical terms recognised without quoting.
var knownKeywords = []string{
	"large language models", "llm agents", "llm", "transformer", "attention", "multi-agent systems",
	"multi-agent", "reinforcement learning", "graph neural networks", "foundation model",
	"social simulation", "computer vision", "natural language processing", "nlp", "machine learning",
	"deep learning", "ai alignment", "alignment", "robotics", "speech recognition",
	"recommendation systems", "autonomous driving", "medical ai", "game theory",
	"human-ai interaction", "agent-based", "reasoning", "planning", "evaluation",
}

var degreeCues = map[string]*regexp.Regexp{
	"PhD":           regexp.MustCompile(`(?i)\bph\.?d\b|\bdoctoral\b`),
	"MSc":           regexp.MustCompile(`(?i)\bm\.?sc\b`),
	"Master":        regexp.MustCompile(`(?i)\bmaster'?s?\b`),
	"Graduate":      regexp.MustCompile(`(?i)\bgraduate\b`),
	"Undergraduate": regexp.MustCompile(`(?i)\bundergrad(?:uate)?s?\b`),
	"Bachelor":      regexp.MustCompile(`(?i)\bbachelor'?s?\b`),
	"Postdoc":       regexp.MustCompile(`(?i)\bpost-?docs?\b|\bpostdoctoral\b`),
}

var degreeOrder = []string{"PhD", "MSc", "Master", "Graduate", "Undergraduate", "Bachelor", "Postdoc"}

var priorityCues = []struct {
	pos types.AuthorPosition
	re  *regexp.Regexp
}{
	{types.PositionFirst, regexp.MustCompile(`(?i)\bfirst[\s-]authors?\b`)},
	{types.PositionLast, regexp.MustCompile(`(?i)\blast[\s-]authors?\b|\bsenior[\s-]authors?\b`)},
	{types.PositionCorresponding, regexp.MustCompile(`(?i)\bcorresponding[\s-]authors?\b`)},
}

var constraintCues = []string{
	"asia", "north america", "europe", "china", "united states", "usa", "uk", "canada",
	"top universities", "ivy league", "remote", "english", "mandarin", "open source",
}

// ParseRules extracts a raw spec from text without a model. Fields it
// cannot find are left empty so NormalizeQuerySpec and Defaults fill them.
func ParseRules(text string) types.RawQuerySpec {
	var raw types.RawQuerySpec
	lower := strings.ToLower(text)

	if m := countPattern.FindStringSubmatch(text); m != nil {
		raw.TopN = m[1]
	} else if m := topPattern.FindStringSubmatch(text); m != nil {
		raw.TopN = m[1]
	}

	for _, y := range yearToken.FindAllString(text, -1) {
		raw.Years = append(raw.Years, y)
	}

	raw.Venues = findVenues(text)
	raw.Keywords = findKeywords(text, lower)

	if notStudent.MatchString(text) {
		f := false
		raw.MustBeCurrentStudent = &f
	}

	for _, d := range degreeOrder {
		if degreeCues[d].MatchString(text) {
			raw.DegreeLevels = append(raw.DegreeLevels, d)
		}
	}
	for _, c := range priorityCues {
		if c.re.MatchString(text) {
			raw.AuthorPriority = append(raw.AuthorPriority, string(c.pos))
		}
	}
	for _, c := range constraintCues {
		if containsWord(lower, c) {
			raw.ExtraConstraints = append(raw.ExtraConstraints, c)
		}
	}
	return raw
}

var (
	venuePatterns     = compileVenuePatterns()
	openReviewPattern = regexp.MustCompile(`(?i)\bopenreview\b`)
)

func compileVenuePatterns() map[string][]*regexp.Regexp {
	out := make(map[string][]*regexp.Regexp, len(Conferences))
	for canon, aliases := range Conferences {
		for _, a := range types.DedupeStrings(append([]string{canon}, aliases...), 0) {
			out[canon] = append(out[canon], regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(a)+`\b`))
		}
	}
	return out
}

// findVenues returns canonical venue names mentioned in text, in order of
// first mention.
func findVenues(text string) []string {
	type hit struct {
		pos   int
		canon string
	}
	var hits []hit
	for canon, patterns := range venuePatterns {
		best := -1
		for _, re := range patterns {
			if loc := re.FindStringIndex(text); loc != nil && (best < 0 || loc[0] < best) {
				best = loc[0]
			}
		}
		if best >= 0 {
			hits = append(hits, hit{best, canon})
		}
	}
	if loc := openReviewPattern.FindStringIndex(text); loc != nil {
		hits = append(hits, hit{loc[0], "OpenReview"})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.canon)
	}
	return out
}

func findKeywords(text, lower string) []string {
	var out []string
	for _, m := range quotedPattern.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	for _, kw := range knownKeywords {
		if containsWord(lower, kw) && !coveredBy(kw, out) {
			out = append(out, kw)
		}
	}
	for _, m := range topicPattern.FindAllStringSubmatch(text, -1) {
		phrase := strings.TrimSpace(m[1])
		if isTopic(phrase) && !coveredBy(strings.ToLower(phrase), out) {
			out = append(out, phrase)
		}
	}
	return out
}

// isTopic rejects "in X" captures that are venues, years or filler.
func isTopic(phrase string) bool {
	p := strings.ToLower(phrase)
	for _, det := range []string{"the ", "a ", "an ", "their ", "our "} {
		p = strings.TrimPrefix(p, det)
	}
	if p == "" || stopTopics[p] || CanonicalVenue(p) != "" || yearToken.MatchString(p) {
		return false
	}
	if _, err := strconv.Atoi(p); err == nil {
		return false
	}
	for _, c := range constraintCues {
		if p == c {
			return false
		}
	}
	return len(strings.Fields(p)) <= 5
}

var stopTopics = map[string]bool{
	"total": true, "general": true, "particular": true, "this area": true, "that area": true,
	"the field": true, "field": true, "academia": true, "industry": true, "openreview": true,
}

// coveredBy reports whether kw already appears inside an extracted keyword,
// so "llm" is not added next to "llm agents".
func coveredBy(kw string, have []string) bool {
	for _, h := range have {
		if strings.Contains(strings.ToLower(h), kw) {
			return true
		}
	}
	return false
}

func containsWord(lower, phrase string) bool {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(phrase) + `\b`).MatchString(lower)
}
