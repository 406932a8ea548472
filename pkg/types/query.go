// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Caps applied to every QuerySpec list field.
const (
	MaxYears     = 5
	MaxListItems = 32
)

// AuthorPosition names a byline position used to pick frontier authors.
type AuthorPosition string

const (
	PositionFirst         AuthorPosition = "first"
	PositionLast          AuthorPosition = "last"
	PositionCorresponding AuthorPosition = "corresponding"
)

// QuerySpec is the structured form of a recruiting request. Build it with
// NormalizeQuerySpec; the pipeline treats it as read-only once parsed.
type QuerySpec struct {
	// TargetCount is how many candidates the caller wants (≥1).
	TargetCount int `json:"top_n" yaml:"top_n"`

	// Years is an ordered set of publication years (at most MaxYears).
	Years []int `json:"years" yaml:"years"`

	Venues   []string `json:"venues" yaml:"venues"`
	Keywords []string `json:"keywords" yaml:"keywords"`

	MustBeCurrentStudent bool     `json:"must_be_current_student" yaml:"must_be_current_student"`
	DegreeLevels         []string `json:"degree_levels" yaml:"degree_levels"`

	// AuthorPriority orders which byline positions seed the frontier.
	AuthorPriority []AuthorPosition `json:"author_priority" yaml:"author_priority"`

	ExtraConstraints []string `json:"extra_constraints" yaml:"extra_constraints"`

	// Fields are research-field tags inferred from the keywords.
	Fields []string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// RawQuerySpec is the loosely typed shape an interpreter produces. Years and
// the count may arrive as numbers or strings.
type RawQuerySpec struct {
	TopN                 any      `json:"top_n"`
	Years                []any    `json:"years"`
	Venues               []string `json:"venues"`
	Keywords             []string `json:"keywords"`
	MustBeCurrentStudent *bool    `json:"must_be_current_student"`
	DegreeLevels         []string `json:"degree_levels"`
	AuthorPriority       []string `json:"author_priority"`
	ExtraConstraints     []string `json:"extra_constraints"`
}

// DefaultQuerySpec is the conservative spec used when a request cannot be
// interpreted at all.
func DefaultQuerySpec() QuerySpec {
	return QuerySpec{
		TargetCount:          10,
		Years:                []int{2025, 2024, 2026},
		Venues:               []string{"ICLR", "ICML", "NeurIPS"},
		Keywords:             []string{"social simulation", "multi-agent"},
		MustBeCurrentStudent: true,
		DegreeLevels:         []string{"PhD", "MSc", "Master", "Graduate"},
		AuthorPriority:       []AuthorPosition{PositionFirst, PositionLast},
	}
}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// NormalizeQuerySpec converts a raw spec into a valid QuerySpec. Missing
// fields take the defaults, lists are deduplicated in first-seen order and
// capped, and year tokens that do not parse are dropped.
func NormalizeQuerySpec(raw RawQuerySpec) QuerySpec {
	def := DefaultQuerySpec()
	spec := QuerySpec{
		TargetCount:          parseCount(raw.TopN, def.TargetCount),
		Years:                parseYears(raw.Years),
		Venues:               DedupeStrings(raw.Venues, MaxListItems),
		Keywords:             DedupeStrings(trimQuotes(raw.Keywords), MaxListItems),
		MustBeCurrentStudent: def.MustBeCurrentStudent,
		DegreeLevels:         DedupeStrings(raw.DegreeLevels, MaxListItems),
		AuthorPriority:       parsePriority(raw.AuthorPriority),
		ExtraConstraints:     DedupeStrings(raw.ExtraConstraints, MaxListItems),
	}
	if raw.MustBeCurrentStudent != nil {
		spec.MustBeCurrentStudent = *raw.MustBeCurrentStudent
	}
	if len(spec.Years) == 0 {
		spec.Years = def.Years
	}
	if len(spec.DegreeLevels) == 0 {
		spec.DegreeLevels = def.DegreeLevels
	}
	if len(spec.AuthorPriority) == 0 {
		spec.AuthorPriority = def.AuthorPriority
	}
	return spec
}

// Validate reports programmer misuse: a spec built outside NormalizeQuerySpec
// that breaks the count or cap invariants.
func (q QuerySpec) Validate() error {
	if q.TargetCount < 1 {
		return fmt.Errorf("%w: target count %d < 1", ErrInvalidSpec, q.TargetCount)
	}
	if len(q.Years) > MaxYears {
		return fmt.Errorf("%w: %d years exceeds cap %d", ErrInvalidSpec, len(q.Years), MaxYears)
	}
	for name, l := range map[string][]string{
		"venues": q.Venues, "keywords": q.Keywords,
		"degree_levels": q.DegreeLevels, "extra_constraints": q.ExtraConstraints,
	} {
		if len(l) > MaxListItems {
			return fmt.Errorf("%w: %d %s exceeds cap %d", ErrInvalidSpec, len(l), name, MaxListItems)
		}
	}
	for _, p := range q.AuthorPriority {
		switch p {
		case PositionFirst, PositionLast, PositionCorresponding:
		default:
			return fmt.Errorf("%w: unknown author position %q", ErrInvalidSpec, p)
		}
	}
	return nil
}

// HasPriority reports whether p is among the query's author priorities.
func (q QuerySpec) HasPriority(p AuthorPosition) bool {
	for _, x := range q.AuthorPriority {
		if x == p {
			return true
		}
	}
	return false
}

// DedupeStrings trims, drops empties and removes case-insensitive duplicates,
// keeping the first spelling. limit ≤ 0 means no cap.
func DedupeStrings(in []string, limit int) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func trimQuotes(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.Trim(strings.TrimSpace(s), `"'`))
	}
	return out
}

func parseCount(v any, fallback int) int {
	var n int
	switch t := v.(type) {
	case float64:
		n = int(t)
	case int:
		n = t
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return fallback
		}
		n = int(i)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return fallback
		}
		n = i
	default:
		return fallback
	}
	if n < 1 {
		return fallback
	}
	return n
}

func parseYears(tokens []any) []int {
	seen := make(map[int]bool)
	var out []int
	for _, tok := range tokens {
		var y int
		switch t := tok.(type) {
		case float64:
			y = int(t)
		case int:
			y = t
		case string:
			m := yearPattern.FindString(t)
			if m == "" {
				continue
			}
			y, _ = strconv.Atoi(m)
		default:
			continue
		}
		if y < 1900 || y > 2099 || seen[y] {
			continue
		}
		seen[y] = true
		out = append(out, y)
		if len(out) >= MaxYears {
			break
		}
	}
	return out
}

func parsePriority(in []string) []AuthorPosition {
	seen := make(map[AuthorPosition]bool)
	var out []AuthorPosition
	for _, s := range in {
		p := AuthorPosition(strings.ToLower(strings.TrimSpace(s)))
		switch p {
		case PositionFirst, PositionLast, PositionCorresponding:
		default:
			continue
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
