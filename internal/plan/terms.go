// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package plan expands a QuerySpec into search terms, assigns provider
// engines to each term and builds per-author profile queries.
package plan

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/talent-scout/pkg/types"
)

// AcceptHints are appended to venue terms to surface accepted-paper lists
// and programs.
var AcceptHints = []string{
	"accepted papers", "accept", "acceptance", "program", "proceedings",
	"schedule", "paper list", "main conference", "research track",
}

// SiteRestrictions are the academic platforms searched with an OR over all
// keywords.
var SiteRestrictions = []string{"openreview.net", "semanticscholar.org", "dblp.org", "arxiv.org"}

// SelectionHint steers the advisory selector toward paper lists first and
// author profiles second.
const SelectionHint = "Prefer accepted/program/proceedings/schedule pages; then author profile pages (OpenReview, Semantic Scholar, homepage, LinkedIn, Twitter)."

// BuildTerms expands spec into {venue alias}×{year}×{keyword} terms, each
// with and without every hint, plus site-restricted keyword queries. With
// no keywords the hints stand alone. The result is deduplicated in
// first-seen order and holds at most limit terms (limit ≤ 0: no cap).
func BuildTerms(spec types.QuerySpec, aliases func(string) []string, hints []string, limit int) []string {
	var alias []string
	for _, v := range spec.Venues {
		for _, a := range aliases(v) {
			if a != "" {
				alias = append(alias, a)
			}
		}
	}
	keywords := make([]string, 0, len(spec.Keywords))
	for _, k := range spec.Keywords {
		if k = strings.Trim(strings.TrimSpace(k), `"`); k != "" {
			keywords = append(keywords, k)
		}
	}

	var base []string
	for _, a := range alias {
		for _, y := range spec.Years {
			if len(keywords) == 0 {
				for _, h := range hints {
					base = append(base, fmt.Sprintf("%s %d %s", a, y, h))
				}
				continue
			}
			for _, kw := range keywords {
				base = append(base, fmt.Sprintf(`%s %d "%s"`, a, y, kw))
				for _, h := range hints {
					base = append(base, fmt.Sprintf(`%s %d "%s" %s`, a, y, kw, h))
				}
			}
		}
	}
	if len(keywords) > 0 {
		quoted := make([]string, len(keywords))
		for i, kw := range keywords {
			quoted[i] = `"` + kw + `"`
		}
		combo := strings.Join(quoted, " OR ")
		for _, site := range SiteRestrictions {
			base = append(base, "site:"+site+" "+combo)
		}
	}
	return dedupe(base, limit)
}

// Planner produces the search terms for each round.
type Planner struct {
	aliases  func(string) []string
	maxTerms int
	logger   *zap.Logger
}

// NewPlanner returns a Planner that resolves venue aliases with aliases
// and runs at most maxTerms terms per round.
func NewPlanner(aliases func(string) []string, maxTerms int, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{aliases: aliases, maxTerms: maxTerms, logger: logger}
}

// Plan returns the round's terms: the synthesizer's followups first, then
// the query expansion, skipping every term already searched in the run.
func (p *Planner) Plan(s *types.ResearchState) types.Diff {
	all := append(append([]string{}, s.Followups...), BuildTerms(s.Spec, p.aliases, AcceptHints, 0)...)
	terms := []string{}
	for _, t := range dedupe(all, 0) {
		if s.Searched(t) {
			continue
		}
		terms = append(terms, t)
		if p.maxTerms > 0 && len(terms) >= p.maxTerms {
			break
		}
	}
	p.logger.Info("planned search terms",
		zap.Int("round", s.Round),
		zap.Int("terms", len(terms)),
		zap.Int("followups", len(s.Followups)),
		zap.Int("searched", len(s.Plan.Searched)))
	return types.Diff{Terms: terms, SelectionHint: SelectionHint}
}

// dedupe keeps the first occurrence of each exact term.
func dedupe(in []string, limit int) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
