// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package frontier

import (
	"sort"

	"go.uber.org/zap"

	"github.com/pdiddy/talent-scout/internal/platform"
	"github.com/pdiddy/talent-scout/pkg/types"
)

// maxScanChars bounds how much of one source is scanned for papers.
const maxScanChars = 16000

// Seeder grows the frontier.
type Seeder struct {
	cfg    types.FrontierConfig
	logger *zap.Logger
}

// NewSeeder returns a Seeder bounded by cfg.
func NewSeeder(cfg types.FrontierConfig, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{cfg: cfg, logger: logger}
}

// Seed parses paper listings among the fetched sources and proposes the
// byline authors the query's author priority asks for. Known authors gain
// seed papers; new authors are added while the frontier holds fewer than
// MaxAuthors. Visited authors are left alone.
func (s *Seeder) Seed(st *types.ResearchState) types.Diff {
	var papers []Paper
	scanned := 0
	for _, u := range sourceOrder(st) {
		text := st.Sources[u]
		if platform.ProfileLike(u) || len(text) < s.cfg.MinSourceLength {
			continue
		}
		scanned++
		papers = append(papers, ParsePapers(truncate(text, maxScanChars))...)
	}

	size := len(st.Frontier)
	added := map[string]int{}
	var entries []types.FrontierEntry
	for _, p := range papers {
		for _, name := range pick(p.Authors, st.Spec) {
			if cur, ok := st.Author(name); ok {
				if !cur.Visited {
					entries = append(entries, types.FrontierEntry{Name: name, SeedPapers: []string{p.Title}, Origin: cur.Origin})
				}
				continue
			}
			if i, ok := added[name]; ok {
				entries[i].SeedPapers = append(entries[i].SeedPapers, p.Title)
				continue
			}
			if s.cfg.MaxAuthors > 0 && size >= s.cfg.MaxAuthors {
				continue
			}
			added[name] = len(entries)
			entries = append(entries, types.FrontierEntry{Name: name, SeedPapers: []string{p.Title}, Origin: types.OriginPaper})
			size++
		}
	}

	s.logger.Info("seeded frontier",
		zap.Int("round", st.Round),
		zap.Int("sources", scanned),
		zap.Int("papers", len(papers)),
		zap.Int("new_authors", len(added)),
		zap.Int("frontier", size))
	return types.Diff{Frontier: entries}
}

// pick returns the authors at the prioritized byline positions. A corresponding
// author cannot be read off a byline, so it is taken to be the last author.
func pick(authors []string, spec types.QuerySpec) []string {
	if len(authors) == 0 {
		return nil
	}
	priority := spec.AuthorPriority
	if len(priority) == 0 {
		priority = []types.AuthorPosition{types.PositionFirst, types.PositionLast}
	}
	var out []string
	seen := map[string]bool{}
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	for _, p := range priority {
		switch p {
		case types.PositionFirst:
			add(authors[0])
		case types.PositionLast, types.PositionCorresponding:
			if len(authors) >= 2 {
				add(authors[len(authors)-1])
			}
		}
	}
	return out
}

// sourceOrder lists source URLs in selection order, then any others
// sorted, so seeding is deterministic.
func sourceOrder(st *types.ResearchState) []string {
	var out []string
	seen := map[string]bool{}
	for _, u := range st.Selected {
		if _, ok := st.Sources[u]; ok && !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	var rest []string
	for u := range st.Sources {
		if !seen[u] {
			rest = append(rest, u)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}
