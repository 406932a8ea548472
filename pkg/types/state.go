// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Plan is the search plan for the current round.
type Plan struct {
	// SearchTerms are the terms to run this round, deduplicated and capped.
	SearchTerms []string `json:"search_terms" yaml:"search_terms"`

	// Engines assigns one or two provider engines to each term.
	Engines map[string][]string `json:"engines" yaml:"engines"`

	// SelectionHint is passed to the advisory selector.
	SelectionHint string `json:"selection_hint,omitempty" yaml:"selection_hint,omitempty"`

	// Searched lists every term already executed in this run.
	Searched []string `json:"searched,omitempty" yaml:"searched,omitempty"`
}

// FrontierOrigin records how an author entered the frontier.
type FrontierOrigin string

const (
	OriginPaper    FrontierOrigin = "paper"
	OriginCoauthor FrontierOrigin = "coauthor"
)

// FrontierEntry is one author waiting for (or done with) profile resolution.
type FrontierEntry struct {
	Name       string         `json:"name" yaml:"name"`
	SeedPapers []string       `json:"seed_papers,omitempty" yaml:"seed_papers,omitempty"`
	Visited    bool           `json:"visited" yaml:"visited"`
	Origin     FrontierOrigin `json:"origin" yaml:"origin"`
}

// ResearchState is the mutable state of one run. The pipeline controller
// owns it exclusively; stages read it and return a Diff, and Apply is the
// only place the state changes.
type ResearchState struct {
	RunID string
	Round int
	Query string
	Spec  QuerySpec
	Plan  Plan

	// Results is the URL-deduplicated result pool in arrival order.
	Results []SearchHit

	// Selected is the ordered set of URLs chosen for fetching. URLs are
	// never removed once selected.
	Selected []string

	// Visited holds every URL a fetch was attempted for.
	Visited map[string]bool

	// Sources maps URL to the normalized text block; SourcesHTML keeps raw
	// markup for pages that had it.
	Sources     map[string]string
	SourcesHTML map[string]string

	// Frontier holds authors in discovery order.
	Frontier []FrontierEntry

	Profiles   map[string]AuthorProfile
	Candidates []Candidate

	Cards     []CandidateCard
	Citations []string
	NeedMore  bool
	Followups []string
	Report    string

	// ExpansionSkipped is set when the current round bypassed author expansion.
	ExpansionSkipped bool

	resultIdx   map[string]int
	selectedIdx map[string]bool
	frontierIdx map[string]int
	searched    map[string]bool
}

// NewResearchState creates the state for one run.
func NewResearchState(runID, query string) *ResearchState {
	return &ResearchState{
		RunID:       runID,
		Query:       query,
		Plan:        Plan{Engines: map[string][]string{}},
		Visited:     map[string]bool{},
		Sources:     map[string]string{},
		SourcesHTML: map[string]string{},
		Profiles:    map[string]AuthorProfile{},
		resultIdx:   map[string]int{},
		selectedIdx: map[string]bool{},
		frontierIdx: map[string]int{},
		searched:    map[string]bool{},
	}
}

// Hit returns the pooled result for url.
func (s *ResearchState) Hit(url string) (SearchHit, bool) {
	i, ok := s.resultIdx[url]
	if !ok {
		return SearchHit{}, false
	}
	return s.Results[i], true
}

// IsSelected reports whether url is in the selected set.
func (s *ResearchState) IsSelected(url string) bool { return s.selectedIdx[url] }

// Searched reports whether term already ran in this run.
func (s *ResearchState) Searched(term string) bool { return s.searched[term] }

// Author returns the frontier entry for name.
func (s *ResearchState) Author(name string) (FrontierEntry, bool) {
	i, ok := s.frontierIdx[name]
	if !ok {
		return FrontierEntry{}, false
	}
	return s.Frontier[i], true
}

// Diff is a partial update returned by a pipeline stage. Zero fields leave
// the state untouched; pools, sets and maps only grow.
type Diff struct {
	Spec *QuerySpec

	// Terms replaces the round's search terms and selection hint when non-nil.
	Terms         []string
	SelectionHint string

	Engines  map[string][]string
	Searched []string

	Hits     []SearchHit
	Selected []string
	Visited  []string

	Sources     map[string]string
	SourcesHTML map[string]string

	Frontier       []FrontierEntry
	VisitedAuthors []string

	// Profiles are upserted by name.
	Profiles []AuthorProfile

	// Gated replaces the candidate list when non-nil.
	Gated *[]Candidate

	Synthesis *Synthesis

	ExpansionSkipped bool
	AdvanceRound     bool
}

// Synthesis is the synthesizer's outcome for one round.
type Synthesis struct {
	Cards     []CandidateCard
	Citations []string
	NeedMore  bool
	Followups []string
	Report    string
}

// Apply merges d into the state.
func (s *ResearchState) Apply(d Diff) {
	if d.Spec != nil {
		s.Spec = *d.Spec
	}
	if d.Terms != nil {
		s.Plan.SearchTerms = d.Terms
		s.Plan.SelectionHint = d.SelectionHint
	}
	for term, engines := range d.Engines {
		s.Plan.Engines[term] = engines
	}
	for _, term := range d.Searched {
		if !s.searched[term] {
			s.searched[term] = true
			s.Plan.Searched = append(s.Plan.Searched, term)
		}
	}

	for _, h := range d.Hits {
		if h.URL == "" {
			continue
		}
		if i, ok := s.resultIdx[h.URL]; ok {
			mergeHit(&s.Results[i], h)
			continue
		}
		s.resultIdx[h.URL] = len(s.Results)
		s.Results = append(s.Results, h)
	}
	for _, u := range d.Selected {
		if u != "" && !s.selectedIdx[u] {
			s.selectedIdx[u] = true
			s.Selected = append(s.Selected, u)
		}
	}
	for _, u := range d.Visited {
		s.Visited[u] = true
	}
	for u, text := range d.Sources {
		if len(text) > len(s.Sources[u]) {
			s.Sources[u] = text
		}
	}
	for u, raw := range d.SourcesHTML {
		if _, ok := s.SourcesHTML[u]; !ok {
			s.SourcesHTML[u] = raw
		}
	}

	for _, e := range d.Frontier {
		s.mergeFrontier(e)
	}
	for _, name := range d.VisitedAuthors {
		s.mergeFrontier(FrontierEntry{Name: name, Visited: true, Origin: OriginPaper})
	}
	for _, p := range d.Profiles {
		s.Profiles[p.Name] = p
	}

	if d.Gated != nil {
		s.Candidates = *d.Gated
	}
	if d.Synthesis != nil {
		s.Cards = d.Synthesis.Cards
		s.Citations = d.Synthesis.Citations
		s.NeedMore = d.Synthesis.NeedMore
		s.Followups = d.Synthesis.Followups
		s.Report = d.Synthesis.Report
	}
	if d.ExpansionSkipped {
		s.ExpansionSkipped = true
	}
	if d.AdvanceRound {
		s.Round++
		s.ExpansionSkipped = false
	}
}

func (s *ResearchState) mergeFrontier(e FrontierEntry) {
	if e.Name == "" {
		return
	}
	i, ok := s.frontierIdx[e.Name]
	if !ok {
		e.SeedPapers = DedupeStrings(e.SeedPapers, 0)
		s.frontierIdx[e.Name] = len(s.Frontier)
		s.Frontier = append(s.Frontier, e)
		return
	}
	cur := &s.Frontier[i]
	cur.SeedPapers = DedupeStrings(append(cur.SeedPapers, e.SeedPapers...), 0)
	cur.Visited = cur.Visited || e.Visited
}

// mergeHit fills empty fields of dst from src.
func mergeHit(dst *SearchHit, src SearchHit) {
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if dst.Snippet == "" {
		dst.Snippet = src.Snippet
	}
	if dst.Engine == "" {
		dst.Engine = src.Engine
	}
	if dst.Term == "" {
		dst.Term = src.Term
	}
}
