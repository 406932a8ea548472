// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package plan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/talent-scout/internal/advisory"
	"github.com/pdiddy/talent-scout/pkg/types"
)

func identity(v string) []string { return []string{v} }

func neuripsAliases(v string) []string {
	if v == "NeurIPS" {
		return []string{"NeurIPS", "NIPS"}
	}
	return []string{v}
}

// --- BuildTerms ---

func TestBuildTerms(t *testing.T) {
	spec := types.QuerySpec{Venues: []string{"ICLR"}, Years: []int{2024}, Keywords: []string{`"agents"`}}
	got := BuildTerms(spec, identity, []string{"accepted papers"}, 0)
	want := []string{
		`ICLR 2024 "agents"`,
		`ICLR 2024 "agents" accepted papers`,
		`site:openreview.net "agents"`,
		`site:semanticscholar.org "agents"`,
		`site:dblp.org "agents"`,
		`site:arxiv.org "agents"`,
	}
	assert.Equal(t, want, got)
}

func TestBuildTermsNoKeywords(t *testing.T) {
	spec := types.QuerySpec{Venues: []string{"NeurIPS"}, Years: []int{2025}}
	got := BuildTerms(spec, neuripsAliases, []string{"program", "schedule"}, 0)
	assert.Equal(t, []string{"NeurIPS 2025 program", "NeurIPS 2025 schedule", "NIPS 2025 program", "NIPS 2025 schedule"}, got)
}

func TestBuildTermsCapAndDedupe(t *testing.T) {
	spec := types.QuerySpec{
		Venues:   []string{"ICLR", "ICLR", "ICML"},
		Years:    []int{2024, 2025},
		Keywords: []string{"a", "b"},
	}
	all := BuildTerms(spec, identity, AcceptHints, 0)
	seen := map[string]bool{}
	for _, term := range all {
		assert.False(t, seen[term], "duplicate term %q", term)
		seen[term] = true
	}
	// 2 venues × 2 years × 2 keywords × (1 + hints) + 4 site terms
	assert.Len(t, all, 2*2*2*(1+len(AcceptHints))+4)

	capped := BuildTerms(spec, identity, AcceptHints, 7)
	assert.Equal(t, all[:7], capped)
}

// --- Planner ---

func TestPlannerSkipsSearched(t *testing.T) {
	s := types.NewResearchState("run", "q")
	s.Spec = types.QuerySpec{Venues: []string{"ICLR"}, Years: []int{2024}, Keywords: []string{"agents"}}
	p := NewPlanner(identity, 3, zaptest.NewLogger(t))

	d := p.Plan(s)
	require.Len(t, d.Terms, 3)
	assert.Equal(t, SelectionHint, d.SelectionHint)
	s.Apply(d)
	s.Apply(types.Diff{Searched: d.Terms})

	s.Followups = []string{"agents benchmark ICLR 2024"}
	d2 := p.Plan(s)
	require.Len(t, d2.Terms, 3)
	assert.Equal(t, "agents benchmark ICLR 2024", d2.Terms[0])
	for _, term := range d2.Terms {
		assert.NotContains(t, d.Terms, term)
	}
}

func TestPlannerExhausted(t *testing.T) {
	s := types.NewResearchState("run", "q")
	s.Spec = types.QuerySpec{Venues: []string{"ICLR"}, Years: []int{2024}}
	p := NewPlanner(identity, 0, zaptest.NewLogger(t))
	s.Apply(types.Diff{Searched: p.Plan(s).Terms})

	d := p.Plan(s)
	assert.NotNil(t, d.Terms)
	assert.Empty(t, d.Terms)
}

// --- Router ---

func TestHeuristic(t *testing.T) {
	tests := []struct {
		term     string
		want     []string
		specific bool
	}{
		{`site:arxiv.org "agents"`, []string{"arxiv", "google"}, true},
		{"doi 10.1145/123", []string{"crossref", "google"}, true},
		{`site:semanticscholar.org "x"`, []string{"google"}, true},
		{`"Jane Doe" OpenReview`, []string{"google", "startpage"}, true},
		{`"Jane Doe" site:github.io`, []string{"github", "google"}, true},
		{"wikipedia social simulation", []string{"wikipedia", "wikidata"}, true},
		{"jane doe h-index", []string{"google scholar", "google"}, true},
		{`ICLR 2024 "agents"`, []string{"google"}, false},
	}
	for _, tt := range tests {
		got, specific := Heuristic(tt.term, "google")
		assert.Equal(t, tt.want, got, tt.term)
		assert.Equal(t, tt.specific, specific, tt.term)
	}
}

func testSearchConfig() types.SearchConfig {
	return types.DefaultConfig().Search
}

func TestRouteWithoutModel(t *testing.T) {
	r := NewRouter(nil, testSearchConfig(), zaptest.NewLogger(t))
	terms := []string{"ICLR 2024 agents", `site:arxiv.org "agents"`}
	routes := r.Route(context.Background(), terms)
	assert.Equal(t, []string{"google"}, routes[terms[0]])
	assert.Equal(t, []string{"arxiv", "google"}, routes[terms[1]])
}

func TestRouteAdvisoryOverride(t *testing.T) {
	model := advisory.ModelFunc(func(context.Context, string) (string, error) {
		return `{"routes": [
			{"q": "ICLR 2024 agents", "engines": ["brave", "google scholar", "google"]},
			{"q": "agent benchmarks", "engines": ["altavista"]},
			{"q": "site:arxiv.org \"agents\"", "engines": ["brave"]},
			{"q": "not a term", "engines": ["google"]}
		]}`, nil
	})
	client := advisory.New(model, types.AIConfig{}, zaptest.NewLogger(t))
	r := NewRouter(client, testSearchConfig(), zaptest.NewLogger(t))

	terms := []string{"ICLR 2024 agents", "agent benchmarks", `site:arxiv.org "agents"`}
	routes := r.Route(context.Background(), terms)

	assert.Equal(t, []string{"brave", "google scholar"}, routes["ICLR 2024 agents"])
	// disallowed engine: rule fallback
	assert.Equal(t, []string{"google"}, routes["agent benchmarks"])
	// rules win for specific terms
	assert.Equal(t, []string{"arxiv", "google"}, routes[`site:arxiv.org "agents"`])
	assert.NotContains(t, routes, "not a term")
	for _, term := range terms {
		assert.NotEmpty(t, routes[term])
		assert.LessOrEqual(t, len(routes[term]), 2)
	}
}

func TestRouteRestrictedEngines(t *testing.T) {
	cfg := testSearchConfig()
	cfg.AllowedEngines = []string{"brave"}
	cfg.DefaultEngine = "brave"
	r := NewRouter(nil, cfg, zaptest.NewLogger(t))
	routes := r.Route(context.Background(), []string{`"x" site:github.io`})
	assert.Equal(t, []string{"brave"}, routes[`"x" site:github.io`])
}

// --- AuthorQueries ---

func TestAuthorQueries(t *testing.T) {
	qs := AuthorQueries("Ada Lovelace", nil, 0)
	assert.Contains(t, qs, `"Ada Lovelace" OpenReview`)
	assert.Contains(t, qs, `"Ada Lovelace" site:github.io`)
	assert.Len(t, qs, 9)

	withPaper := AuthorQueries("Ada Lovelace", []string{"Notes on the Engine"}, 10)
	assert.Len(t, withPaper, 10)
	assert.Equal(t, `"Ada Lovelace" "Notes on the Engine" site:.edu`, withPaper[0])
}

func TestMissing(t *testing.T) {
	have := map[types.Platform]string{
		types.PlatformUniversity: "https://cs.example.edu/~ada",
		types.PlatformGitHub:     "https://github.com/ada",
	}
	assert.Equal(t, []string{"ORCID", "OpenReview", "Semantic Scholar", "Google Scholar", "Twitter", "LinkedIn"}, Missing(have))
}

func TestOptimize(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	model := advisory.ModelFunc(func(context.Context, string) (string, error) {
		return `{"queries": ["\"Ada\" cv", "", "` + string(long) + `", "\"Ada\" cv", "\"Ada\" advisor"]}`, nil
	})
	o := NewQueryOptimizer(advisory.New(model, types.AIConfig{}, zaptest.NewLogger(t)))
	got := o.Optimize(context.Background(), "Ada", nil, nil)
	assert.Equal(t, []string{`"Ada" cv`, `"Ada" advisor`}, got)
}

func TestOptimizeFallback(t *testing.T) {
	got := NewQueryOptimizer(nil).Optimize(context.Background(), "Ada", []string{"Paper"}, nil)
	assert.Len(t, got, 6)
	assert.Equal(t, `"Ada" site:.edu`, got[0])
}
