// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package frontier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/talent-scout/pkg/types"
)

const (
	listingURL = "https://iclr.cc/virtual/2024/papers.html"
	paperA     = "Generative Agents for Social Simulation"
	paperB     = "Emergent Norms in Multi-Agent Societies"
)

var filler = strings.Repeat("filler text without any separators ", 12)

func listing() string {
	return strings.Join([]string{
		"TITLE: ICLR 2024 Papers",
		"BODY:",
		filler,
		paperA,
		"Jane Doe, Bob Smith, Carol King",
		filler,
		paperB,
		"Dan Brown and Eve Stone",
		"SOURCE: " + listingURL,
	}, "\n")
}

func newState(spec types.QuerySpec, sources map[string]string) *types.ResearchState {
	st := types.NewResearchState("run", "query")
	st.Spec = spec
	st.Apply(types.Diff{Sources: sources})
	return st
}

func names(entries []types.FrontierEntry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

// --- ParsePapers ---

func TestParsePapers(t *testing.T) {
	got := ParsePapers(listing())
	require.Len(t, got, 2)
	assert.Equal(t, Paper{Title: paperA, Authors: []string{"Jane Doe", "Bob Smith", "Carol King"}}, got[0])
	assert.Equal(t, Paper{Title: paperB, Authors: []string{"Dan Brown", "Eve Stone"}}, got[1])
}

func TestParsePapersSkipsLinksAndNoise(t *testing.T) {
	text := strings.Join([]string{
		"https://arxiv.org/abs/2401.00001",
		"Jane Doe, Bob Smith",
		"Short",
		"Ann Lee, Tom Ford",
		"A Study of Agents",
		"Jane Doe1*, Bob Smith2",
	}, "\n")
	got := ParsePapers(text)
	require.Len(t, got, 1)
	assert.Equal(t, "A Study of Agents", got[0].Title)
	assert.Equal(t, []string{"Jane Doe", "Bob Smith"}, got[0].Authors)
}

// --- Seed ---

func TestSeedPicksPrioritizedPositions(t *testing.T) {
	tests := []struct {
		name     string
		priority []types.AuthorPosition
		want     []string
	}{
		{"first and last", []types.AuthorPosition{types.PositionFirst, types.PositionLast}, []string{"Jane Doe", "Carol King", "Dan Brown", "Eve Stone"}},
		{"first only", []types.AuthorPosition{types.PositionFirst}, []string{"Jane Doe", "Dan Brown"}},
		{"corresponding is last", []types.AuthorPosition{types.PositionCorresponding}, []string{"Carol King", "Eve Stone"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newState(types.QuerySpec{AuthorPriority: tt.priority}, map[string]string{listingURL: listing()})
			d := NewSeeder(types.DefaultConfig().Frontier, zaptest.NewLogger(t)).Seed(st)
			assert.Equal(t, tt.want, names(d.Frontier))
			for _, e := range d.Frontier {
				assert.Equal(t, types.OriginPaper, e.Origin)
				assert.Len(t, e.SeedPapers, 1)
			}
		})
	}
}

func TestSeedRespectsCap(t *testing.T) {
	cfg := types.DefaultConfig().Frontier
	cfg.MaxAuthors = 2
	st := newState(types.DefaultQuerySpec(), map[string]string{listingURL: listing()})

	d := NewSeeder(cfg, zaptest.NewLogger(t)).Seed(st)
	assert.Equal(t, []string{"Jane Doe", "Carol King"}, names(d.Frontier))
}

func TestSeedMergesKnownAndSkipsVisited(t *testing.T) {
	st := newState(types.DefaultQuerySpec(), map[string]string{listingURL: listing()})
	st.Apply(types.Diff{
		Frontier:       []types.FrontierEntry{{Name: "Jane Doe", SeedPapers: []string{"Older Paper"}, Origin: types.OriginPaper}},
		VisitedAuthors: []string{"Carol King"},
	})

	d := NewSeeder(types.DefaultConfig().Frontier, zaptest.NewLogger(t)).Seed(st)
	assert.Equal(t, []string{"Jane Doe", "Dan Brown", "Eve Stone"}, names(d.Frontier))

	st.Apply(d)
	jane, ok := st.Author("Jane Doe")
	require.True(t, ok)
	assert.Equal(t, []string{"Older Paper", paperA}, jane.SeedPapers)
	carol, _ := st.Author("Carol King")
	assert.True(t, carol.Visited)
	assert.Empty(t, carol.SeedPapers)
}

func TestSeedSkipsProfilesAndShortSources(t *testing.T) {
	st := newState(types.DefaultQuerySpec(), map[string]string{
		"https://openreview.net/profile?id=~Jane_Doe1": listing(),
		"https://example.com/short":                    paperA + "\nJane Doe, Bob Smith",
	})
	d := NewSeeder(types.DefaultConfig().Frontier, zaptest.NewLogger(t)).Seed(st)
	assert.Empty(t, d.Frontier)
}

// --- Coauthors ---

const openReviewPage = `<html><body>
<h1>Jane Doe</h1>
<div class="coauthors">
<a href="/profile?id=~Bob_Smith1">Bob Smith</a>
<a href="https://openreview.net/profile?id=~Carol_King2"> Carol
 King </a>
<a href="/profile?id=~Bob_Smith1">Bob Smith</a>
<a href="/group?id=ICLR.cc">ICLR</a>
<a href="/profile?id=~X1">X</a>
</div></body></html>`

const semanticPage = `<script type="application/ld+json">{"@graph":[
{"name": "Dan Brown", "@type": "Person"},
{"name":"Eve Stone","@type":"Person"},
{"name":"Agents Paper","@type":"ScholarlyArticle"}]}</script>`

func TestCoauthors(t *testing.T) {
	tests := []struct {
		name string
		html string
		url  string
		want []string
	}{
		{"openreview anchors", openReviewPage, "https://openreview.net/profile?id=~Jane_Doe1", []string{"Bob Smith", "Carol King"}},
		{"semantic scholar persons", semanticPage, "https://www.semanticscholar.org/author/Jane-Doe/123", []string{"Dan Brown", "Eve Stone"}},
		{"other site", openReviewPage, "https://example.com/people/jane", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Coauthors(tt.html, tt.url))
		})
	}
}

func TestCoauthorsCapsPerPage(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString(`{"name":"Person ` + string(rune('A'+i%26)) + string(rune('a'+i/26)) + `","@type":"Person"}`)
	}
	assert.Len(t, Coauthors(sb.String(), "https://www.semanticscholar.org/author/1"), maxCoauthorsPerPage)
}

// --- Expand ---

func TestExpandAddsUnknownCoauthors(t *testing.T) {
	st := newState(types.DefaultQuerySpec(), nil)
	st.Apply(types.Diff{
		Frontier: []types.FrontierEntry{{Name: "Jane Doe", Origin: types.OriginPaper}, {Name: "Bob Smith", Origin: types.OriginPaper}},
		SourcesHTML: map[string]string{
			"https://openreview.net/profile?id=~Jane_Doe1":       openReviewPage,
			"https://www.semanticscholar.org/author/Jane-Doe/12": semanticPage,
		},
	})

	d := NewSeeder(types.DefaultConfig().Frontier, zaptest.NewLogger(t)).Expand(st)
	assert.Equal(t, []string{"Carol King", "Dan Brown", "Eve Stone"}, names(d.Frontier))
	for _, e := range d.Frontier {
		assert.Equal(t, types.OriginCoauthor, e.Origin)
	}
}

func TestExpandStopsAtCap(t *testing.T) {
	cfg := types.DefaultConfig().Frontier
	cfg.MaxWithCoauthors = 3
	st := newState(types.DefaultQuerySpec(), nil)
	st.Apply(types.Diff{
		Frontier:    []types.FrontierEntry{{Name: "Jane Doe"}, {Name: "Bob Smith"}},
		SourcesHTML: map[string]string{"https://openreview.net/profile?id=~Jane_Doe1": openReviewPage, "https://www.semanticscholar.org/author/9": semanticPage},
	})

	d := NewSeeder(cfg, zaptest.NewLogger(t)).Expand(st)
	assert.Equal(t, []string{"Carol King"}, names(d.Frontier))
}
