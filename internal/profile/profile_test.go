// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package profile

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/talent-scout/internal/fetch"
	"github.com/pdiddy/talent-scout/internal/identity"
	"github.com/pdiddy/talent-scout/internal/search"
	"github.com/pdiddy/talent-scout/pkg/types"
)

const (
	author    = "Jane Doe"
	seedPaper = "Generative Agents for Social Simulation"
	orcidURL  = "https://orcid.org/0000-0002-1825-0097"
	homeURL   = "https://janedoe.github.io"
	dirURL    = "https://www.linkedin.com/pub/dir/Jane/Doe"
	inURL     = "https://www.linkedin.com/in/jane-doe-123"
)

// --- fakes ---

type fakeSearcher struct {
	hits  []types.SearchHit
	mu    sync.Mutex
	terms []string
}

func (f *fakeSearcher) RunPages(_ context.Context, terms []string, _ map[string][]string, _, _ int) types.Diff {
	f.mu.Lock()
	f.terms = append(f.terms, terms...)
	f.mu.Unlock()
	return types.Diff{Hits: f.hits, Searched: terms}
}

type fakeFetcher struct {
	docs    map[string]fetch.Document
	mu      sync.Mutex
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, u, snippet string) fetch.Document {
	f.mu.Lock()
	f.fetched = append(f.fetched, u)
	f.mu.Unlock()
	if d, ok := f.docs[u]; ok {
		return d
	}
	return fetch.Document{URL: u, Snippet: snippet, Err: errors.New("not found")}
}

func (f *fakeFetcher) Preview(_ context.Context, u string, n int) (string, error) {
	d, ok := f.docs[u]
	if !ok {
		return "", errors.New("not found")
	}
	return clip(d.Text, n), nil
}

type fakeMetrics struct {
	byID   map[string]search.AuthorMetrics
	byName map[string]search.AuthorMetrics
}

func (f fakeMetrics) Author(_ context.Context, id string) (search.AuthorMetrics, error) {
	if m, ok := f.byID[id]; ok {
		return m, nil
	}
	return search.AuthorMetrics{}, errors.New("unknown author")
}

func (f fakeMetrics) FindAuthor(_ context.Context, name string) (search.AuthorMetrics, error) {
	if m, ok := f.byName[name]; ok {
		return m, nil
	}
	return search.AuthorMetrics{}, errors.New("no match")
}

func page(u, text, rawHTML string) fetch.Document {
	return fetch.Document{URL: u, Body: text, Text: text, HTML: rawHTML, OK: true}
}

func newResolver(t *testing.T, s Searcher, f Fetcher, m Metrics) *Resolver {
	t.Helper()
	cfg := types.DefaultConfig()
	v := identity.NewVerifier(nil, cfg.Identity, zaptest.NewLogger(t))
	r, err := NewResolver(Deps{Searcher: s, Fetcher: f, Verifier: v, Metrics: m}, cfg.Profile, zaptest.NewLogger(t))
	require.NoError(t, err)
	return r
}

func stateWith(names ...string) *types.ResearchState {
	st := types.NewResearchState("run", "q")
	var entries []types.FrontierEntry
	for _, n := range names {
		entries = append(entries, types.FrontierEntry{Name: n, SeedPapers: []string{seedPaper}, Origin: types.OriginPaper})
	}
	st.Apply(types.Diff{Frontier: entries})
	return st
}

// --- rules ---

func TestKind(t *testing.T) {
	tests := []struct {
		url  string
		want types.Platform
	}{
		{orcidURL, types.PlatformORCID},
		{homeURL, types.PlatformHomepage},
		{"https://www.cs.toronto.edu/~jdoe/", types.PlatformUniversity},
		{"https://janedoe.com", types.PlatformHomepage},
		{"https://lab.example.org/people/jane", types.PlatformHomepage},
		{"https://news.example.co.uk/story", ""},
		{"https://www.youtube.com/watch?v=1", ""},
		{"https://arxiv.org/abs/2401.00001", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.url))
		})
	}
}

func TestCandidateScore(t *testing.T) {
	orcid := types.SearchHit{URL: orcidURL, Title: "Jane Doe (0000-0002-1825-0097) - ORCID"}
	assert.InDelta(t, 1.22, CandidateScore(orcid, types.PlatformORCID, author, seedPaper), 1e-9)

	blog := types.SearchHit{URL: "https://janedoe.com/blog/post", Title: "A post"}
	assert.InDelta(t, 0.3, CandidateScore(blog, types.PlatformHomepage, author, seedPaper), 1e-9)

	withPaper := types.SearchHit{URL: homeURL, Title: "Jane Doe", Snippet: "Generative Agents for Social Simulation (ICLR 2024)"}
	assert.InDelta(t, 1.0, CandidateScore(withPaper, types.PlatformHomepage, author, seedPaper), 1e-9)
}

const homeHTML = `<html><head><title>Jane Doe - Home</title></head><body>
<h1>Jane Doe</h1>
<nav><a href="/pubs">Publications</a> <a href="/research">Research</a> <a href="/cv.pdf">CV</a></nav>
<p>I am a PhD student at the University of Toronto working on multi-agent social simulation.</p>
<p>Contact: <a href="mailto:jane.doe@cs.toronto.edu">jane.doe@cs.toronto.edu</a></p>
<a href="https://github.com/janedoe">GitHub</a>
<a href="https://twitter.com/janedoe">Twitter</a>
<a href="https://www.linkedin.com/in/jane-doe-123/">LinkedIn</a>
<a href="https://github.com/trending">Trending</a>
</body></html>`

func TestHomepageScore(t *testing.T) {
	assert.GreaterOrEqual(t, HomepageScore(homeURL, homeHTML, author), minHomepageScore)
	assert.Less(t, HomepageScore("https://arxiv.org/abs/2401.00001", homeHTML, author), 0.0)
	assert.Less(t, HomepageScore("https://example.com/slides.pdf", "", author), 0.0)
	assert.Less(t, HomepageScore("https://example.com/", "<html><title>Shop</title></html>", author), minHomepageScore)
}

func TestPageLinks(t *testing.T) {
	got := PageLinks(homeHTML, homeURL)
	assert.Equal(t, []Link{
		{types.PlatformGitHub, "https://github.com/janedoe"},
		{types.PlatformTwitter, "https://twitter.com/janedoe"},
		{types.PlatformLinkedIn, inURL},
	}, got)
}

func TestOpenReviewLinks(t *testing.T) {
	raw := `<html><body>
<a href="https://scholar.google.com/citations?user=abc123">Google Scholar</a>
<a href="https://linux.com/janedoe">Linux</a>
<a href="https://x.com/janedoe">X</a>
<a href="https://www.linkedin.com/company/acme">Company</a>
<a href="https://janedoe.com">Homepage</a>
<a href="https://openreview.net/group?id=ICLR.cc">Home venue</a>
</body></html>`
	got := OpenReviewLinks(raw)
	assert.Equal(t, []Link{
		{types.PlatformScholar, "https://scholar.google.com/citations?user=abc123"},
		{types.PlatformTwitter, "https://x.com/janedoe"},
		{types.PlatformHomepage, "https://janedoe.com"},
	}, got)
}

func TestSemanticScholarLD(t *testing.T) {
	raw := `<html><head><script type="application/ld+json">
{"@type": "Person", "name": "Jane Doe",
 "affiliations": ["University of Toronto"],
 "worksFor": {"@type": "Organization", "name": "Vector Institute"},
 "sameAs": ["https://github.com/janedoe", "https://example.com/jane", "https://twitter.com/janedoe"]}
</script></head><body></body></html>`
	affs, links := SemanticScholarLD(raw)
	assert.Equal(t, []string{"University of Toronto", "Vector Institute"}, affs)
	assert.Equal(t, []Link{
		{types.PlatformGitHub, "https://github.com/janedoe"},
		{types.PlatformTwitter, "https://twitter.com/janedoe"},
	}, links)
}

func TestBelongsTo(t *testing.T) {
	tests := []struct {
		link Link
		want bool
	}{
		{Link{types.PlatformGitHub, "https://github.com/janedoe"}, true},
		{Link{types.PlatformGitHub, "https://github.com/octocat"}, false},
		{Link{types.PlatformTwitter, "https://x.com/jdoe_ai"}, true},
		{Link{types.PlatformLinkedIn, "https://www.linkedin.com/company/acme"}, false},
		{Link{types.PlatformScholar, "https://scholar.google.com/citations?user=abc123"}, true},
		{Link{types.PlatformORCID, orcidURL}, true},
		{Link{types.PlatformORCID, "https://orcid.org/search"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.link.URL, func(t *testing.T) {
			assert.Equal(t, tt.want, BelongsTo(tt.link, author))
		})
	}
}

func TestEmails(t *testing.T) {
	raw := `<a href="mailto:jane.doe@cs.toronto.edu?subject=hi">mail</a>
<p>Department office: office@cs.toronto.edu, press: press@acme.com, team: jane@google.com, bob@mit.edu</p>`
	got := Emails(raw, "", author)
	assert.ElementsMatch(t, []string{"jane.doe@cs.toronto.edu", "bob@mit.edu"}, got)
}

func TestRelevantEmail(t *testing.T) {
	assert.True(t, RelevantEmail("jdoe@gmail.com", author))
	assert.True(t, RelevantEmail("j.smith@ox.ac.uk", author))
	assert.False(t, RelevantEmail("someone@gmail.com", author))
	assert.False(t, RelevantEmail("info@mit.edu", author))
	assert.False(t, RelevantEmail("jane****@mit.edu", author))
	assert.False(t, RelevantEmail("not-an-address", author))
}

func TestCareerStage(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"I am a PhD candidate advised by a former postdoc.", "phd_student"},
		{"MSc student in machine learning", "masters_student"},
		{"Postdoctoral fellow at MIT", "postdoc"},
		{"Associate Professor of Computer Science", "associate_prof"},
		{"Research Scientist at DeepMind", "industry"},
		{"Nothing to see here", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CareerStage(tt.text), tt.text)
	}
}

func TestAffiliationOf(t *testing.T) {
	assert.Equal(t, "University of Toronto", AffiliationOf("PhD student at the University of Toronto, working on agents."))
	assert.Equal(t, "Carnegie Mellon University", AffiliationOf("I study at Carnegie Mellon University."))
	assert.Empty(t, AffiliationOf("no institution mentioned"))
}

func TestCleanAliases(t *testing.T) {
	got := cleanAliases([]string{"Jane Doe", "J. Doe", "Jane A. Doe", "jane doe", "Some Entirely Different Person Name", "J. Doe"}, author, 3)
	assert.Equal(t, []string{"J. Doe", "Jane A. Doe"}, got)
}

// --- resolver ---

func TestNewResolverRequiresDependencies(t *testing.T) {
	_, err := NewResolver(Deps{}, types.DefaultConfig().Profile, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, ErrMissingDependency)
}

func TestResolveORCID(t *testing.T) {
	s := &fakeSearcher{hits: []types.SearchHit{
		{URL: orcidURL, Title: "Jane Doe (0000-0002-1825-0097) - ORCID", Snippet: "ORCID record for Jane Doe"},
	}}
	f := &fakeFetcher{docs: map[string]fetch.Document{
		orcidURL: page(orcidURL, "Jane Doe. ORCID record. Employment: University of Toronto, PhD student in computer science.", ""),
	}}
	r := newResolver(t, s, f, nil)
	st := stateWith(author)

	d := r.Resolve(context.Background(), st)
	require.Len(t, d.Profiles, 1)
	p := d.Profiles[0]
	assert.Equal(t, orcidURL, p.Platforms[types.PlatformORCID])
	assert.Equal(t, "0000-0002-1825-0097", p.PlatformIDs[types.PlatformORCID])
	assert.Equal(t, []string{orcidURL}, p.Evidence)
	assert.InDelta(t, 0.8, p.Confidence, 1e-9)
	assert.Equal(t, "phd_student", p.CareerStage)
	assert.Equal(t, []string{seedPaper}, p.SeedPapers)
	assert.Equal(t, []string{author}, d.VisitedAuthors)
	assert.Contains(t, d.Sources, orcidURL)
	assert.Contains(t, d.Visited, orcidURL)
	assert.NotEmpty(t, d.Searched)

	st.Apply(d)
	e, _ := st.Author(author)
	assert.True(t, e.Visited)
	assert.Equal(t, orcidURL, st.Profiles[author].Platforms[types.PlatformORCID])
}

func TestResolveTrustHierarchy(t *testing.T) {
	s := &fakeSearcher{hits: []types.SearchHit{
		{URL: dirURL, Title: "Jane Doe profiles | LinkedIn", Snippet: "25 professionals named Jane Doe"},
		{URL: homeURL + "/", Title: "Jane Doe - Homepage", Snippet: "PhD student"},
	}}
	homeText := "Jane Doe. I am a PhD student at the University of Toronto working on multi-agent social simulation. " +
		"Publications, Research, CV. Contact: jane.doe@cs.toronto.edu"
	f := &fakeFetcher{docs: map[string]fetch.Document{
		homeURL + "/": page(homeURL+"/", homeText, homeHTML),
		dirURL:        page(dirURL, "Jane Doe profiles. 25 professionals named Jane Doe on LinkedIn.", ""),
	}}
	r := newResolver(t, s, f, nil)

	d := r.Resolve(context.Background(), stateWith(author))
	require.Len(t, d.Profiles, 1)
	p := d.Profiles[0]

	assert.Equal(t, homeURL, p.Platforms[types.PlatformHomepage])
	assert.Equal(t, inURL, p.Platforms[types.PlatformLinkedIn], "directory listings never fill a slot")
	assert.Equal(t, "https://github.com/janedoe", p.Platforms[types.PlatformGitHub])
	assert.Equal(t, "https://twitter.com/janedoe", p.Platforms[types.PlatformTwitter])
	assert.Contains(t, p.Emails, "jane.doe@cs.toronto.edu")
	assert.Equal(t, "University of Toronto", p.Affiliation)
	assert.Equal(t, homeURL+"/", f.fetched[0], "personal pages are visited first")
}

func TestResolveMarksUnverifiedAuthorsVisited(t *testing.T) {
	s := &fakeSearcher{hits: []types.SearchHit{
		{URL: orcidURL, Title: "Jane Doe (0000-0002-1825-0097) - ORCID"},
	}}
	f := &fakeFetcher{docs: map[string]fetch.Document{
		orcidURL: page(orcidURL, "ORCID record of John Smith, professor of chemistry at some university.", ""),
	}}
	r := newResolver(t, s, f, nil)

	d := r.Resolve(context.Background(), stateWith(author))
	require.Len(t, d.Profiles, 1)
	assert.Empty(t, d.Profiles[0].Platforms)
	assert.Empty(t, d.Profiles[0].Evidence)
	assert.NotContains(t, d.Sources, orcidURL, "unverified pages are not sources")
	assert.Equal(t, []string{author}, d.VisitedAuthors)
}

func TestResolveBatchAndSkips(t *testing.T) {
	s := &fakeSearcher{}
	f := &fakeFetcher{}
	cfg := types.DefaultConfig()
	cfg.Profile.AuthorsPerRound = 2
	r, err := NewResolver(Deps{Searcher: s, Fetcher: f, Verifier: identity.NewVerifier(nil, cfg.Identity, nil)}, cfg.Profile, zaptest.NewLogger(t))
	require.NoError(t, err)

	st := stateWith("Ann Lee", "Bob Smith", "Carol King")
	st.Apply(types.Diff{VisitedAuthors: []string{"Ann Lee"}, Searched: []string{`"Bob Smith" ORCID`}})

	d := r.Resolve(context.Background(), st)
	assert.ElementsMatch(t, []string{"Bob Smith", "Carol King"}, d.VisitedAuthors)
	assert.NotContains(t, s.terms, `"Bob Smith" ORCID`)
	assert.Contains(t, s.terms, `"Carol King" ORCID`)
}

func TestResolveAddsMetrics(t *testing.T) {
	s2 := "https://www.semanticscholar.org/author/Jane-Doe/12345"
	s := &fakeSearcher{hits: []types.SearchHit{
		{URL: s2, Title: "Jane Doe | Semantic Scholar", Snippet: "Jane Doe"},
	}}
	f := &fakeFetcher{docs: map[string]fetch.Document{
		s2: page(s2, "Jane Doe. Semantic Scholar profile with 12 publications on multi-agent systems.", ""),
	}}
	m := fakeMetrics{byID: map[string]search.AuthorMetrics{
		"12345": {AuthorID: "12345", Name: author, Affiliations: []string{"University of Toronto"}, PaperCount: 12, CitationCount: 340, HIndex: 7},
	}}
	r := newResolver(t, s, f, m)

	d := r.Resolve(context.Background(), stateWith(author))
	require.Len(t, d.Profiles, 1)
	p := d.Profiles[0]
	assert.Equal(t, s2, p.Platforms[types.PlatformSemanticScholar])
	assert.Equal(t, m.byID["12345"].Summary(), p.SocialImpact)
	assert.Equal(t, "University of Toronto", p.Affiliation)
	assert.Equal(t, types.PlatformSemanticScholar, p.AffiliationSource)
}

func TestSetAffiliationPrefersTrustedSource(t *testing.T) {
	p := types.AuthorProfile{Name: author}
	v := &visit{prof: &p}

	v.setAffiliation("Acme Corp", types.PlatformLinkedIn)
	v.setAffiliation("University of Toronto", types.PlatformOpenReview)
	v.setAffiliation("Somewhere Else", types.PlatformGitHub)
	assert.Equal(t, "University of Toronto", p.Affiliation)
	assert.Equal(t, types.PlatformOpenReview, p.AffiliationSource)
}

func TestBaseProfileIsPrivateCopy(t *testing.T) {
	st := stateWith(author)
	st.Apply(types.Diff{Profiles: []types.AuthorProfile{{
		Name:      author,
		Platforms: map[types.Platform]string{types.PlatformORCID: orcidURL},
		Emails:    []string{"jane@mit.edu"},
	}}})
	e, _ := st.Author(author)

	c := baseProfile(st, e)
	c.Platforms[types.PlatformGitHub] = "https://github.com/janedoe"
	c.Emails[0] = "changed"
	assert.NotContains(t, st.Profiles[author].Platforms, types.PlatformGitHub)
	assert.Equal(t, "jane@mit.edu", st.Profiles[author].Emails[0])
	assert.True(t, strings.EqualFold(c.SeedPapers[0], seedPaper))
}
