// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package platform

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/talent-scout/pkg/types"
)

// --- tiers ---

func TestCompareFollowsTrustOrder(t *testing.T) {
	for i := 0; i+1 < len(types.AllPlatforms); i++ {
		a, b := types.AllPlatforms[i], types.AllPlatforms[i+1]
		assert.Positive(t, Compare(a, b), "%s should outrank %s", a, b)
		assert.Negative(t, Compare(b, a), "%s should rank below %s", b, a)
	}
	assert.Zero(t, Compare(types.PlatformORCID, types.PlatformORCID))
	assert.Positive(t, Compare(types.PlatformLinkedIn, types.Platform("myspace")))
}

func TestCompareSortsPlatforms(t *testing.T) {
	ps := []types.Platform{types.PlatformTwitter, types.PlatformHomepage, types.PlatformORCID, types.PlatformGitHub, types.PlatformUniversity}
	sort.Slice(ps, func(i, j int) bool { return Compare(ps[i], ps[j]) > 0 })
	assert.Equal(t, []types.Platform{types.PlatformORCID, types.PlatformUniversity, types.PlatformHomepage, types.PlatformGitHub, types.PlatformTwitter}, ps)
}

func TestTierOf(t *testing.T) {
	assert.Equal(t, TierAuthoritative, TierOf(types.PlatformOpenReview))
	assert.Equal(t, TierInstitution, TierOf(types.PlatformUniversity))
	assert.Equal(t, TierHomepage, TierOf(types.PlatformHomepage))
	assert.Equal(t, TierCodeHost, TierOf(types.PlatformGitHub))
	assert.Equal(t, TierSocial, TierOf(types.PlatformLinkedIn))
	assert.Equal(t, TierUnknown, TierOf("myspace"))
	assert.True(t, TierSocial < TierCodeHost && TierCodeHost < TierHomepage && TierHomepage < TierInstitution && TierInstitution < TierAuthoritative)
	assert.Equal(t, "authoritative", TierAuthoritative.String())
}

// --- detection ---

func TestOf(t *testing.T) {
	tests := []struct {
		url  string
		want types.Platform
	}{
		{"https://orcid.org/0000-0002-1825-0097", types.PlatformORCID},
		{"https://openreview.net/profile?id=~Jane_Doe1", types.PlatformOpenReview},
		{"https://scholar.google.co.uk/citations?user=abc123", types.PlatformScholar},
		{"https://www.semanticscholar.org/author/Jane-Doe/12345", types.PlatformSemanticScholar},
		{"https://dblp.org/pid/123/4567", types.PlatformDBLP},
		{"https://janedoe.github.io", types.PlatformHomepage},
		{"https://github.com/janedoe", types.PlatformGitHub},
		{"https://huggingface.co/janedoe", types.PlatformHuggingFace},
		{"https://www.researchgate.net/profile/Jane-Doe", types.PlatformResearchGate},
		{"https://x.com/janedoe", types.PlatformTwitter},
		{"https://netflix.com/title", ""},
		{"https://uk.linkedin.com/in/janedoe", types.PlatformLinkedIn},
		{"https://cs.example.edu/~jdoe", types.PlatformUniversity},
		{"https://www.cl.cam.ac.uk/people/jd", types.PlatformUniversity},
		{"https://janedoe.com", ""},
		{"not a url", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Of(tt.url), tt.url)
	}
}

func TestProfileLike(t *testing.T) {
	assert.True(t, ProfileLike("https://openreview.net/profile?id=~Jane_Doe1"))
	assert.True(t, ProfileLike("https://cs.example.edu/news/2024"))
	assert.True(t, ProfileLike("https://lab.example.com/people/jane"))
	assert.True(t, ProfileLike("https://example.com/~jane"))
	assert.False(t, ProfileLike("https://iclr.cc/virtual/2024/papers.html"))
	assert.False(t, ProfileLike("https://arxiv.org/abs/2401.00001"))
}

func TestExtractIDs(t *testing.T) {
	tests := []struct {
		url  string
		want map[types.Platform]string
	}{
		{"https://orcid.org/0000-0002-1825-009X", map[types.Platform]string{types.PlatformORCID: "0000-0002-1825-009X"}},
		{"https://openreview.net/profile?id=~Jane_Doe1", map[types.Platform]string{types.PlatformOpenReview: "~Jane_Doe1"}},
		{"https://scholar.google.com/citations?hl=en&user=AbC-12_x", map[types.Platform]string{types.PlatformScholar: "AbC-12_x"}},
		{"https://www.semanticscholar.org/author/Jane-Doe/2109876", map[types.Platform]string{types.PlatformSemanticScholar: "2109876"}},
		{"https://www.semanticscholar.org/author/2109876", map[types.Platform]string{types.PlatformSemanticScholar: "2109876"}},
		{"https://dblp.org/pid/123/4567.html", map[types.Platform]string{types.PlatformDBLP: "123/4567"}},
		{"https://twitter.com/jane_doe", map[types.Platform]string{types.PlatformTwitter: "jane_doe"}},
		{"https://x.com/search?q=jane", map[types.Platform]string{}},
		{"https://github.com/janedoe/repo", map[types.Platform]string{types.PlatformGitHub: "janedoe"}},
		{"https://github.com/topics/agents", map[types.Platform]string{}},
		{"https://janedoe.github.io/cv", map[types.Platform]string{types.PlatformGitHub: "janedoe"}},
		{"https://www.linkedin.com/in/jane-doe-123", map[types.Platform]string{types.PlatformLinkedIn: "jane-doe-123"}},
		{"https://huggingface.co/papers/2401.1", map[types.Platform]string{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractIDs(tt.url), tt.url)
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		p    types.Platform
		url  string
		want bool
	}{
		{types.PlatformORCID, "https://orcid.org/0000-0002-1825-0097", true},
		{types.PlatformORCID, "https://orcid.org/0000-0002-1825", false},
		{types.PlatformORCID, "https://orcid.org/search?q=doe", false},
		{types.PlatformOpenReview, "https://openreview.net/profile?id=~Jane_Doe1", true},
		{types.PlatformOpenReview, "https://openreview.net/forum?id=abc", false},
		{types.PlatformScholar, "https://scholar.google.com/citations?user=abc", true},
		{types.PlatformScholar, "https://scholar.google.com/scholar?q=doe", false},
		{types.PlatformSemanticScholar, "https://www.semanticscholar.org/author/Jane-Doe/2109876", true},
		{types.PlatformSemanticScholar, "https://www.semanticscholar.org/paper/abc", false},
		{types.PlatformGitHub, "https://github.com/janedoe/", true},
		{types.PlatformGitHub, "https://github.com/janedoe/repo", false},
		{types.PlatformGitHub, "https://github.com/topics", false},
		{types.PlatformTwitter, "https://x.com/janedoe", true},
		{types.PlatformTwitter, "https://twitter.com/home", false},
		{types.PlatformTwitter, "https://twitter.com/janedoe/status/1", false},
		{types.PlatformLinkedIn, "https://www.linkedin.com/in/jane-doe", true},
		{types.PlatformLinkedIn, "https://www.linkedin.com/pub/dir/Jane/Doe", false},
		{types.PlatformHomepage, "https://janedoe.github.io", true},
		{types.PlatformHomepage, "https://janedoe.com/", true},
		{types.PlatformHomepage, "https://arxiv.org/abs/2401.00001", false},
		{types.PlatformHomepage, "https://janedoe.com/cv.pdf", false},
		{types.PlatformHomepage, "https://github.com/janedoe", false},
		{types.PlatformUniversity, "https://cs.example.edu/~jdoe", true},
		{types.PlatformUniversity, "https://janedoe.com", false},
		{types.PlatformHomepage, "mailto:jane@example.com", false},
		{"myspace", "https://myspace.com/jane", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Valid(tt.p, tt.url), "%s %s", tt.p, tt.url)
	}
}

// --- quality ---

var weights = types.DefaultConfig().Profile.Quality

func TestQualityPrefersPersonalProfile(t *testing.T) {
	name := "Jane Doe"
	good := Quality(types.PlatformLinkedIn, "https://www.linkedin.com/in/jane-doe", name, weights)
	dir := Quality(types.PlatformLinkedIn, "https://www.linkedin.com/pub/dir/Jane/Doe", name, weights)
	other := Quality(types.PlatformLinkedIn, "https://www.linkedin.com/in/someone-else", name, weights)
	assert.Greater(t, good, dir)
	assert.Greater(t, good, other)

	home := Quality(types.PlatformUniversity, "https://cs.example.edu/~janedoe", name, weights)
	listing := Quality(types.PlatformUniversity, "https://cs.example.edu/news/tag/agents", name, weights)
	assert.Greater(t, home, listing)
}

func TestShouldReplace(t *testing.T) {
	name := "Jane Doe"
	assert.True(t, ShouldReplace(types.PlatformGitHub, "", "https://github.com/janedoe", name, weights))
	assert.False(t, ShouldReplace(types.PlatformGitHub, "https://github.com/janedoe", "", name, weights))
	assert.False(t, ShouldReplace(types.PlatformGitHub, "https://github.com/janedoe", "https://github.com/janedoe/", name, weights))
	assert.True(t, ShouldReplace(types.PlatformGitHub, "https://github.com/topics/agents", "https://github.com/janedoe", name, weights))
	assert.False(t, ShouldReplace(types.PlatformGitHub, "https://github.com/janedoe", "https://github.com/topics/agents", name, weights))

	// social platforms need a margin: a lateral move is refused
	assert.False(t, ShouldReplace(types.PlatformTwitter, "https://x.com/jdoe_ai", "https://x.com/jdoe_ml", name, weights))
}

func TestNameOverlap(t *testing.T) {
	assert.Equal(t, 1.0, NameOverlap("Jane Doe", "Welcome to the page of JANE DOE, PhD student"))
	assert.Equal(t, 0.5, NameOverlap("Jane Doe", "Jane Smith"))
	assert.Equal(t, 0.0, NameOverlap("Li Wei", "linear weighting"))
	assert.Equal(t, 0.0, NameOverlap("", "anything"))
	assert.Equal(t, []string{"jane", "o'neil"}, NameTokens("Jane Q. O'Neil"))
}
