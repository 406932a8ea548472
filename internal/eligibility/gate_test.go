// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/talent-scout/pkg/types"
)

func state(strict bool, profiles ...types.AuthorProfile) *types.ResearchState {
	st := types.NewResearchState("run", "q")
	spec := types.DefaultQuerySpec()
	spec.MustBeCurrentStudent = strict
	d := types.Diff{Spec: &spec, Profiles: profiles}
	for _, p := range profiles {
		d.Frontier = append(d.Frontier, types.FrontierEntry{Name: p.Name, Origin: types.OriginPaper})
	}
	st.Apply(d)
	return st
}

func gate(t *testing.T) *Gate {
	return NewGate(types.DefaultConfig().Eligibility, zaptest.NewLogger(t))
}

func gated(t *testing.T, st *types.ResearchState) []types.Candidate {
	t.Helper()
	d := gate(t).Run(st)
	require.NotNil(t, d.Gated)
	return *d.Gated
}

func TestGateSignals(t *testing.T) {
	student := types.AuthorProfile{
		Name: "Jane Doe",
		Platforms: map[types.Platform]string{
			types.PlatformUniversity: "https://www.cs.toronto.edu/~jdoe",
			types.PlatformOpenReview: "https://openreview.net/profile?id=~Jane_Doe1",
		},
		Excerpts: []string{"Jane Doe is a PhD student at the University of Toronto working on multi-agent social simulation."},
	}
	emailOnly := types.AuthorProfile{
		Name:   "Bob Smith",
		Emails: []string{"bob@gmail.com", "bsmith@mit.edu"},
	}
	nothing := types.AuthorProfile{
		Name:      "Carol King",
		Platforms: map[types.Platform]string{types.PlatformGitHub: "https://github.com/cking"},
		Excerpts:  []string{"Carol builds tools."},
	}

	got := gated(t, state(true, nothing, emailOnly, student))
	require.Len(t, got, 2)

	assert.Equal(t, "Jane Doe", got[0].Profile.Name)
	assert.InDelta(t, 0.85, got[0].Confidence, 1e-9)
	assert.Equal(t, "PhD/MSc Student, University of Toronto", got[0].Role)
	assert.Equal(t, "Profile text contains student keywords", got[0].EvidenceNote)
	assert.Equal(t, []string{"social simulation", "multi-agent"}, got[0].ResearchFocus)
	assert.ElementsMatch(t, []string{SignalStudentText, SignalEduHomepage, SignalAcademicProfile}, got[0].Signals)
	assert.False(t, got[0].Fallback)

	assert.Equal(t, "Bob Smith", got[1].Profile.Name)
	assert.InDelta(t, 0.55, got[1].Confidence, 1e-9)
	assert.Equal(t, []string{SignalEduEmail}, got[1].Signals)
	assert.Equal(t, "Student-like via homepage/email/affiliation signals", got[1].EvidenceNote)
}

func TestGateNonStrictKeepsEveryone(t *testing.T) {
	p := types.AuthorProfile{Name: "Carol King", CareerStage: "postdoc", Affiliation: "Acme Research"}
	got := gated(t, state(false, p))
	require.Len(t, got, 1)
	assert.Equal(t, "Postdoctoral Researcher, Acme Research", got[0].Role)
	assert.Empty(t, got[0].Signals)
}

func TestGateAffiliationSignal(t *testing.T) {
	p := types.AuthorProfile{Name: "Dan Brown", Affiliation: "Vector Institute"}
	got := gated(t, state(true, p))
	require.Len(t, got, 1)
	assert.Equal(t, []string{SignalInstitution}, got[0].Signals)
	assert.Equal(t, "PhD/MSc Student, Vector Institute", got[0].Role)
}

func TestGateFallback(t *testing.T) {
	var profiles []types.AuthorProfile
	for i, name := range []string{"A One", "B Two", "C Three", "D Four", "E Five", "F Six", "G Seven", "H Eight", "I Nine", "J Ten"} {
		p := types.AuthorProfile{Name: name, Platforms: map[types.Platform]string{}}
		if i == 3 {
			p.Platforms[types.PlatformGitHub] = "https://github.com/dfour"
			p.Platforms[types.PlatformTwitter] = "https://x.com/dfour"
		}
		if i == 7 {
			p.Platforms[types.PlatformScholar] = "https://scholar.google.com/citations?user=h8"
		}
		profiles = append(profiles, p)
	}
	got := gated(t, state(true, profiles...))

	require.Len(t, got, 8)
	assert.Equal(t, "D Four", got[0].Profile.Name)
	assert.InDelta(t, 0.55, got[0].Confidence, 1e-9)
	assert.Equal(t, "H Eight", got[1].Profile.Name)
	assert.InDelta(t, 0.5, got[1].Confidence, 1e-9)
	for _, c := range got {
		assert.True(t, c.Fallback)
		assert.Equal(t, "Student (assumed), Affiliation TBD", c.Role)
		assert.Equal(t, "Fallback kept: strong academic-profile signals", c.EvidenceNote)
	}
}

func TestGateEmpty(t *testing.T) {
	got := gated(t, state(true))
	assert.Empty(t, got)
}

func TestGateReadsHomepageSource(t *testing.T) {
	home := "https://janedoe.github.io"
	p := types.AuthorProfile{Name: "Jane Doe", Platforms: map[types.Platform]string{types.PlatformHomepage: home}}
	st := state(true, p)
	st.Apply(types.Diff{Sources: map[string]string{home: "I am a doctoral researcher. Email: jane@ox.ac.uk"}})

	got := gated(t, st)
	require.Len(t, got, 1)
	assert.ElementsMatch(t, []string{SignalStudentText, SignalEduEmail}, got[0].Signals)
}
