// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synth

import (
	"fmt"
	"strings"

	"github.com/pdiddy/talent-scout/pkg/types"
)

// linkLabels are the report labels of each platform, in report order.
var linkLabels = []struct {
	platform types.Platform
	label    string
}{
	{types.PlatformHomepage, "Homepage"},
	{types.PlatformUniversity, "University"},
	{types.PlatformScholar, "Google Scholar"},
	{types.PlatformOpenReview, "OpenReview"},
	{types.PlatformSemanticScholar, "Semantic Scholar"},
	{types.PlatformORCID, "ORCID"},
	{types.PlatformDBLP, "DBLP"},
	{types.PlatformTwitter, "Twitter"},
	{types.PlatformGitHub, "GitHub"},
	{types.PlatformHuggingFace, "Hugging Face"},
	{types.PlatformResearchGate, "ResearchGate"},
	{types.PlatformLinkedIn, "LinkedIn"},
}

// Report renders cards and citations as Markdown.
func Report(spec types.QuerySpec, cards []types.CandidateCard, citations []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found candidates (after gate): %d (target %d)\n\n", len(cards), spec.TargetCount)
	for i, c := range cards {
		var links []string
		for _, l := range linkLabels {
			if u := c.Profiles[l.platform]; u != "" {
				links = append(links, fmt.Sprintf("[%s](%s)", l.label, u))
			}
		}
		linkLine := "none"
		if len(links) > 0 {
			linkLine = strings.Join(links, " · ")
		}
		fmt.Fprintf(&b, "### %d. %s\n- %s\n- Focus: %s\n- Links: %s\n",
			i+1, c.Name, c.CurrentRoleAndAffiliation, strings.Join(c.ResearchFocus, ", "), linkLine)
		if c.Notable != "" {
			fmt.Fprintf(&b, "- Notable: %s\n", c.Notable)
		}
		if c.EvidenceNotes != "" {
			fmt.Fprintf(&b, "- Evidence: %s\n", c.EvidenceNotes)
		}
		b.WriteString("\n")
	}
	if len(citations) > 0 {
		b.WriteString("\n#### Sources (partial)\n")
		for i, u := range citations {
			fmt.Fprintf(&b, "%d. %s\n", i+1, u)
		}
	}
	return strings.TrimSpace(b.String())
}
