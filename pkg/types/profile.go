// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Platform identifies where a profile URL lives.
type Platform string

const (
	PlatformORCID           Platform = "orcid"
	PlatformOpenReview      Platform = "openreview"
	PlatformScholar         Platform = "scholar"
	PlatformSemanticScholar Platform = "semanticscholar"
	PlatformDBLP            Platform = "dblp"
	PlatformUniversity      Platform = "university"
	PlatformHomepage        Platform = "homepage"
	PlatformGitHub          Platform = "github"
	PlatformHuggingFace     Platform = "huggingface"
	PlatformResearchGate    Platform = "researchgate"
	PlatformTwitter         Platform = "twitter"
	PlatformLinkedIn        Platform = "linkedin"
)

// AllPlatforms lists every platform in trust order, most trusted first.
var AllPlatforms = []Platform{
	PlatformORCID, PlatformOpenReview, PlatformScholar, PlatformSemanticScholar,
	PlatformDBLP, PlatformUniversity, PlatformHomepage, PlatformGitHub,
	PlatformHuggingFace, PlatformResearchGate, PlatformTwitter, PlatformLinkedIn,
}

// AuthorProfile is the resolved identity record for one frontier author.
// Platform slots are only replaced by a higher-quality URL for the same
// platform; emails and aliases are deduplicated and filtered.
type AuthorProfile struct {
	Name    string   `json:"name" yaml:"name"`
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`

	// Platforms maps platform to the best URL found so far.
	Platforms map[Platform]string `json:"platforms,omitempty" yaml:"platforms,omitempty"`

	// PlatformIDs holds canonical identifiers extracted from platform URLs
	// (ORCID iD, OpenReview profile id, Scholar user id, ...).
	PlatformIDs map[Platform]string `json:"platform_ids,omitempty" yaml:"platform_ids,omitempty"`

	Affiliation string `json:"affiliation,omitempty" yaml:"affiliation,omitempty"`

	// AffiliationSource is the platform the affiliation was read from; a
	// more trusted platform may overwrite it.
	AffiliationSource Platform `json:"affiliation_source,omitempty" yaml:"affiliation_source,omitempty"`

	Emails               []string `json:"emails,omitempty" yaml:"emails,omitempty"`
	Interests            []string `json:"interests,omitempty" yaml:"interests,omitempty"`
	SelectedPublications []string `json:"selected_publications,omitempty" yaml:"selected_publications,omitempty"`
	NotableAchievements  []string `json:"notable_achievements,omitempty" yaml:"notable_achievements,omitempty"`
	SocialImpact         string   `json:"social_impact,omitempty" yaml:"social_impact,omitempty"`
	CareerStage          string   `json:"career_stage,omitempty" yaml:"career_stage,omitempty"`

	// Confidence is the resolver's belief the record describes one person, in [0,1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// SeedPapers carries the frontier evidence forward.
	SeedPapers []string `json:"seed_papers,omitempty" yaml:"seed_papers,omitempty"`

	// Evidence lists the verified URLs that contributed to this record.
	Evidence []string `json:"evidence,omitempty" yaml:"evidence,omitempty"`

	// Excerpts are bounded text excerpts from verified pages, scanned by
	// the eligibility gate.
	Excerpts []string `json:"-" yaml:"-"`
}

// HasPlatform reports whether the profile holds a URL for p.
func (p AuthorProfile) HasPlatform(pl Platform) bool {
	return p.Platforms[pl] != ""
}
