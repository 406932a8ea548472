// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package platform classifies profile URLs: which platform a URL belongs
// to, how much that platform is trusted, which identifiers the URL
// carries, whether it has the shape of a real profile and how good a match
// it is for a named person.
package platform

import "github.com/pdiddy/talent-scout/pkg/types"

// Tier is a trust tier. Higher tiers win at every merge site.
type Tier int

const (
	TierUnknown Tier = iota
	TierSocial
	TierCodeHost
	TierHomepage
	TierInstitution
	TierAuthoritative
)

func (t Tier) String() string {
	switch t {
	case TierSocial:
		return "social"
	case TierCodeHost:
		return "code-host"
	case TierHomepage:
		return "homepage"
	case TierInstitution:
		return "institution"
	case TierAuthoritative:
		return "authoritative"
	default:
		return "unknown"
	}
}

var tiers = map[types.Platform]Tier{
	types.PlatformORCID:           TierAuthoritative,
	types.PlatformOpenReview:      TierAuthoritative,
	types.PlatformScholar:         TierAuthoritative,
	types.PlatformSemanticScholar: TierAuthoritative,
	types.PlatformDBLP:            TierAuthoritative,
	types.PlatformUniversity:      TierInstitution,
	types.PlatformHomepage:        TierHomepage,
	types.PlatformGitHub:          TierCodeHost,
	types.PlatformHuggingFace:     TierCodeHost,
	types.PlatformResearchGate:    TierSocial,
	types.PlatformTwitter:         TierSocial,
	types.PlatformLinkedIn:        TierSocial,
}

var ranks = func() map[types.Platform]int {
	m := make(map[types.Platform]int, len(types.AllPlatforms))
	for i, p := range types.AllPlatforms {
		m[p] = len(types.AllPlatforms) - i
	}
	return m
}()

// TierOf returns the trust tier of p.
func TierOf(p types.Platform) Tier { return tiers[p] }

// Authoritative reports whether p is an identifier-backed platform where a
// name-overlap check is enough to accept a page.
func Authoritative(p types.Platform) bool { return TierOf(p) == TierAuthoritative }

// Compare orders platforms by trust: it returns a positive number when a
// is more trusted than b, negative when less, and 0 when equal. Tiers
// decide first; within a tier the fixed platform rank breaks the tie.
func Compare(a, b types.Platform) int {
	if ta, tb := TierOf(a), TierOf(b); ta != tb {
		return int(ta) - int(tb)
	}
	return ranks[a] - ranks[b]
}
