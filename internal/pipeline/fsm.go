// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"github.com/pdiddy/talent-scout/internal/platform"
	"github.com/pdiddy/talent-scout/pkg/types"
)

// State is a step of the controller's state machine.
type State int

const (
	Interpret State = iota
	Plan
	RouteEngines
	Search
	Select
	Fetch
	Seed
	ResolveAuthors
	VerifyIdentity
	Gate
	Synthesize
	Done
)

var stateNames = [...]string{
	Interpret:      "interpret",
	Plan:           "plan",
	RouteEngines:   "route_engines",
	Search:         "search",
	Select:         "select",
	Fetch:          "fetch",
	Seed:           "seed",
	ResolveAuthors: "resolve_authors",
	VerifyIdentity: "verify_identity",
	Gate:           "gate",
	Synthesize:     "synthesize",
	Done:           "done",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Limits are the bounds Next consults.
type Limits struct {
	// MaxRounds caps plan-to-synthesize rounds.
	MaxRounds int

	// SkipExpansionProfiles is the number of selected profile-like URLs at
	// which author expansion is skipped once candidates exist.
	SkipExpansionProfiles int
}

// Next returns the state after s. It reads st but never changes it.
//
// After Fetch the round skips seeding and author resolution when enough
// profile pages were selected and the gate already has candidates. After
// Synthesize the run loops to Plan while the synthesizer asks for more
// and another round fits under MaxRounds.
func Next(s State, st *types.ResearchState, l Limits) State {
	switch s {
	case Interpret:
		return Plan
	case Plan:
		return RouteEngines
	case RouteEngines:
		return Search
	case Search:
		return Select
	case Select:
		return Fetch
	case Fetch:
		if SkipExpansion(st, l) {
			return Gate
		}
		return Seed
	case Seed:
		return ResolveAuthors
	case ResolveAuthors:
		return VerifyIdentity
	case VerifyIdentity:
		return Gate
	case Gate:
		return Synthesize
	case Synthesize:
		if st.NeedMore && st.Round+1 < l.MaxRounds {
			return Plan
		}
		return Done
	}
	return Done
}

// SkipExpansion reports whether the round has enough profile pages and
// candidates to bypass author expansion.
func SkipExpansion(st *types.ResearchState, l Limits) bool {
	if l.SkipExpansionProfiles <= 0 || len(st.Candidates) == 0 {
		return false
	}
	return ProfileLinks(st) >= l.SkipExpansionProfiles
}

// ProfileLinks counts the selected URLs that look like personal profiles.
func ProfileLinks(st *types.ResearchState) int {
	n := 0
	for _, u := range st.Selected {
		if platform.ProfileLike(u) {
			n++
		}
	}
	return n
}
