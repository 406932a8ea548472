// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package identity

import (
	"sort"

	"go.uber.org/zap"

	"github.com/pdiddy/talent-scout/internal/httputil"
	"github.com/pdiddy/talent-scout/internal/platform"
	"github.com/pdiddy/talent-scout/pkg/types"
)

// Review checks the resolved profiles against each other. A platform URL
// that fails its shape check is removed, and a URL held by more than one
// author stays only with the most confident one (the earlier frontier
// entry on a tie). Only changed profiles are returned.
func (v *Verifier) Review(st *types.ResearchState) types.Diff {
	order := make(map[string]int, len(st.Frontier))
	for i, e := range st.Frontier {
		order[e.Name] = i
	}
	names := make([]string, 0, len(st.Profiles))
	for name := range st.Profiles {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := st.Profiles[names[i]], st.Profiles[names[j]]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		oi, iok := order[names[i]]
		oj, jok := order[names[j]]
		if iok != jok {
			return iok
		}
		if oi != oj {
			return oi < oj
		}
		return names[i] < names[j]
	})

	owner := map[string]string{}
	var changed []types.AuthorProfile
	invalid, conflicts := 0, 0
	for _, name := range names {
		p := st.Profiles[name]
		var drop []types.Platform
		for _, pl := range types.AllPlatforms {
			u := p.Platforms[pl]
			if u == "" {
				continue
			}
			key := httputil.NormalizeURL(u)
			switch other, taken := owner[key]; {
			case !platform.Valid(pl, u):
				invalid++
				drop = append(drop, pl)
			case taken && other != name:
				conflicts++
				drop = append(drop, pl)
				v.logger.Debug("profile URL claimed by another author",
					zap.String("author", name), zap.String("owner", other), zap.String("url", u))
			default:
				owner[key] = name
			}
		}
		if len(drop) == 0 {
			continue
		}
		p.Platforms = without(p.Platforms, drop)
		p.PlatformIDs = without(p.PlatformIDs, drop)
		changed = append(changed, p)
	}

	v.logger.Info("reviewed profiles",
		zap.Int("round", st.Round),
		zap.Int("profiles", len(names)),
		zap.Int("invalid", invalid),
		zap.Int("conflicts", conflicts),
		zap.Int("changed", len(changed)))
	return types.Diff{Profiles: changed}
}

// without returns a copy of m minus the keys in drop.
func without(m map[types.Platform]string, drop []types.Platform) map[types.Platform]string {
	out := make(map[types.Platform]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	for _, k := range drop {
		delete(out, k)
	}
	return out
}
