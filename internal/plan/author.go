// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package plan

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/talent-scout/internal/advisory"
	"github.com/pdiddy/talent-scout/pkg/types"
)

// Bounds on optimizer output.
const (
	maxOptimizedQueries = 6
	maxQueryLen         = 160
)

// AuthorQueries returns platform-restricted profile queries for name and,
// when a seed paper is known, name+title queries that disambiguate common
// names. At most limit queries are returned (limit ≤ 0: no cap).
func AuthorQueries(name string, seedPapers []string, limit int) []string {
	qs := []string{
		fmt.Sprintf(`"%s" OpenReview`, name),
		fmt.Sprintf(`"%s" Semantic Scholar author`, name),
		fmt.Sprintf(`"%s" ORCID`, name),
		fmt.Sprintf(`"%s" site:github.io`, name),
		fmt.Sprintf(`"%s" site:.edu`, name),
		fmt.Sprintf(`"%s" site:.ac.*`, name),
		fmt.Sprintf(`"%s" homepage`, name),
		fmt.Sprintf(`"%s" site:linkedin.com/in`, name),
		fmt.Sprintf(`"%s" Twitter OR X`, name),
	}
	if len(seedPapers) > 0 {
		t := seedPapers[0]
		qs = append([]string{
			fmt.Sprintf(`"%s" "%s" site:.edu`, name, t),
			fmt.Sprintf(`"%s" "%s" lab`, t, name),
			fmt.Sprintf(`"%s" "%s" homepage`, t, name),
		}, qs...)
	}
	return dedupe(qs, limit)
}

var optimizePromptTmpl = template.Must(template.New("optimize").Parse(`Given a candidate researcher and the profile fields still missing, propose up to 6 very precise web search queries.
Prioritize .edu/.ac.* homepages and pages that mention the paper title to confirm identity.
Candidate: "{{.Name}}"
Representative paper: "{{.Paper}}"
Missing fields: {{.Missing}}
Return STRICT JSON: {"queries": ["..."]}
`))

type optimizeReply struct {
	Queries []string `json:"queries"`
}

// missingLabels are the profile kinds the optimizer is asked to find, with
// the platforms that satisfy each.
var missingLabels = []struct {
	label     string
	platforms []types.Platform
}{
	{"Homepage", []types.Platform{types.PlatformHomepage, types.PlatformUniversity}},
	{"ORCID", []types.Platform{types.PlatformORCID}},
	{"OpenReview", []types.Platform{types.PlatformOpenReview}},
	{"Semantic Scholar", []types.Platform{types.PlatformSemanticScholar}},
	{"Google Scholar", []types.Platform{types.PlatformScholar}},
	{"GitHub", []types.Platform{types.PlatformGitHub}},
	{"Twitter", []types.Platform{types.PlatformTwitter}},
	{"LinkedIn", []types.Platform{types.PlatformLinkedIn}},
}

// QueryOptimizer asks the advisory model for extra per-author queries.
type QueryOptimizer struct {
	client *advisory.Client
}

// NewQueryOptimizer returns an optimizer; client may be nil.
func NewQueryOptimizer(client *advisory.Client) *QueryOptimizer {
	return &QueryOptimizer{client: client}
}

// Optimize returns up to six queries targeting the platforms the profile
// still lacks. Without a usable reply it returns the rule set.
func (o *QueryOptimizer) Optimize(ctx context.Context, name string, seedPapers []string, have map[types.Platform]string) []string {
	paper := ""
	if len(seedPapers) > 0 {
		paper = seedPapers[0]
	}
	fallback := optimizeFallback(name, paper)
	if o == nil || o.client == nil {
		return fallback
	}

	prompt, err := advisory.Render(optimizePromptTmpl, struct {
		Name, Paper, Missing string
	}{name, paper, strings.Join(Missing(have), ", ")})
	if err != nil {
		return fallback
	}
	reply := advisory.SafeStructured(ctx, o.client, "optimize", prompt, optimizeReply{})
	var out []string
	for _, q := range reply.Queries {
		if q = strings.TrimSpace(q); q != "" && len(q) <= maxQueryLen {
			out = append(out, q)
		}
	}
	if out = dedupe(out, maxOptimizedQueries); len(out) == 0 {
		return fallback
	}
	return out
}

// Missing lists the profile kinds absent from have.
func Missing(have map[types.Platform]string) []string {
	var out []string
	for _, m := range missingLabels {
		found := false
		for _, p := range m.platforms {
			if have[p] != "" {
				found = true
				break
			}
		}
		if !found {
			out = append(out, m.label)
		}
	}
	return out
}

func optimizeFallback(name, paper string) []string {
	qs := []string{
		fmt.Sprintf(`"%s" site:.edu`, name),
		fmt.Sprintf(`"%s" homepage`, name),
		fmt.Sprintf(`"%s" OpenReview`, name),
		fmt.Sprintf(`"%s" Semantic Scholar author`, name),
	}
	if paper != "" {
		qs = append(qs,
			fmt.Sprintf(`"%s" "%s" site:.edu`, name, paper),
			fmt.Sprintf(`"%s" "%s" lab`, paper, name))
	}
	return dedupe(qs, maxOptimizedQueries)
}
