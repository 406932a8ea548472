// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package profile

import (
	"context"
	"sort"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/pdiddy/talent-scout/internal/advisory"
	"github.com/pdiddy/talent-scout/internal/httputil"
	"github.com/pdiddy/talent-scout/internal/platform"
	"github.com/pdiddy/talent-scout/pkg/types"
)

// maxPerPlatform caps candidate pages fetched per platform for one author.
const maxPerPlatform = 2

var tierTrust = map[platform.Tier]float64{
	platform.TierAuthoritative: 0.72,
	platform.TierInstitution:   0.6,
	platform.TierHomepage:      0.5,
	platform.TierCodeHost:      0.4,
	platform.TierSocial:        0.4,
}

var (
	profileMarkers  = []string{"orcid.org/", "openreview.net/profile", "/citations?user=", "/author/"}
	genericMarkers  = []string{"/news", "news.", "/blog", "blog.", "forum", "/comment", "/reviews"}
	personalMarkers = []string{"personal", "homepage", "/home", "about", "profile", "/cv", "resume", "/people/", "/~"}
	blockedHosts    = []string{"facebook.com", "instagram.com", "youtube.com", "medium.com", "reddit.com", "wikipedia.org", "quora.com"}
)

// candidate is a discovery hit considered for fetching.
type candidate struct {
	hit   types.SearchHit
	kind  types.Platform
	score float64
}

// Kind returns the platform a discovery URL would fill, or "" when the
// URL is neither a known profile host nor a plausible personal site.
func Kind(u string) types.Platform {
	if p := platform.Of(u); p != "" {
		return p
	}
	d := httputil.DomainOf(u)
	if containsAny(d, blockedHosts) || !platform.Valid(types.PlatformHomepage, u) {
		return ""
	}
	if containsAny(strings.ToLower(u), personalMarkers) || strings.Count(d, ".") <= 1 {
		return types.PlatformHomepage
	}
	return ""
}

// CandidateScore is the rule score of a discovery hit for name: platform
// trust, the name and the seed paper in the result text, and a
// profile-shaped URL raise it; news, blog and forum URLs lower it.
func CandidateScore(h types.SearchHit, kind types.Platform, name, paper string) float64 {
	lower := strings.ToLower(h.URL)
	text := strings.ToLower(h.Title + " " + h.Snippet)

	s := tierTrust[platform.TierOf(kind)]
	if n := strings.ToLower(strings.TrimSpace(name)); n != "" && strings.Contains(text, n) {
		s += 0.25
	}
	if p := strings.ToLower(strings.TrimSpace(clip(paper, 20))); p != "" && strings.Contains(text, p) {
		s += 0.25
	}
	if containsAny(lower, profileMarkers) {
		s += 0.25
	}
	if containsAny(lower, genericMarkers) {
		s -= 0.2
	}
	return max(0, s)
}

var fetchPromptTmpl = template.Must(template.New("profile_fetch").Parse(`Decide which search results are worth fetching to build the profile of a researcher.
Author: {{.Name}}
Known paper: {{.Paper}}
Fetch official academic profiles, university pages, personal research sites and CV pages about this author.
Skip news mentions, generic directories, other people with a similar name and pages without author information.
{{range .Items}}
{{.Index}}. {{.Title}}
   {{.URL}}
   {{.Snippet}}
{{end}}
Return STRICT JSON: {"decisions": [{"i": <number>, "fetch": true|false, "reason": "..."}]}
`))

type fetchItem struct {
	Index               int
	Title, URL, Snippet string
}

type fetchReply struct {
	Decisions []struct {
		I      int    `json:"i"`
		Fetch  bool   `json:"fetch"`
		Reason string `json:"reason"`
	} `json:"decisions"`
}

// pick scores the discovery hits for one author and returns the pages to
// fetch in visiting order: personal sites first, then by platform trust.
func (r *Resolver) pick(ctx context.Context, name, paper string, hits []types.SearchHit) []candidate {
	var pool []candidate
	seen := map[string]bool{}
	for _, h := range hits {
		if !httputil.IsHTTP(h.URL) || seen[h.URL] {
			continue
		}
		seen[h.URL] = true
		if k := Kind(h.URL); k != "" {
			pool = append(pool, candidate{hit: h, kind: k, score: CandidateScore(h, k, name, paper)})
		}
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].score > pool[j].score })

	var keep, borderline []candidate
	for _, c := range pool {
		switch {
		case c.score >= r.cfg.AutoFetchScore:
			keep = append(keep, c)
		case c.score <= r.cfg.RejectScore:
		default:
			borderline = append(borderline, c)
		}
	}
	verdicts := r.decide(ctx, name, paper, borderline)
	for _, c := range borderline {
		if verdicts[c.hit.URL] {
			keep = append(keep, c)
		}
	}

	sort.SliceStable(keep, func(i, j int) bool {
		a, b := keep[i], keep[j]
		if ha, hb := personal(a.kind), personal(b.kind); ha != hb {
			return ha
		}
		if c := platform.Compare(a.kind, b.kind); c != 0 {
			return c > 0
		}
		return a.score > b.score
	})
	var out []candidate
	per := map[types.Platform]int{}
	for _, c := range keep {
		if r.cfg.FetchesPerAuthor > 0 && len(out) >= r.cfg.FetchesPerAuthor {
			break
		}
		if per[c.kind] >= maxPerPlatform {
			continue
		}
		per[c.kind]++
		out = append(out, c)
	}
	return out
}

// decide asks the advisory model about borderline candidates. Without a
// usable reply a candidate is fetched when it scores at least FallbackScore.
func (r *Resolver) decide(ctx context.Context, name, paper string, borderline []candidate) map[string]bool {
	out := make(map[string]bool, len(borderline))
	for _, c := range borderline {
		out[c.hit.URL] = c.score >= r.cfg.FallbackScore
	}
	if r.client == nil || len(borderline) == 0 {
		return out
	}

	items := make([]fetchItem, len(borderline))
	for i, c := range borderline {
		items[i] = fetchItem{Index: i + 1, Title: clip(c.hit.Title, 180), URL: c.hit.URL, Snippet: clip(c.hit.Snippet, 400)}
	}
	prompt, err := advisory.Render(fetchPromptTmpl, struct {
		Name, Paper string
		Items       []fetchItem
	}{name, paper, items})
	if err != nil {
		r.logger.Warn("profile fetch prompt", zap.Error(err))
		return out
	}
	reply := advisory.SafeStructured(ctx, r.client, "profile_fetch", prompt, fetchReply{})
	for _, d := range reply.Decisions {
		if d.I < 1 || d.I > len(borderline) {
			continue
		}
		out[borderline[d.I-1].hit.URL] = d.Fetch
	}
	return out
}

// personal reports whether p is filled from a personal or institutional
// page, which is verified from a preview before the full fetch.
func personal(p types.Platform) bool {
	return p == types.PlatformHomepage || p == types.PlatformUniversity
}

func clip(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}
