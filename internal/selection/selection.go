// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package selection ranks the pooled search results and picks the URLs
// worth fetching. A rule score decides the clear cases; borderline results
// go to the advisory model in one batch.
package selection

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pdiddy/talent-scout/internal/advisory"
	"github.com/pdiddy/talent-scout/internal/httputil"
	"github.com/pdiddy/talent-scout/internal/plan"
	"github.com/pdiddy/talent-scout/internal/platform"
	"github.com/pdiddy/talent-scout/pkg/types"
)

// domainWeights adjust the score of hosts that rarely carry paper lists or
// researcher pages.
var domainWeights = map[string]float64{
	"facebook.com":  -3,
	"instagram.com": -3,
	"tiktok.com":    -3,
	"youtube.com":   -2,
	"reddit.com":    -2,
	"medium.com":    -1,
	"substack.com":  -1,
	"quora.com":     -2,
	"pinterest.com": -3,
}

// lowQualityMarkers in a URL mark news, forum and blog pages.
var lowQualityMarkers = []string{"/news/", "/blog/", "forum", "/discussion", "/comments/"}

// Score is the rule score of one hit. Acceptance hints add 2 each,
// keywords 1 each, longer titles up to 3, and academic or profile-like
// URLs add trust.
func Score(h types.SearchHit, keywords []string) float64 {
	text := strings.ToLower(h.Title + " " + h.Snippet)
	dom := httputil.DomainOf(h.URL)

	s := 0.0
	for _, hint := range plan.AcceptHints {
		if strings.Contains(text, hint) {
			s += 2
		}
	}
	for _, k := range keywords {
		if k = strings.ToLower(strings.Trim(k, `"' `)); k != "" && strings.Contains(text, k) {
			s++
		}
	}
	s += float64(min(utf8.RuneCountInString(h.Title)/40, 3))
	if platform.ProfileLike(h.URL) {
		s += 2
	}
	if strings.Contains(dom, "openreview.net") || strings.Contains(dom, "semanticscholar.org") {
		s += 2
	}
	if httputil.Institutional(dom) {
		s++
	}
	for host, w := range domainWeights {
		if dom == host || strings.HasSuffix(dom, "."+host) {
			s += w
		}
	}
	lower := strings.ToLower(h.URL)
	for _, m := range lowQualityMarkers {
		if strings.Contains(lower, m) {
			s--
			break
		}
	}
	return s
}

var selectPromptTmpl = template.Must(template.New("select").Parse(`You are a selector for academic talent scouting.
Selection hint: {{.Hint}}
{{if .Venues}}Target venues: {{.Venues}}
{{end}}{{if .Years}}Target years: {{.Years}}
{{end}}{{if .Keywords}}Research keywords: {{.Keywords}}
{{end}}
Decide for each search result whether it is worth fetching. Fetch pages with
paper titles and author names, accepted-paper lists, conference programs or
proceedings, and researcher profiles. Skip pure social posts, general news,
and spam.

Return STRICT JSON:
{"decisions": [{"i": 1, "fetch": true, "reason": "accepted paper list"}]}

RESULTS:
{{range .Items}}{{.Index}}. {{.Title}}
   URL: {{.URL}}
   Snippet: {{.Snippet}}
{{end}}`))

type decision struct {
	I      int    `json:"i"`
	Fetch  bool   `json:"fetch"`
	Reason string `json:"reason"`
}

type selectReply struct {
	Decisions []decision `json:"decisions"`
}

type promptItem struct {
	Index               int
	Title, URL, Snippet string
}

type scored struct {
	hit   types.SearchHit
	score float64
}

// Selector picks the URLs to fetch each round.
type Selector struct {
	client *advisory.Client
	cfg    types.SelectionConfig
	logger *zap.Logger
}

// NewSelector returns a Selector. client may be nil, in which case
// borderline results are decided by FallbackScore.
func NewSelector(client *advisory.Client, cfg types.SelectionConfig, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{client: client, cfg: cfg, logger: logger}
}

// Select ranks unselected pooled results and returns a Diff whose Selected
// holds at most SelectK URLs, no more than MaxPerDomain per domain.
func (s *Selector) Select(ctx context.Context, st *types.ResearchState) types.Diff {
	var pool []scored
	for _, h := range st.Results {
		if st.IsSelected(h.URL) || st.Visited[h.URL] || !httputil.IsHTTP(h.URL) {
			continue
		}
		pool = append(pool, scored{hit: h, score: Score(h, st.Spec.Keywords)})
	}
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].score != pool[j].score {
			return pool[i].score > pool[j].score
		}
		return utf8.RuneCountInString(pool[i].hit.Title) > utf8.RuneCountInString(pool[j].hit.Title)
	})

	var borderline []scored
	for _, c := range pool {
		if c.score > s.cfg.RejectScore && c.score < s.cfg.BypassScore {
			borderline = append(borderline, c)
		}
	}
	verdicts := s.decide(ctx, st, borderline)

	perDomain := map[string]int{}
	var picked []string
	auto, advised := 0, 0
	for _, c := range pool {
		if s.cfg.SelectK > 0 && len(picked) >= s.cfg.SelectK {
			break
		}
		switch {
		case c.score >= s.cfg.BypassScore:
			auto++
		case c.score <= s.cfg.RejectScore:
			continue
		case !verdicts[c.hit.URL]:
			continue
		default:
			advised++
		}
		dom := httputil.DomainOf(c.hit.URL)
		if s.cfg.MaxPerDomain > 0 && perDomain[dom] >= s.cfg.MaxPerDomain {
			continue
		}
		perDomain[dom]++
		picked = append(picked, c.hit.URL)
	}

	s.logger.Info("selected results",
		zap.Int("round", st.Round),
		zap.Int("pool", len(pool)),
		zap.Int("borderline", len(borderline)),
		zap.Int("auto", auto),
		zap.Int("advised", advised),
		zap.Int("selected", len(picked)))
	return types.Diff{Selected: picked}
}

// decide returns a fetch verdict for every borderline URL. The first
// AdvisoryBatch go to the model; anything it skips, and everything past
// the batch, is decided by FallbackScore.
func (s *Selector) decide(ctx context.Context, st *types.ResearchState, borderline []scored) map[string]bool {
	out := make(map[string]bool, len(borderline))
	for _, c := range borderline {
		out[c.hit.URL] = c.score >= s.cfg.FallbackScore
	}
	if s.client == nil || len(borderline) == 0 {
		return out
	}

	batch := borderline
	if s.cfg.AdvisoryBatch > 0 && len(batch) > s.cfg.AdvisoryBatch {
		batch = batch[:s.cfg.AdvisoryBatch]
	}
	items := make([]promptItem, len(batch))
	for i, c := range batch {
		items[i] = promptItem{Index: i + 1, Title: clip(c.hit.Title, 180), URL: c.hit.URL, Snippet: clip(c.hit.Snippet, 240)}
	}
	hint := st.Plan.SelectionHint
	if hint == "" {
		hint = plan.SelectionHint
	}
	prompt, err := advisory.Render(selectPromptTmpl, struct {
		Hint, Venues, Years, Keywords string
		Items                         []promptItem
	}{
		Hint:     hint,
		Venues:   strings.Join(st.Spec.Venues, ", "),
		Years:    joinYears(st.Spec.Years),
		Keywords: strings.Join(st.Spec.Keywords, ", "),
		Items:    items,
	})
	if err != nil {
		s.logger.Warn("select prompt", zap.Error(err))
		return out
	}

	reply := advisory.SafeStructured(ctx, s.client, "select", prompt, selectReply{})
	for _, d := range reply.Decisions {
		if d.I < 1 || d.I > len(batch) {
			continue
		}
		u := batch[d.I-1].hit.URL
		out[u] = d.Fetch
		s.logger.Debug("select verdict", zap.String("url", u), zap.Bool("fetch", d.Fetch), zap.String("reason", d.Reason))
	}
	return out
}

func joinYears(years []int) string {
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = fmt.Sprint(y)
	}
	return strings.Join(parts, ", ")
}

func clip(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}
