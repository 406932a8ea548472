// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synth turns the gated candidates and the richest fetched sources
// into the round's candidate cards, citations and report. The advisory
// model writes the cards; every card it returns is checked against the
// gated candidates and every link against the platform patterns and the
// run's known URLs, so nothing reaches the shortlist that the pipeline did
// not find.
package synth

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/pdiddy/talent-scout/internal/advisory"
	"github.com/pdiddy/talent-scout/internal/httputil"
	"github.com/pdiddy/talent-scout/internal/platform"
	"github.com/pdiddy/talent-scout/pkg/types"
)

const truncatedMark = "...[truncated]"

// NoSourcesFollowup is returned when a round ends with nothing to synthesize.
const NoSourcesFollowup = "Need more accepted/program/proceedings pages and author profiles."

var synthPromptTmpl = template.Must(template.New("synthesize").Parse(`You are an HR talent scout. You are given a shortlist of preselected candidates and supporting sources.
Using ONLY this information, finalize up to {{.TopN}} candidate cards for {{.Degrees}} working on {{.Topics}}. {{.Must}}
Be conservative. Only use names from PRESELECTED. Do NOT fabricate links; use only profile URLs that appear below.

PRESELECTED:
{{.Preselected}}

SOURCES (limited):
{{range .Sources}}[Source] {{.URL}}
{{.Text}}
{{end}}
Return STRICT JSON:
{"candidates": [{"name": "...", "current_role_and_affiliation": "...", "research_focus": ["..."],
  "profiles": {"homepage": "...", "scholar": "...", "openreview": "...", "semanticscholar": "...", "orcid": "...", "github": "...", "twitter": "...", "linkedin": "..."},
  "notable": "...", "evidence_notes": "..."}],
 "citations": ["<used source url>"], "need_more": false, "followups": ["<extra search query>"]}
`))

// Synthesizer writes candidate cards.
type Synthesizer struct {
	client *advisory.Client
	cfg    types.SynthesisConfig
	logger *zap.Logger
}

// NewSynthesizer returns a Synthesizer; client may be nil, in which case
// cards are built from the gated candidates directly.
func NewSynthesizer(client *advisory.Client, cfg types.SynthesisConfig, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{client: client, cfg: cfg, logger: logger}
}

type cardReply struct {
	Name          string            `json:"name"`
	Role          string            `json:"current_role_and_affiliation"`
	ResearchFocus []string          `json:"research_focus"`
	Profiles      map[string]string `json:"profiles"`
	Notable       string            `json:"notable"`
	EvidenceNotes string            `json:"evidence_notes"`
}

type synthReply struct {
	Candidates []cardReply `json:"candidates"`
	Citations  []string    `json:"citations"`
	NeedMore   bool        `json:"need_more"`
	Followups  []string    `json:"followups"`
}

// Valid requires the candidates list to be present.
func (r *synthReply) Valid() bool { return r.Candidates != nil }

type source struct {
	URL  string
	Text string
}

// Synthesize returns the round's synthesis. need_more is set when the
// model asks for it or fewer than TargetCount cards survive validation.
func (s *Synthesizer) Synthesize(ctx context.Context, st *types.ResearchState) types.Diff {
	n := max(1, st.Spec.TargetCount)
	pre := Preselect(st.Candidates, n)
	srcs := s.sources(st)

	if len(pre) == 0 && len(srcs) == 0 {
		s.logger.Info("nothing to synthesize", zap.Int("round", st.Round))
		syn := &types.Synthesis{NeedMore: true, Followups: []string{NoSourcesFollowup}}
		syn.Report = Report(st.Spec, nil, nil)
		return types.Diff{Synthesis: syn}
	}

	fallback := defaultReply(pre)
	reply := fallback
	if s.client != nil {
		prompt, err := s.prompt(st.Spec, n, pre, srcs)
		if err != nil {
			s.logger.Warn("synthesis prompt", zap.Error(err))
		} else {
			reply = advisory.SafeStructured(ctx, s.client, "synthesize", prompt, fallback)
		}
	}

	cards := Validate(reply.Candidates, pre, knownURLs(st), n)
	cites := s.citations(reply.Citations, st)
	if len(cites) == 0 {
		cites = s.citations(fallback.Citations, st)
	}
	syn := &types.Synthesis{
		Cards:     cards,
		Citations: cites,
		NeedMore:  reply.NeedMore || len(cards) < n,
		Followups: types.DedupeStrings(reply.Followups, 0),
	}
	syn.Report = Report(st.Spec, cards, cites)

	s.logger.Info("synthesized candidates",
		zap.Int("round", st.Round),
		zap.Int("preselected", len(pre)),
		zap.Int("sources", len(srcs)),
		zap.Int("cards", len(cards)),
		zap.Int("citations", len(cites)),
		zap.Bool("need_more", syn.NeedMore))
	return types.Diff{Synthesis: syn}
}

// Preselect orders candidates by confidence and keeps max(2n, n+5).
func Preselect(cands []types.Candidate, n int) []types.Candidate {
	out := append([]types.Candidate(nil), cands...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	if k := max(2*n, n+5); len(out) > k {
		out = out[:k]
	}
	return out
}

// sources picks the longest fetched texts within the per-source and total
// character budgets.
func (s *Synthesizer) sources(st *types.ResearchState) []source {
	urls := make([]string, 0, len(st.Sources))
	for u := range st.Sources {
		urls = append(urls, u)
	}
	sort.Slice(urls, func(i, j int) bool {
		li, lj := len(st.Sources[urls[i]]), len(st.Sources[urls[j]])
		if li != lj {
			return li > lj
		}
		return urls[i] < urls[j]
	})
	if s.cfg.MaxSources > 0 && len(urls) > s.cfg.MaxSources {
		urls = urls[:s.cfg.MaxSources]
	}

	var out []source
	used := 0
	for _, u := range urls {
		t := truncate(st.Sources[u], s.cfg.PerSourceChars)
		size := len(u) + len(t) + len("[Source] \n\n")
		if s.cfg.TotalSourceChars > 0 && used+size > s.cfg.TotalSourceChars {
			break
		}
		used += size
		out = append(out, source{URL: u, Text: t})
	}
	return out
}

func (s *Synthesizer) prompt(spec types.QuerySpec, n int, pre []types.Candidate, srcs []source) (string, error) {
	cards := make([]cardReply, len(pre))
	for i, c := range pre {
		cards[i] = cardFromCandidate(c)
	}
	raw, err := json.MarshalIndent(cards, "", "  ")
	if err != nil {
		return "", err
	}
	degrees := strings.Join(spec.DegreeLevels, ", ")
	if degrees == "" {
		degrees = "PhD/Master students"
	}
	topics := strings.Join(spec.Keywords, ", ")
	if topics == "" {
		topics = "the target topics of the request"
	}
	must := "They CAN be current students or recent graduates."
	if spec.MustBeCurrentStudent {
		must = "They MUST be current students."
	}
	return advisory.Render(synthPromptTmpl, struct {
		TopN              int
		Degrees, Topics   string
		Must, Preselected string
		Sources           []source
	}{n, degrees, topics, must, truncate(string(raw), s.cfg.PreselectChars), srcs})
}

// citations normalizes and deduplicates cited URLs and keeps those that
// are fetched sources, up to MaxCitations.
func (s *Synthesizer) citations(in []string, st *types.ResearchState) []string {
	known := make(map[string]string, len(st.Sources))
	for u := range st.Sources {
		known[httputil.NormalizeURL(u)] = u
	}
	var out []string
	seen := map[string]bool{}
	for _, u := range in {
		nu := httputil.NormalizeURL(u)
		if nu == "" || seen[nu] {
			continue
		}
		if _, ok := known[nu]; !ok {
			continue
		}
		seen[nu] = true
		out = append(out, nu)
		if s.cfg.MaxCitations > 0 && len(out) >= s.cfg.MaxCitations {
			break
		}
	}
	return out
}

// defaultReply builds the cards straight from the gated candidates and
// cites their verified evidence.
func defaultReply(pre []types.Candidate) synthReply {
	r := synthReply{Candidates: []cardReply{}}
	for _, c := range pre {
		r.Candidates = append(r.Candidates, cardFromCandidate(c))
		r.Citations = append(r.Citations, c.Profile.Evidence...)
	}
	return r
}

func cardFromCandidate(c types.Candidate) cardReply {
	p := c.Profile
	profiles := make(map[string]string, len(p.Platforms))
	for pl, u := range p.Platforms {
		profiles[string(pl)] = u
	}
	notable := p.SocialImpact
	if len(p.NotableAchievements) > 0 {
		notable = p.NotableAchievements[0]
	}
	return cardReply{
		Name:          p.Name,
		Role:          c.Role,
		ResearchFocus: c.ResearchFocus,
		Profiles:      profiles,
		Notable:       notable,
		EvidenceNotes: c.EvidenceNote,
	}
}

// knownURLs are the profile URLs the run has seen: pooled results, fetched
// sources and every resolved profile slot.
func knownURLs(st *types.ResearchState) map[string]bool {
	known := make(map[string]bool, len(st.Results)+len(st.Sources))
	for _, h := range st.Results {
		known[httputil.NormalizeURL(h.URL)] = true
	}
	for u := range st.Sources {
		known[httputil.NormalizeURL(u)] = true
	}
	for _, p := range st.Profiles {
		for _, u := range p.Platforms {
			known[httputil.NormalizeURL(u)] = true
		}
	}
	return known
}

// evidenceNotes keeps the gate's note on cards of fallback candidates so
// callers can tell them apart; otherwise the model's note wins.
func evidenceNotes(c types.Candidate, written string) string {
	switch {
	case written == "":
		return c.EvidenceNote
	case c.Fallback && c.EvidenceNote != "" && !strings.Contains(written, c.EvidenceNote):
		return c.EvidenceNote + "; " + written
	}
	return written
}

// Validate turns model cards into final cards. A card must name a gated
// candidate; each profile link must be a valid URL for its platform that
// the run has seen; the candidate's own verified links fill the platforms
// the model left out. Cards without any link are dropped, duplicates
// collapse to the first, and at most n cards are returned.
func Validate(replies []cardReply, pre []types.Candidate, known map[string]bool, n int) []types.CandidateCard {
	byName := make(map[string]types.Candidate, len(pre))
	for _, c := range pre {
		byName[nameKey(c.Profile.Name)] = c
	}

	var out []types.CandidateCard
	seen := map[string]bool{}
	for _, r := range replies {
		key := nameKey(r.Name)
		c, ok := byName[key]
		if !ok || seen[key] {
			continue
		}
		profiles := map[types.Platform]string{}
		for k, u := range r.Profiles {
			pl, ok := platformKey(k)
			u = httputil.NormalizeURL(u)
			if !ok || !platform.Valid(pl, u) || !known[u] {
				continue
			}
			profiles[pl] = u
		}
		for pl, u := range c.Profile.Platforms {
			if _, ok := profiles[pl]; !ok && platform.Valid(pl, u) {
				profiles[pl] = httputil.NormalizeURL(u)
			}
		}
		if len(profiles) == 0 {
			continue
		}
		seen[key] = true

		card := types.CandidateCard{
			Name:                      c.Profile.Name,
			CurrentRoleAndAffiliation: strings.TrimSpace(r.Role),
			ResearchFocus:             types.DedupeStrings(r.ResearchFocus, 0),
			Profiles:                  profiles,
			Notable:                   strings.TrimSpace(r.Notable),
			EvidenceNotes:             strings.TrimSpace(r.EvidenceNotes),
		}
		if card.CurrentRoleAndAffiliation == "" {
			card.CurrentRoleAndAffiliation = c.Role
		}
		if len(card.ResearchFocus) == 0 {
			card.ResearchFocus = c.ResearchFocus
		}
		card.EvidenceNotes = evidenceNotes(c, card.EvidenceNotes)
		out = append(out, card)
		if len(out) >= n {
			break
		}
	}
	return out
}

func nameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// platformKeys maps the profile keys a model may use to platforms.
var platformKeys = map[string]types.Platform{
	"google scholar":   types.PlatformScholar,
	"semantic scholar": types.PlatformSemanticScholar,
	"personal site":    types.PlatformHomepage,
	"website":          types.PlatformHomepage,
	"x":                types.PlatformTwitter,
	"hugging face":     types.PlatformHuggingFace,
}

func platformKey(k string) (types.Platform, bool) {
	k = strings.ToLower(strings.TrimSpace(k))
	if p, ok := platformKeys[k]; ok {
		return p, true
	}
	for _, p := range types.AllPlatforms {
		if string(p) == k {
			return p, true
		}
	}
	return "", false
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + truncatedMark
}
