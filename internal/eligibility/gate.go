// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package eligibility decides which resolved authors become candidates.
// It reads student and institution signals from the verified profile text
// and the profile's platform slots. When the query requires current
// students, authors without any signal are dropped; if nobody passes, the
// authors with the strongest academic profiles are kept as fallbacks.
package eligibility

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/talent-scout/internal/httputil"
	"github.com/pdiddy/talent-scout/pkg/types"
)

// Signal names recorded on a candidate.
const (
	SignalStudentText     = "student_text"
	SignalEduHomepage     = "edu_homepage"
	SignalEduEmail        = "edu_email"
	SignalInstitution     = "institution_affiliation"
	SignalAcademicProfile = "edu_homepage_with_academic_profile"
)

const maxFocus = 6

var (
	studentPattern     = regexp.MustCompile(`(?i)\b(ph\.?d|phd (student|candidate)|doctoral|msc|master'?s|graduate student)\b`)
	institutionPattern = regexp.MustCompile(`(?i)(University|Institute|College|School|Laboratory|Lab)`)
	rolePattern        = regexp.MustCompile(`(University|Institute|Laboratory|Lab|College|School) of [A-Z][A-Za-z&\-]+(?: (?:of |and |& )?[A-Z][A-Za-z&\-]+)*`)
	emailPattern       = regexp.MustCompile(`[A-Za-z0-9._%+-]+@([A-Za-z0-9.-]+\.[A-Za-z]{2,})`)
)

// focusKeywords are matched against the profile text to fill ResearchFocus.
var focusKeywords = []string{
	"LLM agents", "social simulation", "multi-agent", "reinforcement learning", "reasoning",
	"NLP", "evaluation", "alignment", "behavior", "planning",
}

// stageRoles labels a known career stage in the role line.
var stageRoles = map[string]string{
	"phd_student":     "PhD Student",
	"masters_student": "MSc Student",
	"postdoc":         "Postdoctoral Researcher",
	"assistant_prof":  "Assistant Professor",
	"associate_prof":  "Associate Professor",
	"full_prof":       "Professor",
	"industry":        "Industry Researcher",
}

// Gate filters resolved profiles into candidates.
type Gate struct {
	cfg    types.EligibilityConfig
	logger *zap.Logger
}

// NewGate returns a Gate.
func NewGate(cfg types.EligibilityConfig, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{cfg: cfg, logger: logger}
}

// signals is what the gate read from one profile.
type signals struct {
	studentText bool
	eduHomepage bool
	eduEmail    bool
	institution bool
	openReview  bool
	semantic    bool
	text        string
}

func (s signals) studentLike() bool {
	return s.studentText || s.eduHomepage || s.eduEmail || s.institution
}

func (s signals) strongCombo() bool {
	return s.eduHomepage && (s.openReview || s.semantic)
}

func (s signals) names() []string {
	var out []string
	for _, x := range []struct {
		on   bool
		name string
	}{
		{s.studentText, SignalStudentText},
		{s.eduHomepage, SignalEduHomepage},
		{s.eduEmail, SignalEduEmail},
		{s.institution, SignalInstitution},
		{s.strongCombo(), SignalAcademicProfile},
	} {
		if x.on {
			out = append(out, x.name)
		}
	}
	return out
}

// Run returns the round's candidate list, replacing the previous one.
// Candidates are ordered by confidence, then by frontier order.
func (g *Gate) Run(st *types.ResearchState) types.Diff {
	strict := st.Spec.MustBeCurrentStudent
	profiles := ordered(st)

	var kept []types.Candidate
	for _, p := range profiles {
		sig := g.read(st, p)
		if strict && !sig.studentLike() && !sig.strongCombo() {
			continue
		}
		note := "Student-like via homepage/email/affiliation signals"
		if sig.studentText {
			note = "Profile text contains student keywords"
		}
		conf := 0.55
		if sig.eduHomepage {
			conf += 0.2
		}
		if sig.openReview {
			conf += 0.1
		}
		if sig.semantic {
			conf += 0.1
		}
		kept = append(kept, types.Candidate{
			Profile:       p,
			Role:          role(p, sig.text),
			ResearchFocus: focus(st.Spec.Keywords, sig.text+" "+p.Affiliation),
			Signals:       sig.names(),
			Confidence:    conf,
			EvidenceNote:  note,
		})
	}

	fallback := false
	if len(kept) == 0 && len(profiles) > 0 {
		kept = g.fallback(profiles)
		fallback = true
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Confidence > kept[j].Confidence })

	g.logger.Info("eligibility gate",
		zap.Int("round", st.Round),
		zap.Int("profiles", len(profiles)),
		zap.Int("candidates", len(kept)),
		zap.Bool("strict", strict),
		zap.Bool("fallback", fallback))
	return types.Diff{Gated: &kept}
}

// fallback keeps the FallbackKeep profiles with the strongest academic
// presence: an institutional homepage counts two, each of OpenReview,
// Scholar, GitHub, Twitter and LinkedIn one.
func (g *Gate) fallback(profiles []types.AuthorProfile) []types.Candidate {
	type scoredProfile struct {
		p     types.AuthorProfile
		score int
	}
	scored := make([]scoredProfile, 0, len(profiles))
	for _, p := range profiles {
		s := 0
		if eduHomepage(p) {
			s += 2
		}
		for _, pl := range []types.Platform{types.PlatformOpenReview, types.PlatformScholar, types.PlatformGitHub, types.PlatformTwitter, types.PlatformLinkedIn} {
			if p.HasPlatform(pl) {
				s++
			}
		}
		scored = append(scored, scoredProfile{p, s})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if g.cfg.FallbackKeep > 0 && len(scored) > g.cfg.FallbackKeep {
		scored = scored[:g.cfg.FallbackKeep]
	}

	out := make([]types.Candidate, 0, len(scored))
	for _, sp := range scored {
		out = append(out, types.Candidate{
			Profile:      sp.p,
			Role:         "Student (assumed), Affiliation TBD",
			Fallback:     true,
			Confidence:   0.45 + 0.05*float64(sp.score),
			EvidenceNote: "Fallback kept: strong academic-profile signals",
		})
	}
	return out
}

// read collects the signals of one profile. Text comes from the verified
// homepage when it was fetched, else from the first fetched platform page,
// followed by the resolver's excerpts, bounded by MaxTextChars.
func (g *Gate) read(st *types.ResearchState, p types.AuthorProfile) signals {
	var parts []string
	if t, ok := st.Sources[p.Platforms[types.PlatformHomepage]]; ok {
		parts = append(parts, t)
	} else {
		for _, pl := range types.AllPlatforms {
			if t, ok := st.Sources[p.Platforms[pl]]; ok && p.Platforms[pl] != "" {
				parts = append(parts, t)
				break
			}
		}
	}
	parts = append(parts, p.Excerpts...)
	text := clip(strings.Join(parts, "\n"), g.cfg.MaxTextChars)

	emailDomain := ""
	for _, e := range p.Emails {
		if _, d, ok := strings.Cut(e, "@"); ok {
			emailDomain = d
			if httputil.Institutional(d) {
				break
			}
		}
	}
	if emailDomain == "" {
		if m := emailPattern.FindStringSubmatch(text); m != nil {
			emailDomain = strings.ToLower(m[1])
		}
	}

	return signals{
		studentText: studentPattern.MatchString(text),
		eduHomepage: eduHomepage(p),
		eduEmail:    emailDomain != "" && httputil.Institutional(emailDomain),
		institution: institutionPattern.MatchString(p.Affiliation),
		openReview:  strings.Contains(p.Platforms[types.PlatformOpenReview], "openreview.net/profile"),
		semantic:    strings.Contains(p.Platforms[types.PlatformSemanticScholar], "semanticscholar.org/author"),
		text:        text,
	}
}

func eduHomepage(p types.AuthorProfile) bool {
	for _, pl := range []types.Platform{types.PlatformHomepage, types.PlatformUniversity} {
		if u := p.Platforms[pl]; u != "" && httputil.Institutional(httputil.DomainOf(u)) {
			return true
		}
	}
	return false
}

// role renders "<stage>, <affiliation>". The affiliation is the first
// "University of X" phrase in the text, else the profile's affiliation.
func role(p types.AuthorProfile, text string) string {
	aff := rolePattern.FindString(text)
	if aff == "" {
		aff = p.Affiliation
	}
	stage, ok := stageRoles[p.CareerStage]
	if !ok {
		stage = "PhD/MSc Student"
	}
	return strings.Trim(stage+", "+strings.TrimSpace(aff), ", ")
}

// focus returns the focus keywords and query keywords found in text.
func focus(keywords []string, text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, kw := range append(append([]string(nil), focusKeywords...), keywords...) {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			out = append(out, kw)
		}
	}
	return types.DedupeStrings(out, maxFocus)
}

// ordered returns the profiles in frontier order, then any remaining ones
// by name.
func ordered(st *types.ResearchState) []types.AuthorProfile {
	seen := make(map[string]bool, len(st.Profiles))
	out := make([]types.AuthorProfile, 0, len(st.Profiles))
	for _, e := range st.Frontier {
		if p, ok := st.Profiles[e.Name]; ok && !seen[e.Name] {
			seen[e.Name] = true
			out = append(out, p)
		}
	}
	var rest []string
	for name := range st.Profiles {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		out = append(out, st.Profiles[name])
	}
	return out
}

func clip(s string, n int) string {
	if n <= 0 {
		return s
	}
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}
