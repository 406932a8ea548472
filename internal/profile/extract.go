// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package profile

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/pdiddy/talent-scout/internal/advisory"
	"github.com/pdiddy/talent-scout/internal/platform"
	"github.com/pdiddy/talent-scout/pkg/types"
)

// maxExtractChars bounds page text sent for field extraction.
const maxExtractChars = 8000

var extractPromptTmpl = template.Must(template.New("profile_extract").Parse(`Extract profile fields for the researcher {{.Name}} from this {{.Platform}} page.
Copy only what appears in the text. Leave a field "" or [] when it is absent; never guess.
Aliases are other names of this author only. Emails must appear verbatim. Social links must be URLs present verbatim in the text.
TEXT:
{{.Text}}
==== END ====
Return STRICT JSON:
{"aliases": [], "affiliation": "", "emails": [], "interests": [],
 "selected_publications": [{"title": "", "venue": "", "year": 2024}],
 "notable_achievements": [], "social_impact": "",
 "career_stage": "student|postdoc|assistant_prof|associate_prof|full_prof|industry|",
 "social_links": {"scholar": "", "github": "", "linkedin": "", "twitter": "", "orcid": "", "openreview": ""}}
`))

type publication struct {
	Title string `json:"title"`
	Venue string `json:"venue"`
	Year  any    `json:"year"`
}

func (p publication) String() string {
	t := strings.TrimSpace(p.Title)
	var meta []string
	if v := strings.TrimSpace(p.Venue); v != "" {
		meta = append(meta, v)
	}
	if p.Year != nil {
		if y := strings.TrimSpace(fmt.Sprint(p.Year)); y != "" && y != "0" {
			meta = append(meta, y)
		}
	}
	if t == "" || len(meta) == 0 {
		return t
	}
	return t + " (" + strings.Join(meta, " ") + ")"
}

// extraction is what one page contributes beyond its URL.
type extraction struct {
	Aliases              []string          `json:"aliases"`
	Affiliation          string            `json:"affiliation"`
	Emails               []string          `json:"emails"`
	Interests            []string          `json:"interests"`
	SelectedPublications []publication     `json:"selected_publications"`
	NotableAchievements  []string          `json:"notable_achievements"`
	SocialImpact         string            `json:"social_impact"`
	CareerStage          string            `json:"career_stage"`
	SocialLinks          map[string]string `json:"social_links"`
}

var linkKeys = map[string]types.Platform{
	"scholar":         types.PlatformScholar,
	"google_scholar":  types.PlatformScholar,
	"github":          types.PlatformGitHub,
	"linkedin":        types.PlatformLinkedIn,
	"twitter":         types.PlatformTwitter,
	"x":               types.PlatformTwitter,
	"orcid":           types.PlatformORCID,
	"openreview":      types.PlatformOpenReview,
	"semanticscholar": types.PlatformSemanticScholar,
	"huggingface":     types.PlatformHuggingFace,
	"homepage":        types.PlatformHomepage,
}

// extract asks the advisory model for profile fields of name on a page.
// Without a usable reply the heuristic reading of the text is returned.
func (r *Resolver) extract(ctx context.Context, name string, p types.Platform, text string) extraction {
	fallback := heuristicFields(text)
	if r.client == nil {
		return fallback
	}
	prompt, err := advisory.Render(extractPromptTmpl, struct {
		Name     string
		Platform types.Platform
		Text     string
	}{name, p, clip(text, maxExtractChars)})
	if err != nil {
		return fallback
	}
	ext := advisory.SafeStructured(ctx, r.client, "profile_extract", prompt, fallback)
	if ext.Affiliation == "" {
		ext.Affiliation = fallback.Affiliation
	}
	if ext.CareerStage == "" {
		ext.CareerStage = fallback.CareerStage
	}
	return ext
}

func heuristicFields(text string) extraction {
	return extraction{Affiliation: AffiliationOf(text), CareerStage: CareerStage(text)}
}

var (
	affiliationOf     = regexp.MustCompile(`\b(?:University|Institute|Laboratory|Lab|College|School) of [A-Z][A-Za-z&\-]+(?: (?:of |and |& )?[A-Z][A-Za-z&\-]+){0,4}`)
	affiliationSuffix = regexp.MustCompile(`\b(?:[A-Z][A-Za-z&\-]+ ){1,4}(?:University|Institute of Technology|Institute)\b`)
)

// AffiliationOf returns the first institution name in text, or "".
func AffiliationOf(text string) string {
	for _, re := range []*regexp.Regexp{affiliationOf, affiliationSuffix} {
		if m := re.FindString(text); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

var stageRules = []struct {
	stage string
	cues  []string
}{
	{"phd_student", []string{"phd student", "ph.d. student", "phd candidate", "ph.d. candidate", "doctoral student", "doctoral candidate", "graduate student"}},
	{"masters_student", []string{"master's student", "masters student", "msc student", "m.s. student"}},
	{"postdoc", []string{"postdoctoral", "postdoc", "research fellow"}},
	{"assistant_prof", []string{"assistant professor"}},
	{"associate_prof", []string{"associate professor"}},
	{"full_prof", []string{"full professor", "chair professor", "distinguished professor"}},
	{"industry", []string{"research scientist at", "software engineer at", "research engineer at"}},
}

// CareerStage guesses a career stage from student, postdoc, faculty and
// industry cues in text; student cues win. It returns "" without a cue.
func CareerStage(text string) string {
	lower := strings.ToLower(text)
	for _, r := range stageRules {
		if containsAny(lower, r.cues) {
			return r.stage
		}
	}
	return ""
}

// cleanAliases keeps alternative names of the author: names sharing a
// token with it or short enough to be a variant, never the name itself.
func cleanAliases(aliases []string, name string, limit int) []string {
	tokens := map[string]bool{}
	for _, t := range platform.NameTokens(name) {
		tokens[t] = true
	}
	var out []string
	for _, a := range aliases {
		a = strings.TrimSpace(a)
		if a == "" || strings.EqualFold(a, name) {
			continue
		}
		shared := false
		for _, t := range platform.NameTokens(a) {
			if tokens[t] {
				shared = true
				break
			}
		}
		if shared || len(strings.Fields(a)) <= 3 {
			out = append(out, a)
		}
	}
	return types.DedupeStrings(out, limit)
}

// verbatim reports whether u occurs in page, ignoring scheme and "www.".
func verbatim(u, page string) bool {
	t := strings.TrimPrefix(strings.TrimPrefix(u, "https://"), "http://")
	t = strings.TrimSuffix(strings.TrimPrefix(t, "www."), "/")
	return t != "" && strings.Contains(page, t)
}
