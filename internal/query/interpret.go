// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query turns a free-text recruiting request into a QuerySpec. An
// advisory model does the parsing when one is configured; a rule-based
// parser fills every field the model leaves empty and stands in for it
// when the model is missing or returns garbage.
package query

import (
	"context"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/pdiddy/talent-scout/internal/advisory"
	"github.com/pdiddy/talent-scout/pkg/types"
)

var interpretPromptTmpl = template.Must(template.New("interpret").Parse(`You are a recruiting analyst. Parse the talent-scouting request below into a JSON spec.

Extract:
- top_n (int): number of candidates wanted ("10 candidates", "20 people").
- years (int[]): paper years to focus on, most relevant first.
- venues (string[]): conferences or journals named in the request. Known venues include: {{.Venues}}. Map variants to the canonical name (NIPS -> NeurIPS, The Web Conference -> WWW).
- keywords (string[]): research areas and technical terms.
- must_be_current_student (bool): true unless the request says otherwise.
- degree_levels (string[]): any of PhD, MSc, Master, Graduate, Undergraduate, Bachelor, Postdoc.
- author_priority (string[]): any of first, last, corresponding.
- extra_constraints (string[]): geography, institution, language or experience requirements.

Defaults: top_n=10, years=[2025,2024,2026], must_be_current_student=true, degree_levels=[PhD,MSc,Master,Graduate], author_priority=[first,last].
Return STRICT JSON only, no commentary.

Request:
{{.Query}}
`))

// Interpreter parses recruiting requests.
type Interpreter struct {
	client *advisory.Client
	logger *zap.Logger
}

// NewInterpreter returns an Interpreter. client may be nil, in which case
// only the rule-based parser runs.
func NewInterpreter(client *advisory.Client, logger *zap.Logger) *Interpreter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interpreter{client: client, logger: logger}
}

// Interpret parses text into a normalized, field-enriched QuerySpec. It
// never fails: a blank request yields the default spec and every other
// problem degrades to the rule-based parse merged with defaults.
func (in *Interpreter) Interpret(ctx context.Context, text string) (types.QuerySpec, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		in.logger.Warn("empty query, using default spec")
		return Enrich(withDefaults(types.DefaultQuerySpec())), nil
	}

	rules := ParseRules(text)
	raw := rules
	if in.client != nil {
		prompt, err := advisory.Render(interpretPromptTmpl, struct {
			Venues string
			Query  string
		}{knownVenueList(), text})
		if err == nil {
			reply := advisory.SafeStructured(ctx, in.client, "interpret", prompt, types.RawQuerySpec{})
			raw = mergeRaw(reply, rules)
		}
	}

	spec := Enrich(withDefaults(types.NormalizeQuerySpec(raw)))
	in.logger.Info("query interpreted",
		zap.Int("top_n", spec.TargetCount),
		zap.Ints("years", spec.Years),
		zap.Strings("venues", spec.Venues),
		zap.Strings("keywords", spec.Keywords),
		zap.Strings("fields", spec.Fields),
		zap.Bool("student", spec.MustBeCurrentStudent))
	return spec, nil
}

// withDefaults fills the venue and keyword lists NormalizeQuerySpec leaves
// empty.
func withDefaults(spec types.QuerySpec) types.QuerySpec {
	def := types.DefaultQuerySpec()
	if len(spec.Venues) == 0 {
		spec.Venues = def.Venues
	}
	if len(spec.Keywords) == 0 {
		spec.Keywords = def.Keywords
	}
	return spec
}

// mergeRaw takes each field from primary unless it is empty there.
func mergeRaw(primary, secondary types.RawQuerySpec) types.RawQuerySpec {
	out := primary
	if out.TopN == nil {
		out.TopN = secondary.TopN
	}
	if len(out.Years) == 0 {
		out.Years = secondary.Years
	}
	if len(out.Venues) == 0 {
		out.Venues = secondary.Venues
	}
	if len(out.Keywords) == 0 {
		out.Keywords = secondary.Keywords
	}
	if out.MustBeCurrentStudent == nil {
		out.MustBeCurrentStudent = secondary.MustBeCurrentStudent
	}
	if len(out.DegreeLevels) == 0 {
		out.DegreeLevels = secondary.DegreeLevels
	}
	if len(out.AuthorPriority) == 0 {
		out.AuthorPriority = secondary.AuthorPriority
	}
	if len(out.ExtraConstraints) == 0 {
		out.ExtraConstraints = secondary.ExtraConstraints
	}
	return out
}

func knownVenueList() string {
	return strings.Join(sortedConferences(), ", ")
}
