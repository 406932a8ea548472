// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package plan

import (
	"context"
	"encoding/json"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/pdiddy/talent-scout/internal/advisory"
	"github.com/pdiddy/talent-scout/pkg/types"
)

// maxRouted caps how many ambiguous terms go to the advisory router in one
// call; the rest use the rules.
const maxRouted = 60

// maxEnginesPerTerm caps the engines assigned to one term.
const maxEnginesPerTerm = 2

var routePromptTmpl = template.Must(template.New("route").Parse(`You are a search-engine router for a metasearch service.
For each query string, choose 1-2 engines from this allowed set:
{{.Allowed}}

Guidelines:
- paper database or citation queries: google scholar
- preprint IDs or arxiv: arxiv
- DOIs and metadata: crossref
- code repositories: github
- encyclopedia facts: wikipedia, wikidata
- everything else: google, startpage or brave (prefer google)

Return STRICT JSON:
{"routes": [{"q": "<query>", "engines": ["google", "arxiv"]}]}

QUERIES:
{{.Queries}}
`))

type routeReply struct {
	Routes []struct {
		Q       string   `json:"q"`
		Engines []string `json:"engines"`
	} `json:"routes"`
}

// rule maps a term pattern to engines. Rules are checked in order.
type rule struct {
	match   func(lower string) bool
	engines []string
}

func containsAny(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if strings.Contains(s, sub) {
				return true
			}
		}
		return false
	}
}

var routingRules = []rule{
	{containsAny("arxiv"), []string{"arxiv", "google"}},
	{containsAny("crossref", "doi"), []string{"crossref", "google"}},
	{containsAny("semantic scholar", "semanticscholar.org"), []string{"google"}},
	{containsAny("openreview"), []string{"google", "startpage"}},
	{containsAny("github"), []string{"github", "google"}},
	{containsAny("wikipedia", "wikidata"), []string{"wikipedia", "wikidata"}},
	{containsAny("scholar", "h-index"), []string{"google scholar", "google"}},
}

// Heuristic returns the rule-based engines for term and whether a specific
// rule (not the default) matched.
func Heuristic(term, defaultEngine string) ([]string, bool) {
	lower := strings.ToLower(term)
	for _, r := range routingRules {
		if r.match(lower) {
			return r.engines, true
		}
	}
	return []string{defaultEngine}, false
}

// Router assigns provider engines to search terms.
type Router struct {
	client        *advisory.Client
	allowed       map[string]bool
	allowedList   []string
	defaultEngine string
	logger        *zap.Logger
}

// NewRouter returns a Router restricted to cfg.AllowedEngines. client may
// be nil.
func NewRouter(client *advisory.Client, cfg types.SearchConfig, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := cfg.DefaultEngine
	if def == "" {
		def = "google"
	}
	allowed := make(map[string]bool, len(cfg.AllowedEngines))
	for _, e := range cfg.AllowedEngines {
		allowed[e] = true
	}
	return &Router{client: client, allowed: allowed, allowedList: cfg.AllowedEngines, defaultEngine: def, logger: logger}
}

// Route returns one or two engines for every term. Pattern rules win; terms
// the rules leave on the default engine may be re-routed by the advisory
// model, and anything it omits or gets wrong falls back to the rules.
func (r *Router) Route(ctx context.Context, terms []string) map[string][]string {
	routes := make(map[string][]string, len(terms))
	var ambiguous []string
	for _, t := range terms {
		engines, specific := Heuristic(t, r.defaultEngine)
		routes[t] = r.filter(engines)
		if !specific && len(ambiguous) < maxRouted {
			ambiguous = append(ambiguous, t)
		}
	}

	overridden := 0
	if r.client != nil && len(ambiguous) > 0 {
		asked := make(map[string]bool, len(ambiguous))
		for _, t := range ambiguous {
			asked[t] = true
		}
		for q, engines := range r.advise(ctx, ambiguous) {
			if !asked[q] {
				continue
			}
			if picked := r.allowedOnly(engines); len(picked) > 0 {
				routes[q] = picked
				overridden++
			}
		}
	}
	r.logger.Debug("routed terms", zap.Int("terms", len(terms)), zap.Int("ambiguous", len(ambiguous)), zap.Int("advised", overridden))
	return routes
}

func (r *Router) advise(ctx context.Context, terms []string) map[string][]string {
	queries, err := json.MarshalIndent(terms, "", "  ")
	if err != nil {
		return nil
	}
	prompt, err := advisory.Render(routePromptTmpl, struct {
		Allowed string
		Queries string
	}{strings.Join(r.allowedList, ", "), string(queries)})
	if err != nil {
		return nil
	}
	reply := advisory.SafeStructured(ctx, r.client, "route", prompt, routeReply{})
	out := make(map[string][]string, len(reply.Routes))
	for _, it := range reply.Routes {
		if it.Q != "" {
			out[it.Q] = it.Engines
		}
	}
	return out
}

// allowedOnly keeps allowed engines, deduplicated, at most two.
func (r *Router) allowedOnly(engines []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, e := range engines {
		e = strings.ToLower(strings.TrimSpace(e))
		if !r.allowed[e] || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
		if len(out) >= maxEnginesPerTerm {
			break
		}
	}
	return out
}

// filter restricts rule engines to the allowed set and never returns an
// empty list.
func (r *Router) filter(engines []string) []string {
	if len(r.allowed) == 0 {
		return engines
	}
	if out := r.allowedOnly(engines); len(out) > 0 {
		return out
	}
	return []string{r.defaultEngine}
}
