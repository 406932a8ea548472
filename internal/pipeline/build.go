// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/pdiddy/talent-scout/internal/advisory"
	"github.com/pdiddy/talent-scout/internal/eligibility"
	"github.com/pdiddy/talent-scout/internal/fetch"
	"github.com/pdiddy/talent-scout/internal/frontier"
	"github.com/pdiddy/talent-scout/internal/identity"
	"github.com/pdiddy/talent-scout/internal/plan"
	"github.com/pdiddy/talent-scout/internal/profile"
	"github.com/pdiddy/talent-scout/internal/query"
	"github.com/pdiddy/talent-scout/internal/search"
	"github.com/pdiddy/talent-scout/internal/selection"
	"github.com/pdiddy/talent-scout/internal/synth"
	"github.com/pdiddy/talent-scout/pkg/types"
)

// Web fetches pages for both the round fetch and profile resolution.
// *fetch.Fetcher satisfies it.
type Web interface {
	Fetcher
	profile.Fetcher
}

// Backends are the outside services a run talks to. A nil Provider or Web
// gets the configured SearXNG instance or HTTP fetcher. Metrics and Model
// stay disabled when nil.
type Backends struct {
	Provider search.Provider
	Web      Web
	Metrics  profile.Metrics
	Model    *advisory.Client
}

// Build wires the standard stages from cfg.
func Build(ctx context.Context, cfg types.Config, b Backends, logger *zap.Logger) (*Controller, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if b.Provider == nil {
		b.Provider = search.NewSearXNG(cfg.Search)
	}
	if b.Web == nil {
		conv, err := fetch.NewConverter(ctx, cfg.Fetch.PDFConverter)
		if err != nil {
			logger.Warn("pdf conversion disabled", zap.Error(err))
			conv = nil
		}
		b.Web = fetch.NewFetcher(cfg.Fetch, conv, logger.Named("fetch"))
	}

	executor, err := search.NewExecutor(b.Provider, cfg.Search, logger.Named("search"))
	if err != nil {
		return nil, err
	}
	router := plan.NewRouter(b.Model, cfg.Search, logger.Named("route"))
	verifier := identity.NewVerifier(b.Model, cfg.Identity, logger.Named("identity"))
	resolver, err := profile.NewResolver(profile.Deps{
		Searcher:  executor,
		Router:    router,
		Fetcher:   b.Web,
		Verifier:  verifier,
		Optimizer: plan.NewQueryOptimizer(b.Model),
		Metrics:   b.Metrics,
		Client:    b.Model,
	}, cfg.Profile, logger.Named("profile"))
	if err != nil {
		return nil, err
	}

	return New(Stages{
		Interpreter: query.NewInterpreter(b.Model, logger.Named("query")),
		Planner:     plan.NewPlanner(query.Aliases, cfg.Search.MaxTerms, logger.Named("plan")),
		Router:      router,
		Searcher:    executor,
		Selector:    selection.NewSelector(b.Model, cfg.Selection, logger.Named("select")),
		Fetcher:     b.Web,
		Seeder:      frontier.NewSeeder(cfg.Frontier, logger.Named("frontier")),
		Resolver:    resolver,
		Reviewer:    verifier,
		Gate:        eligibility.NewGate(cfg.Eligibility, logger.Named("gate")),
		Synthesizer: synth.NewSynthesizer(b.Model, cfg.Synthesis, logger.Named("synth")),
	}, cfg.Pipeline, logger)
}
