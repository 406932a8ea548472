// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search runs search terms against a web search provider and
// returns a URL-deduplicated result pool. It also holds a Semantic Scholar
// client used for author metrics.
package search

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pdiddy/talent-scout/internal/httputil"
	"github.com/pdiddy/talent-scout/pkg/types"
)

// Executor fans search terms out to a provider over a bounded worker pool.
// Calls share one rate limiter, so concurrency never exceeds the
// configured request rate.
type Executor struct {
	provider      Provider
	limiter       *rate.Limiter
	pages         int
	perPage       int
	workers       int
	timeout       time.Duration
	defaultEngine string
	logger        *zap.Logger
}

// NewExecutor returns an Executor over p. A nil provider is a programming
// error.
func NewExecutor(p Provider, cfg types.SearchConfig, logger *zap.Logger) (*Executor, error) {
	if p == nil {
		return nil, ErrNoProvider
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	pages := cfg.Pages
	if pages <= 0 {
		pages = 1
	}
	def := cfg.DefaultEngine
	if def == "" {
		def = "google"
	}
	return &Executor{
		provider:      p,
		limiter:       rate.NewLimiter(limit, 1),
		pages:         pages,
		perPage:       cfg.ResultsPerPage,
		workers:       workers,
		timeout:       cfg.Timeout,
		defaultEngine: def,
		logger:        logger,
	}, nil
}

// Run searches every term with the configured page and row bounds.
func (e *Executor) Run(ctx context.Context, terms []string, routes map[string][]string) types.Diff {
	return e.RunPages(ctx, terms, routes, e.pages, e.perPage)
}

// RunPages searches every term on up to pages pages, keeping perPage rows
// per page. Terms run concurrently; the returned Diff lists hits in term
// order, deduplicated by normalized URL, and every term that was attempted.
// Provider failures only cost the failing term its rows.
func (e *Executor) RunPages(ctx context.Context, terms []string, routes map[string][]string, pages, perPage int) types.Diff {
	rows := make([][]types.SearchHit, len(terms))
	attempted := make([]bool, len(terms))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, term := range terms {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			attempted[i] = true
			rows[i] = e.searchTerm(gctx, term, e.engines(routes[term]), pages, perPage)
			return nil
		})
	}
	_ = g.Wait()

	var d types.Diff
	seen := make(map[string]bool)
	for i, term := range terms {
		if !attempted[i] {
			continue
		}
		d.Searched = append(d.Searched, term)
		for _, h := range rows[i] {
			if seen[h.URL] {
				continue
			}
			seen[h.URL] = true
			d.Hits = append(d.Hits, h)
		}
	}
	e.logger.Info("search batch done",
		zap.Int("terms", len(terms)),
		zap.Int("searched", len(d.Searched)),
		zap.Int("results", len(d.Hits)))
	return d
}

func (e *Executor) engines(routed []string) []string {
	if len(routed) == 0 {
		return []string{e.defaultEngine}
	}
	return routed
}

// searchTerm pages through one term until a page comes back empty, fails,
// or the page bound is reached.
func (e *Executor) searchTerm(ctx context.Context, term string, engines []string, pages, perPage int) []types.SearchHit {
	var out []types.SearchHit
	for page := 1; page <= pages; page++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return out
		}
		hits, err := e.call(ctx, Request{Query: term, Engines: engines, Page: page, Limit: perPage})
		if err != nil {
			e.logger.Warn("search call failed",
				zap.String("term", term),
				zap.Strings("engines", engines),
				zap.Int("page", page),
				zap.Error(err))
			return out
		}
		if len(hits) == 0 {
			return out
		}
		for _, h := range hits {
			u := httputil.NormalizeURL(h.URL)
			if !httputil.IsHTTP(u) {
				continue
			}
			h.URL = u
			h.Term = term
			if h.Engine == "" {
				h.Engine = strings.Join(engines, ",")
			}
			out = append(out, h)
		}
	}
	return out
}

func (e *Executor) call(ctx context.Context, req Request) ([]types.SearchHit, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	return e.provider.Search(ctx, req)
}
