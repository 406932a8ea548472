// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives one talent search run. A Controller walks the
// state machine of fsm.go round by round; every stage reads the research
// state and returns a Diff, and the controller applies each Diff in one
// place. Provider, fetch and model failures degrade inside the stages.
// Only an invalid query spec and cancellation end a run with an error.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/talent-scout/pkg/types"
)

// Interpreter turns the request text into a QuerySpec.
type Interpreter interface {
	Interpret(ctx context.Context, text string) (types.QuerySpec, error)
}

// Planner builds the round's search terms.
type Planner interface {
	Plan(st *types.ResearchState) types.Diff
}

// Router assigns engines to terms.
type Router interface {
	Route(ctx context.Context, terms []string) map[string][]string
}

// Searcher runs the round's terms.
type Searcher interface {
	Run(ctx context.Context, terms []string, routes map[string][]string) types.Diff
}

// Selector picks result URLs to fetch.
type Selector interface {
	Select(ctx context.Context, st *types.ResearchState) types.Diff
}

// Fetcher downloads selected URLs.
type Fetcher interface {
	FetchAll(ctx context.Context, urls []string, snippets map[string]string) types.Diff
}

// Seeder grows the author frontier from paper listings and co-author lists.
type Seeder interface {
	Seed(st *types.ResearchState) types.Diff
	Expand(st *types.ResearchState) types.Diff
}

// Resolver builds author profiles for the next frontier batch.
type Resolver interface {
	Resolve(ctx context.Context, st *types.ResearchState) types.Diff
}

// Reviewer checks resolved profiles against each other.
type Reviewer interface {
	Review(st *types.ResearchState) types.Diff
}

// Gater turns profiles into candidates.
type Gater interface {
	Run(st *types.ResearchState) types.Diff
}

// Synthesizer writes the round's cards and report.
type Synthesizer interface {
	Synthesize(ctx context.Context, st *types.ResearchState) types.Diff
}

// Stages are the components a Controller drives. Every field is required.
type Stages struct {
	Interpreter Interpreter
	Planner     Planner
	Router      Router
	Searcher    Searcher
	Selector    Selector
	Fetcher     Fetcher
	Seeder      Seeder
	Resolver    Resolver
	Reviewer    Reviewer
	Gate        Gater
	Synthesizer Synthesizer
}

func (s Stages) missing() string {
	for _, st := range []struct {
		name string
		ok   bool
	}{
		{"interpreter", s.Interpreter != nil},
		{"planner", s.Planner != nil},
		{"router", s.Router != nil},
		{"searcher", s.Searcher != nil},
		{"selector", s.Selector != nil},
		{"fetcher", s.Fetcher != nil},
		{"seeder", s.Seeder != nil},
		{"resolver", s.Resolver != nil},
		{"reviewer", s.Reviewer != nil},
		{"gate", s.Gate != nil},
		{"synthesizer", s.Synthesizer != nil},
	} {
		if !st.ok {
			return st.name
		}
	}
	return ""
}

// Controller runs the state machine. It holds no per-run state, so one
// Controller may serve concurrent runs.
type Controller struct {
	stages Stages
	cfg    types.PipelineConfig
	logger *zap.Logger
}

// New returns a Controller over stages.
func New(stages Stages, cfg types.PipelineConfig, logger *zap.Logger) (*Controller, error) {
	if name := stages.missing(); name != "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingStage, name)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = 1
	}
	return &Controller{stages: stages, cfg: cfg, logger: logger}, nil
}

// Limits returns the bounds the controller passes to Next.
func (c *Controller) Limits() Limits {
	return Limits{MaxRounds: c.cfg.MaxRounds, SkipExpansionProfiles: c.cfg.SkipExpansionProfiles}
}

// run is the per-run working set.
type run struct {
	st     *types.ResearchState
	logger *zap.Logger

	// round bounds the I/O stages of the current round.
	round  context.Context
	cancel context.CancelFunc
}

func (r *run) endRound() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// Run executes one search for query and returns the final shortlist. The
// returned Result carries the final state even when err is non-nil.
func (c *Controller) Run(ctx context.Context, query string) (types.Result, error) {
	id := uuid.NewString()
	r := &run{
		st:     types.NewResearchState(id, query),
		logger: c.logger.With(zap.String("run_id", id)),
	}
	defer r.endRound()

	start := time.Now()
	limits := c.Limits()
	state := Interpret
	for state != Done {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("run canceled", zap.Stringer("stage", state), zap.Error(err))
			return result(r.st), fmt.Errorf("%w: %w", ErrCanceled, err)
		}
		if c.exhausted(r, state) {
			state = Gate
			continue
		}
		if err := c.step(ctx, r, state); err != nil {
			return result(r.st), err
		}
		next := Next(state, r.st, limits)
		switch {
		case state == Fetch && next == Gate:
			r.logger.Info("skipping author expansion",
				zap.Int("round", r.st.Round),
				zap.Int("profile_links", ProfileLinks(r.st)),
				zap.Int("candidates", len(r.st.Candidates)))
			r.st.Apply(types.Diff{ExpansionSkipped: true})
		case state == Synthesize && next == Plan:
			r.st.Apply(types.Diff{AdvanceRound: true})
		}
		state = next
	}

	res := result(r.st)
	r.logger.Info("run finished",
		zap.Int("rounds", res.Rounds),
		zap.Int("candidates", len(res.Cards)),
		zap.Bool("need_more", res.NeedMore),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

// exhausted reports whether the round's time budget ran out before state.
// The remaining search stages are then skipped and the round goes
// straight to the gate with what it has.
func (c *Controller) exhausted(r *run, state State) bool {
	if r.round == nil || state <= Plan || state >= Gate {
		return false
	}
	if r.round.Err() == nil {
		dl, ok := r.round.Deadline()
		if !ok || time.Now().Before(dl) {
			return false
		}
	}
	r.logger.Warn("round budget exhausted", zap.Int("round", r.st.Round), zap.Stringer("stage", state))
	return true
}

// step runs the stage for state and applies its Diff.
func (c *Controller) step(ctx context.Context, r *run, state State) error {
	st := r.st
	if state == Plan {
		r.endRound()
		if c.cfg.RoundTimeout > 0 {
			r.round, r.cancel = context.WithTimeout(ctx, c.cfg.RoundTimeout)
		} else {
			r.round, r.cancel = context.WithCancel(ctx)
		}
	}

	r.logger.Debug("stage", zap.Stringer("stage", state), zap.Int("round", st.Round))
	var d types.Diff
	switch state {
	case Interpret:
		spec, err := c.stages.Interpreter.Interpret(ctx, st.Query)
		if err != nil {
			return fmt.Errorf("interpreting query: %w", err)
		}
		if c.cfg.TargetCount > 0 {
			spec.TargetCount = c.cfg.TargetCount
		}
		if err := spec.Validate(); err != nil {
			return err
		}
		d.Spec = &spec
	case Plan:
		d = c.stages.Planner.Plan(st)
	case RouteEngines:
		d.Engines = c.stages.Router.Route(r.round, st.Plan.SearchTerms)
	case Search:
		d = c.stages.Searcher.Run(r.round, st.Plan.SearchTerms, st.Plan.Engines)
	case Select:
		d = c.stages.Selector.Select(r.round, st)
	case Fetch:
		urls, snippets := pending(st)
		d = c.stages.Fetcher.FetchAll(r.round, urls, snippets)
	case Seed:
		d = c.stages.Seeder.Seed(st)
	case ResolveAuthors:
		st.Apply(c.stages.Resolver.Resolve(r.round, st))
		d = c.stages.Seeder.Expand(st)
	case VerifyIdentity:
		d = c.stages.Reviewer.Review(st)
	case Gate:
		d = c.stages.Gate.Run(st)
	case Synthesize:
		d = c.stages.Synthesizer.Synthesize(ctx, st)
	}
	st.Apply(d)
	return nil
}

// pending lists the selected URLs not yet attempted, with their snippets.
func pending(st *types.ResearchState) ([]string, map[string]string) {
	var urls []string
	snippets := map[string]string{}
	for _, u := range st.Selected {
		if st.Visited[u] {
			continue
		}
		if _, ok := st.Sources[u]; ok {
			continue
		}
		urls = append(urls, u)
		if h, ok := st.Hit(u); ok {
			snippets[u] = h.Snippet
		}
	}
	return urls, snippets
}

func result(st *types.ResearchState) types.Result {
	return types.Result{
		RunID:     st.RunID,
		Query:     st.Query,
		Spec:      st.Spec,
		Rounds:    st.Round + 1,
		Cards:     st.Cards,
		Citations: st.Citations,
		NeedMore:  st.NeedMore,
		Followups: st.Followups,
		Report:    st.Report,
		State:     st,
	}
}
