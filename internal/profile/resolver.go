// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package profile resolves frontier authors into cross-platform profiles.
// For each author it runs discovery queries, scores the hits, fetches the
// promising pages, verifies that each page belongs to the author and
// merges what the verified pages say. Platform slots follow the trust
// order of package platform and are only replaced by a better URL.
package profile

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/talent-scout/internal/advisory"
	"github.com/pdiddy/talent-scout/internal/fetch"
	"github.com/pdiddy/talent-scout/internal/httputil"
	"github.com/pdiddy/talent-scout/internal/identity"
	"github.com/pdiddy/talent-scout/internal/plan"
	"github.com/pdiddy/talent-scout/internal/platform"
	"github.com/pdiddy/talent-scout/internal/search"
	"github.com/pdiddy/talent-scout/pkg/types"
)

// Bounds on what one verified page contributes.
const (
	excerptChars    = 2000
	previewChars    = 2000
	verifyChars     = 1000
	startConfidence = 0.3
)

// Searcher runs discovery queries. *search.Executor satisfies it.
type Searcher interface {
	RunPages(ctx context.Context, terms []string, routes map[string][]string, pages, perPage int) types.Diff
}

// Router assigns engines to queries. *plan.Router satisfies it.
type Router interface {
	Route(ctx context.Context, terms []string) map[string][]string
}

// Fetcher downloads candidate pages. *fetch.Fetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, u, snippet string) fetch.Document
	Preview(ctx context.Context, u string, n int) (string, error)
}

// Metrics looks up citation metrics. *search.ScholarClient satisfies it.
type Metrics interface {
	Author(ctx context.Context, authorID string) (search.AuthorMetrics, error)
	FindAuthor(ctx context.Context, name string) (search.AuthorMetrics, error)
}

// Deps are the collaborators of a Resolver. Router, Optimizer, Metrics
// and Client are optional.
type Deps struct {
	Searcher  Searcher
	Router    Router
	Fetcher   Fetcher
	Verifier  *identity.Verifier
	Optimizer *plan.QueryOptimizer
	Metrics   Metrics
	Client    *advisory.Client
}

// Resolver turns frontier authors into profiles.
type Resolver struct {
	searcher  Searcher
	router    Router
	fetcher   Fetcher
	verifier  *identity.Verifier
	optimizer *plan.QueryOptimizer
	metrics   Metrics
	client    *advisory.Client
	cfg       types.ProfileConfig
	logger    *zap.Logger
}

// NewResolver returns a Resolver over d.
func NewResolver(d Deps, cfg types.ProfileConfig, logger *zap.Logger) (*Resolver, error) {
	if d.Searcher == nil || d.Fetcher == nil || d.Verifier == nil {
		return nil, ErrMissingDependency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Resolver{
		searcher:  d.Searcher,
		router:    d.Router,
		fetcher:   d.Fetcher,
		verifier:  d.Verifier,
		optimizer: d.Optimizer,
		metrics:   d.Metrics,
		client:    d.Client,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// outcome is what resolving one author produced.
type outcome struct {
	profile  types.AuthorProfile
	hits     []types.SearchHit
	searched []string
	visited  []string
	sources  map[string]string
	html     map[string]string
}

// Resolve resolves the next batch of unvisited frontier authors, up to
// AuthorsPerRound, over a bounded worker pool. Every author that was
// started is marked visited whatever the outcome. The returned Diff also
// carries the discovery hits and the verified pages as sources.
func (r *Resolver) Resolve(ctx context.Context, st *types.ResearchState) types.Diff {
	var batch []types.FrontierEntry
	for _, e := range st.Frontier {
		if r.cfg.AuthorsPerRound > 0 && len(batch) >= r.cfg.AuthorsPerRound {
			break
		}
		if !e.Visited {
			batch = append(batch, e)
		}
	}

	outs := make([]*outcome, len(batch))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i, e := range batch {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			outs[i] = r.resolveAuthor(gctx, st, e)
			return nil
		})
	}
	_ = g.Wait()

	d := types.Diff{Sources: map[string]string{}, SourcesHTML: map[string]string{}}
	verified := 0
	for _, o := range outs {
		if o == nil {
			continue
		}
		d.VisitedAuthors = append(d.VisitedAuthors, o.profile.Name)
		d.Profiles = append(d.Profiles, o.profile)
		d.Hits = append(d.Hits, o.hits...)
		d.Searched = append(d.Searched, o.searched...)
		d.Visited = append(d.Visited, o.visited...)
		for u, t := range o.sources {
			d.Sources[u] = t
		}
		for u, h := range o.html {
			d.SourcesHTML[u] = h
		}
		if len(o.profile.Evidence) > 0 {
			verified++
		}
	}
	r.logger.Info("resolved authors",
		zap.Int("round", st.Round),
		zap.Int("authors", len(d.VisitedAuthors)),
		zap.Int("verified", verified),
		zap.Int("pages", len(d.Visited)))
	return d
}

func (r *Resolver) resolveAuthor(ctx context.Context, st *types.ResearchState, e types.FrontierEntry) *outcome {
	prof := baseProfile(st, e)
	paper := ""
	if len(prof.SeedPapers) > 0 {
		paper = prof.SeedPapers[0]
	}

	queries := plan.AuthorQueries(e.Name, prof.SeedPapers, r.cfg.QueriesPerAuthor)
	queries = append(queries, r.optimizer.Optimize(ctx, e.Name, prof.SeedPapers, prof.Platforms)...)
	var fresh []string
	for _, q := range types.DedupeStrings(queries, 0) {
		if !st.Searched(q) {
			fresh = append(fresh, q)
		}
	}
	var routes map[string][]string
	if r.router != nil {
		routes = r.router.Route(ctx, fresh)
	}
	sd := r.searcher.RunPages(ctx, fresh, routes, 1, r.cfg.ResultsPerQuery)

	out := &outcome{hits: sd.Hits, searched: sd.Searched, sources: map[string]string{}, html: map[string]string{}}
	v := &visit{r: r, st: st, prof: &prof, paper: paper, out: out, protected: map[types.Platform]bool{}}
	home := false
	for _, c := range r.pick(ctx, e.Name, paper, sd.Hits) {
		if ctx.Err() != nil {
			break
		}
		if personal(c.kind) {
			if !home {
				home = v.homepage(ctx, c)
			}
			continue
		}
		v.profilePage(ctx, c)
	}
	r.addMetrics(ctx, &prof)
	r.finish(&prof)

	r.logger.Debug("resolved author",
		zap.String("author", prof.Name),
		zap.Int("platforms", len(prof.Platforms)),
		zap.Int("evidence", len(prof.Evidence)),
		zap.Float64("confidence", prof.Confidence))
	out.profile = prof
	return out
}

// visit holds the per-author working state while candidate pages are read.
type visit struct {
	r     *Resolver
	st    *types.ResearchState
	prof  *types.AuthorProfile
	paper string
	out   *outcome

	// protected platforms were filled from a verified homepage and are not
	// replaced by later pages.
	protected map[types.Platform]bool
}

// homepage previews a personal page, verifies it and reads it in full.
// It reports whether the page was accepted.
func (v *visit) homepage(ctx context.Context, c candidate) bool {
	name, u := v.prof.Name, c.hit.URL
	preview, err := v.preview(ctx, u)
	if err != nil {
		v.r.logger.Debug("homepage preview failed", zap.String("url", u), zap.Error(err))
		return false
	}
	vd := v.r.verifier.VerifyPreview(ctx, name, v.paper, u, preview)
	if !vd.Accepted {
		return false
	}

	doc := v.document(ctx, c)
	if !doc.OK {
		return false
	}
	if s := HomepageScore(u, doc.HTML, name); s < minHomepageScore {
		v.r.logger.Debug("not a homepage", zap.String("url", u), zap.Float64("score", s))
		return false
	}
	v.accept(doc, vd)
	if v.setPlatform(c.kind, u) {
		v.protected[c.kind] = true
	}
	for _, l := range PageLinks(doc.HTML, u) {
		if BelongsTo(l, name) && v.setPlatform(l.Platform, l.URL) {
			v.protected[l.Platform] = true
		}
	}
	v.prof.Emails = append(v.prof.Emails, Emails(doc.HTML, doc.Text, name)...)
	v.merge(v.r.extract(ctx, name, c.kind, doc.Text), c.kind, doc, true)
	return true
}

// profilePage fetches a platform page, verifies it and merges it.
func (v *visit) profilePage(ctx context.Context, c candidate) {
	name, u := v.prof.Name, c.hit.URL
	doc := v.document(ctx, c)
	if !doc.OK {
		return
	}
	vd := v.r.verifier.Verify(ctx, name, c.kind, u, clip(doc.Text, verifyChars))
	if !vd.Accepted {
		return
	}
	v.accept(doc, vd)
	if !v.protected[c.kind] {
		v.setPlatform(c.kind, u)
	}

	var links []Link
	switch c.kind {
	case types.PlatformOpenReview:
		links = OpenReviewLinks(doc.HTML)
	case types.PlatformSemanticScholar:
		affs, ld := SemanticScholarLD(doc.HTML)
		if len(affs) > 0 {
			v.setAffiliation(affs[0], c.kind)
		}
		links = ld
	}
	for _, l := range links {
		if !v.protected[l.Platform] && BelongsTo(l, name) {
			v.setPlatform(l.Platform, l.URL)
		}
	}
	v.prof.Emails = append(v.prof.Emails, Emails(doc.HTML, "", name)...)
	v.merge(v.r.extract(ctx, name, c.kind, doc.Text), c.kind, doc, false)
}

// preview returns the start of u, from the run's sources when the page
// was already fetched.
func (v *visit) preview(ctx context.Context, u string) (string, error) {
	if text, ok := v.st.Sources[u]; ok {
		return clip(text, previewChars), nil
	}
	return v.r.fetcher.Preview(ctx, u, previewChars)
}

// document fetches c, reusing the run's sources when the page was
// already fetched. Every download is recorded as visited.
func (v *visit) document(ctx context.Context, c candidate) fetch.Document {
	u := c.hit.URL
	if text, ok := v.st.Sources[u]; ok {
		return fetch.Document{URL: u, Snippet: c.hit.Snippet, Body: text, Text: text, HTML: v.st.SourcesHTML[u], OK: true}
	}
	doc := v.r.fetcher.Fetch(ctx, u, c.hit.Snippet)
	v.out.visited = append(v.out.visited, u)
	return doc
}

// accept records a verified page as evidence and as a run source.
func (v *visit) accept(doc fetch.Document, vd identity.Verdict) {
	v.prof.Evidence = types.DedupeStrings(append(v.prof.Evidence, doc.URL), 0)
	body := doc.Body
	if body == "" {
		body = doc.Text
	}
	v.prof.Excerpts = append(v.prof.Excerpts, clip(body, excerptChars))
	v.prof.Confidence = max(v.prof.Confidence, vd.Confidence)
	for p, id := range platform.ExtractIDs(doc.URL) {
		if v.prof.PlatformIDs[p] == "" {
			v.prof.PlatformIDs[p] = id
		}
	}
	v.out.sources[doc.URL] = doc.Text
	if doc.HTML != "" {
		v.out.html[doc.URL] = doc.HTML
	}
}

// setPlatform fills p's slot with u when u is a valid profile URL that
// beats the current one on quality. It reports whether the slot changed.
func (v *visit) setPlatform(p types.Platform, u string) bool {
	u = httputil.NormalizeURL(u)
	if !platform.Valid(p, u) {
		return false
	}
	if !platform.ShouldReplace(p, v.prof.Platforms[p], u, v.prof.Name, v.r.cfg.Quality) {
		return false
	}
	v.prof.Platforms[p] = u
	if id := platform.ExtractIDs(u)[p]; id != "" {
		v.prof.PlatformIDs[p] = id
	}
	return true
}

// setAffiliation keeps the affiliation read from the most trusted platform.
func (v *visit) setAffiliation(aff string, src types.Platform) {
	aff = strings.TrimSpace(aff)
	if aff == "" {
		return
	}
	if v.prof.Affiliation == "" || platform.Compare(src, v.prof.AffiliationSource) > 0 {
		v.prof.Affiliation = aff
		v.prof.AffiliationSource = src
	}
}

// merge folds extracted fields into the profile. Emails and social links
// must occur verbatim on the page; links from a homepage are protected.
func (v *visit) merge(ext extraction, src types.Platform, doc fetch.Document, homepage bool) {
	p := v.prof
	page := doc.Text + "\n" + doc.HTML
	p.Aliases = append(p.Aliases, ext.Aliases...)
	v.setAffiliation(ext.Affiliation, src)
	for _, e := range ext.Emails {
		if e = strings.ToLower(strings.TrimSpace(e)); strings.Contains(strings.ToLower(page), e) && RelevantEmail(e, p.Name) {
			p.Emails = append(p.Emails, e)
		}
	}
	p.Interests = append(p.Interests, ext.Interests...)
	for _, pub := range ext.SelectedPublications {
		p.SelectedPublications = append(p.SelectedPublications, pub.String())
	}
	p.NotableAchievements = append(p.NotableAchievements, ext.NotableAchievements...)
	if p.SocialImpact == "" {
		p.SocialImpact = strings.TrimSpace(ext.SocialImpact)
	}
	if p.CareerStage == "" {
		p.CareerStage = strings.TrimSpace(ext.CareerStage)
	}

	for key, u := range ext.SocialLinks {
		pl, ok := linkKeys[strings.ToLower(key)]
		u = strings.TrimSpace(u)
		if !ok || u == "" || u == doc.URL || !verbatim(u, page) {
			continue
		}
		if !strings.HasPrefix(u, "http") {
			u = "https://" + u
		}
		l := Link{Platform: pl, URL: u}
		if pl != types.PlatformHomepage && !BelongsTo(l, p.Name) {
			continue
		}
		switch {
		case homepage:
			if v.setPlatform(pl, u) {
				v.protected[pl] = true
			}
		case !v.protected[pl]:
			v.setPlatform(pl, u)
		}
	}
}

// addMetrics fills SocialImpact from Semantic Scholar: by id when the
// profile has one, otherwise by an exact name match for a profile that has
// verified evidence.
func (r *Resolver) addMetrics(ctx context.Context, p *types.AuthorProfile) {
	if r.metrics == nil || ctx.Err() != nil {
		return
	}
	var (
		m   search.AuthorMetrics
		err error
	)
	if id := p.PlatformIDs[types.PlatformSemanticScholar]; id != "" {
		m, err = r.metrics.Author(ctx, id)
	} else {
		if len(p.Evidence) == 0 {
			return
		}
		m, err = r.metrics.FindAuthor(ctx, p.Name)
		if err == nil && !strings.EqualFold(strings.TrimSpace(m.Name), strings.TrimSpace(p.Name)) {
			return
		}
	}
	if err != nil {
		r.logger.Debug("author metrics unavailable", zap.String("author", p.Name), zap.Error(err))
		return
	}
	p.SocialImpact = m.Summary()
	if p.PlatformIDs[types.PlatformSemanticScholar] == "" && m.AuthorID != "" {
		p.PlatformIDs[types.PlatformSemanticScholar] = m.AuthorID
	}
	if len(m.Affiliations) > 0 && (p.Affiliation == "" || platform.Compare(types.PlatformSemanticScholar, p.AffiliationSource) > 0) {
		p.Affiliation = m.Affiliations[0]
		p.AffiliationSource = types.PlatformSemanticScholar
	}
}

// finish deduplicates and caps the list fields.
func (r *Resolver) finish(p *types.AuthorProfile) {
	p.Aliases = cleanAliases(p.Aliases, p.Name, r.cfg.MaxAliases)
	p.Emails = types.DedupeStrings(p.Emails, 0)
	p.Interests = types.DedupeStrings(p.Interests, r.cfg.MaxInterests)
	p.SelectedPublications = types.DedupeStrings(p.SelectedPublications, r.cfg.MaxPublications)
	p.NotableAchievements = types.DedupeStrings(p.NotableAchievements, r.cfg.MaxAchievements)
	if p.CareerStage == "" {
		p.CareerStage = CareerStage(strings.Join(p.Excerpts, "\n"))
	}
	p.Confidence = min(1, p.Confidence)
}

// baseProfile returns a private copy of the author's existing profile, or
// a fresh one, with the frontier's seed papers folded in.
func baseProfile(st *types.ResearchState, e types.FrontierEntry) types.AuthorProfile {
	p, ok := st.Profiles[e.Name]
	if !ok {
		p = types.AuthorProfile{Name: e.Name, Confidence: startConfidence}
	}
	c := p
	c.Platforms = make(map[types.Platform]string, len(p.Platforms))
	for k, u := range p.Platforms {
		c.Platforms[k] = u
	}
	c.PlatformIDs = make(map[types.Platform]string, len(p.PlatformIDs))
	for k, id := range p.PlatformIDs {
		c.PlatformIDs[k] = id
	}
	c.Aliases = append([]string(nil), p.Aliases...)
	c.Emails = append([]string(nil), p.Emails...)
	c.Interests = append([]string(nil), p.Interests...)
	c.SelectedPublications = append([]string(nil), p.SelectedPublications...)
	c.NotableAchievements = append([]string(nil), p.NotableAchievements...)
	c.Evidence = append([]string(nil), p.Evidence...)
	c.Excerpts = append([]string(nil), p.Excerpts...)
	c.SeedPapers = types.DedupeStrings(append(append([]string(nil), p.SeedPapers...), e.SeedPapers...), 0)
	return c
}
