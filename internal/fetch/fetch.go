// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads selected pages and normalizes them into a text
// block of the form
//
//	SNIPPET: <search engine preview>
//	TITLE: <page title>
//	BODY:
//	<main text>
//	SOURCE: <url>
//
// The snippet always comes first so pages behind logins or bot walls still
// contribute what the search engine showed. HTML goes through a title chain
// and a body chain; PDFs are counted with pdfcpu and optionally converted
// to text in a container.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pdiddy/talent-scout/internal/httputil"
	"github.com/pdiddy/talent-scout/pkg/types"
)

// Document is the outcome of fetching one URL.
type Document struct {
	URL         string
	Snippet     string
	Title       string
	Body        string
	ContentType string

	// HTML is the decoded markup for HTML pages, kept for link parsing.
	HTML string

	// Pages is the PDF page count, 0 for other types.
	Pages int

	// SnippetOnly marks domains that were never requested.
	SnippetOnly bool

	// Blocked marks pages whose body looked like a login or bot wall.
	Blocked bool

	// Text is the normalized block, truncated to MaxChars.
	Text string

	// OK reports whether the document carries at least MinTextLength
	// characters of snippet, title and body.
	OK bool

	Err error
}

// Fetcher downloads pages over a shared, rate-limited HTTP client.
type Fetcher struct {
	client    *http.Client
	cfg       types.FetchConfig
	limiter   *rate.Limiter
	converter Converter
	logger    *zap.Logger
}

// NewFetcher returns a Fetcher. converter may be nil.
func NewFetcher(cfg types.FetchConfig, converter Converter, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 4 << 20
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Fetcher{
		client:    httputil.NewClient(cfg.HTTPConfig),
		cfg:       cfg,
		limiter:   rate.NewLimiter(limit, 1),
		converter: converter,
		logger:    logger,
	}
}

// SnippetOnly reports whether u belongs to a domain that is never fetched.
func (f *Fetcher) SnippetOnly(u string) bool {
	d := httputil.DomainOf(u)
	for _, s := range f.cfg.SnippetOnlyDomains {
		s = strings.ToLower(strings.TrimPrefix(s, "www."))
		if d == s || strings.HasSuffix(d, "."+s) {
			return true
		}
	}
	return false
}

// Fetch downloads u and normalizes it, waiting on the shared rate limiter.
// Failures are reported in Document.Err; the snippet still fills the text
// block.
func (f *Fetcher) Fetch(ctx context.Context, u, snippet string) Document {
	d := Document{URL: u, Snippet: strings.Join(strings.Fields(snippet), " ")}
	if f.SnippetOnly(u) {
		d.SnippetOnly = true
		d.Title = slugTitle(u)
		return f.finish(d)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		d.Err = err
		return f.finish(d)
	}
	data, ct, err := f.get(ctx, u)
	if err != nil {
		d.Err = err
		f.logger.Warn("fetch failed", zap.String("url", u), zap.Error(err))
		return f.finish(d)
	}
	d.ContentType = ct

	switch {
	case isPDF(ct, u, data):
		d.Body, d.Pages = f.pdfBody(ctx, u, data)
	case strings.Contains(ct, "html"):
		f.parseHTML(&d, data, ct)
	case strings.HasPrefix(ct, "text/plain"), strings.HasPrefix(ct, "text/markdown"):
		d.Body = clean(string(data))
	default:
		d.Err = fmt.Errorf("%w: %s", ErrUnsupportedType, ct)
	}
	return f.finish(d)
}

func (f *Fetcher) parseHTML(d *Document, data []byte, ct string) {
	r, err := charset.NewReader(bytes.NewReader(data), ct)
	if err != nil {
		r = bytes.NewReader(data)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		decoded = data
	}
	doc, err := html.Parse(bytes.NewReader(decoded))
	if err != nil {
		d.Err = fmt.Errorf("parsing html: %w", err)
		return
	}
	d.HTML = string(decoded)
	d.Title = Title(doc)
	d.Body = Body(doc)
	if blocked(d.Body) {
		d.Blocked = true
		d.Body = ""
	}
}

// get performs the request, following redirects, and returns at most
// MaxBodyBytes of the body with its effective content type.
func (f *Fetcher) get(ctx context.Context, u string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,application/pdf;q=0.8,*/*;q=0.5")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := httputil.DoWithRetry(ctx, f.client, req, 1)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("%w: %d", ErrHTTPStatus, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes))
	if err != nil {
		return nil, "", fmt.Errorf("reading body: %w", err)
	}
	return data, detectContentType(resp.Header.Get("Content-Type"), data), nil
}

// detectContentType trusts a specific header and sniffs otherwise.
func detectContentType(header string, data []byte) string {
	header = strings.ToLower(strings.TrimSpace(header))
	if header != "" && !strings.HasPrefix(header, "application/octet-stream") {
		return header
	}
	return strings.ToLower(http.DetectContentType(data))
}

// finish assembles the text block and decides OK.
func (f *Fetcher) finish(d Document) Document {
	var parts []string
	if d.Snippet != "" {
		parts = append(parts, "SNIPPET: "+d.Snippet)
	}
	if d.Title != "" {
		parts = append(parts, "TITLE: "+d.Title)
	}
	if d.Body != "" {
		parts = append(parts, "BODY:\n"+d.Body)
	}
	parts = append(parts, "SOURCE: "+d.URL)
	d.Text = truncate(strings.Join(parts, "\n\n"), f.cfg.MaxChars)

	content := len(strings.TrimSpace(d.Snippet)) + len(strings.TrimSpace(d.Title)) + len(strings.TrimSpace(d.Body))
	d.OK = content > 0 && content >= f.cfg.MinTextLength
	return d
}

// Preview returns up to n characters of u's title and body for identity
// pre-checks. Snippet-only domains return ErrSnippetOnly.
func (f *Fetcher) Preview(ctx context.Context, u string, n int) (string, error) {
	if f.SnippetOnly(u) {
		return "", ErrSnippetOnly
	}
	d := f.Fetch(ctx, u, "")
	if d.Err != nil {
		return "", d.Err
	}
	text := strings.TrimSpace(d.Title + "\n" + d.Body)
	if n <= 0 {
		n = f.cfg.PreviewChars
	}
	return truncate(text, n), nil
}

// FetchAll fetches urls over a bounded worker pool. Every attempted URL is
// marked visited; only OK documents become sources. URLs not started
// before ctx ends are left unvisited.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string, snippets map[string]string) types.Diff {
	var uniq []string
	seen := map[string]bool{}
	for _, u := range urls {
		if u != "" && !seen[u] {
			seen[u] = true
			uniq = append(uniq, u)
		}
	}

	docs := make([]*Document, len(uniq))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.Workers)
	for i, u := range uniq {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			d := f.Fetch(gctx, u, snippets[u])
			if d.Err != nil && gctx.Err() != nil {
				return nil
			}
			docs[i] = &d
			return nil
		})
	}
	_ = g.Wait()

	d := types.Diff{Sources: map[string]string{}, SourcesHTML: map[string]string{}}
	failed := 0
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		d.Visited = append(d.Visited, doc.URL)
		if !doc.OK {
			failed++
			continue
		}
		d.Sources[doc.URL] = doc.Text
		if doc.HTML != "" {
			d.SourcesHTML[doc.URL] = doc.HTML
		}
	}
	f.logger.Info("fetch batch done",
		zap.Int("urls", len(uniq)),
		zap.Int("visited", len(d.Visited)),
		zap.Int("fetched", len(d.Sources)),
		zap.Int("failed", failed))
	return d
}

// blockHints appear on login walls, bot checks and script-only shells.
var (
	strongBlockHints = []string{"please enable javascript", "are you a robot", "verify you are human", "access denied", "captcha"}
	weakBlockHints   = []string{"sign in", "log in", "subscribe"}
)

// blocked reports whether body looks like a wall instead of content.
// Strong hints count on short pages, weak hints only on very short ones.
func blocked(body string) bool {
	lower := strings.ToLower(body)
	if len(body) < 2000 && containsAny(lower, strongBlockHints) {
		return true
	}
	return len(body) < 300 && containsAny(lower, weakBlockHints)
}

// slugTitle guesses a readable title from ResearchGate publication URLs.
func slugTitle(u string) string {
	pu, err := url.Parse(u)
	if err != nil || !strings.Contains(pu.Host, "researchgate.net") {
		return ""
	}
	_, rest, ok := strings.Cut(pu.Path, "/publication/")
	if !ok {
		return ""
	}
	slug, _, _ := strings.Cut(rest, "/")
	if i := strings.IndexByte(slug, '_'); i > 0 && strings.Trim(slug[:i], "0123456789") == "" {
		slug = slug[i+1:]
	}
	return strings.TrimSpace(strings.ReplaceAll(slug, "_", " "))
}

func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}
