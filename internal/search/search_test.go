// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/talent-scout/pkg/types"
)

// --- stub provider ---

type stubProvider struct {
	mu    sync.Mutex
	pages map[string][][]types.SearchHit // term → pages
	fail  map[string]bool
	calls []Request
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Search(_ context.Context, req Request) ([]types.SearchHit, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()
	if s.fail[req.Query] {
		return nil, errors.New("provider down")
	}
	pages := s.pages[req.Query]
	if req.Page > len(pages) {
		return nil, nil
	}
	return pages[req.Page-1], nil
}

func testCfg() types.SearchConfig {
	cfg := types.DefaultConfig().Search
	cfg.RequestsPerSecond = 0
	cfg.Timeout = time.Second
	return cfg
}

// --- Executor ---

func TestNewExecutorRequiresProvider(t *testing.T) {
	if _, err := NewExecutor(nil, testCfg(), nil); !errors.Is(err, ErrNoProvider) {
		t.Errorf("NewExecutor(nil) error = %v, want ErrNoProvider", err)
	}
}

func TestRunDedupesAndNormalizes(t *testing.T) {
	p := &stubProvider{pages: map[string][][]types.SearchHit{
		"a": {
			{{Title: "A1", URL: "https://Example.com/x/#top"}, {Title: "A2", URL: "mailto:someone@example.com"}},
			{{Title: "A3", URL: "https://example.com/y?utm_source=feed"}},
		},
		"b": {
			{{Title: "B1", URL: "https://example.com/x"}, {Title: "B2", URL: "https://other.org/z/", Engine: "brave"}},
		},
	}}
	e, err := NewExecutor(p, testCfg(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}

	d := e.Run(context.Background(), []string{"a", "b"}, map[string][]string{"b": {"brave"}})

	var urls []string
	for _, h := range d.Hits {
		urls = append(urls, h.URL)
	}
	want := []string{"https://example.com/x", "https://example.com/y", "https://other.org/z"}
	if strings.Join(urls, " ") != strings.Join(want, " ") {
		t.Errorf("hits = %v, want %v", urls, want)
	}
	if d.Hits[0].Term != "a" || d.Hits[0].Engine != "google" {
		t.Errorf("first hit term/engine = %q/%q, want a/google", d.Hits[0].Term, d.Hits[0].Engine)
	}
	if d.Hits[2].Engine != "brave" {
		t.Errorf("provider engine overwritten: %q", d.Hits[2].Engine)
	}
	if len(d.Searched) != 2 {
		t.Errorf("searched = %v, want both terms", d.Searched)
	}
}

func TestRunIdempotentDedup(t *testing.T) {
	p := &stubProvider{pages: map[string][][]types.SearchHit{
		"a": {{{URL: "https://example.com/p/"}, {URL: "https://example.com/p#x"}, {URL: "HTTPS://EXAMPLE.COM/p"}}},
	}}
	e, _ := NewExecutor(p, testCfg(), zaptest.NewLogger(t))

	first := e.Run(context.Background(), []string{"a"}, nil)
	second := e.Run(context.Background(), []string{"a"}, nil)
	if len(first.Hits) != 1 || len(second.Hits) != 1 || first.Hits[0].URL != second.Hits[0].URL {
		t.Errorf("dedup not idempotent: %v vs %v", first.Hits, second.Hits)
	}

	s := types.NewResearchState("r", "q")
	s.Apply(first)
	s.Apply(second)
	if len(s.Results) != 1 {
		t.Errorf("pool has %d results after merging twice, want 1", len(s.Results))
	}
}

func TestRunFailingTermYieldsNothing(t *testing.T) {
	p := &stubProvider{
		pages: map[string][][]types.SearchHit{"ok": {{{URL: "https://ok.example/1"}}}},
		fail:  map[string]bool{"bad": true},
	}
	e, _ := NewExecutor(p, testCfg(), zaptest.NewLogger(t))
	d := e.Run(context.Background(), []string{"bad", "ok"}, nil)
	if len(d.Hits) != 1 || d.Hits[0].URL != "https://ok.example/1" {
		t.Errorf("hits = %v, want only the ok term's row", d.Hits)
	}
	if len(d.Searched) != 2 {
		t.Errorf("failed term should still count as searched, got %v", d.Searched)
	}
}

func TestRunPageBound(t *testing.T) {
	var pages [][]types.SearchHit
	for i := 1; i <= 5; i++ {
		pages = append(pages, []types.SearchHit{{URL: fmt.Sprintf("https://example.com/%d", i)}})
	}
	p := &stubProvider{pages: map[string][][]types.SearchHit{"a": pages}}
	cfg := testCfg()
	cfg.Pages = 2
	e, _ := NewExecutor(p, cfg, zaptest.NewLogger(t))

	d := e.Run(context.Background(), []string{"a"}, nil)
	if len(d.Hits) != 2 {
		t.Errorf("got %d hits, want 2 (page bound)", len(d.Hits))
	}
	for _, c := range p.calls {
		if c.Limit != cfg.ResultsPerPage {
			t.Errorf("request limit = %d, want %d", c.Limit, cfg.ResultsPerPage)
		}
	}
}

func TestRunStopsOnEmptyPage(t *testing.T) {
	p := &stubProvider{pages: map[string][][]types.SearchHit{"a": {{{URL: "https://example.com/1"}}}}}
	e, _ := NewExecutor(p, testCfg(), zaptest.NewLogger(t))
	e.Run(context.Background(), []string{"a"}, nil)
	if len(p.calls) != 2 {
		t.Errorf("provider called %d times, want 2 (page 2 empty)", len(p.calls))
	}
}

func TestRunCancelled(t *testing.T) {
	p := &stubProvider{pages: map[string][][]types.SearchHit{"a": {{{URL: "https://example.com/1"}}}}}
	e, _ := NewExecutor(p, testCfg(), zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := e.Run(ctx, []string{"a", "b", "c"}, nil)
	if len(d.Hits) != 0 {
		t.Errorf("cancelled run returned %d hits", len(d.Hits))
	}
}

// --- SearXNG ---

func TestSearXNGRequest(t *testing.T) {
	var got *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"query":"q","results":[
			{"title":" T1 ","url":"https://a.example/1","content":"snip","engine":"google"},
			{"title":"no url","url":""},
			{"title":"T2","url":"https://a.example/2","engines":["brave","google"]},
			{"title":"T3","url":"https://a.example/3"}
		]}`)
	}))
	defer ts.Close()

	s := &SearXNG{BaseURL: ts.URL + "/", Client: ts.Client()}
	hits, err := s.Search(context.Background(), Request{Query: "agents 2024", Engines: []string{"google", "arxiv"}, Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	q := got.URL.Query()
	if got.URL.Path != "/search" || q.Get("q") != "agents 2024" || q.Get("format") != "json" ||
		q.Get("pageno") != "2" || q.Get("engines") != "google,arxiv" {
		t.Errorf("unexpected request %s", got.URL)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2 (limit)", len(hits))
	}
	if hits[0].Title != "T1" || hits[0].Snippet != "snip" || hits[0].Engine != "google" {
		t.Errorf("hit 0 = %+v", hits[0])
	}
	if hits[1].Engine != "brave" {
		t.Errorf("hit 1 engine = %q, want brave", hits[1].Engine)
	}
}

func TestSearXNGErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"malformed json", func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, "<html>") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()
			s := &SearXNG{BaseURL: ts.URL, Client: ts.Client()}
			if _, err := s.Search(context.Background(), Request{Query: "x"}); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}

	s := &SearXNG{BaseURL: "http://unused"}
	if _, err := s.Search(context.Background(), Request{Query: "  "}); !errors.Is(err, ErrEmptyTerm) {
		t.Errorf("blank query error = %v, want ErrEmptyTerm", err)
	}
}

func TestExecutorOverSearXNG(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.URL.Query().Get("q"))
		mu.Unlock()
		if r.URL.Query().Get("pageno") != "1" {
			fmt.Fprint(w, `{"results":[]}`)
			return
		}
		fmt.Fprintf(w, `{"results":[{"title":"t","url":"https://x.example/%s"}]}`, r.URL.Query().Get("q"))
	}))
	defer ts.Close()

	cfg := testCfg()
	cfg.SearXNGURL = ts.URL
	e, _ := NewExecutor(NewSearXNG(cfg), cfg, zaptest.NewLogger(t))
	d := e.Run(context.Background(), []string{"one", "two", "three"}, nil)
	if len(d.Hits) != 3 {
		t.Errorf("got %d hits, want 3", len(d.Hits))
	}
	sort.Strings(seen)
	if len(seen) != 6 {
		t.Errorf("server saw %d requests, want 6 (2 pages × 3 terms)", len(seen))
	}
}
