// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/talent-scout/internal/httputil"
	"github.com/pdiddy/talent-scout/pkg/types"
)

// Request is one paged query against a provider.
type Request struct {
	Query   string
	Engines []string

	// Page is 1-based.
	Page int

	// Limit caps the rows kept from the page; 0 keeps all.
	Limit int
}

// Provider runs web searches. Each implementation (SearXNG, test stubs)
// satisfies this interface; the executor treats every error as an empty
// page.
type Provider interface {
	Name() string
	Search(ctx context.Context, req Request) ([]types.SearchHit, error)
}

// SearXNG queries a SearXNG instance through its JSON API.
type SearXNG struct {
	BaseURL string
	Client  *http.Client
}

// NewSearXNG returns a provider for the instance at cfg.SearXNGURL.
func NewSearXNG(cfg types.SearchConfig) *SearXNG {
	return &SearXNG{BaseURL: cfg.SearXNGURL, Client: httputil.NewClient(cfg.HTTPConfig)}
}

// Name returns the provider identifier.
func (s *SearXNG) Name() string { return "searxng" }

// Search fetches one result page.
func (s *SearXNG) Search(ctx context.Context, req Request) ([]types.SearchHit, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, ErrEmptyTerm
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	params := url.Values{
		"q":      {req.Query},
		"format": {"json"},
		"pageno": {strconv.Itoa(page)},
	}
	if len(req.Engines) > 0 {
		params.Set("engines", strings.Join(req.Engines, ","))
	}
	reqURL := strings.TrimRight(s.BaseURL, "/") + "/search?" + params.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, httpReq, 0)
	if err != nil {
		return nil, fmt.Errorf("SearXNG request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("SearXNG returned HTTP %d", resp.StatusCode)
	}

	var sr searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing SearXNG response: %w", err)
	}

	var hits []types.SearchHit
	for _, r := range sr.Results {
		if r.URL == "" {
			continue
		}
		engine := r.Engine
		if engine == "" && len(r.Engines) > 0 {
			engine = r.Engines[0]
		}
		hits = append(hits, types.SearchHit{
			Title:   strings.TrimSpace(r.Title),
			URL:     r.URL,
			Snippet: strings.TrimSpace(r.Content),
			Engine:  engine,
		})
		if req.Limit > 0 && len(hits) >= req.Limit {
			break
		}
	}
	return hits, nil
}

// SearXNG JSON structures.
type searxngResponse struct {
	Query   string          `json:"query"`
	Results []searxngResult `json:"results"`
}

type searxngResult struct {
	Title   string   `json:"title"`
	URL     string   `json:"url"`
	Content string   `json:"content"`
	Engine  string   `json:"engine"`
	Engines []string `json:"engines"`
}
