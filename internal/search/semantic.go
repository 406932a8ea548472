// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/talent-scout/internal/httputil"
	"github.com/pdiddy/talent-scout/pkg/types"
)

// semanticAPIBase is the Semantic Scholar graph API root. Declared as a var
// so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1"

const semanticAuthorFields = "name,affiliations,homepage,paperCount,citationCount,hIndex,url,externalIds"

// AuthorMetrics is the Semantic Scholar view of one author.
type AuthorMetrics struct {
	AuthorID      string
	Name          string
	Affiliations  []string
	Homepage      string
	URL           string
	ORCID         string
	PaperCount    int
	CitationCount int
	HIndex        int
}

// Summary renders the metrics as a one-line social-impact note.
func (m AuthorMetrics) Summary() string {
	return fmt.Sprintf("h-index %d, %d citations across %d papers (Semantic Scholar)", m.HIndex, m.CitationCount, m.PaperCount)
}

// ScholarClient looks up author metrics on Semantic Scholar.
type ScholarClient struct {
	Client *http.Client
	APIKey string
}

// NewScholarClient returns a client configured from cfg.
func NewScholarClient(cfg types.SearchConfig) *ScholarClient {
	return &ScholarClient{Client: httputil.NewClient(cfg.HTTPConfig), APIKey: cfg.SemanticScholarAPIKey}
}

// Author fetches one author by Semantic Scholar id.
func (c *ScholarClient) Author(ctx context.Context, authorID string) (AuthorMetrics, error) {
	if authorID == "" {
		return AuthorMetrics{}, ErrAuthorNotFound
	}
	params := url.Values{"fields": {semanticAuthorFields}}
	var a semanticAuthor
	if err := c.get(ctx, "/author/"+url.PathEscape(authorID)+"?"+params.Encode(), &a); err != nil {
		return AuthorMetrics{}, err
	}
	if a.AuthorID == "" {
		return AuthorMetrics{}, ErrAuthorNotFound
	}
	return a.metrics(), nil
}

// FindAuthor searches by name and returns the best match: an exact
// (case-insensitive) name first, otherwise the first result containing
// every name token.
func (c *ScholarClient) FindAuthor(ctx context.Context, name string) (AuthorMetrics, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return AuthorMetrics{}, ErrAuthorNotFound
	}
	params := url.Values{
		"query":  {name},
		"limit":  {"5"},
		"fields": {semanticAuthorFields},
	}
	var sr semanticAuthorSearch
	if err := c.get(ctx, "/author/search?"+params.Encode(), &sr); err != nil {
		return AuthorMetrics{}, err
	}

	want := strings.ToLower(name)
	for _, a := range sr.Data {
		if strings.ToLower(a.Name) == want {
			return a.metrics(), nil
		}
	}
	tokens := strings.Fields(want)
	for _, a := range sr.Data {
		got := strings.ToLower(a.Name)
		all := true
		for _, tok := range tokens {
			if !strings.Contains(got, tok) {
				all = false
				break
			}
		}
		if all {
			return a.metrics(), nil
		}
	}
	return AuthorMetrics{}, ErrAuthorNotFound
}

func (c *ScholarClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, semanticAPIBase+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.APIKey != "" {
		req.Header.Set("x-api-key", c.APIKey)
	}
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrAuthorNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}
	return nil
}

// Semantic Scholar API JSON structures.
type semanticAuthorSearch struct {
	Total int              `json:"total"`
	Data  []semanticAuthor `json:"data"`
}

type semanticAuthor struct {
	AuthorID      string         `json:"authorId"`
	Name          string         `json:"name"`
	Affiliations  []string       `json:"affiliations"`
	Homepage      string         `json:"homepage"`
	URL           string         `json:"url"`
	PaperCount    int            `json:"paperCount"`
	CitationCount int            `json:"citationCount"`
	HIndex        int            `json:"hIndex"`
	ExternalIDs   map[string]any `json:"externalIds"`
}

func (a semanticAuthor) metrics() AuthorMetrics {
	m := AuthorMetrics{
		AuthorID:      a.AuthorID,
		Name:          a.Name,
		Affiliations:  a.Affiliations,
		Homepage:      a.Homepage,
		URL:           a.URL,
		PaperCount:    a.PaperCount,
		CitationCount: a.CitationCount,
		HIndex:        a.HIndex,
	}
	if orcid, ok := a.ExternalIDs["ORCID"].(string); ok {
		m.ORCID = orcid
	}
	return m
}
