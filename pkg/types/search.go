// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the talent-scout pipeline:
// the query spec, the per-run research state and the diffs stages return,
// resolved author profiles, candidate cards and configuration.
package types

// SearchHit is one row returned by a search provider. URL is normalized
// before the hit enters the result pool.
type SearchHit struct {
	// Title is the result title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// URL is the result link.
	URL string `json:"url" yaml:"url"`

	// Snippet is the provider's excerpt; the fetcher serves it when a page
	// cannot be fetched.
	Snippet string `json:"snippet" yaml:"snippet"`

	// Engine identifies which provider engine produced the row (e.g. "google").
	Engine string `json:"engine" yaml:"engine"`

	// Term is the search term that produced the row.
	Term string `json:"term" yaml:"term"`
}
