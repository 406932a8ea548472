// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import "errors"

var (
	// ErrEmptyTerm is returned for a blank search term.
	ErrEmptyTerm = errors.New("empty search term")

	// ErrNoProvider is returned when an executor has no provider.
	ErrNoProvider = errors.New("no search provider configured")

	// ErrAuthorNotFound is returned when Semantic Scholar has no matching author.
	ErrAuthorNotFound = errors.New("author not found")
)
