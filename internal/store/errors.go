// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import "errors"

var (
	// ErrRunNotFound reports an unknown run ID or prefix.
	ErrRunNotFound = errors.New("run not found")

	// ErrAmbiguousRun reports an ID prefix shared by several runs.
	ErrAmbiguousRun = errors.New("run id prefix is ambiguous")

	// ErrNoRunID reports a result without a run ID.
	ErrNoRunID = errors.New("result has no run id")

	// ErrEmptySearch reports a blank candidate search.
	ErrEmptySearch = errors.New("empty search query")
)
