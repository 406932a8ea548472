// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import "errors"

var (
	// ErrMissingStage is returned by New when a required stage is nil.
	ErrMissingStage = errors.New("pipeline stage missing")

	// ErrCanceled wraps the context error when a run is canceled.
	ErrCanceled = errors.New("run canceled")
)
