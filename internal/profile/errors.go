// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package profile

import "errors"

// ErrMissingDependency is returned when a Resolver lacks its searcher,
// fetcher or verifier.
var ErrMissingDependency = errors.New("profile resolver dependency missing")
