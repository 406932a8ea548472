// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// ErrInvalidSpec reports a QuerySpec that violates its count or cap invariants.
var ErrInvalidSpec = errors.New("invalid query spec")
