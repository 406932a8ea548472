// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package advisory

import "errors"

var (
	// ErrNoModel is returned when no advisory model is configured.
	ErrNoModel = errors.New("no advisory model configured")

	// ErrNoJSON is returned when a reply holds no parsable JSON object.
	ErrNoJSON = errors.New("no JSON object in model reply")

	// ErrInvalid is returned when a decoded reply fails its schema check.
	ErrInvalid = errors.New("model reply failed validation")
)
