// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import "errors"

// ErrNoRuntime is returned by Detect when no container runtime works.
var ErrNoRuntime = errors.New("no container runtime available")
