// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import "errors"

var (
	// ErrSnippetOnly is returned by Preview for domains that are never fetched.
	ErrSnippetOnly = errors.New("domain is served from search snippets only")

	// ErrEmptyConversion is returned when a PDF converter produces no text.
	ErrEmptyConversion = errors.New("pdf converter produced empty output")

	// ErrUnsupportedType is returned for payloads that are neither HTML,
	// plain text nor PDF.
	ErrUnsupportedType = errors.New("unsupported content type")
)

// ErrHTTPStatus wraps non-2xx responses.
var ErrHTTPStatus = errors.New("unexpected HTTP status")
