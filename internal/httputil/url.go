// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"net/url"
	"regexp"
	"strings"
)

var trackingParams = map[string]bool{"gclid": true, "fbclid": true, "mc_eid": true}

// NormalizeURL strips the fragment, tracking parameters (utm_*, gclid,
// fbclid) and a trailing slash, and lower-cases the host. The scheme is kept.
// Strings that do not parse as absolute URLs are returned trimmed.
// NormalizeURL is idempotent.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	if u.RawQuery != "" {
		q := u.Query()
		dropped := false
		for k := range q {
			lk := strings.ToLower(k)
			if strings.HasPrefix(lk, "utm_") || trackingParams[lk] {
				q.Del(k)
				dropped = true
			}
		}
		if dropped {
			u.RawQuery = q.Encode()
		}
	}
	u.ForceQuery = false

	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = strings.TrimRight(u.RawPath, "/")
	return u.String()
}

// IsHTTP reports whether raw is an absolute http(s) URL.
func IsHTTP(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

// DomainOf returns the lower-cased host of raw without port and "www.".
func DomainOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

var institutionalPattern = regexp.MustCompile(`(?i)\.(edu|ac\.[a-z]{2,})(\.[a-z]{2})?(\b|$)`)

// Institutional reports whether s (a host, URL or e-mail domain) belongs to
// an academic institution (.edu, .ac.uk, .edu.cn, ...).
func Institutional(s string) bool {
	return institutionalPattern.MatchString(s)
}
