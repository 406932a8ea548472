// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package platform

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/talent-scout/internal/httputil"
	"github.com/pdiddy/talent-scout/pkg/types"
)

// Of returns the platform a URL belongs to, or "" when it is not a known
// profile host. Institutional hosts map to PlatformUniversity and
// github.io sites to PlatformHomepage.
func Of(raw string) types.Platform {
	d := httputil.DomainOf(raw)
	switch {
	case d == "":
		return ""
	case hostIs(d, "orcid.org"):
		return types.PlatformORCID
	case hostIs(d, "openreview.net"):
		return types.PlatformOpenReview
	case strings.HasPrefix(d, "scholar.google."):
		return types.PlatformScholar
	case hostIs(d, "semanticscholar.org"):
		return types.PlatformSemanticScholar
	case hostIs(d, "dblp.org"), hostIs(d, "dblp.uni-trier.de"):
		return types.PlatformDBLP
	case strings.HasSuffix(d, ".github.io"):
		return types.PlatformHomepage
	case hostIs(d, "github.com"):
		return types.PlatformGitHub
	case hostIs(d, "huggingface.co"):
		return types.PlatformHuggingFace
	case hostIs(d, "researchgate.net"):
		return types.PlatformResearchGate
	case hostIs(d, "twitter.com"), hostIs(d, "x.com"):
		return types.PlatformTwitter
	case hostIs(d, "linkedin.com"):
		return types.PlatformLinkedIn
	case httputil.Institutional(d):
		return types.PlatformUniversity
	}
	return ""
}

// hostIs reports whether host is domain or one of its subdomains.
func hostIs(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

var profilePathPattern = regexp.MustCompile(`(?i)/people/|/~|profile`)

// ProfileLike reports whether a URL looks like a person's page rather than
// a paper list: profile platforms, personal sites and institutional pages.
func ProfileLike(raw string) bool {
	d := httputil.DomainOf(raw)
	for _, host := range []string{"openreview.net", "semanticscholar.org", "linkedin.com", "twitter.com", "x.com", "github.io", "github.com", "orcid.org"} {
		if strings.Contains(d, host) {
			return true
		}
	}
	return httputil.Institutional(raw) || profilePathPattern.MatchString(raw)
}

var (
	orcidID       = regexp.MustCompile(`\b(\d{4}-\d{4}-\d{4}-\d{3}[\dX])\b`)
	openReviewID  = regexp.MustCompile(`openreview\.net/profile\?(?:.*&)?id=([^&#\s]+)`)
	scholarID     = regexp.MustCompile(`scholar\.google\.[a-z.]+/citations\?(?:.*&)?user=([\w-]+)`)
	semanticID    = regexp.MustCompile(`semanticscholar\.org/author/(?:[^/?#]+/)?(\d+)`)
	dblpID        = regexp.MustCompile(`dblp\.(?:org|uni-trier\.de)/(?:pid|pers(?:/hd)?)/([\w/.-]+?)(?:\.html)?(?:[?#]|$)`)
	twitterID     = regexp.MustCompile(`(?:twitter|x)\.com/([A-Za-z0-9_]{1,15})(?:[/?#]|$)`)
	githubID      = regexp.MustCompile(`github\.com/([A-Za-z0-9-]{1,39})(?:[/?#]|$)`)
	githubPagesID = regexp.MustCompile(`//([A-Za-z0-9-]{1,39})\.github\.io`)
	linkedInID    = regexp.MustCompile(`linkedin\.com/in/([\w%-]+)`)
	huggingFaceID = regexp.MustCompile(`huggingface\.co/([\w-]+)(?:[/?#]|$)`)
)

// reserved path segments that are site pages, not user names.
var (
	reservedTwitter = set("home", "search", "intent", "share", "i", "hashtag", "explore", "settings", "login", "signup", "tos", "privacy")
	reservedGitHub  = set("orgs", "topics", "search", "features", "about", "pricing", "login", "join", "explore", "marketplace", "sponsors", "collections", "trending", "settings", "enterprise", "site", "apps")
	reservedHF      = set("papers", "datasets", "models", "spaces", "docs", "blog", "login", "join", "pricing", "organizations", "collections", "posts", "learn")
)

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

// ExtractIDs returns the canonical identifiers a URL carries, keyed by
// platform. ORCID iDs are recognised anywhere in the URL.
func ExtractIDs(raw string) map[types.Platform]string {
	out := map[types.Platform]string{}
	if m := orcidID.FindStringSubmatch(raw); m != nil {
		out[types.PlatformORCID] = m[1]
	}
	if m := openReviewID.FindStringSubmatch(raw); m != nil {
		if id, err := url.QueryUnescape(m[1]); err == nil {
			out[types.PlatformOpenReview] = id
		}
	}
	if m := scholarID.FindStringSubmatch(raw); m != nil {
		out[types.PlatformScholar] = m[1]
	}
	if m := semanticID.FindStringSubmatch(raw); m != nil {
		out[types.PlatformSemanticScholar] = m[1]
	}
	if m := dblpID.FindStringSubmatch(raw); m != nil {
		out[types.PlatformDBLP] = m[1]
	}
	if m := twitterID.FindStringSubmatch(raw); m != nil && !reservedTwitter[strings.ToLower(m[1])] && Of(raw) == types.PlatformTwitter {
		out[types.PlatformTwitter] = m[1]
	}
	if m := githubID.FindStringSubmatch(raw); m != nil && !reservedGitHub[strings.ToLower(m[1])] {
		out[types.PlatformGitHub] = m[1]
	} else if m := githubPagesID.FindStringSubmatch(raw); m != nil {
		out[types.PlatformGitHub] = m[1]
	}
	if m := linkedInID.FindStringSubmatch(raw); m != nil {
		out[types.PlatformLinkedIn] = m[1]
	}
	if m := huggingFaceID.FindStringSubmatch(raw); m != nil && !reservedHF[strings.ToLower(m[1])] {
		out[types.PlatformHuggingFace] = m[1]
	}
	return out
}

var validPatterns = map[types.Platform]*regexp.Regexp{
	types.PlatformORCID:           regexp.MustCompile(`^https?://(?:www\.)?orcid\.org/\d{4}-\d{4}-\d{4}-\d{3}[\dX]$`),
	types.PlatformOpenReview:      regexp.MustCompile(`^https?://(?:www\.)?openreview\.net/profile\?(?:.*&)?id=[^&#\s]+`),
	types.PlatformScholar:         regexp.MustCompile(`^https?://scholar\.google\.[a-z.]+/citations\?(?:.*&)?user=[\w-]+`),
	types.PlatformSemanticScholar: regexp.MustCompile(`^https?://(?:www\.)?semanticscholar\.org/author/(?:[^/?#]+/)?\d+$`),
	types.PlatformDBLP:            regexp.MustCompile(`^https?://dblp\.(?:org|uni-trier\.de)/(?:pid|pers(?:/hd)?)/[\w/.-]+$`),
	types.PlatformGitHub:          regexp.MustCompile(`^https?://(?:www\.)?github\.com/[A-Za-z0-9-]{1,39}$`),
	types.PlatformHuggingFace:     regexp.MustCompile(`^https?://huggingface\.co/[\w-]+$`),
	types.PlatformResearchGate:    regexp.MustCompile(`^https?://(?:www\.)?researchgate\.net/profile/[^/?#]+$`),
	types.PlatformTwitter:         regexp.MustCompile(`^https?://(?:www\.|mobile\.)?(?:twitter|x)\.com/[A-Za-z0-9_]{1,15}$`),
	types.PlatformLinkedIn:        regexp.MustCompile(`^https?://(?:[a-z]{2,3}\.|www\.)?linkedin\.com/in/[\w%-]+$`),
}

// nonHomepage matches publisher, preprint and paper URLs that are never
// somebody's homepage.
var nonHomepage = regexp.MustCompile(`(?i)(arxiv\.org|openreview\.net/pdf|/pdf(/|$)|/abs/|proceedings|/paper|/eprint/|/doi/|doi\.org|acm\.org|ieee\.org|springer|elsevier|wiley\.com|\.pdf$)`)

// Valid reports whether u has the shape of a real profile on p. URLs are
// compared after NormalizeURL.
func Valid(p types.Platform, u string) bool {
	u = httputil.NormalizeURL(u)
	if !httputil.IsHTTP(u) {
		return false
	}
	switch p {
	case types.PlatformHomepage, types.PlatformUniversity:
		if nonHomepage.MatchString(u) {
			return false
		}
		of := Of(u)
		if p == types.PlatformUniversity {
			return of == types.PlatformUniversity
		}
		return of == "" || of == types.PlatformHomepage || of == types.PlatformUniversity
	case types.PlatformTwitter:
		m := twitterID.FindStringSubmatch(u)
		return validPatterns[p].MatchString(u) && m != nil && !reservedTwitter[strings.ToLower(m[1])]
	case types.PlatformGitHub:
		m := githubID.FindStringSubmatch(u)
		return validPatterns[p].MatchString(u) && m != nil && !reservedGitHub[strings.ToLower(m[1])]
	case types.PlatformHuggingFace:
		m := huggingFaceID.FindStringSubmatch(u)
		return validPatterns[p].MatchString(u) && m != nil && !reservedHF[strings.ToLower(m[1])]
	}
	re, ok := validPatterns[p]
	return ok && re.MatchString(u)
}
