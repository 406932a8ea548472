// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package profile

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/pdiddy/talent-scout/internal/fetch"
	"github.com/pdiddy/talent-scout/internal/httputil"
	"github.com/pdiddy/talent-scout/internal/platform"
	"github.com/pdiddy/talent-scout/pkg/types"
)

// minHomepageScore is the HomepageScore a page needs to fill the homepage slot.
const minHomepageScore = 1.0

var (
	homepageNeg  = regexp.MustCompile(`(?i)(arxiv\.org|openreview\.net/pdf|/pdf$|/abs/|proceedings|paper|/eprint/|/doi/|acm\.org|ieee\.org|springer|elsevier)`)
	homepagePos  = regexp.MustCompile(`(?i)(\.edu|\.ac\.[a-z]{2,}|github\.io|/~|/people/|/faculty/|/staff/|/users/|/homepages?/)`)
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
)

var (
	navWords  = []string{"publications", "research", "teaching", "cv", "bio", "service", "students", "projects", "talks"}
	homeWords = []string{"home", "homepage", "bio", "about"}
)

// HomepageScore rates how much u with markup rawHTML looks like name's
// personal homepage. Paper and publisher URLs score far below zero;
// personal paths, navigation words, a contact address and the author's
// first name push the score up.
func HomepageScore(u, rawHTML, name string) float64 {
	lower := strings.ToLower(u)
	s := 0.0
	if homepageNeg.MatchString(lower) {
		s -= 8
	}
	if homepagePos.MatchString(lower) {
		s += 6
	}
	if strings.HasSuffix(lower, ".pdf") {
		s -= 10
	}
	if strings.TrimSpace(rawHTML) == "" {
		return s
	}
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return s
	}

	title := ""
	if t := fetch.Elements(doc, "title"); len(t) > 0 {
		title = strings.ToLower(inline(t[0]))
	}
	heads := []string{title}
	fetch.Walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && (n.Data == "h1" || n.Data == "h2") {
			heads = append(heads, strings.ToLower(inline(n)))
		}
		return len(heads) < 4
	})
	if containsAny(strings.Join(heads, " "), homeWords) {
		s += 2
	}

	var anchors []string
	for i, a := range fetch.Elements(doc, "a") {
		if i >= 60 {
			break
		}
		anchors = append(anchors, inline(a))
	}
	nav := strings.ToLower(strings.Join(anchors, " "))
	for _, w := range navWords {
		if strings.Contains(nav, w) {
			s += 0.6
		}
	}
	if emailPattern.MatchString(fetch.Text(doc)) {
		s += 2
	}
	if tokens := strings.Fields(strings.ToLower(name)); len(tokens) > 0 && strings.Contains(title+" "+nav, tokens[0]) {
		s++
	}
	return s
}

// Link is a platform URL found on a page.
type Link struct {
	Platform types.Platform
	URL      string
}

// PageLinks returns the profile links on a page: every anchor whose
// target is a valid profile URL of a known platform, first per platform.
func PageLinks(rawHTML, pageURL string) []Link {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}
	var out []Link
	seen := map[types.Platform]bool{}
	for _, a := range fetch.Elements(doc, "a") {
		u := resolve(pageURL, fetch.Attr(a, "href"))
		p := platform.Of(u)
		if p == "" || p == types.PlatformUniversity || p == types.PlatformHomepage || seen[p] || !platform.Valid(p, u) {
			continue
		}
		seen[p] = true
		out = append(out, Link{Platform: p, URL: httputil.NormalizeURL(u)})
	}
	return out
}

// OpenReviewLinks returns the external links an OpenReview profile lists:
// Scholar, GitHub, Twitter/X and LinkedIn by host, and a homepage when
// the anchor label says so.
func OpenReviewLinks(rawHTML string) []Link {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}
	found := map[types.Platform]string{}
	var order []types.Platform
	set := func(p types.Platform, u string) {
		if _, ok := found[p]; !ok {
			order = append(order, p)
		}
		found[p] = u
	}
	for _, a := range fetch.Elements(doc, "a") {
		href := strings.TrimSpace(fetch.Attr(a, "href"))
		if href == "" {
			continue
		}
		label := strings.ToLower(inline(a))
		switch p := platform.Of(href); {
		case p == types.PlatformScholar, p == types.PlatformGitHub, p == types.PlatformTwitter:
			set(p, href)
		case p == types.PlatformLinkedIn && strings.Contains(href, "linkedin.com/in"):
			set(p, href)
		case httputil.IsHTTP(href) && p != types.PlatformOpenReview && containsAny(label, []string{"home", "personal", "site"}):
			set(types.PlatformHomepage, href)
		}
	}
	out := make([]Link, 0, len(order))
	for _, p := range order {
		out = append(out, Link{Platform: p, URL: httputil.NormalizeURL(found[p])})
	}
	return out
}

// SemanticScholarLD reads the JSON-LD blocks of a Semantic Scholar author
// page: affiliation names (affiliations, worksFor) and sameAs links.
func SemanticScholarLD(rawHTML string) ([]string, []Link) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, nil
	}
	var affs []string
	var links []Link
	seen := map[types.Platform]bool{}
	for _, s := range fetch.Elements(doc, "script") {
		if !strings.EqualFold(fetch.Attr(s, "type"), "application/ld+json") || s.FirstChild == nil {
			continue
		}
		for _, obj := range fetch.JSONLD(s.FirstChild.Data) {
			affs = append(affs, names(obj["affiliations"])...)
			affs = append(affs, names(obj["worksFor"])...)
			same, _ := obj["sameAs"].([]any)
			for _, v := range same {
				u, _ := v.(string)
				p := platform.Of(u)
				switch p {
				case types.PlatformScholar, types.PlatformGitHub, types.PlatformTwitter, types.PlatformLinkedIn:
				default:
					continue
				}
				if !seen[p] {
					seen[p] = true
					links = append(links, Link{Platform: p, URL: httputil.NormalizeURL(u)})
				}
			}
		}
	}
	return types.DedupeStrings(affs, 0), links
}

// names collects "name" fields from a JSON-LD value that may be a string,
// an object or a list of either.
func names(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case map[string]any:
		if s, ok := t["name"].(string); ok {
			return []string{s}
		}
	case []any:
		var out []string
		for _, it := range t {
			out = append(out, names(it)...)
		}
		return out
	}
	return nil
}

// BelongsTo reports whether a harvested link plausibly points at name's
// own account. Handle-based platforms need a name token (3+ letters) in
// the handle; Scholar links need a user id.
func BelongsTo(l Link, name string) bool {
	if !platform.Valid(l.Platform, l.URL) {
		return false
	}
	switch l.Platform {
	case types.PlatformTwitter, types.PlatformLinkedIn, types.PlatformGitHub, types.PlatformHuggingFace:
		handle := strings.ToLower(platform.ExtractIDs(l.URL)[l.Platform])
		if handle == "" {
			return false
		}
		for _, tok := range platform.NameTokens(name) {
			if len(tok) > 2 && strings.Contains(handle, tok) {
				return true
			}
		}
		return false
	case types.PlatformScholar:
		return platform.ExtractIDs(l.URL)[types.PlatformScholar] != ""
	}
	return true
}

var (
	systemMailboxes = []string{"info@", "admin@", "support@", "contact@", "webmaster@", "noreply@", "no-reply@", "help@", "service@", "office@", "secretary@", "dept@", "department@", "marketing@", "sales@"}
	placeholderMail = []string{"****", "xxx@", "example@", "test@", "dummy@", "fake@"}
	corporateMail   = []string{"@google.com", "@microsoft.com", "@amazon.com", "@meta.com", "@apple.com", "@nvidia.com", "@openai.com", "@anthropic.com"}
)

// Emails returns the addresses on a page that plausibly belong to name:
// mailto links and addresses in the text, without system mailboxes,
// placeholders or corporate addresses.
func Emails(rawHTML, text, name string) []string {
	var found []string
	if rawHTML != "" {
		if doc, err := html.Parse(strings.NewReader(rawHTML)); err == nil {
			for _, a := range fetch.Elements(doc, "a") {
				if href := fetch.Attr(a, "href"); strings.HasPrefix(strings.ToLower(href), "mailto:") {
					addr, _, _ := strings.Cut(href[len("mailto:"):], "?")
					found = append(found, addr)
				}
			}
			text += "\n" + fetch.Text(doc)
		}
	}
	found = append(found, emailPattern.FindAllString(text, -1)...)

	var out []string
	for _, e := range found {
		e = strings.ToLower(strings.TrimSpace(e))
		if RelevantEmail(e, name) {
			out = append(out, e)
		}
	}
	return types.DedupeStrings(out, 0)
}

// RelevantEmail reports whether e may be name's own address. A name token
// in the local part is enough; otherwise only institutional addresses pass.
func RelevantEmail(e, name string) bool {
	e = strings.ToLower(e)
	local, domain, ok := strings.Cut(e, "@")
	if !ok || local == "" || !strings.Contains(domain, ".") {
		return false
	}
	if hasPrefix(e, systemMailboxes) || containsAny(e, placeholderMail) || containsAny(e, corporateMail) {
		return false
	}
	var tokens []string
	for _, t := range platform.NameTokens(name) {
		if len(t) > 2 {
			tokens = append(tokens, t)
		}
	}
	hits := 0
	for _, t := range tokens {
		if strings.Contains(local, t) {
			hits++
		}
	}
	if len(tokens) > 0 && float64(hits) >= float64(len(tokens))*0.5 {
		return true
	}
	return httputil.Institutional(domain)
}

func resolve(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "mailto:") {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	r, err := b.Parse(href)
	if err != nil {
		return ""
	}
	return r.String()
}

func inline(n *html.Node) string {
	return strings.Join(strings.Fields(fetch.Text(n)), " ")
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func hasPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
