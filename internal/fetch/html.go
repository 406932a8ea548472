// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"encoding/json"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	multiNewlinePattern = regexp.MustCompile(`\n{3,}`)
	multiSpacePattern   = regexp.MustCompile(`[ \t\r\f\v]{2,}`)
	titleSeparator      = regexp.MustCompile(`\s+[|\-]\s+|\s+·\s+|\s+–\s+`)
)

// skipped elements never contribute visible text.
var skipped = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true, "svg": true,
	"iframe": true, "nav": true, "footer": true, "header": true, "form": true, "button": true,
}

// blockElements end a line of text.
var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true, "li": true,
	"ul": true, "ol": true, "tr": true, "table": true, "br": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "dd": true, "dt": true, "blockquote": true, "pre": true,
}

// navWords mark headings that are site chrome rather than a page title.
var navWords = []string{"menu", "navigation", "nav", "search", "login", "sign", "home", "about", "contact", "subscribe", "cookie"}

// jsonLDTypes are schema.org types whose headline or name is the page title.
var jsonLDTypes = map[string]bool{
	"article": true, "newsarticle": true, "blogposting": true, "webpage": true,
	"scholarlyarticle": true, "report": true, "profilepage": true,
}

// Attr returns the value of attribute key on n.
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// Walk calls fn on n and every descendant in document order until fn
// returns false.
func Walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !Walk(c, fn) {
			return false
		}
	}
	return true
}

// Elements returns every element named tag under n.
func Elements(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && c.Data == tag {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Text returns the visible text under n with block elements on separate
// lines and whitespace collapsed.
func Text(n *html.Node) string {
	var sb strings.Builder
	writeText(n, &sb, 0)
	return clean(sb.String())
}

func writeText(n *html.Node, sb *strings.Builder, depth int) {
	if depth > 200 {
		return
	}
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		if skipped[n.Data] {
			return
		}
	}
	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		sb.WriteString("\n")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(c, sb, depth+1)
	}
	if block {
		sb.WriteString("\n")
	}
}

// clean collapses runs of blanks and blank lines and trims every line.
func clean(s string) string {
	s = multiSpacePattern.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = multiNewlinePattern.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(s)
}

// inline returns the text under n on one line.
func inline(n *html.Node) string {
	return strings.Join(strings.Fields(Text(n)), " ")
}

// Title picks the page title: JSON-LD headline, then og/twitter/dc meta,
// then a plausible h1 or h2, then <title> with the site name split off.
func Title(doc *html.Node) string {
	for _, fn := range []func(*html.Node) string{titleFromJSONLD, titleFromMeta, titleFromHeadings, titleFromTitleTag} {
		if t := strings.TrimSpace(fn(doc)); t != "" {
			return t
		}
	}
	return ""
}

func titleFromJSONLD(doc *html.Node) string {
	for _, s := range Elements(doc, "script") {
		if !strings.EqualFold(Attr(s, "type"), "application/ld+json") || s.FirstChild == nil {
			continue
		}
		for _, obj := range JSONLD(s.FirstChild.Data) {
			if jsonLDTypes[strings.ToLower(typeOf(obj))] || anyType(obj, jsonLDTypes) {
				if t := firstString(obj, "headline", "name", "alternativeHeadline"); t != "" {
					return t
				}
			}
			if main, ok := obj["mainEntity"].(map[string]any); ok {
				if t := firstString(main, "headline", "name"); t != "" {
					return t
				}
			}
		}
	}
	return ""
}

// JSONLD decodes a JSON-LD script body into its top-level objects,
// flattening arrays and @graph. Malformed input yields nil.
func JSONLD(raw string) []map[string]any {
	var v any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &v); err != nil {
		return nil
	}
	var out []map[string]any
	var visit func(any)
	visit = func(v any) {
		switch t := v.(type) {
		case []any:
			for _, it := range t {
				visit(it)
			}
		case map[string]any:
			out = append(out, t)
			if g, ok := t["@graph"]; ok {
				visit(g)
			}
		}
	}
	visit(v)
	return out
}

func typeOf(obj map[string]any) string {
	s, _ := obj["@type"].(string)
	return s
}

func anyType(obj map[string]any, want map[string]bool) bool {
	list, ok := obj["@type"].([]any)
	if !ok {
		return false
	}
	for _, it := range list {
		if s, ok := it.(string); ok && want[strings.ToLower(s)] {
			return true
		}
	}
	return false
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func titleFromMeta(doc *html.Node) string {
	metas := Elements(doc, "meta")
	for _, key := range []string{"og:title", "twitter:title", "dc.title"} {
		for _, m := range metas {
			if (strings.EqualFold(Attr(m, "property"), key) || strings.EqualFold(Attr(m, "name"), key)) && Attr(m, "content") != "" {
				return Attr(m, "content")
			}
		}
	}
	return ""
}

func titleFromHeadings(doc *html.Node) string {
	for _, h := range Elements(doc, "h1") {
		t := inline(h)
		if len(t) >= 10 && len(t) <= 200 && !containsAny(strings.ToLower(t), navWords) {
			return t
		}
	}
	h2 := Elements(doc, "h2")
	for i := 0; i < len(h2) && i < 3; i++ {
		if t := inline(h2[i]); len(t) >= 10 && len(t) <= 200 {
			return t
		}
	}
	return ""
}

func titleFromTitleTag(doc *html.Node) string {
	ts := Elements(doc, "title")
	if len(ts) == 0 {
		return ""
	}
	t := inline(ts[0])
	if parts := titleSeparator.Split(t, 2); strings.TrimSpace(parts[0]) != "" {
		return strings.TrimSpace(parts[0])
	}
	return t
}

// minBodyChars is the least text a content region must hold before the
// body chain accepts it.
const minBodyChars = 200

// Body extracts the main text: the largest main/article region, then the
// element holding the most paragraph text, then the title plus the first
// eight paragraphs of at least 40 characters, then the first headings.
func Body(doc *html.Node) string {
	for _, fn := range []func(*html.Node) string{bodyFromLandmarks, bodyFromDensity, bodyFromParagraphs} {
		if b := fn(doc); b != "" {
			return b
		}
	}
	var heads []string
	for _, tag := range []string{"title", "h1", "h2"} {
		for _, h := range Elements(doc, tag) {
			if t := inline(h); t != "" && len(heads) < 3 {
				heads = append(heads, t)
			}
		}
	}
	return strings.Join(heads, "\n")
}

func bodyFromLandmarks(doc *html.Node) string {
	best := ""
	for _, tag := range []string{"main", "article"} {
		for _, n := range Elements(doc, tag) {
			if t := Text(n); len(t) > len(best) {
				best = t
			}
		}
	}
	if len(best) < minBodyChars {
		return ""
	}
	return best
}

// bodyFromDensity credits every paragraph's text length to its parent and
// returns the text of the best-credited element.
func bodyFromDensity(doc *html.Node) string {
	score := map[*html.Node]int{}
	var best *html.Node
	for _, p := range Elements(doc, "p") {
		if p.Parent == nil {
			continue
		}
		score[p.Parent] += len(inline(p))
		if best == nil || score[p.Parent] > score[best] {
			best = p.Parent
		}
	}
	if best == nil || score[best] < minBodyChars {
		return ""
	}
	return Text(best)
}

func bodyFromParagraphs(doc *html.Node) string {
	var parts []string
	if ts := Elements(doc, "title"); len(ts) > 0 {
		if t := inline(ts[0]); t != "" {
			parts = append(parts, t)
		}
	}
	kept := 0
	for _, p := range Elements(doc, "p") {
		if kept >= 8 {
			break
		}
		if t := inline(p); len(t) >= 40 {
			parts = append(parts, t)
			kept++
		}
	}
	if kept == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n")
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
