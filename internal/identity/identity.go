// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identity decides whether a fetched page belongs to a named
// author. Identifier-backed platforms need only a name-token overlap;
// homepages and social profiles need an advisory verdict, with a stricter
// overlap rule when the model is unavailable. A rejection never fails the
// author, it only withholds the page as evidence.
package identity

import (
	"context"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/pdiddy/talent-scout/internal/advisory"
	"github.com/pdiddy/talent-scout/internal/platform"
	"github.com/pdiddy/talent-scout/pkg/types"
)

// Confidence values assigned by the rule paths.
const (
	authoritativeConfidence = 0.8
	overlapConfidence       = 0.6
	rejectConfidence        = 0.2
	shortPreviewConfidence  = 0.1
	nameMismatchConfidence  = 0.3
)

// Prompt content bounds.
const (
	maxContentChars = 800
	maxPreviewChars = 1200
)

// Verdict is the outcome of one identity check.
type Verdict struct {
	Accepted   bool
	Confidence float64
	Reason     string
}

// Verifier checks page ownership.
type Verifier struct {
	client *advisory.Client
	cfg    types.IdentityConfig
	logger *zap.Logger
}

// NewVerifier returns a Verifier. client may be nil.
func NewVerifier(client *advisory.Client, cfg types.IdentityConfig, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{client: client, cfg: cfg, logger: logger}
}

var verifyPromptTmpl = template.Must(template.New("verify").Parse(`Decide whether this {{.Platform}} profile belongs to the target researcher.
Target author: {{.Name}}
URL: {{.URL}}
Content preview:
{{.Content}}

Accept only on a name match (exact or a common variation) with consistent research area and affiliation.
Reject a different person with a similar name, a generic or incomplete profile, or conflicting details.
Return STRICT JSON: {"is_target": true|false, "confidence": 0.0-1.0, "reason": "..."}
`))

var previewPromptTmpl = template.Must(template.New("preview").Parse(`Before a full fetch, decide whether this homepage belongs to the target author.
Target author: {{.Name}}
Known paper: {{.Paper}}
URL: {{.URL}}
Preview:
{{.Content}}

Require an exact name match, a research area consistent with the paper and no conflicting biography.
When in doubt answer false.
Return STRICT JSON: {"is_target": true|false, "confidence": 0.0-1.0, "author_name_found": "...", "research_area_match": true|false, "reason": "..."}
`))

type verifyReply struct {
	IsTarget          *bool   `json:"is_target"`
	Confidence        float64 `json:"confidence"`
	AuthorNameFound   string  `json:"author_name_found"`
	ResearchAreaMatch bool    `json:"research_area_match"`
	Reason            string  `json:"reason"`
}

func (r *verifyReply) Valid() bool {
	return r.IsTarget != nil && r.Confidence >= 0 && r.Confidence <= 1
}

// Verify checks content fetched from u, a p page for name.
func (v *Verifier) Verify(ctx context.Context, name string, p types.Platform, u, content string) Verdict {
	overlap := platform.NameOverlap(name, content)
	if platform.Authoritative(p) {
		if overlap >= v.cfg.AuthoritativeOverlap {
			return v.decide(name, u, Verdict{Accepted: true, Confidence: authoritativeConfidence, Reason: "identifier platform with name match"})
		}
		return v.decide(name, u, v.byOverlap(overlap))
	}

	prompt, err := advisory.Render(verifyPromptTmpl, struct {
		Platform types.Platform
		Name     string
		URL      string
		Content  string
	}{p, name, u, clip(content, maxContentChars)})
	if err != nil {
		return v.decide(name, u, v.byOverlap(overlap))
	}
	reply := advisory.SafeStructured(ctx, v.client, "verify_identity", prompt, verifyReply{})
	if reply.IsTarget == nil {
		return v.decide(name, u, v.byOverlap(overlap))
	}
	return v.decide(name, u, Verdict{Accepted: *reply.IsTarget, Confidence: reply.Confidence, Reason: reply.Reason})
}

// VerifyPreview checks a short homepage preview before the full fetch.
// Previews shorter than MinPreviewChars are rejected. An approving verdict
// must also name the author or confirm the research area.
func (v *Verifier) VerifyPreview(ctx context.Context, name, paper, u, preview string) Verdict {
	preview = strings.TrimSpace(preview)
	if len([]rune(preview)) < v.cfg.MinPreviewChars {
		return v.decide(name, u, Verdict{Confidence: shortPreviewConfidence, Reason: "insufficient content for verification"})
	}
	overlap := platform.NameOverlap(name, preview)

	prompt, err := advisory.Render(previewPromptTmpl, struct {
		Name    string
		Paper   string
		URL     string
		Content string
	}{name, paper, u, clip(preview, maxPreviewChars)})
	if err != nil {
		return v.decide(name, u, v.byOverlap(overlap))
	}
	reply := advisory.SafeStructured(ctx, v.client, "verify_homepage", prompt, verifyReply{})
	if reply.IsTarget == nil {
		return v.decide(name, u, v.byOverlap(overlap))
	}
	if !*reply.IsTarget || reply.Confidence < v.cfg.PreviewConfidence {
		return v.decide(name, u, Verdict{Accepted: *reply.IsTarget, Confidence: reply.Confidence, Reason: reply.Reason})
	}
	switch {
	case reply.AuthorNameFound != "" && strings.Contains(strings.ToLower(reply.AuthorNameFound), strings.ToLower(name)):
		return v.decide(name, u, Verdict{Accepted: true, Confidence: reply.Confidence, Reason: "identity verified: " + reply.Reason})
	case reply.ResearchAreaMatch:
		return v.decide(name, u, Verdict{Accepted: true, Confidence: max(v.cfg.MinConfidence, reply.Confidence-0.1), Reason: "research area match: " + reply.Reason})
	default:
		return v.decide(name, u, Verdict{Confidence: nameMismatchConfidence, Reason: "name mismatch despite approval: " + reply.Reason})
	}
}

// byOverlap is the rule verdict used without a model reply.
func (v *Verifier) byOverlap(overlap float64) Verdict {
	if overlap >= v.cfg.FallbackOverlap {
		return Verdict{Accepted: true, Confidence: overlapConfidence, Reason: "name match"}
	}
	return Verdict{Confidence: rejectConfidence, Reason: "insufficient name match"}
}

// decide applies the confidence floor and logs the outcome.
func (v *Verifier) decide(name, u string, vd Verdict) Verdict {
	if vd.Confidence < v.cfg.MinConfidence {
		vd.Accepted = false
	}
	v.logger.Debug("identity verdict",
		zap.String("author", name),
		zap.String("url", u),
		zap.Bool("accepted", vd.Accepted),
		zap.Float64("confidence", vd.Confidence),
		zap.String("reason", vd.Reason))
	return vd
}

func clip(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}
