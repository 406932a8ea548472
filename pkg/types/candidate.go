// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Candidate is an author that passed (or was kept by the fallback of) the
// eligibility gate, before synthesis.
type Candidate struct {
	Profile AuthorProfile `json:"profile" yaml:"profile"`

	// Role is the gate's best guess at current role and affiliation.
	Role string `json:"role" yaml:"role"`

	ResearchFocus []string `json:"research_focus,omitempty" yaml:"research_focus,omitempty"`

	// Signals names the eligibility signals that fired.
	Signals []string `json:"signals,omitempty" yaml:"signals,omitempty"`

	// Fallback marks candidates kept only because nobody passed the gate.
	Fallback bool `json:"fallback,omitempty" yaml:"fallback,omitempty"`

	Confidence   float64 `json:"confidence" yaml:"confidence"`
	EvidenceNote string  `json:"evidence_note" yaml:"evidence_note"`
}

// CandidateCard is one entry of the final shortlist. Every Profiles entry
// satisfies the per-platform validity pattern; cards without one are dropped.
type CandidateCard struct {
	Name                      string              `json:"name" yaml:"name"`
	CurrentRoleAndAffiliation string              `json:"current_role_and_affiliation" yaml:"current_role_and_affiliation"`
	ResearchFocus             []string            `json:"research_focus" yaml:"research_focus"`
	Profiles                  map[Platform]string `json:"profiles" yaml:"profiles"`
	Notable                   string              `json:"notable,omitempty" yaml:"notable,omitempty"`
	EvidenceNotes             string              `json:"evidence_notes" yaml:"evidence_notes"`
}

// Result is what a pipeline run hands to its consumers.
type Result struct {
	RunID     string          `json:"run_id" yaml:"run_id"`
	Query     string          `json:"query" yaml:"query"`
	Spec      QuerySpec       `json:"spec" yaml:"spec"`
	Rounds    int             `json:"rounds" yaml:"rounds"`
	Cards     []CandidateCard `json:"candidates" yaml:"candidates"`
	Citations []string        `json:"citations" yaml:"citations"`
	NeedMore  bool            `json:"need_more" yaml:"need_more"`
	Followups []string        `json:"followups,omitempty" yaml:"followups,omitempty"`
	Report    string          `json:"report" yaml:"report"`

	// State is the final research state of the run.
	State *ResearchState `json:"-" yaml:"-"`
}
