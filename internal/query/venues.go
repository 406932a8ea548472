// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"sort"
	"strings"

	"github.com/pdiddy/talent-scout/pkg/types"
)

// Conferences maps each known venue to the aliases it is searched under.
var Conferences = map[string][]string{
	"ICLR":    {"ICLR"},
	"ICML":    {"ICML"},
	"NeurIPS": {"NeurIPS", "NIPS"},
	"ACL":     {"ACL"},
	"EMNLP":   {"EMNLP"},
	"NAACL":   {"NAACL"},
	"KDD":     {"KDD"},
	"WWW":     {"WWW", "The Web Conference", "WebConf"},
	"AAAI":    {"AAAI"},
	"IJCAI":   {"IJCAI"},
	"CVPR":    {"CVPR"},
	"ECCV":    {"ECCV"},
	"ICCV":    {"ICCV"},
	"SIGIR":   {"SIGIR"},
	"COLING":  {"COLING"},
	"TACL":    {"TACL"},
	"AISTATS": {"AISTATS"},
}

// Field is one entry of the research-field ontology.
type Field struct {
	Venues   []string
	Synonyms []string
}

// FieldOntology tags keywords with research fields and the venues that
// publish them.
var FieldOntology = map[string]Field{
	"social_sim": {
		Venues:   []string{"ICLR", "NeurIPS", "ICML", "ACL", "EMNLP", "AAAI", "IJCAI"},
		Synonyms: []string{"social simulation", "multi-agent", "llm agents", "agent-based", "agentic", "behavior modeling"},
	},
	"nlp": {
		Venues:   []string{"ACL", "EMNLP", "NAACL", "COLING", "TACL"},
		Synonyms: []string{"natural language", "language modeling", "llm", "text generation", "machine translation"},
	},
	"ml_general": {
		Venues:   []string{"ICLR", "ICML", "NeurIPS", "AISTATS"},
		Synonyms: []string{"foundation model", "pretraining", "self-supervised", "representation learning"},
	},
}

// MaxEnrichedVenues caps the venue list after field enrichment.
const MaxEnrichedVenues = 12

// Aliases returns the search aliases for venue; unknown venues alias to
// themselves.
func Aliases(venue string) []string {
	if a, ok := Conferences[venue]; ok {
		return a
	}
	if canon := CanonicalVenue(venue); canon != "" {
		return Conferences[canon]
	}
	return []string{venue}
}

// CanonicalVenue maps a venue name or alias to its Conferences key, or ""
// when the venue is unknown.
func CanonicalVenue(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	for canon, aliases := range Conferences {
		if strings.ToLower(canon) == n {
			return canon
		}
		for _, a := range aliases {
			if strings.ToLower(a) == n {
				return canon
			}
		}
	}
	return ""
}

// GuessFields returns the ontology fields whose synonyms appear in the
// keywords, sorted. Keywords that match nothing map to ml_general.
func GuessFields(keywords []string) []string {
	joined := strings.ToLower(strings.Join(keywords, " "))
	var out []string
	for name, f := range FieldOntology {
		for _, syn := range f.Synonyms {
			if strings.Contains(joined, syn) {
				out = append(out, name)
				break
			}
		}
	}
	if len(out) == 0 {
		return []string{"ml_general"}
	}
	sort.Strings(out)
	return out
}

// Enrich tags spec with research fields and appends the fields' venues
// after the requested ones, up to MaxEnrichedVenues in total. Requested
// venues are always kept.
func Enrich(spec types.QuerySpec) types.QuerySpec {
	spec.Fields = GuessFields(spec.Keywords)

	var extra []string
	for _, f := range spec.Fields {
		extra = append(extra, FieldOntology[f].Venues...)
	}
	sort.Strings(extra)

	venues := types.DedupeStrings(spec.Venues, types.MaxListItems)
	seen := make(map[string]bool, len(venues))
	for _, v := range venues {
		seen[venueKey(v)] = true
	}
	for _, v := range extra {
		if len(venues) >= MaxEnrichedVenues {
			break
		}
		if !seen[venueKey(v)] {
			seen[venueKey(v)] = true
			venues = append(venues, v)
		}
	}
	spec.Venues = venues
	return spec
}

func venueKey(v string) string {
	if canon := CanonicalVenue(v); canon != "" {
		return canon
	}
	return strings.ToLower(strings.TrimSpace(v))
}

func sortedConferences() []string {
	out := make([]string, 0, len(Conferences))
	for canon := range Conferences {
		out = append(out, canon)
	}
	sort.Strings(out)
	return out
}
