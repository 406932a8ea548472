// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout bounds a single HTTP request.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// PipelineConfig bounds the round-based controller.
type PipelineConfig struct {
	// MaxRounds is the hard cap on plan→synthesize rounds (default 3).
	MaxRounds int `json:"max_rounds" yaml:"max_rounds" mapstructure:"max_rounds"`

	// RoundTimeout is the wall-clock budget for one round (default 10m).
	RoundTimeout time.Duration `json:"round_timeout" yaml:"round_timeout" mapstructure:"round_timeout"`

	// SkipExpansionProfiles is the number of selected profile-like URLs at
	// which author expansion is skipped for the round (default 5).
	SkipExpansionProfiles int `json:"skip_expansion_profiles" yaml:"skip_expansion_profiles" mapstructure:"skip_expansion_profiles"`

	// TargetCount overrides the interpreted candidate count when > 0.
	TargetCount int `json:"target_count,omitempty" yaml:"target_count,omitempty" mapstructure:"target_count"`
}

// SearchConfig holds settings for the planner, router and search executor.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// SearXNGURL is the base URL of the SearXNG instance.
	SearXNGURL string `json:"searxng_url" yaml:"searxng_url" mapstructure:"searxng_url"`

	// DefaultEngine is used when neither rules nor the router pick an engine.
	DefaultEngine string `json:"default_engine" yaml:"default_engine" mapstructure:"default_engine"`

	// AllowedEngines restricts what the advisory router may choose.
	AllowedEngines []string `json:"allowed_engines" yaml:"allowed_engines" mapstructure:"allowed_engines"`

	// Pages is the number of result pages fetched per term (default 3).
	Pages int `json:"pages" yaml:"pages" mapstructure:"pages"`

	// ResultsPerPage caps rows kept from one page (default 8).
	ResultsPerPage int `json:"results_per_page" yaml:"results_per_page" mapstructure:"results_per_page"`

	// MaxTerms caps the planned search terms per round (default 120).
	MaxTerms int `json:"max_terms" yaml:"max_terms" mapstructure:"max_terms"`

	// Workers bounds concurrent provider calls (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// RequestsPerSecond is the politeness limit across all provider calls.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`

	// SemanticScholarAPIKey is an optional key for the author metrics lookup.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty" mapstructure:"semantic_scholar_api_key"`
}

// SelectionConfig holds the result selector thresholds.
type SelectionConfig struct {
	// SelectK caps URLs selected per round (default 16).
	SelectK int `json:"select_k" yaml:"select_k" mapstructure:"select_k"`

	// MaxPerDomain caps selected URLs from one domain (default 2).
	MaxPerDomain int `json:"max_per_domain" yaml:"max_per_domain" mapstructure:"max_per_domain"`

	// BypassScore selects a result without asking the advisory model (default 6).
	BypassScore float64 `json:"bypass_score" yaml:"bypass_score" mapstructure:"bypass_score"`

	// RejectScore rejects a result outright at or below this score (default 0).
	RejectScore float64 `json:"reject_score" yaml:"reject_score" mapstructure:"reject_score"`

	// FallbackScore decides borderline results when the advisory call fails (default 2).
	FallbackScore float64 `json:"fallback_score" yaml:"fallback_score" mapstructure:"fallback_score"`

	// AdvisoryBatch caps borderline results sent in one advisory call (default 40).
	AdvisoryBatch int `json:"advisory_batch" yaml:"advisory_batch" mapstructure:"advisory_batch"`
}

// FetchConfig holds settings for the content fetcher.
type FetchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// MaxChars truncates the normalized text block (default 15000).
	MaxChars int `json:"max_chars" yaml:"max_chars" mapstructure:"max_chars"`

	// MinTextLength marks shorter results as fetch failures (default 50).
	MinTextLength int `json:"min_text_length" yaml:"min_text_length" mapstructure:"min_text_length"`

	// MaxBodyBytes caps bytes read from one response (default 4 MiB).
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" mapstructure:"max_body_bytes"`

	// PreviewChars is the size of a homepage identity preview (default 2000).
	PreviewChars int `json:"preview_chars" yaml:"preview_chars" mapstructure:"preview_chars"`

	// Workers bounds concurrent fetches (default 6).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// RequestsPerSecond is the politeness limit across all fetches.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`

	// SnippetOnlyDomains are served from the search snippet and never fetched.
	SnippetOnlyDomains []string `json:"snippet_only_domains" yaml:"snippet_only_domains" mapstructure:"snippet_only_domains"`

	// PDFConverter selects a container image for PDF text ("" disables it).
	PDFConverter string `json:"pdf_converter" yaml:"pdf_converter" mapstructure:"pdf_converter"`
}

// FrontierConfig bounds the author frontier.
type FrontierConfig struct {
	// MaxAuthors caps authors seeded from paper listings (default 40).
	MaxAuthors int `json:"max_authors" yaml:"max_authors" mapstructure:"max_authors"`

	// MaxWithCoauthors caps the frontier after co-author expansion (default 80).
	MaxWithCoauthors int `json:"max_with_coauthors" yaml:"max_with_coauthors" mapstructure:"max_with_coauthors"`

	// MinSourceLength skips short sources when scanning for papers (default 300).
	MinSourceLength int `json:"min_source_length" yaml:"min_source_length" mapstructure:"min_source_length"`
}

// QualityWeights are the per-platform URL quality parameters.
type QualityWeights struct {
	// ProfilePath rewards a profile-shaped path (/in/, profile?id=, /author/).
	ProfilePath float64 `json:"profile_path" yaml:"profile_path" mapstructure:"profile_path"`

	// NameInPath rewards author name tokens in the URL path or handle.
	NameInPath float64 `json:"name_in_path" yaml:"name_in_path" mapstructure:"name_in_path"`

	// DirectoryPenalty applies to directory listings (/directory/, /pub/dir/).
	DirectoryPenalty float64 `json:"directory_penalty" yaml:"directory_penalty" mapstructure:"directory_penalty"`

	// ListingPenalty applies to search, random or example pages.
	ListingPenalty float64 `json:"listing_penalty" yaml:"listing_penalty" mapstructure:"listing_penalty"`

	// IdentifierBonus rewards a well-formed platform identifier.
	IdentifierBonus float64 `json:"identifier_bonus" yaml:"identifier_bonus" mapstructure:"identifier_bonus"`

	// SocialReplaceMargin is the minimum quality gain required to replace
	// an existing social-platform URL (default 0.2).
	SocialReplaceMargin float64 `json:"social_replace_margin" yaml:"social_replace_margin" mapstructure:"social_replace_margin"`
}

// ProfileConfig holds settings for the author profile resolver.
type ProfileConfig struct {
	// AuthorsPerRound caps frontier authors resolved per round (default 12).
	AuthorsPerRound int `json:"authors_per_round" yaml:"authors_per_round" mapstructure:"authors_per_round"`

	// QueriesPerAuthor caps discovery queries per author (default 10).
	QueriesPerAuthor int `json:"queries_per_author" yaml:"queries_per_author" mapstructure:"queries_per_author"`

	// ResultsPerQuery caps rows kept per discovery query (default 6).
	ResultsPerQuery int `json:"results_per_query" yaml:"results_per_query" mapstructure:"results_per_query"`

	// FetchesPerAuthor caps candidate pages fetched per author (default 6).
	FetchesPerAuthor int `json:"fetches_per_author" yaml:"fetches_per_author" mapstructure:"fetches_per_author"`

	// Workers bounds authors resolved concurrently (default 3).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// AutoFetchScore fetches a candidate URL without an advisory decision (default 1.2).
	AutoFetchScore float64 `json:"auto_fetch_score" yaml:"auto_fetch_score" mapstructure:"auto_fetch_score"`

	// RejectScore discards a candidate URL at or below this score (default 0.25).
	RejectScore float64 `json:"reject_score" yaml:"reject_score" mapstructure:"reject_score"`

	// FallbackScore decides borderline URLs when the advisory call fails (default 0.5).
	FallbackScore float64 `json:"fallback_score" yaml:"fallback_score" mapstructure:"fallback_score"`

	// MaxAliases, MaxInterests, MaxPublications and MaxAchievements cap list fields.
	MaxAliases      int `json:"max_aliases" yaml:"max_aliases" mapstructure:"max_aliases"`
	MaxInterests    int `json:"max_interests" yaml:"max_interests" mapstructure:"max_interests"`
	MaxPublications int `json:"max_publications" yaml:"max_publications" mapstructure:"max_publications"`
	MaxAchievements int `json:"max_achievements" yaml:"max_achievements" mapstructure:"max_achievements"`

	Quality QualityWeights `json:"quality" yaml:"quality" mapstructure:"quality"`
}

// IdentityConfig holds identity verification thresholds.
type IdentityConfig struct {
	// AuthoritativeOverlap is the name-token overlap that accepts an
	// authoritative platform page (default 0.6).
	AuthoritativeOverlap float64 `json:"authoritative_overlap" yaml:"authoritative_overlap" mapstructure:"authoritative_overlap"`

	// FallbackOverlap is the overlap used when the advisory verdict is unavailable (default 0.7).
	FallbackOverlap float64 `json:"fallback_overlap" yaml:"fallback_overlap" mapstructure:"fallback_overlap"`

	// MinConfidence rejects any verdict below it (default 0.6).
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence" mapstructure:"min_confidence"`

	// PreviewConfidence is the advisory confidence a homepage preview
	// approval must reach before the name check applies (default 0.7).
	PreviewConfidence float64 `json:"preview_confidence" yaml:"preview_confidence" mapstructure:"preview_confidence"`

	// MinPreviewChars rejects homepage previews shorter than this (default 100).
	MinPreviewChars int `json:"min_preview_chars" yaml:"min_preview_chars" mapstructure:"min_preview_chars"`
}

// EligibilityConfig holds eligibility gate settings.
type EligibilityConfig struct {
	// FallbackKeep is how many authors survive when none pass the gate (default 8).
	FallbackKeep int `json:"fallback_keep" yaml:"fallback_keep" mapstructure:"fallback_keep"`

	// MaxTextChars bounds profile text scanned for signals (default 6000).
	MaxTextChars int `json:"max_text_chars" yaml:"max_text_chars" mapstructure:"max_text_chars"`
}

// SynthesisConfig holds the synthesizer budgets.
type SynthesisConfig struct {
	// MaxSources caps the sources passed to the advisory model (default 8).
	MaxSources int `json:"max_sources" yaml:"max_sources" mapstructure:"max_sources"`

	// PerSourceChars truncates each source (default 2000).
	PerSourceChars int `json:"per_source_chars" yaml:"per_source_chars" mapstructure:"per_source_chars"`

	// TotalSourceChars is the total source budget (default 12000).
	TotalSourceChars int `json:"total_source_chars" yaml:"total_source_chars" mapstructure:"total_source_chars"`

	// PreselectChars bounds the serialized candidate shortlist (default 6000).
	PreselectChars int `json:"preselect_chars" yaml:"preselect_chars" mapstructure:"preselect_chars"`

	// MaxCitations caps citations in the report (default 25).
	MaxCitations int `json:"max_citations" yaml:"max_citations" mapstructure:"max_citations"`
}

// AIProvider selects the advisory model API.
type AIProvider string

const (
	ProviderAnthropic AIProvider = "anthropic"
	ProviderOpenAI    AIProvider = "openai"
	ProviderNone      AIProvider = "none"
)

// AIConfig holds shared settings for advisory model calls.
type AIConfig struct {
	// Provider selects anthropic, openai (any compatible server) or none.
	Provider AIProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// BaseURL overrides the API endpoint (e.g. a local OpenAI-compatible server).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries is the number of retry attempts for failed calls (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// Timeout bounds one advisory call (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxTokens bounds the generated response (default 2048).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// MaxResponseBytes caps the response text considered for parsing (default 64 KiB).
	MaxResponseBytes int `json:"max_response_bytes" yaml:"max_response_bytes" mapstructure:"max_response_bytes"`

	// RequestsPerSecond rate-limits advisory calls.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// StoreConfig holds settings for the run snapshot store.
type StoreConfig struct {
	// Dir holds the SQLite database and exports (default "runs").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// MaxResults caps list and search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// Config groups all stage configurations.
type Config struct {
	Pipeline    PipelineConfig    `json:"pipeline" yaml:"pipeline" mapstructure:"pipeline"`
	Search      SearchConfig      `json:"search" yaml:"search" mapstructure:"search"`
	Selection   SelectionConfig   `json:"selection" yaml:"selection" mapstructure:"selection"`
	Fetch       FetchConfig       `json:"fetch" yaml:"fetch" mapstructure:"fetch"`
	Frontier    FrontierConfig    `json:"frontier" yaml:"frontier" mapstructure:"frontier"`
	Profile     ProfileConfig     `json:"profile" yaml:"profile" mapstructure:"profile"`
	Identity    IdentityConfig    `json:"identity" yaml:"identity" mapstructure:"identity"`
	Eligibility EligibilityConfig `json:"eligibility" yaml:"eligibility" mapstructure:"eligibility"`
	Synthesis   SynthesisConfig   `json:"synthesis" yaml:"synthesis" mapstructure:"synthesis"`
	AI          AIConfig          `json:"ai" yaml:"ai" mapstructure:"ai"`
	Store       StoreConfig       `json:"store" yaml:"store" mapstructure:"store"`
}

const defaultUserAgent = "Mozilla/5.0 (compatible; talent-scout/0.1)"

// DefaultConfig returns the configuration used when no file or environment
// override is present.
func DefaultConfig() Config {
	return Config{
		Pipeline: PipelineConfig{
			MaxRounds:             3,
			RoundTimeout:          10 * time.Minute,
			SkipExpansionProfiles: 5,
		},
		Search: SearchConfig{
			HTTPConfig:        HTTPConfig{Timeout: 20 * time.Second, UserAgent: defaultUserAgent},
			SearXNGURL:        "http://127.0.0.1:8888",
			DefaultEngine:     "google",
			AllowedEngines:    []string{"google", "startpage", "brave", "google scholar", "arxiv", "crossref", "github", "wikipedia", "wikidata"},
			Pages:             3,
			ResultsPerPage:    8,
			MaxTerms:          120,
			Workers:           4,
			RequestsPerSecond: 16,
		},
		Selection: SelectionConfig{
			SelectK:       16,
			MaxPerDomain:  2,
			BypassScore:   6,
			RejectScore:   0,
			FallbackScore: 2,
			AdvisoryBatch: 40,
		},
		Fetch: FetchConfig{
			HTTPConfig:         HTTPConfig{Timeout: 20 * time.Second, UserAgent: defaultUserAgent},
			MaxChars:           15000,
			MinTextLength:      50,
			MaxBodyBytes:       4 << 20,
			PreviewChars:       2000,
			Workers:            6,
			RequestsPerSecond:  12,
			SnippetOnlyDomains: []string{"researchgate.net", "x.com", "twitter.com", "scholar.google.com", "linkedin.com"},
		},
		Frontier: FrontierConfig{
			MaxAuthors:       40,
			MaxWithCoauthors: 80,
			MinSourceLength:  300,
		},
		Profile: ProfileConfig{
			AuthorsPerRound:  12,
			QueriesPerAuthor: 10,
			ResultsPerQuery:  6,
			FetchesPerAuthor: 6,
			Workers:          3,
			AutoFetchScore:   1.2,
			RejectScore:      0.25,
			FallbackScore:    0.5,
			MaxAliases:       3,
			MaxInterests:     8,
			MaxPublications:  10,
			MaxAchievements:  10,
			Quality: QualityWeights{
				ProfilePath:         0.6,
				NameInPath:          0.4,
				DirectoryPenalty:    0.5,
				ListingPenalty:      0.3,
				IdentifierBonus:     0.5,
				SocialReplaceMargin: 0.2,
			},
		},
		Identity: IdentityConfig{
			AuthoritativeOverlap: 0.6,
			FallbackOverlap:      0.7,
			MinConfidence:        0.6,
			PreviewConfidence:    0.7,
			MinPreviewChars:      100,
		},
		Eligibility: EligibilityConfig{
			FallbackKeep: 8,
			MaxTextChars: 6000,
		},
		Synthesis: SynthesisConfig{
			MaxSources:       8,
			PerSourceChars:   2000,
			TotalSourceChars: 12000,
			PreselectChars:   6000,
			MaxCitations:     25,
		},
		AI: AIConfig{
			Provider:          ProviderAnthropic,
			Model:             "claude-sonnet-4-5-20250929",
			MaxRetries:        2,
			Timeout:           60 * time.Second,
			MaxTokens:         2048,
			MaxResponseBytes:  64 << 10,
			RequestsPerSecond: 2,
		},
		Store: StoreConfig{Dir: "runs", MaxResults: 20},
	}
}
