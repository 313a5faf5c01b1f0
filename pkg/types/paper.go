// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RawLink is a URL-shaped substring extracted from an email body.
type RawLink struct {
	// SourceSpan is the matched substring as it appeared in the text,
	// before trailing-punctuation cleanup.
	SourceSpan string `json:"source_span" yaml:"source_span"`

	// URL is the cleaned URL string.
	URL string `json:"url" yaml:"url"`
}

// ResolvedLink is the output of URL canonicalization.
type ResolvedLink struct {
	// OriginalURL is the URL as extracted from the email.
	OriginalURL string `json:"original_url" yaml:"original_url"`

	// CanonicalURL is the stable form of the URL: redirectors unwrapped,
	// redirects followed, lower-cased and query-stripped when no canonical
	// ID rule matched.
	CanonicalURL string `json:"canonical_url" yaml:"canonical_url"`

	// CanonicalID is the recognized source identifier ("arxiv:2301.00001",
	// "doi:10.1145/..."), empty when no rule matched.
	CanonicalID string `json:"canonical_id,omitempty" yaml:"canonical_id,omitempty"`
}

// IdentityKey returns the deduplication key for the link: the canonical ID
// when present, otherwise the canonical URL.
func (l ResolvedLink) IdentityKey() string {
	if l.CanonicalID != "" {
		return l.CanonicalID
	}
	return l.CanonicalURL
}

// PaperMetadata holds the fetched description of a paper. Title is always
// non-empty; Abstract may be empty only when the source page provides none.
type PaperMetadata struct {
	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// SourceURL is the URL the metadata was fetched from.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// Year is the publication year when the source page carries one.
	Year string `json:"year,omitempty" yaml:"year,omitempty"`
}

// PaperSummary is the structured Chinese-language summary produced by a
// summarization strategy. All text fields are non-empty and RelevanceScore
// lies in [1.0, 10.0] once the summary has passed validation.
type PaperSummary struct {
	// OneLine is the single-sentence summary of the core contribution.
	OneLine string `json:"summary" yaml:"summary"`

	// Background describes the research background.
	Background string `json:"background" yaml:"background"`

	// Method describes the core method.
	Method string `json:"method" yaml:"method"`

	// Results describes the main results.
	Results string `json:"results" yaml:"results"`

	// RelevanceScore rates relevance on a 1-10 scale.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`
}

// RecordStatus is the terminal state of one paper in a pipeline run.
type RecordStatus string

const (
	StatusComplete        RecordStatus = "complete"
	StatusFetchFailed     RecordStatus = "fetch_failed"
	StatusSummarizeFailed RecordStatus = "summarize_failed"
	StatusInvalid         RecordStatus = "invalid"
	StatusSkipped         RecordStatus = "skipped"
)

// PaperRecord is the unit of pipeline output.
type PaperRecord struct {
	// IdentityKey is the canonical ID when known, otherwise the normalized
	// canonical URL. Unique across a run's output set.
	IdentityKey string `json:"identity_key" yaml:"identity_key"`

	// Link is the resolved link the record was produced from.
	Link ResolvedLink `json:"link" yaml:"link"`

	// Metadata is the fetched paper description, nil unless the fetch
	// succeeded.
	Metadata *PaperMetadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// Summary is the validated model summary, nil unless summarization
	// succeeded.
	Summary *PaperSummary `json:"summary,omitempty" yaml:"summary,omitempty"`

	// Status is the terminal state of this paper.
	Status RecordStatus `json:"status" yaml:"status"`

	// Warnings holds soft validation notes (e.g. a clamped score).
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// FailureKind tags a failures-ledger entry with the stage that produced it.
type FailureKind string

const (
	FailResolution FailureKind = "resolution_failed"
	FailFetch      FailureKind = "fetch_failed"
	FailSummarize  FailureKind = "summarize_failed"
	FailValidation FailureKind = "validation_failed"
	FailSkipped    FailureKind = "skipped"
)

// Failure is one entry in the pipeline's failure ledger. It carries enough
// detail to diagnose without re-running.
type Failure struct {
	// IdentityKey is the paper's identity key, or the raw URL when no
	// identity was established.
	IdentityKey string `json:"identity_key" yaml:"identity_key"`

	// Kind tags the failing stage.
	Kind FailureKind `json:"kind" yaml:"kind"`

	// Detail is a short human-readable message including the underlying
	// error.
	Detail string `json:"detail" yaml:"detail"`
}

// PipelineResult is the complete outcome of one pipeline run, handed to the
// report builder.
type PipelineResult struct {
	// Records is ordered by descending relevance score, ties broken by
	// first appearance.
	Records []PaperRecord `json:"records" yaml:"records"`

	// LowRelevance holds complete records excluded by the minimum score.
	LowRelevance []PaperRecord `json:"low_relevance,omitempty" yaml:"low_relevance,omitempty"`

	// Failures is the per-identity failure ledger in first-appearance order.
	Failures []Failure `json:"failures,omitempty" yaml:"failures,omitempty"`

	// Skipped lists links that were never started because the run's
	// wall-clock budget expired. Kept apart from Failures: nothing went
	// wrong with these papers, the run simply ran out of time.
	Skipped []string `json:"skipped,omitempty" yaml:"skipped,omitempty"`

	// Duplicates counts links that collapsed into an already-seen identity.
	// Duplication is expected, not an error.
	Duplicates int `json:"duplicates" yaml:"duplicates"`

	// KnownSkipped counts identities dropped because they were already
	// reported in a previous run.
	KnownSkipped int `json:"known_skipped,omitempty" yaml:"known_skipped,omitempty"`
}
