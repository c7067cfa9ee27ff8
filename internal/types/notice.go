// Package types provides type definitions for structured data used throughout the notice-watcher system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// CandidateNotice represents a row discovered on the listing page.
// It exists only within one pipeline run and is never persisted directly.
type CandidateNotice struct {
	Title         string `json:"title"`
	PublishedDate string `json:"date"` // free-form site text, not guaranteed parseable
	DetailLink    string `json:"url"`  // absolute URL of the detail page
}

// ResolvedAttachment holds the primary document fetched for a notice.
// MediaType is a best-guess hint from the Content-Type header or URL extension.
type ResolvedAttachment struct {
	SourceURL string
	Bytes     []byte
	MediaType string
}

// Meta holds the display metadata of a persisted notice record.
type Meta struct {
	Title     string    `json:"title" validate:"required"`
	Date      string    `json:"date"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// StructuredRecord is the persisted unit: one document per genuinely-new
// notice, keyed by ID and never mutated after creation. Field names match
// the documents the subscriber app already reads.
type StructuredRecord struct {
	ID          string    `json:"id" validate:"required,len=32,hexadecimal"`
	Fingerprint string    `json:"file_hash" validate:"required,len=32,hexadecimal"`
	Meta        Meta      `json:"meta"`
	Excerpt     string    `json:"content" validate:"max=1000"`
	Analysis    Analysis  `json:"ai_analysis"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// ExcerptLimit bounds the stored content prefix.
const ExcerptLimit = 1000

// Excerpt returns at most ExcerptLimit bytes of text.
func Excerpt(text string) string {
	if len(text) > ExcerptLimit {
		return text[:ExcerptLimit]
	}
	return text
}
