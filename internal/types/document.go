//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// SectionCategory is the semantic role of a document section
type SectionCategory string

// Section categories. Only functional sections are eligible for extraction.
const (
	SectionBackground    SectionCategory = "background"
	SectionFunctional    SectionCategory = "functional"
	SectionNonFunctional SectionCategory = "non-functional"
	SectionOther         SectionCategory = "other"
)

// DocumentSection is a titled block of a source document
type DocumentSection struct {
	ID         string          `json:"id"`
	DocumentID string          `json:"document_id"`
	Title      string          `json:"title"`
	Body       string          `json:"body"`
	Category   SectionCategory `json:"category"`
	Level      int             `json:"level"`
	Order      int             `json:"order"`
	CharCount  int             `json:"char_count"`
}

// DocumentStatus tracks processing of a parsed document
type DocumentStatus string

// Document processing states
const (
	DocumentCompleted DocumentStatus = "completed"
	DocumentFailed    DocumentStatus = "failed"
)

// ParsedDocument is the in-memory result of running the pipeline over one document
type ParsedDocument struct {
	ID                   string            `json:"id"`
	FileName             string            `json:"file_name"`
	FileType             string            `json:"file_type"`
	MimeType             string            `json:"mime_type,omitempty"`
	Status               DocumentStatus    `json:"status"`
	TotalChars           int               `json:"total_chars"`
	Sections             []DocumentSection `json:"sections"`
	Stories              []Story           `json:"stories"`
	StoryCount           int               `json:"story_count"`
	AverageConfidence    *float64          `json:"average_confidence,omitempty"`
	OptimizedCount       int               `json:"optimized_count"`
	OptimizationFailures int               `json:"optimization_failures"`
	CreatedAt            time.Time         `json:"created_at"`
}
