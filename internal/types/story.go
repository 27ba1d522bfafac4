// Package types provides type definitions for structured data used throughout the storyweaver system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"time"
)

// Priority is the delivery tier inferred for a story
type Priority string

// Priority tiers, highest first
const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
)

// StoryStatus tracks the review lifecycle of a story. Extraction only ever
// produces drafts; later states belong to whatever reviews the output.
type StoryStatus string

// StoryStatusDraft marks a freshly extracted story
const StoryStatusDraft StoryStatus = "draft"

// ConfidenceLevel is the qualitative bucket of a confidence score
type ConfidenceLevel string

// Confidence levels
const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// ConfidenceFactors holds the six independent scores, each in [0,1]
type ConfidenceFactors struct {
	TemplateMatch   float64 `json:"template_match"`
	RoleClarity     float64 `json:"role_clarity"`
	ActionClarity   float64 `json:"action_clarity"`
	ValueClarity    float64 `json:"value_clarity"`
	SourceLength    float64 `json:"source_length"`
	LanguageClarity float64 `json:"language_clarity"`
}

// ConfidenceScore is the weighted composite estimate of how reliable an extracted story is.
// Level and NeedsReview are derived from Overall; Reasons are advisory only.
type ConfidenceScore struct {
	Overall     float64           `json:"overall"`
	Level       ConfidenceLevel   `json:"level"`
	Factors     ConfidenceFactors `json:"factors"`
	Reasons     []string          `json:"reasons"`
	NeedsReview bool              `json:"needs_review"`
}

// SourceReference links a story back to the sentence and section it came from
type SourceReference struct {
	SentenceText string `json:"sentence_text"`
	SectionID    string `json:"section_id"`
	SectionTitle string `json:"section_title"`
}

// Story is a structured requirement record in "As a / I want to / So that" form
type Story struct {
	ID              string          `json:"id"`
	DocumentID      string          `json:"document_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Role            string          `json:"role"`
	Action          string          `json:"action"`
	Value           string          `json:"value"`
	Module          string          `json:"module"`
	Priority        Priority        `json:"priority"`
	Confidence      ConfidenceScore `json:"confidence"`
	SourceReference SourceReference `json:"source_reference"`
	Status          StoryStatus     `json:"status"`
	IsEdited        bool            `json:"is_edited"`
	SortOrder       int             `json:"sort_order"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// RenderDescription renders the canonical three-clause story template
func RenderDescription(role, action, value string) string {
	return fmt.Sprintf("As a %s, I want to %s, So that %s", role, action, value)
}

// Clone returns a deep copy of the story. Reasons is the only reference field.
func (s *Story) Clone() *Story {
	if s == nil {
		return nil
	}
	c := *s
	if s.Confidence.Reasons != nil {
		c.Confidence.Reasons = append([]string(nil), s.Confidence.Reasons...)
	}
	return &c
}
