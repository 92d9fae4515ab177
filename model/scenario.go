package model

import (
	"time"

	"github.com/google/uuid"
)

// CaseMetadata identifies one professional-ethics case.
type CaseMetadata struct {
	ID         int64     `json:"id"`
	RID        uuid.UUID `json:"rid"`
	Identifier string    `json:"identifier"` // URI-like case identifier
	Title      string    `json:"title"`
	// TemporalConsistency is the upstream annotation passed through to the
	// timeline unmodified.
	TemporalConsistency string    `json:"temporal_consistency,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ExtractionSession records one upstream extraction run over a case.
type ExtractionSession struct {
	ID          uuid.UUID `json:"id"`
	Stage       string    `json:"stage"`
	Complete    bool      `json:"complete"`
	CompletedAt time.Time `json:"completed_at"`
}

// StageProvenance summarizes which extraction sessions ran for a case and
// which stages they completed.
type StageProvenance struct {
	Sessions          []ExtractionSession `json:"sessions"`
	StageCompletion   map[string]bool     `json:"stage_completion"`
	SynthesisRecorded bool                `json:"synthesis_recorded"`
}

// CaseData is the output of one data-collection run: case metadata, the
// merged dual-tier entity set, and the provenance summary. It is owned by
// the run that produced it and immutable once returned.
type CaseData struct {
	Case       CaseMetadata       `json:"case"`
	Entities   MergedEntitySet    `json:"entities"`
	Provenance StageProvenance    `json:"provenance"`
	Counts     map[EntityType]int `json:"counts"`
}

// ScenarioCore is the final synthesis result handed to the downstream
// interactive-scenario builder.
type ScenarioCore struct {
	Case         CaseMetadata       `json:"case"`
	Eligibility  *EligibilityReport `json:"eligibility"`
	EntityCounts map[EntityType]int `json:"entity_counts"`
	Timeline     *ScenarioTimeline  `json:"timeline"`
	Participants *ParticipantResult `json:"participants"`
}
