package model

// Timepoint is a named point or interval in case chronology, independent of
// which entities are attached to it. The upstream timepoint list is assumed
// chronologically ordered.
type Timepoint struct {
	Label      string `json:"label"`
	IsInterval bool   `json:"is_interval"`
	Duration   string `json:"duration,omitempty"`
}

// TimepointSet is the ordered timepoint list plus the temporal-consistency
// annotation passed through from the source data unmodified.
type TimepointSet struct {
	Points      []Timepoint `json:"points"`
	Consistency string      `json:"consistency,omitempty"`
}

// Phase is one of the three pedagogical timeline segments.
type Phase string

const (
	PhaseIntroduction Phase = "introduction"
	PhaseDevelopment  Phase = "development"
	PhaseResolution   Phase = "resolution"
)

// TimelineEntry is one point (or interval) in case chronology with the
// Action/Event entities attached at that point.
type TimelineEntry struct {
	Sequence   int       `json:"sequence"` // 1-based, strictly increasing, no gaps
	Label      string    `json:"label"`
	Duration   string    `json:"duration,omitempty"`
	IsInterval bool      `json:"is_interval"`
	Entities   []*Entity `json:"entities,omitempty"`
	Phase      Phase     `json:"phase"`
}

// PhaseSpan is the contiguous entry index range of one phase.
type PhaseSpan struct {
	Start       int    `json:"start"` // inclusive, 0-based index into Entries
	End         int    `json:"end"`   // exclusive
	Description string `json:"description"`
}

// ScenarioTimeline is the chronologically ordered, phase-segmented timeline
// of a case. It is immutable once constructed.
type ScenarioTimeline struct {
	CaseID           string              `json:"case_id"`
	Entries          []TimelineEntry     `json:"entries"`
	Phases           map[Phase]PhaseSpan `json:"phases"`
	ActionCount      int                 `json:"action_count"`
	EventCount       int                 `json:"event_count"`
	DurationEstimate string              `json:"duration_estimate"`
	Consistency      string              `json:"consistency,omitempty"`
}
