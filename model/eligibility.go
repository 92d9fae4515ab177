package model

import (
	"fmt"
	"strings"
)

// StageStatus captures the completeness of one extraction or synthesis stage.
type StageStatus struct {
	Stage           string   `json:"stage"`
	Complete        bool     `json:"complete"`
	EntityCount     int      `json:"entity_count"`
	CoveredSections []string `json:"covered_sections,omitempty"`
}

// EligibilityReport is the result of the completeness gate for one case.
// It is computed fresh on every check and never persisted.
type EligibilityReport struct {
	CaseID   string        `json:"case_id"`
	Eligible bool          `json:"eligible"`
	Stages   []StageStatus `json:"stages"`
	Summary  string        `json:"summary"`
}

// MissingStages returns the names of incomplete stages in report order.
func (r *EligibilityReport) MissingStages() []string {
	var missing []string
	for _, stage := range r.Stages {
		if !stage.Complete {
			missing = append(missing, stage.Stage)
		}
	}
	return missing
}

// BuildSummary derives the human-readable summary and the overall flag from
// the per-stage statuses. Overall eligibility is true iff all stages are
// complete.
func (r *EligibilityReport) BuildSummary() {
	missing := r.MissingStages()
	r.Eligible = len(missing) == 0

	if r.Eligible {
		r.Summary = fmt.Sprintf("case %v is ready for scenario generation, all %d stages complete", r.CaseID, len(r.Stages))
		return
	}

	parts := make([]string, 0, len(missing))
	for _, stage := range r.Stages {
		if !stage.Complete {
			parts = append(parts, fmt.Sprintf("%v (%d entities)", stage.Stage, stage.EntityCount))
		}
	}
	r.Summary = fmt.Sprintf("case %v is missing required stages: %v", r.CaseID, strings.Join(parts, ", "))
}
