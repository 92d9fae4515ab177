package model

// NarrativeRole is the heuristic narrative classification of a participant.
type NarrativeRole string

const (
	NarrativeRoleProtagonist NarrativeRole = "protagonist"
	NarrativeRoleAntagonist  NarrativeRole = "antagonist"
	NarrativeRoleSupporting  NarrativeRole = "supporting"
)

// Relationship is one declared connection from a participant to another
// case entity.
type Relationship struct {
	TargetID string `json:"target_id"`
	Kind     string `json:"kind,omitempty"`
}

// ParticipantProfile is one character derived from a Role entity.
type ParticipantProfile struct {
	ID              string         `json:"id"`
	SourceEntityID  string         `json:"source_entity_id"` // URI of the Role entity the profile derives from
	Name            string         `json:"name"`
	RoleType        string         `json:"role_type"`
	Background      string         `json:"background,omitempty"`
	Expertise       []string       `json:"expertise,omitempty"`
	Qualifications  []string       `json:"qualifications,omitempty"`
	Motivations     []string       `json:"motivations"`
	Goals           []string       `json:"goals,omitempty"`
	Obligations     []string       `json:"obligations,omitempty"`
	Constraints     []string       `json:"constraints,omitempty"`
	EthicalTensions []string       `json:"ethical_tensions,omitempty"`
	CharacterArc    string         `json:"character_arc,omitempty"`
	NarrativeRole   NarrativeRole  `json:"narrative_role"`
	Relationships   []Relationship `json:"relationships,omitempty"`
}

// ParticipantResult is the output of one participant-mapping run.
//
// The scored ProtagonistID is authoritative for single-protagonist scenario
// logic. The per-profile NarrativeRole tag is assigned independently and is
// a narrative hint only; the two can disagree for a given case.
type ParticipantResult struct {
	Profiles       []*ParticipantProfile `json:"profiles"`
	Relationships  map[string][]string   `json:"relationships"` // symmetric adjacency by source entity URI
	ProtagonistID  string                `json:"protagonist_id,omitempty"`
	SupportingCast []string              `json:"supporting_cast,omitempty"`
	TeachingNotes  []string              `json:"teaching_notes,omitempty"`
}
