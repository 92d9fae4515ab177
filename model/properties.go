package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"

	"github.com/siherrmann/caseweaver/helper"
)

// Well-known property keys. Domain-specific attributes live in the entity
// property bag under these keys; typed accessors below avoid string typos
// spreading through the keyword-matching logic.
const (
	PropTemporalMarker       = "temporal_marker"
	PropInvolvementNarrative = "involvement_narrative"
	PropActiveObligations    = "active_obligations"
	PropEthicalTensions      = "ethical_tensions"
	PropExperience           = "experience"
	PropSpecialization       = "specialization"
	PropLicenses             = "licenses"
	PropRoleType             = "role_type"
	PropRelatedRoles         = "related_roles"
	PropAgent                = "agent"
	PropStatementKind        = "statement_kind"
	PropCaseSection          = "case_section"
)

// Property is one key with its list of values.
type Property struct {
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

// Properties is an ordered key to list-of-values mapping stored as JSONB.
// Related-role values use the form "<target-uri>" or "<target-uri>|<kind>".
type Properties []Property

// Get returns all values for a key, or nil if the key is absent.
func (p Properties) Get(key string) []string {
	for _, prop := range p {
		if prop.Key == key {
			return prop.Values
		}
	}
	return nil
}

// First returns the first value for a key, or "" if the key is absent or empty.
func (p Properties) First(key string) string {
	values := p.Get(key)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Has reports whether a key is present with at least one value.
func (p Properties) Has(key string) bool {
	return len(p.Get(key)) > 0
}

// Add appends values to a key, creating the key if it is absent.
func (p *Properties) Add(key string, values ...string) {
	for i, prop := range *p {
		if prop.Key == key {
			(*p)[i].Values = append((*p)[i].Values, values...)
			return
		}
	}
	*p = append(*p, Property{Key: key, Values: values})
}

// GetTemporalMarker returns the temporal marker text used by the exact-match
// timeline join, or "" if the entity carries none.
func (p Properties) GetTemporalMarker() string {
	return p.First(PropTemporalMarker)
}

// GetInvolvementNarrative returns the free-text involvement narrative joined
// into a single string for keyword matching.
func (p Properties) GetInvolvementNarrative() string {
	return strings.Join(p.Get(PropInvolvementNarrative), " ")
}

// GetObligations returns the active obligations declared on the entity.
func (p Properties) GetObligations() []string {
	return p.Get(PropActiveObligations)
}

// GetEthicalTensions returns the declared ethical tensions, verbatim.
func (p Properties) GetEthicalTensions() []string {
	return p.Get(PropEthicalTensions)
}

// GetExperience returns the experience text, or "".
func (p Properties) GetExperience() string {
	return strings.Join(p.Get(PropExperience), " ")
}

// GetSpecializations returns specialization-like expertise values.
func (p Properties) GetSpecializations() []string {
	return p.Get(PropSpecialization)
}

// GetLicenses returns license/qualification values.
func (p Properties) GetLicenses() []string {
	return p.Get(PropLicenses)
}

// GetRoleType returns the declared role-type text, or "".
func (p Properties) GetRoleType() string {
	return p.First(PropRoleType)
}

// GetRelatedRoles returns the declared one-directional relationship values.
func (p Properties) GetRelatedRoles() []string {
	return p.Get(PropRelatedRoles)
}

// GetAgent returns the acting entity URI for an action/event, or "".
func (p Properties) GetAgent() string {
	return p.First(PropAgent)
}

// GetStatementKinds returns statement-kind tags (e.g. "question", "conclusion").
func (p Properties) GetStatementKinds() []string {
	return p.Get(PropStatementKind)
}

// GetCaseSections returns the case sections the entity was extracted from.
func (p Properties) GetCaseSections() []string {
	return p.Get(PropCaseSection)
}

// Value implements the driver.Valuer interface for database storage.
func (p Properties) Value() (driver.Value, error) {
	return p.Marshal()
}

// Scan implements the sql.Scanner interface for database retrieval.
func (p *Properties) Scan(value interface{}) error {
	return p.Unmarshal(value)
}

// Marshal converts Properties to JSON bytes.
func (p Properties) Marshal() ([]byte, error) {
	if p == nil {
		return json.Marshal(Properties{})
	}
	return json.Marshal(p)
}

// Unmarshal converts JSON bytes or Properties to Properties.
func (p *Properties) Unmarshal(value interface{}) error {
	if value == nil {
		*p = Properties{}
		return nil
	}

	if s, ok := value.(Properties); ok {
		*p = s
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return helper.NewError("byte assertion", errors.New("type assertion to []byte failed"))
	}

	return json.Unmarshal(b, p)
}
