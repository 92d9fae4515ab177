package model

import "time"

// EntityType is the closed vocabulary of extracted entity types.
type EntityType string

const (
	EntityTypeRole       EntityType = "Role"
	EntityTypePrinciple  EntityType = "Principle"
	EntityTypeObligation EntityType = "Obligation"
	EntityTypeState      EntityType = "State"
	EntityTypeResource   EntityType = "Resource"
	EntityTypeAction     EntityType = "Action"
	EntityTypeEvent      EntityType = "Event"
	EntityTypeCapability EntityType = "Capability"
	EntityTypeConstraint EntityType = "Constraint"
)

// AllEntityTypes lists the closed vocabulary in canonical order.
// Merged entity sets iterate in this order to keep output deterministic.
var AllEntityTypes = []EntityType{
	EntityTypeRole,
	EntityTypePrinciple,
	EntityTypeObligation,
	EntityTypeState,
	EntityTypeResource,
	EntityTypeAction,
	EntityTypeEvent,
	EntityTypeCapability,
	EntityTypeConstraint,
}

// SourceTier marks which provenance tier an entity was read from.
type SourceTier string

const (
	// SourceTierWorking is the mutable per-case working set.
	SourceTierWorking SourceTier = "working"
	// SourceTierCommitted is the durable, ontology-committed set.
	SourceTierCommitted SourceTier = "committed"
)

// Entity is a single extracted fact about a case. Entities are produced
// upstream and are read-only here; the core only reads, merges, and derives
// new structures from them.
type Entity struct {
	ID         string     `json:"id"` // URI-like, unique within a case per tier
	Label      string     `json:"label"`
	Type       EntityType `json:"entity_type"`
	Definition string     `json:"definition,omitempty"`
	Properties Properties `json:"properties,omitempty"`
	Source     SourceTier `json:"source"`
	// OntologyEnriched marks committed-tier entities that were added during
	// the merge because no working-tier entity shared their identifier.
	OntologyEnriched bool      `json:"ontology_enriched,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// MergedEntitySet maps entity type to the deduplicated entities of that type.
// It is owned by one collection run and never mutated after construction.
type MergedEntitySet map[EntityType][]*Entity

// OfType returns the entities of the given type, possibly nil.
func (s MergedEntitySet) OfType(entityType EntityType) []*Entity {
	return s[entityType]
}

// Counts returns the number of entities per type.
func (s MergedEntitySet) Counts() map[EntityType]int {
	counts := make(map[EntityType]int, len(s))
	for entityType, entities := range s {
		counts[entityType] = len(entities)
	}
	return counts
}

// Total returns the total number of entities across all types.
func (s MergedEntitySet) Total() int {
	total := 0
	for _, entities := range s {
		total += len(entities)
	}
	return total
}
