package database

import (
	"context"
	"sort"
	"sync"

	"github.com/siherrmann/caseweaver/model"
)

// MemoryStore is an in-memory EntityStore for tests and examples that do not
// need PostgreSQL. Reads return copies in the same stable (type, label, id)
// order the database store produces.
type MemoryStore struct {
	mu        sync.RWMutex
	cases     map[string]*model.CaseMetadata
	working   map[string][]*model.Entity
	committed map[string][]*model.Entity
	points    map[string][]model.Timepoint
	sessions  map[string][]model.ExtractionSession
	synthesis map[string]bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cases:     map[string]*model.CaseMetadata{},
		working:   map[string][]*model.Entity{},
		committed: map[string][]*model.Entity{},
		points:    map[string][]model.Timepoint{},
		sessions:  map[string][]model.ExtractionSession{},
		synthesis: map[string]bool{},
	}
}

// AddCase registers a case under its identifier.
func (s *MemoryStore) AddCase(meta *model.CaseMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases[meta.Identifier] = meta
}

// AddWorkingEntity adds one working-tier entity to a case.
func (s *MemoryStore) AddWorkingEntity(caseID string, entity *model.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entity.Source = model.SourceTierWorking
	s.working[caseID] = append(s.working[caseID], entity)
}

// AddCommittedEntity adds one committed-tier entity to a case.
func (s *MemoryStore) AddCommittedEntity(caseID string, entity *model.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entity.Source = model.SourceTierCommitted
	s.committed[caseID] = append(s.committed[caseID], entity)
}

// SetTimepoints replaces the timepoints of a case. The slice order is the
// chronological order.
func (s *MemoryStore) SetTimepoints(caseID string, points []model.Timepoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points[caseID] = points
}

// AddExtractionSession appends one extraction session to a case.
func (s *MemoryStore) AddExtractionSession(caseID string, session model.ExtractionSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[caseID] = append(s.sessions[caseID], session)
}

// SetSynthesisRecorded marks whether the case has a synthesis record.
func (s *MemoryStore) SetSynthesisRecorded(caseID string, recorded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.synthesis[caseID] = recorded
}

// ReadWorkingEntities returns all working-tier entities of a case.
func (s *MemoryStore) ReadWorkingEntities(ctx context.Context, caseID string) ([]*model.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.cases[caseID]; !ok {
		return nil, &model.NotFoundError{CaseID: caseID}
	}
	return sortedEntityCopy(s.working[caseID]), nil
}

// ReadCommittedEntities returns the committed-tier entities of a case.
func (s *MemoryStore) ReadCommittedEntities(ctx context.Context, caseID string) ([]*model.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.cases[caseID]; !ok {
		return nil, &model.NotFoundError{CaseID: caseID}
	}
	return sortedEntityCopy(s.committed[caseID]), nil
}

// ReadCaseMetadata returns the case metadata, or model.NotFoundError if the
// case does not exist.
func (s *MemoryStore) ReadCaseMetadata(ctx context.Context, caseID string) (*model.CaseMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta, ok := s.cases[caseID]
	if !ok {
		return nil, &model.NotFoundError{CaseID: caseID}
	}
	metaCopy := *meta
	return &metaCopy, nil
}

// ReadTimepoints returns the ordered timepoints of a case together with the
// temporal-consistency annotation.
func (s *MemoryStore) ReadTimepoints(ctx context.Context, caseID string) (*model.TimepointSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta, ok := s.cases[caseID]
	if !ok {
		return nil, &model.NotFoundError{CaseID: caseID}
	}

	points := make([]model.Timepoint, len(s.points[caseID]))
	copy(points, s.points[caseID])

	return &model.TimepointSet{
		Points:      points,
		Consistency: meta.TemporalConsistency,
	}, nil
}

// ReadStageProvenance returns the extraction sessions of a case, the derived
// per-stage completion map, and whether a synthesis record exists.
func (s *MemoryStore) ReadStageProvenance(ctx context.Context, caseID string) (*model.StageProvenance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.cases[caseID]; !ok {
		return nil, &model.NotFoundError{CaseID: caseID}
	}

	sessions := make([]model.ExtractionSession, len(s.sessions[caseID]))
	copy(sessions, s.sessions[caseID])

	completion := make(map[string]bool, len(sessions))
	for _, session := range sessions {
		if session.Complete {
			completion[session.Stage] = true
		}
	}

	return &model.StageProvenance{
		Sessions:          sessions,
		StageCompletion:   completion,
		SynthesisRecorded: s.synthesis[caseID],
	}, nil
}

// sortedEntityCopy copies entities into stable (type, label, id) order.
func sortedEntityCopy(entities []*model.Entity) []*model.Entity {
	sorted := make([]*model.Entity, len(entities))
	copy(sorted, entities)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Type != sorted[j].Type {
			return sorted[i].Type < sorted[j].Type
		}
		if sorted[i].Label != sorted[j].Label {
			return sorted[i].Label < sorted[j].Label
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}
