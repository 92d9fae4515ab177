package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/siherrmann/caseweaver/helper"
	"github.com/siherrmann/caseweaver/model"
)

// EntityStore is the read-only accessor over the dual-tier entity records
// and associated per-case data. All reads may fail with a storage error;
// an unknown case yields a model.NotFoundError.
type EntityStore interface {
	ReadWorkingEntities(ctx context.Context, caseID string) ([]*model.Entity, error)
	ReadCommittedEntities(ctx context.Context, caseID string) ([]*model.Entity, error)
	ReadCaseMetadata(ctx context.Context, caseID string) (*model.CaseMetadata, error)
	ReadTimepoints(ctx context.Context, caseID string) (*model.TimepointSet, error)
	ReadStageProvenance(ctx context.Context, caseID string) (*model.StageProvenance, error)
}

// Store implements EntityStore on PostgreSQL through per-table handlers.
type Store struct {
	Cases      *CasesDBHandler
	Entities   *EntitiesDBHandler
	Timepoints *TimepointsDBHandler
	Provenance *ProvenanceDBHandler
}

// NewStore creates all database handlers in the correct order.
// If force is true, SQL functions are reloaded even if they already exist.
func NewStore(db *helper.Database, force bool) (*Store, error) {
	cases, err := NewCasesDBHandler(db, force)
	if err != nil {
		return nil, helper.NewError("create cases handler", err)
	}

	entities, err := NewEntitiesDBHandler(db, force)
	if err != nil {
		return nil, helper.NewError("create entities handler", err)
	}

	timepoints, err := NewTimepointsDBHandler(db, force)
	if err != nil {
		return nil, helper.NewError("create timepoints handler", err)
	}

	provenance, err := NewProvenanceDBHandler(db, force)
	if err != nil {
		return nil, helper.NewError("create provenance handler", err)
	}

	return &Store{
		Cases:      cases,
		Entities:   entities,
		Timepoints: timepoints,
		Provenance: provenance,
	}, nil
}

// ReadWorkingEntities returns all working-tier entities of a case,
// regardless of selection or review flags.
func (s *Store) ReadWorkingEntities(ctx context.Context, caseID string) ([]*model.Entity, error) {
	entities, err := s.Entities.SelectWorkingEntities(ctx, caseID)
	if err != nil {
		return nil, &model.StorageError{Operation: "read working entities", Err: err}
	}
	return entities, nil
}

// ReadCommittedEntities returns the committed-tier entities of a case, i.e.
// those flagged as promoted to the durable ontology store.
func (s *Store) ReadCommittedEntities(ctx context.Context, caseID string) ([]*model.Entity, error) {
	entities, err := s.Entities.SelectCommittedEntities(ctx, caseID)
	if err != nil {
		return nil, &model.StorageError{Operation: "read committed entities", Err: err}
	}
	return entities, nil
}

// ReadCaseMetadata returns the case metadata, or model.NotFoundError if the
// case does not exist.
func (s *Store) ReadCaseMetadata(ctx context.Context, caseID string) (*model.CaseMetadata, error) {
	meta, err := s.Cases.SelectCase(ctx, caseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &model.NotFoundError{CaseID: caseID}
	}
	if err != nil {
		return nil, &model.StorageError{Operation: "read case metadata", Err: err}
	}
	return meta, nil
}

// ReadTimepoints returns the ordered timepoints of a case together with the
// temporal-consistency annotation stored on the case row.
func (s *Store) ReadTimepoints(ctx context.Context, caseID string) (*model.TimepointSet, error) {
	meta, err := s.ReadCaseMetadata(ctx, caseID)
	if err != nil {
		return nil, err
	}

	points, err := s.Timepoints.SelectTimepoints(ctx, caseID)
	if err != nil {
		return nil, &model.StorageError{Operation: "read timepoints", Err: err}
	}

	return &model.TimepointSet{
		Points:      points,
		Consistency: meta.TemporalConsistency,
	}, nil
}

// ReadStageProvenance returns the extraction sessions of a case, the derived
// per-stage completion map, and whether a synthesis record exists.
func (s *Store) ReadStageProvenance(ctx context.Context, caseID string) (*model.StageProvenance, error) {
	sessions, err := s.Provenance.SelectExtractionSessions(ctx, caseID)
	if err != nil {
		return nil, &model.StorageError{Operation: "read extraction sessions", Err: err}
	}

	recorded, err := s.Provenance.SelectSynthesisRecorded(ctx, caseID)
	if err != nil {
		return nil, &model.StorageError{Operation: "read synthesis record", Err: err}
	}

	completion := make(map[string]bool, len(sessions))
	for _, session := range sessions {
		if session.Complete {
			completion[session.Stage] = true
		}
	}

	return &model.StageProvenance{
		Sessions:          sessions,
		StageCompletion:   completion,
		SynthesisRecorded: recorded,
	}, nil
}
