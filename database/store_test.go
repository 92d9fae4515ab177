package database

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/siherrmann/caseweaver/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCase(t *testing.T, store *Store) *model.CaseMetadata {
	meta := &model.CaseMetadata{
		Identifier: fmt.Sprintf("case://test/%s", uuid.NewString()),
		Title:      "Test case",
	}
	err := store.Cases.InsertCase(context.Background(), meta)
	require.NoError(t, err)
	return meta
}

func TestStoreCases(t *testing.T) {
	store := initStore(t)
	ctx := context.Background()

	t.Run("Insert case fills generated fields", func(t *testing.T) {
		meta := newTestCase(t, store)
		assert.NotZero(t, meta.ID)
		assert.NotEqual(t, uuid.Nil, meta.RID)
		assert.False(t, meta.CreatedAt.IsZero())
	})

	t.Run("Read case metadata returns inserted case", func(t *testing.T) {
		meta := newTestCase(t, store)

		read, err := store.ReadCaseMetadata(ctx, meta.Identifier)
		require.NoError(t, err)
		assert.Equal(t, meta.Identifier, read.Identifier)
		assert.Equal(t, meta.Title, read.Title)
	})

	t.Run("Read unknown case returns not found error", func(t *testing.T) {
		_, err := store.ReadCaseMetadata(ctx, "case://test/unknown")
		require.Error(t, err)

		notFound := &model.NotFoundError{}
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "case://test/unknown", notFound.CaseID)
	})

	t.Run("Update case consistency is readable", func(t *testing.T) {
		meta := newTestCase(t, store)

		err := store.Cases.UpdateCaseConsistency(ctx, meta.Identifier, "consistent")
		require.NoError(t, err)

		read, err := store.ReadCaseMetadata(ctx, meta.Identifier)
		require.NoError(t, err)
		assert.Equal(t, "consistent", read.TemporalConsistency)
	})
}

func TestStoreEntities(t *testing.T) {
	store := initStore(t)
	ctx := context.Background()

	t.Run("Read working entities in stable order", func(t *testing.T) {
		meta := newTestCase(t, store)

		entities := []*model.Entity{
			{ID: "urn:role:b", Label: "Beta", Type: model.EntityTypeRole, Source: model.SourceTierWorking},
			{ID: "urn:action:a", Label: "Act", Type: model.EntityTypeAction, Source: model.SourceTierWorking},
			{ID: "urn:role:a", Label: "Alpha", Type: model.EntityTypeRole, Source: model.SourceTierWorking},
		}
		for _, entity := range entities {
			err := store.Entities.InsertEntity(ctx, meta.Identifier, entity, false)
			require.NoError(t, err)
		}

		read, err := store.ReadWorkingEntities(ctx, meta.Identifier)
		require.NoError(t, err)
		require.Len(t, read, 3)
		// Ordered by (entity_type, label, uri).
		assert.Equal(t, "urn:action:a", read[0].ID)
		assert.Equal(t, "urn:role:a", read[1].ID)
		assert.Equal(t, "urn:role:b", read[2].ID)
	})

	t.Run("Read committed entities only returns promoted entities", func(t *testing.T) {
		meta := newTestCase(t, store)

		promoted := &model.Entity{ID: "urn:principle:a", Label: "Honesty", Type: model.EntityTypePrinciple, Source: model.SourceTierCommitted}
		unpromoted := &model.Entity{ID: "urn:principle:b", Label: "Safety", Type: model.EntityTypePrinciple, Source: model.SourceTierCommitted}
		require.NoError(t, store.Entities.InsertEntity(ctx, meta.Identifier, promoted, true))
		require.NoError(t, store.Entities.InsertEntity(ctx, meta.Identifier, unpromoted, false))

		read, err := store.ReadCommittedEntities(ctx, meta.Identifier)
		require.NoError(t, err)
		require.Len(t, read, 1)
		assert.Equal(t, "urn:principle:a", read[0].ID)
	})

	t.Run("Entity properties round trip through JSONB", func(t *testing.T) {
		meta := newTestCase(t, store)

		entity := &model.Entity{
			ID:    "urn:role:engineer",
			Label: "Engineer",
			Type:  model.EntityTypeRole,
			Properties: model.Properties{
				{Key: model.PropRoleType, Values: []string{"professional engineer"}},
				{Key: model.PropActiveObligations, Values: []string{"report defects", "protect public safety"}},
			},
			Source: model.SourceTierWorking,
		}
		require.NoError(t, store.Entities.InsertEntity(ctx, meta.Identifier, entity, false))

		read, err := store.ReadWorkingEntities(ctx, meta.Identifier)
		require.NoError(t, err)
		require.Len(t, read, 1)
		assert.Equal(t, "professional engineer", read[0].Properties.GetRoleType())
		assert.Equal(t, []string{"report defects", "protect public safety"}, read[0].Properties.GetObligations())
	})

	t.Run("Delete case entities removes both tiers", func(t *testing.T) {
		meta := newTestCase(t, store)

		working := &model.Entity{ID: "urn:state:a", Label: "State", Type: model.EntityTypeState, Source: model.SourceTierWorking}
		committed := &model.Entity{ID: "urn:state:b", Label: "State", Type: model.EntityTypeState, Source: model.SourceTierCommitted}
		require.NoError(t, store.Entities.InsertEntity(ctx, meta.Identifier, working, false))
		require.NoError(t, store.Entities.InsertEntity(ctx, meta.Identifier, committed, true))

		err := store.Entities.DeleteCaseEntities(ctx, meta.Identifier)
		require.NoError(t, err)

		readWorking, err := store.ReadWorkingEntities(ctx, meta.Identifier)
		require.NoError(t, err)
		assert.Empty(t, readWorking)

		readCommitted, err := store.ReadCommittedEntities(ctx, meta.Identifier)
		require.NoError(t, err)
		assert.Empty(t, readCommitted)
	})
}

func TestStoreTimepoints(t *testing.T) {
	store := initStore(t)
	ctx := context.Background()

	t.Run("Read timepoints in chronological order with consistency", func(t *testing.T) {
		meta := newTestCase(t, store)

		require.NoError(t, store.Cases.UpdateCaseConsistency(ctx, meta.Identifier, "consistent"))
		require.NoError(t, store.Timepoints.InsertTimepoint(ctx, meta.Identifier, 2, model.Timepoint{Label: "the hearing"}))
		require.NoError(t, store.Timepoints.InsertTimepoint(ctx, meta.Identifier, 1, model.Timepoint{Label: "over three weeks", IsInterval: true, Duration: "three weeks"}))

		set, err := store.ReadTimepoints(ctx, meta.Identifier)
		require.NoError(t, err)
		assert.Equal(t, "consistent", set.Consistency)
		require.Len(t, set.Points, 2)
		assert.Equal(t, "over three weeks", set.Points[0].Label)
		assert.True(t, set.Points[0].IsInterval)
		assert.Equal(t, "the hearing", set.Points[1].Label)
	})

	t.Run("Read timepoints of unknown case returns not found error", func(t *testing.T) {
		_, err := store.ReadTimepoints(ctx, "case://test/unknown")
		notFound := &model.NotFoundError{}
		require.ErrorAs(t, err, &notFound)
	})
}

func TestStoreProvenance(t *testing.T) {
	store := initStore(t)
	ctx := context.Background()

	t.Run("Read stage provenance derives completion map", func(t *testing.T) {
		meta := newTestCase(t, store)

		require.NoError(t, store.Provenance.InsertExtractionSession(ctx, meta.Identifier, &model.ExtractionSession{Stage: "actors", Complete: true}))
		require.NoError(t, store.Provenance.InsertExtractionSession(ctx, meta.Identifier, &model.ExtractionSession{Stage: "normative", Complete: false}))

		provenance, err := store.ReadStageProvenance(ctx, meta.Identifier)
		require.NoError(t, err)
		require.Len(t, provenance.Sessions, 2)
		assert.True(t, provenance.StageCompletion["actors"])
		assert.False(t, provenance.StageCompletion["normative"])
		assert.False(t, provenance.SynthesisRecorded)
	})

	t.Run("Synthesis record is reported and idempotent", func(t *testing.T) {
		meta := newTestCase(t, store)

		require.NoError(t, store.Provenance.InsertSynthesisRecord(ctx, meta.Identifier))
		require.NoError(t, store.Provenance.InsertSynthesisRecord(ctx, meta.Identifier))

		provenance, err := store.ReadStageProvenance(ctx, meta.Identifier)
		require.NoError(t, err)
		assert.True(t, provenance.SynthesisRecorded)
	})

	t.Run("Insert extraction session fills generated fields", func(t *testing.T) {
		meta := newTestCase(t, store)

		session := &model.ExtractionSession{Stage: "narrative", Complete: true}
		require.NoError(t, store.Provenance.InsertExtractionSession(ctx, meta.Identifier, session))
		assert.NotEqual(t, uuid.Nil, session.ID)
		assert.False(t, session.CompletedAt.IsZero())
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Memory store returns not found for unknown case", func(t *testing.T) {
		store := NewMemoryStore()
		_, err := store.ReadWorkingEntities(ctx, "case://test/unknown")
		notFound := &model.NotFoundError{}
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("Memory store sorts entities like the database", func(t *testing.T) {
		store := NewMemoryStore()
		store.AddCase(&model.CaseMetadata{Identifier: "case://test/memory"})
		store.AddWorkingEntity("case://test/memory", &model.Entity{ID: "urn:role:b", Label: "Beta", Type: model.EntityTypeRole})
		store.AddWorkingEntity("case://test/memory", &model.Entity{ID: "urn:action:a", Label: "Act", Type: model.EntityTypeAction})
		store.AddWorkingEntity("case://test/memory", &model.Entity{ID: "urn:role:a", Label: "Alpha", Type: model.EntityTypeRole})

		read, err := store.ReadWorkingEntities(ctx, "case://test/memory")
		require.NoError(t, err)
		require.Len(t, read, 3)
		assert.Equal(t, "urn:action:a", read[0].ID)
		assert.Equal(t, "urn:role:a", read[1].ID)
		assert.Equal(t, "urn:role:b", read[2].ID)
	})

	t.Run("Memory store provenance mirrors database semantics", func(t *testing.T) {
		store := NewMemoryStore()
		store.AddCase(&model.CaseMetadata{Identifier: "case://test/memory"})
		store.AddExtractionSession("case://test/memory", model.ExtractionSession{Stage: "actors", Complete: true})
		store.SetSynthesisRecorded("case://test/memory", true)

		provenance, err := store.ReadStageProvenance(ctx, "case://test/memory")
		require.NoError(t, err)
		assert.True(t, provenance.StageCompletion["actors"])
		assert.True(t, provenance.SynthesisRecorded)
	})
}
