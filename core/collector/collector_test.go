package collector

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/siherrmann/caseweaver/database"
	"github.com/siherrmann/caseweaver/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedCompleteCase(store *database.MemoryStore, caseID string) {
	store.AddCase(&model.CaseMetadata{Identifier: caseID, Title: "Complete case"})
	store.AddWorkingEntity(caseID, &model.Entity{
		ID: "urn:role:engineer", Label: "Engineer", Type: model.EntityTypeRole,
		Properties: model.Properties{{Key: model.PropCaseSection, Values: []string{"facts"}}},
	})
	store.AddWorkingEntity(caseID, &model.Entity{
		ID: "urn:obligation:report", Label: "Duty to report", Type: model.EntityTypeObligation,
	})
	store.AddWorkingEntity(caseID, &model.Entity{
		ID: "urn:action:inspect", Label: "Inspection", Type: model.EntityTypeAction,
	})
	store.AddWorkingEntity(caseID, &model.Entity{
		ID: "urn:state:conclusion", Label: "Board conclusion", Type: model.EntityTypeState,
		Properties: model.Properties{{Key: model.PropStatementKind, Values: []string{"conclusion"}}},
	})
}

func TestCheckEligibility(t *testing.T) {
	ctx := context.Background()

	t.Run("Zero entities reports ineligible without error", func(t *testing.T) {
		store := database.NewMemoryStore()
		store.AddCase(&model.CaseMetadata{Identifier: "case://empty"})
		c := NewCollector(store, testLogger())

		report, err := c.CheckEligibility(ctx, "case://empty")
		require.NoError(t, err)
		assert.False(t, report.Eligible)
		assert.Len(t, report.Stages, 4)
		assert.ElementsMatch(t, []string{StageActors, StageNormative, StageNarrative, StageSynthesis}, report.MissingStages())
		assert.Contains(t, report.Summary, "missing required stages")
	})

	t.Run("Unknown case returns not found error", func(t *testing.T) {
		c := NewCollector(database.NewMemoryStore(), testLogger())

		_, err := c.CheckEligibility(ctx, "case://unknown")
		notFound := &model.NotFoundError{}
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("All stages satisfied reports eligible", func(t *testing.T) {
		store := database.NewMemoryStore()
		seedCompleteCase(store, "case://complete")
		c := NewCollector(store, testLogger())

		report, err := c.CheckEligibility(ctx, "case://complete")
		require.NoError(t, err)
		assert.True(t, report.Eligible)
		assert.Empty(t, report.MissingStages())
		assert.Contains(t, report.Summary, "ready for scenario generation")
	})

	t.Run("Stage status carries entity counts and covered sections", func(t *testing.T) {
		store := database.NewMemoryStore()
		seedCompleteCase(store, "case://complete")
		c := NewCollector(store, testLogger())

		report, err := c.CheckEligibility(ctx, "case://complete")
		require.NoError(t, err)

		actors := report.Stages[0]
		assert.Equal(t, StageActors, actors.Stage)
		assert.Equal(t, 1, actors.EntityCount)
		assert.Equal(t, []string{"facts"}, actors.CoveredSections)
	})

	t.Run("Synthesis record satisfies synthesis stage without statement entities", func(t *testing.T) {
		store := database.NewMemoryStore()
		store.AddCase(&model.CaseMetadata{Identifier: "case://recorded"})
		store.AddWorkingEntity("case://recorded", &model.Entity{ID: "urn:role:a", Label: "A", Type: model.EntityTypeRole})
		store.AddWorkingEntity("case://recorded", &model.Entity{ID: "urn:principle:a", Label: "P", Type: model.EntityTypePrinciple})
		store.AddWorkingEntity("case://recorded", &model.Entity{ID: "urn:event:a", Label: "E", Type: model.EntityTypeEvent})
		store.SetSynthesisRecorded("case://recorded", true)
		c := NewCollector(store, testLogger())

		report, err := c.CheckEligibility(ctx, "case://recorded")
		require.NoError(t, err)
		assert.True(t, report.Eligible)
	})
}

func TestCollectAllData(t *testing.T) {
	ctx := context.Background()

	t.Run("Working tier wins on identifier collision", func(t *testing.T) {
		store := database.NewMemoryStore()
		store.AddCase(&model.CaseMetadata{Identifier: "case://dedup"})
		store.AddWorkingEntity("case://dedup", &model.Entity{
			ID: "urn:role:shared", Label: "Working label", Type: model.EntityTypeRole,
		})
		store.AddCommittedEntity("case://dedup", &model.Entity{
			ID: "urn:role:shared", Label: "Committed label", Type: model.EntityTypeRole,
		})
		c := NewCollector(store, testLogger())

		data, err := c.CollectAllData(ctx, "case://dedup")
		require.NoError(t, err)

		roles := data.Entities.OfType(model.EntityTypeRole)
		require.Len(t, roles, 1)
		assert.Equal(t, "Working label", roles[0].Label)
		assert.Equal(t, model.SourceTierWorking, roles[0].Source)
		assert.False(t, roles[0].OntologyEnriched)
	})

	t.Run("Committed-only entities are tagged as ontology enrichment", func(t *testing.T) {
		store := database.NewMemoryStore()
		store.AddCase(&model.CaseMetadata{Identifier: "case://enriched"})
		store.AddCommittedEntity("case://enriched", &model.Entity{
			ID: "urn:principle:honesty", Label: "Honesty", Type: model.EntityTypePrinciple,
		})
		c := NewCollector(store, testLogger())

		data, err := c.CollectAllData(ctx, "case://enriched")
		require.NoError(t, err)

		principles := data.Entities.OfType(model.EntityTypePrinciple)
		require.Len(t, principles, 1)
		assert.True(t, principles[0].OntologyEnriched)
	})

	t.Run("Repeated collection yields identical membership", func(t *testing.T) {
		store := database.NewMemoryStore()
		seedCompleteCase(store, "case://stable")
		store.AddCommittedEntity("case://stable", &model.Entity{
			ID: "urn:principle:safety", Label: "Public safety", Type: model.EntityTypePrinciple,
		})
		c := NewCollector(store, testLogger())

		first, err := c.CollectAllData(ctx, "case://stable")
		require.NoError(t, err)
		second, err := c.CollectAllData(ctx, "case://stable")
		require.NoError(t, err)

		assert.Equal(t, first.Counts, second.Counts)
		for _, entityType := range model.AllEntityTypes {
			firstEntities := first.Entities.OfType(entityType)
			secondEntities := second.Entities.OfType(entityType)
			require.Len(t, secondEntities, len(firstEntities))
			for i := range firstEntities {
				assert.Equal(t, firstEntities[i].ID, secondEntities[i].ID)
			}
		}
	})

	t.Run("Collected data carries metadata and provenance", func(t *testing.T) {
		store := database.NewMemoryStore()
		seedCompleteCase(store, "case://full")
		store.AddExtractionSession("case://full", model.ExtractionSession{Stage: StageActors, Complete: true})
		c := NewCollector(store, testLogger())

		data, err := c.CollectAllData(ctx, "case://full")
		require.NoError(t, err)
		assert.Equal(t, "Complete case", data.Case.Title)
		assert.True(t, data.Provenance.StageCompletion[StageActors])
		assert.Equal(t, 1, data.Counts[model.EntityTypeRole])
	})

	t.Run("Unknown case returns not found error", func(t *testing.T) {
		c := NewCollector(database.NewMemoryStore(), testLogger())

		_, err := c.CollectAllData(ctx, "case://unknown")
		notFound := &model.NotFoundError{}
		require.ErrorAs(t, err, &notFound)
	})
}

func TestMergeEntities(t *testing.T) {
	t.Run("Per-type lists are in stable label order", func(t *testing.T) {
		working := []*model.Entity{
			{ID: "urn:role:b", Label: "Beta", Type: model.EntityTypeRole},
		}
		committed := []*model.Entity{
			{ID: "urn:role:a", Label: "Alpha", Type: model.EntityTypeRole},
		}

		merged := MergeEntities(working, committed)
		roles := merged.OfType(model.EntityTypeRole)
		require.Len(t, roles, 2)
		assert.Equal(t, "Alpha", roles[0].Label)
		assert.Equal(t, "Beta", roles[1].Label)
	})

	t.Run("Merging does not mutate committed input entities", func(t *testing.T) {
		committed := []*model.Entity{
			{ID: "urn:role:a", Label: "Alpha", Type: model.EntityTypeRole},
		}

		merged := MergeEntities(nil, committed)
		require.Len(t, merged.OfType(model.EntityTypeRole), 1)
		assert.True(t, merged.OfType(model.EntityTypeRole)[0].OntologyEnriched)
		assert.False(t, committed[0].OntologyEnriched)
	})
}
