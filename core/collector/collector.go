// Package collector implements the data-collection stage: the eligibility
// gate over upstream extraction stages and the dual-tier entity merge.
package collector

import (
	"context"
	"log/slog"
	"sort"

	"github.com/siherrmann/caseweaver/database"
	"github.com/siherrmann/caseweaver/model"
)

// Named completeness stages checked by the eligibility gate.
const (
	StageActors    = "actors"
	StageNormative = "normative"
	StageNarrative = "narrative"
	StageSynthesis = "synthesis"
)

// stageTypes maps each extraction stage to the entity types it is expected
// to produce.
var stageTypes = map[string][]model.EntityType{
	StageActors:    {model.EntityTypeRole, model.EntityTypeCapability},
	StageNormative: {model.EntityTypePrinciple, model.EntityTypeObligation, model.EntityTypeConstraint},
	StageNarrative: {model.EntityTypeAction, model.EntityTypeEvent, model.EntityTypeState, model.EntityTypeResource},
}

// synthesisStatementKinds are the statement-kind tags that count as
// synthesis output when no synthesis record exists.
var synthesisStatementKinds = []string{"question", "conclusion"}

// Collector loads and merges dual-tier case entities and checks stage
// completeness. It only reads; retry policy belongs to the caller.
type Collector struct {
	store  database.EntityStore
	logger *slog.Logger
}

// NewCollector creates a collector over the given entity store.
func NewCollector(store database.EntityStore, logger *slog.Logger) *Collector {
	return &Collector{
		store:  store,
		logger: logger,
	}
}

// CheckEligibility checks the completeness of the three extraction stages
// and the synthesis stage. A case with zero entities is reported as
// ineligible, never as an error; only an unknown case fails (NotFoundError).
func (c *Collector) CheckEligibility(ctx context.Context, caseID string) (*model.EligibilityReport, error) {
	// Fails fast with NotFoundError for unknown cases.
	_, err := c.store.ReadCaseMetadata(ctx, caseID)
	if err != nil {
		return nil, err
	}

	merged, err := c.mergedEntities(ctx, caseID)
	if err != nil {
		return nil, err
	}

	provenance, err := c.store.ReadStageProvenance(ctx, caseID)
	if err != nil {
		return nil, err
	}

	report := &model.EligibilityReport{
		CaseID: caseID,
		Stages: []model.StageStatus{
			stageStatus(StageActors, merged),
			stageStatus(StageNormative, merged),
			stageStatus(StageNarrative, merged),
			synthesisStatus(merged, provenance),
		},
	}
	report.BuildSummary()

	c.logger.Info("Checked eligibility",
		slog.String("caseID", caseID),
		slog.Bool("eligible", report.Eligible),
		slog.Any("missingStages", report.MissingStages()),
	)

	return report, nil
}

// CollectAllData loads case metadata, both entity tiers, and the provenance
// summary, and merges the tiers into one deduplicated entity set. It is
// side-effect-free and deterministic for a fixed store state.
func (c *Collector) CollectAllData(ctx context.Context, caseID string) (*model.CaseData, error) {
	meta, err := c.store.ReadCaseMetadata(ctx, caseID)
	if err != nil {
		return nil, err
	}

	merged, err := c.mergedEntities(ctx, caseID)
	if err != nil {
		return nil, err
	}

	provenance, err := c.store.ReadStageProvenance(ctx, caseID)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Collected case data",
		slog.String("caseID", caseID),
		slog.Int("entityCount", merged.Total()),
	)

	return &model.CaseData{
		Case:       *meta,
		Entities:   merged,
		Provenance: *provenance,
		Counts:     merged.Counts(),
	}, nil
}

// mergedEntities reads both tiers and merges them per the dedup rule.
func (c *Collector) mergedEntities(ctx context.Context, caseID string) (model.MergedEntitySet, error) {
	working, err := c.store.ReadWorkingEntities(ctx, caseID)
	if err != nil {
		return nil, err
	}

	committed, err := c.store.ReadCommittedEntities(ctx, caseID)
	if err != nil {
		return nil, err
	}

	return MergeEntities(working, committed), nil
}

// MergeEntities merges the two provenance tiers into one deduplicated set:
// every working-tier entity is kept, and a committed-tier entity is added
// only if no working-tier entity shares its identifier, tagged as ontology
// enrichment. Per-type lists are in stable (label, id) order.
func MergeEntities(working []*model.Entity, committed []*model.Entity) model.MergedEntitySet {
	merged := model.MergedEntitySet{}
	seen := make(map[string]bool, len(working))

	for _, entity := range working {
		seen[entity.ID] = true
		merged[entity.Type] = append(merged[entity.Type], entity)
	}

	for _, entity := range committed {
		if seen[entity.ID] {
			continue
		}
		seen[entity.ID] = true
		enriched := *entity
		enriched.OntologyEnriched = true
		merged[entity.Type] = append(merged[entity.Type], &enriched)
	}

	for _, entities := range merged {
		sort.SliceStable(entities, func(i, j int) bool {
			if entities[i].Label != entities[j].Label {
				return entities[i].Label < entities[j].Label
			}
			return entities[i].ID < entities[j].ID
		})
	}

	return merged
}

// stageStatus computes the completeness of one extraction stage: at least
// one entity of the stage's expected type set must exist.
func stageStatus(stage string, merged model.MergedEntitySet) model.StageStatus {
	count := 0
	sections := map[string]bool{}
	for _, entityType := range stageTypes[stage] {
		for _, entity := range merged.OfType(entityType) {
			count++
			for _, section := range entity.Properties.GetCaseSections() {
				sections[section] = true
			}
		}
	}

	return model.StageStatus{
		Stage:           stage,
		Complete:        count > 0,
		EntityCount:     count,
		CoveredSections: sortedKeys(sections),
	}
}

// synthesisStatus computes the completeness of the synthesis stage: a
// synthesis record exists, or at least one question/conclusion-typed
// statement entity exists.
func synthesisStatus(merged model.MergedEntitySet, provenance *model.StageProvenance) model.StageStatus {
	count := 0
	sections := map[string]bool{}
	for _, entities := range merged {
		for _, entity := range entities {
			if !hasSynthesisStatement(entity) {
				continue
			}
			count++
			for _, section := range entity.Properties.GetCaseSections() {
				sections[section] = true
			}
		}
	}

	return model.StageStatus{
		Stage:           StageSynthesis,
		Complete:        provenance.SynthesisRecorded || count > 0,
		EntityCount:     count,
		CoveredSections: sortedKeys(sections),
	}
}

// hasSynthesisStatement reports whether the entity carries a question or
// conclusion statement-kind tag.
func hasSynthesisStatement(entity *model.Entity) bool {
	for _, kind := range entity.Properties.GetStatementKinds() {
		for _, wanted := range synthesisStatementKinds {
			if kind == wanted {
				return true
			}
		}
	}
	return false
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
