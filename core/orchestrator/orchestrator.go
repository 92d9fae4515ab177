// Package orchestrator sequences the synthesis stages end-to-end: the
// eligibility gate, data collection, timeline construction, participant
// mapping, and the extension-point stages, with progress reporting.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/siherrmann/caseweaver/core/collector"
	"github.com/siherrmann/caseweaver/core/participant"
	"github.com/siherrmann/caseweaver/core/timeline"
	"github.com/siherrmann/caseweaver/model"
)

// Stage names in execution order. The placeholder stages after participant
// mapping are extension points; they currently only report progress.
const (
	StageEligibilityCheck     = "eligibility_check"
	StageDataCollection       = "data_collection"
	StageTimelineConstruction = "timeline_construction"
	StageParticipantMapping   = "participant_mapping"
	StageDecisionIntegration  = "decision_integration"
	StageCausalChains         = "causal_chains"
	StageNormativeWeaving     = "normative_weaving"
	StageScenarioAssembly     = "scenario_assembly"
	StageInteractiveModel     = "interactive_model"
	StageValidation           = "validation"
	StageComplete             = "complete"
)

// ProgressFunc receives one callback per stage transition. Percent values
// are monotonically non-decreasing across a run.
type ProgressFunc func(stage string, percent int, message string, data map[string]any)

// Orchestrator runs one case end-to-end. It is stateless between runs; one
// call processes exactly one case.
type Orchestrator struct {
	collector   *collector.Collector
	constructor *timeline.Constructor
	mapper      *participant.Mapper
	logger      *slog.Logger
}

// New creates an orchestrator over the three synthesis components.
func New(c *collector.Collector, constructor *timeline.Constructor, mapper *participant.Mapper, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		collector:   c,
		constructor: constructor,
		mapper:      mapper,
		logger:      logger,
	}
}

// progress wraps the caller-supplied callback with a nil guard and the
// monotonic-percent invariant.
type progress struct {
	onProgress ProgressFunc
	lastPct    int
}

func (p *progress) report(stage string, percent int, message string, data map[string]any) {
	if percent < p.lastPct {
		percent = p.lastPct
	}
	p.lastPct = percent
	if p.onProgress != nil {
		p.onProgress(stage, percent, message, data)
	}
}

// Run synthesizes the scenario core for one case. The eligibility gate is a
// hard precondition: no later stage runs when it fails. Unexpected stage
// failures are wrapped as model.StageError; the domain error taxonomy
// (NotFoundError, StorageError, EligibilityError) passes through unchanged.
func (o *Orchestrator) Run(ctx context.Context, caseID string, onProgress ProgressFunc) (*model.ScenarioCore, error) {
	p := &progress{onProgress: onProgress}

	var report *model.EligibilityReport
	err := o.runStage(StageEligibilityCheck, func() error {
		p.report(StageEligibilityCheck, 5, "Checking case eligibility", map[string]any{"caseID": caseID})
		var err error
		report, err = o.collector.CheckEligibility(ctx, caseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !report.Eligible {
		o.logger.Warn("Case failed eligibility gate", slog.String("caseID", caseID), slog.Any("missingStages", report.MissingStages()))
		return nil, &model.EligibilityError{Report: report}
	}

	var data *model.CaseData
	err = o.runStage(StageDataCollection, func() error {
		p.report(StageDataCollection, 10, "Collecting and merging case entities", nil)
		var err error
		data, err = o.collector.CollectAllData(ctx, caseID)
		if err != nil {
			return err
		}
		p.report(StageDataCollection, 20, "Collected case entities", map[string]any{"entityCount": data.Entities.Total()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	var scenarioTimeline *model.ScenarioTimeline
	err = o.runStage(StageTimelineConstruction, func() error {
		p.report(StageTimelineConstruction, 30, "Constructing scenario timeline", nil)
		var err error
		scenarioTimeline, err = o.constructor.BuildTimeline(ctx, caseID, data.Entities)
		if err != nil {
			return err
		}
		p.report(StageTimelineConstruction, 40, "Constructed timeline", map[string]any{"entries": len(scenarioTimeline.Entries)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	var participants *model.ParticipantResult
	err = o.runStage(StageParticipantMapping, func() error {
		p.report(StageParticipantMapping, 50, "Mapping participants", nil)
		var err error
		participants, err = o.mapper.MapParticipants(ctx, data.Entities.OfType(model.EntityTypeRole), scenarioTimeline)
		if err != nil {
			return err
		}
		p.report(StageParticipantMapping, 70, "Mapped participants", map[string]any{"profiles": len(participants.Profiles)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Extension points: reported so callers see the full stage sequence.
	placeholders := []struct {
		stage   string
		percent int
	}{
		{StageDecisionIntegration, 75},
		{StageCausalChains, 80},
		{StageNormativeWeaving, 85},
		{StageScenarioAssembly, 90},
		{StageInteractiveModel, 94},
		{StageValidation, 98},
	}
	for _, placeholder := range placeholders {
		p.report(placeholder.stage, placeholder.percent, fmt.Sprintf("Stage %v not yet implemented, skipping", placeholder.stage), nil)
	}

	core := &model.ScenarioCore{
		Case:         data.Case,
		Eligibility:  report,
		EntityCounts: data.Counts,
		Timeline:     scenarioTimeline,
		Participants: participants,
	}

	p.report(StageComplete, 100, "Scenario core complete", map[string]any{
		"entities":    data.Entities.Total(),
		"entries":     len(scenarioTimeline.Entries),
		"profiles":    len(participants.Profiles),
		"protagonist": participants.ProtagonistID,
	})
	o.logger.Info("Completed scenario synthesis", slog.String("caseID", caseID))

	return core, nil
}

// runStage executes one stage, recovering panics and wrapping unexpected
// failures with the stage name. Domain errors pass through unchanged.
func (o *Orchestrator) runStage(stage string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &model.StageError{Stage: stage, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	err = fn()
	if err != nil && !isDomainError(err) {
		err = &model.StageError{Stage: stage, Err: err}
	}
	return err
}

// isDomainError reports whether the error belongs to the documented domain
// taxonomy and should surface to the caller unwrapped.
func isDomainError(err error) bool {
	notFound := &model.NotFoundError{}
	storage := &model.StorageError{}
	eligibility := &model.EligibilityError{}
	return errors.As(err, &notFound) || errors.As(err, &storage) || errors.As(err, &eligibility)
}
