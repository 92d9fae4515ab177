// Package timeline implements the timeline-construction stage: the
// exact-match temporal join and the fixed-ratio phase segmentation.
package timeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/siherrmann/caseweaver/database"
	"github.com/siherrmann/caseweaver/model"
)

// Fixed pedagogical phase descriptions used in the phase index.
var phaseDescriptions = map[model.Phase]string{
	model.PhaseIntroduction: "Scene setting and initial context",
	model.PhaseDevelopment:  "Escalating events and decision points",
	model.PhaseResolution:   "Outcome and consequences",
}

// Constructor builds a phase-segmented scenario timeline from the ordered
// timepoints of a case and the Action/Event entities of the merged set.
type Constructor struct {
	store  database.EntityStore
	logger *slog.Logger
}

// NewConstructor creates a timeline constructor over the given entity store.
func NewConstructor(store database.EntityStore, logger *slog.Logger) *Constructor {
	return &Constructor{
		store:  store,
		logger: logger,
	}
}

// BuildTimeline loads the ordered timepoints of a case and joins the
// Action/Event entities of the merged set onto them by exact temporal-marker
// match. An empty timepoint list yields an empty, valid timeline.
func (c *Constructor) BuildTimeline(ctx context.Context, caseID string, entities model.MergedEntitySet) (*model.ScenarioTimeline, error) {
	points, err := c.store.ReadTimepoints(ctx, caseID)
	if err != nil {
		return nil, err
	}

	attachable := append([]*model.Entity{}, entities.OfType(model.EntityTypeAction)...)
	attachable = append(attachable, entities.OfType(model.EntityTypeEvent)...)

	scenarioTimeline := Build(caseID, points, attachable)

	c.logger.Info("Built timeline",
		slog.String("caseID", caseID),
		slog.Int("entries", len(scenarioTimeline.Entries)),
		slog.Int("actions", scenarioTimeline.ActionCount),
		slog.Int("events", scenarioTimeline.EventCount),
	)

	return scenarioTimeline, nil
}

// Build joins entities onto timepoints and segments the result into phases.
// Timepoints are assumed chronologically ordered upstream and are never
// reordered here; sequence numbers are assigned 1..N in input order.
func Build(caseID string, points *model.TimepointSet, entities []*model.Entity) *model.ScenarioTimeline {
	byMarker := map[string][]*model.Entity{}
	for _, entity := range entities {
		marker := entity.Properties.GetTemporalMarker()
		if marker == "" {
			continue
		}
		byMarker[marker] = append(byMarker[marker], entity)
	}

	entries := make([]model.TimelineEntry, 0, len(points.Points))
	actionCount := 0
	eventCount := 0
	for i, point := range points.Points {
		attached := byMarker[point.Label]
		for _, entity := range attached {
			switch entity.Type {
			case model.EntityTypeAction:
				actionCount++
			case model.EntityTypeEvent:
				eventCount++
			}
		}

		entries = append(entries, model.TimelineEntry{
			Sequence:   i + 1,
			Label:      point.Label,
			Duration:   point.Duration,
			IsInterval: point.IsInterval,
			Entities:   attached,
		})
	}

	phases := segmentPhases(entries)

	return &model.ScenarioTimeline{
		CaseID:           caseID,
		Entries:          entries,
		Phases:           phases,
		ActionCount:      actionCount,
		EventCount:       eventCount,
		DurationEstimate: estimateDuration(points.Points),
		Consistency:      points.Consistency,
	}
}

// segmentPhases assigns each entry to one of three phases with fixed-ratio
// boundaries and returns the phase index. Only non-empty phases appear in
// the index; an empty entry list yields an empty index.
func segmentPhases(entries []model.TimelineEntry) map[model.Phase]model.PhaseSpan {
	n := len(entries)
	if n == 0 {
		return map[model.Phase]model.PhaseSpan{}
	}

	introEnd, devEnd := phaseBounds(n)

	for i := range entries {
		switch {
		case i < introEnd:
			entries[i].Phase = model.PhaseIntroduction
		case i < devEnd:
			entries[i].Phase = model.PhaseDevelopment
		default:
			entries[i].Phase = model.PhaseResolution
		}
	}

	phases := map[model.Phase]model.PhaseSpan{
		model.PhaseIntroduction: {Start: 0, End: introEnd, Description: phaseDescriptions[model.PhaseIntroduction]},
	}
	if devEnd > introEnd {
		phases[model.PhaseDevelopment] = model.PhaseSpan{Start: introEnd, End: devEnd, Description: phaseDescriptions[model.PhaseDevelopment]}
	}
	if n > devEnd {
		phases[model.PhaseResolution] = model.PhaseSpan{Start: devEnd, End: n, Description: phaseDescriptions[model.PhaseResolution]}
	}

	return phases
}

// phaseBounds computes the fixed-ratio phase boundaries for n entries.
// The introduction is never empty; the development starts directly after it.
func phaseBounds(n int) (introEnd int, devEnd int) {
	introEnd = n * 2 / 10
	if introEnd < 1 {
		introEnd = 1
	}
	devEnd = n * 8 / 10
	if devEnd < introEnd+1 {
		devEnd = introEnd + 1
	}
	if devEnd > n {
		devEnd = n
	}
	if introEnd > n {
		introEnd = n
	}
	return introEnd, devEnd
}

// estimateDuration derives a coarse human-readable duration summary from the
// timepoint texts. It is non-authoritative and never used for ordering or
// phase math.
func estimateDuration(points []model.Timepoint) string {
	if len(points) == 0 {
		return "no timeline data"
	}

	text := make([]string, 0, len(points)*2)
	for _, point := range points {
		text = append(text, strings.ToLower(point.Label), strings.ToLower(point.Duration))
	}
	joined := strings.Join(text, " ")

	switch {
	case strings.Contains(joined, "year"):
		return "spans a year or more"
	case strings.Contains(joined, "month"):
		return "spans several months"
	case strings.Contains(joined, "week"):
		return "spans several weeks"
	case strings.Contains(joined, "day"):
		return "spans several days"
	default:
		return "unspecified duration"
	}
}
