// Package participant implements the participant-mapping stage: profile
// derivation from Role entities, narrative-role classification, the
// relationship graph, protagonist selection, and the optional fail-soft
// narrative enrichment.
package participant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/siherrmann/caseweaver/model"
)

// EnhancedProfile is the enriched text for one profile, matched by id.
type EnhancedProfile struct {
	ID           string `json:"id"`
	Background   string `json:"background,omitempty"`
	CharacterArc string `json:"character_arc,omitempty"`
}

// Enhancement is the structured output of one narrative-enrichment call.
type Enhancement struct {
	Profiles      []EnhancedProfile `json:"profiles"`
	TeachingNotes []string          `json:"teaching_notes,omitempty"`
}

// NarrativeEnricher is the optional external narrative-quality pass.
// Implementations may call out to a text-generation service; failures are
// recovered at the single call site in MapParticipants and never propagate.
type NarrativeEnricher interface {
	Enhance(ctx context.Context, profiles []*model.ParticipantProfile, relationships map[string][]string) (*Enhancement, error)
}

// NoopEnricher is the default enricher; it changes nothing.
type NoopEnricher struct{}

// Enhance returns no enhancement.
func (NoopEnricher) Enhance(ctx context.Context, profiles []*model.ParticipantProfile, relationships map[string][]string) (*Enhancement, error) {
	return nil, nil
}

// Mapper derives participant profiles from Role entities.
type Mapper struct {
	enricher NarrativeEnricher
	config   model.ScenarioConfig
	logger   *slog.Logger
}

// NewMapper creates a mapper. A nil enricher falls back to NoopEnricher.
func NewMapper(enricher NarrativeEnricher, config model.ScenarioConfig, logger *slog.Logger) *Mapper {
	if enricher == nil {
		enricher = NoopEnricher{}
	}
	return &Mapper{
		enricher: enricher,
		config:   config,
		logger:   logger,
	}
}

// SetEnricher swaps the narrative enricher. A nil enricher falls back to
// NoopEnricher.
func (m *Mapper) SetEnricher(enricher NarrativeEnricher) {
	if enricher == nil {
		enricher = NoopEnricher{}
	}
	m.enricher = enricher
}

// MapParticipants derives one profile per Role entity, builds the symmetric
// relationship graph, selects the protagonist, and runs the optional
// enrichment pass. An empty role list yields an empty result without error.
// The timeline is optional and only refines character arcs when present.
func (m *Mapper) MapParticipants(ctx context.Context, roles []*model.Entity, scenarioTimeline *model.ScenarioTimeline) (*model.ParticipantResult, error) {
	profiles := make([]*model.ParticipantProfile, 0, len(roles))
	for _, role := range roles {
		profiles = append(profiles, m.deriveProfile(role, scenarioTimeline))
	}

	result := &model.ParticipantResult{
		Profiles:      profiles,
		Relationships: BuildRelationshipGraph(profiles),
		ProtagonistID: SelectProtagonist(profiles),
	}
	for _, profile := range profiles {
		if profile.ID != result.ProtagonistID {
			result.SupportingCast = append(result.SupportingCast, profile.ID)
		}
	}

	m.enrich(ctx, result)

	m.logger.Info("Mapped participants",
		slog.Int("profiles", len(result.Profiles)),
		slog.String("protagonist", result.ProtagonistID),
	)

	return result, nil
}

// deriveProfile builds one participant profile from a Role entity.
func (m *Mapper) deriveProfile(role *model.Entity, scenarioTimeline *model.ScenarioTimeline) *model.ParticipantProfile {
	narrative := role.Properties.GetInvolvementNarrative()

	roleType := role.Properties.GetRoleType()
	if roleType == "" {
		roleType = role.Label
	}

	background := role.Definition
	if background == "" {
		background = role.Properties.GetExperience()
	}

	motivations := ApplyRules(MotivationRules, narrative)
	if len(motivations) == 0 {
		motivations = []string{FallbackMotivation}
	}

	obligations := role.Properties.GetObligations()
	tensions := role.Properties.GetEthicalTensions()

	var relationships []model.Relationship
	for _, value := range role.Properties.GetRelatedRoles() {
		relationships = append(relationships, parseRelatedRole(value))
	}

	profile := &model.ParticipantProfile{
		ID:              role.ID,
		SourceEntityID:  role.ID,
		Name:            role.Label,
		RoleType:        roleType,
		Background:      background,
		Expertise:       role.Properties.GetSpecializations(),
		Qualifications:  role.Properties.GetLicenses(),
		Motivations:     motivations,
		Goals:           ApplyRules(GoalRules, narrative),
		Obligations:     obligations,
		Constraints:     ApplyRules(ConstraintRules, narrative),
		EthicalTensions: tensions,
		CharacterArc:    m.buildArc(narrative, role.ID, scenarioTimeline),
		NarrativeRole:   classifyNarrativeRole(roleType, narrative, obligations, tensions),
		Relationships:   relationships,
	}

	return profile
}

// buildArc assembles a character-arc sentence from matched narrative
// phrases, falling back to the truncated raw narrative when no rule matches.
// When the participant acts in the resolution phase of the timeline, the arc
// gets a closing clause.
func (m *Mapper) buildArc(narrative string, sourceID string, scenarioTimeline *model.ScenarioTimeline) string {
	phrases := ApplyRules(ArcRules, narrative)

	arc := ""
	if len(phrases) > 0 {
		arc = strings.Join(phrases, ", then ")
	} else {
		arc = truncate(strings.TrimSpace(narrative), m.config.ArcMaxLength)
	}

	if actsInResolution(scenarioTimeline, sourceID) {
		if arc != "" {
			arc += "; "
		}
		arc += "present at the resolution of the case"
	}

	return arc
}

// actsInResolution reports whether any resolution-phase timeline entry
// carries an entity whose agent is the given source entity.
func actsInResolution(scenarioTimeline *model.ScenarioTimeline, sourceID string) bool {
	if scenarioTimeline == nil {
		return false
	}
	for _, entry := range scenarioTimeline.Entries {
		if entry.Phase != model.PhaseResolution {
			continue
		}
		for _, entity := range entry.Entities {
			if entity.Properties.GetAgent() == sourceID {
				return true
			}
		}
	}
	return false
}

// classifyNarrativeRole assigns the heuristic narrative-role tag. The tag is
// a narrative hint; protagonist selection for scenario logic is scored
// separately in SelectProtagonist.
func classifyNarrativeRole(roleType string, narrative string, obligations []string, tensions []string) model.NarrativeRole {
	loweredRole := strings.ToLower(roleType)
	loweredNarrative := strings.ToLower(narrative)

	if containsAny(loweredRole, "engineer", "professional") {
		if len(obligations) > 2 || len(tensions) > 0 {
			return model.NarrativeRoleProtagonist
		}
		return model.NarrativeRoleSupporting
	}

	if containsAny(loweredRole, "client", "stakeholder") {
		if containsAny(loweredNarrative, "refuse", "resist", "insist", "demand", "pressure") {
			return model.NarrativeRoleAntagonist
		}
		return model.NarrativeRoleSupporting
	}

	return model.NarrativeRoleSupporting
}

// enrich runs the optional narrative enrichment at exactly this call site.
// The call is bounded by the configured timeout and runs on its own
// goroutine so a slow service never blocks past the deadline. Any failure
// is logged and the unenriched result is kept.
func (m *Mapper) enrich(ctx context.Context, result *model.ParticipantResult) {
	if len(result.Profiles) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, m.config.EnrichmentTimeout)
	defer cancel()

	type outcome struct {
		enhancement *Enhancement
		err         error
	}
	done := make(chan outcome, 1)
	go func() {
		enhancement, err := m.enricher.Enhance(ctx, result.Profiles, result.Relationships)
		done <- outcome{enhancement: enhancement, err: err}
	}()

	var enhancement *Enhancement
	select {
	case <-ctx.Done():
		enrichmentError := &model.EnrichmentError{Err: ctx.Err()}
		m.logger.Warn("Narrative enrichment timed out, keeping unenriched profiles", slog.String("error", enrichmentError.Error()))
		return
	case out := <-done:
		if out.err != nil {
			enrichmentError := &model.EnrichmentError{Err: out.err}
			m.logger.Warn("Narrative enrichment failed, keeping unenriched profiles", slog.String("error", enrichmentError.Error()))
			return
		}
		enhancement = out.enhancement
	}

	if enhancement == nil {
		return
	}

	byID := make(map[string]*model.ParticipantProfile, len(result.Profiles))
	for _, profile := range result.Profiles {
		byID[profile.ID] = profile
	}

	for _, enhanced := range enhancement.Profiles {
		profile, ok := byID[enhanced.ID]
		if !ok {
			continue
		}
		if enhanced.Background != "" {
			profile.Background = enhanced.Background
		}
		if enhanced.CharacterArc != "" {
			profile.CharacterArc = enhanced.CharacterArc
		}
	}
	result.TeachingNotes = append(result.TeachingNotes, enhancement.TeachingNotes...)
}

// truncate shortens text to at most max runes, appending an ellipsis marker.
func truncate(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return fmt.Sprintf("%v...", strings.TrimSpace(string(runes[:max])))
}
