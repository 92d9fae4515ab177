package main

import (
	"context"
	"fmt"
	"log"

	"github.com/siherrmann/caseweaver"
	"github.com/siherrmann/caseweaver/database"
	"github.com/siherrmann/caseweaver/helper"
	"github.com/siherrmann/caseweaver/model"
)

const caseID = "case://examples/bridge-inspection"

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	weaver, err := caseweaver.NewCaseWeaver(dbConfig)
	if err != nil {
		log.Fatalf("Failed to create caseweaver: %v", err)
	}
	defer weaver.Close()

	ctx := context.Background()
	if err := seedCase(ctx, weaver.Store.(*database.Store)); err != nil {
		log.Fatalf("Failed to seed case: %v", err)
	}

	fmt.Println("Generating scenario core...")
	core, err := weaver.GenerateScenario(ctx, caseID, func(stage string, percent int, message string, data map[string]any) {
		fmt.Printf("[%3d%%] %-22s %s\n", percent, stage, message)
	})
	if err != nil {
		log.Fatalf("Failed to generate scenario: %v", err)
	}

	fmt.Printf("\nCase: %s\n", core.Case.Title)
	fmt.Printf("Eligibility: %s\n", core.Eligibility.Summary)
	fmt.Printf("Duration: %s\n", core.Timeline.DurationEstimate)

	fmt.Printf("\nTimeline (%d entries):\n", len(core.Timeline.Entries))
	for _, entry := range core.Timeline.Entries {
		fmt.Printf("  %d. [%s] %s (%d entities)\n", entry.Sequence, entry.Phase, entry.Label, len(entry.Entities))
	}

	fmt.Printf("\nParticipants (%d):\n", len(core.Participants.Profiles))
	for _, profile := range core.Participants.Profiles {
		marker := " "
		if profile.ID == core.Participants.ProtagonistID {
			marker = "*"
		}
		fmt.Printf("  %s %s (%s) as %s\n", marker, profile.Name, profile.RoleType, profile.NarrativeRole)
	}

	fmt.Println("\nBasic example completed successfully!")
}

// seedCase inserts a small professional-ethics case: an engineer discovers a
// structural defect, the owner resists disclosure.
func seedCase(ctx context.Context, store *database.Store) error {
	meta := &model.CaseMetadata{Identifier: caseID, Title: "The reluctant bridge owner"}
	if err := store.Cases.InsertCase(ctx, meta); err != nil {
		return err
	}

	entities := []*model.Entity{
		{
			ID: "urn:role:engineer", Label: "Consulting Engineer", Type: model.EntityTypeRole,
			Definition: "Licensed engineer retained to inspect the bridge",
			Properties: model.Properties{
				{Key: model.PropRoleType, Values: []string{"professional engineer"}},
				{Key: model.PropInvolvementNarrative, Values: []string{"discovers cracked girders and must report them to protect public safety"}},
				{Key: model.PropActiveObligations, Values: []string{"report defects", "protect the public", "maintain confidentiality"}},
				{Key: model.PropEthicalTensions, Values: []string{"client confidentiality versus public safety"}},
				{Key: model.PropRelatedRoles, Values: []string{"urn:role:owner|retained by"}},
				{Key: model.PropCaseSection, Values: []string{"facts"}},
			},
		},
		{
			ID: "urn:role:owner", Label: "Bridge Owner", Type: model.EntityTypeRole,
			Properties: model.Properties{
				{Key: model.PropRoleType, Values: []string{"client"}},
				{Key: model.PropInvolvementNarrative, Values: []string{"insists the findings stay confidential and refuses to fund repairs"}},
			},
		},
		{
			ID: "urn:obligation:report", Label: "Duty to report structural hazards", Type: model.EntityTypeObligation,
		},
		{
			ID: "urn:principle:safety", Label: "Hold paramount the safety of the public", Type: model.EntityTypePrinciple,
		},
		{
			ID: "urn:action:inspect", Label: "Bridge inspection", Type: model.EntityTypeAction,
			Properties: model.Properties{
				{Key: model.PropTemporalMarker, Values: []string{"day of the inspection"}},
				{Key: model.PropAgent, Values: []string{"urn:role:engineer"}},
			},
		},
		{
			ID: "urn:event:refusal", Label: "Owner refuses disclosure", Type: model.EntityTypeEvent,
			Properties: model.Properties{
				{Key: model.PropTemporalMarker, Values: []string{"one week later"}},
			},
		},
		{
			ID: "urn:state:question", Label: "Should the engineer notify the authorities?", Type: model.EntityTypeState,
			Properties: model.Properties{
				{Key: model.PropStatementKind, Values: []string{"question"}},
			},
		},
	}
	for _, entity := range entities {
		entity.Source = model.SourceTierWorking
		if err := store.Entities.InsertEntity(ctx, caseID, entity, false); err != nil {
			return err
		}
	}

	points := []model.Timepoint{
		{Label: "day of the inspection"},
		{Label: "one week later", IsInterval: true, Duration: "one week"},
		{Label: "the hearing"},
	}
	for i, point := range points {
		if err := store.Timepoints.InsertTimepoint(ctx, caseID, i+1, point); err != nil {
			return err
		}
	}

	return nil
}
