package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/siherrmann/caseweaver"
	"github.com/siherrmann/caseweaver/database"
	"github.com/siherrmann/caseweaver/llm"
	"github.com/siherrmann/caseweaver/model"
)

const caseID = "case://examples/enriched-bridge-inspection"

// Demonstrates the optional narrative enrichment against any
// OpenAI-compatible endpoint (OpenAI, Ollama, LM Studio, ...).
// Set LLM_BASE_URL, LLM_MODEL, and optionally LLM_API_KEY.
// Enrichment is fail-soft: without a reachable endpoint the run still
// succeeds with unenriched profiles.
func main() {
	store := database.NewMemoryStore()
	seedCase(store)

	weaver := caseweaver.NewCaseWeaverWithStore(store)

	baseURL := os.Getenv("LLM_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	modelName := os.Getenv("LLM_MODEL")
	if modelName == "" {
		modelName = "llama3.2"
	}
	weaver.SetEnricher(llm.NewEnricher(llm.Config{
		BaseURL: baseURL,
		APIKey:  os.Getenv("LLM_API_KEY"),
		Model:   modelName,
		Timeout: 60 * time.Second,
	}))

	core, err := weaver.GenerateScenario(context.Background(), caseID, nil)
	if err != nil {
		log.Fatalf("Failed to generate scenario: %v", err)
	}

	fmt.Printf("Case: %s\n", core.Case.Title)
	for _, profile := range core.Participants.Profiles {
		fmt.Printf("\n%s (%s)\n", profile.Name, profile.NarrativeRole)
		fmt.Printf("  Background: %s\n", profile.Background)
		fmt.Printf("  Arc: %s\n", profile.CharacterArc)
	}

	if len(core.Participants.TeachingNotes) > 0 {
		fmt.Println("\nTeaching notes:")
		for _, note := range core.Participants.TeachingNotes {
			fmt.Printf("  - %s\n", note)
		}
	} else {
		fmt.Println("\nNo teaching notes (enrichment unavailable, profiles unenriched).")
	}
}

func seedCase(store *database.MemoryStore) {
	store.AddCase(&model.CaseMetadata{Identifier: caseID, Title: "The reluctant bridge owner"})

	store.AddWorkingEntity(caseID, &model.Entity{
		ID: "urn:role:engineer", Label: "Consulting Engineer", Type: model.EntityTypeRole,
		Definition: "Licensed engineer retained to inspect the bridge",
		Properties: model.Properties{
			{Key: model.PropRoleType, Values: []string{"professional engineer"}},
			{Key: model.PropInvolvementNarrative, Values: []string{"discovers cracked girders and must report them to protect public safety"}},
			{Key: model.PropActiveObligations, Values: []string{"report defects", "protect the public", "maintain confidentiality"}},
			{Key: model.PropEthicalTensions, Values: []string{"client confidentiality versus public safety"}},
			{Key: model.PropRelatedRoles, Values: []string{"urn:role:owner|retained by"}},
		},
	})
	store.AddWorkingEntity(caseID, &model.Entity{
		ID: "urn:role:owner", Label: "Bridge Owner", Type: model.EntityTypeRole,
		Properties: model.Properties{
			{Key: model.PropRoleType, Values: []string{"client"}},
			{Key: model.PropInvolvementNarrative, Values: []string{"insists the findings stay confidential and refuses to fund repairs"}},
		},
	})
	store.AddWorkingEntity(caseID, &model.Entity{
		ID: "urn:obligation:report", Label: "Duty to report structural hazards", Type: model.EntityTypeObligation,
	})
	store.AddWorkingEntity(caseID, &model.Entity{
		ID: "urn:action:inspect", Label: "Bridge inspection", Type: model.EntityTypeAction,
		Properties: model.Properties{{Key: model.PropTemporalMarker, Values: []string{"day of the inspection"}}},
	})
	store.SetTimepoints(caseID, []model.Timepoint{
		{Label: "day of the inspection"},
		{Label: "one week later", IsInterval: true, Duration: "one week"},
	})
	store.SetSynthesisRecorded(caseID, true)
}
