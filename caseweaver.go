package caseweaver

import (
	"context"
	"log/slog"
	"os"

	"github.com/siherrmann/caseweaver/core/collector"
	"github.com/siherrmann/caseweaver/core/orchestrator"
	"github.com/siherrmann/caseweaver/core/participant"
	"github.com/siherrmann/caseweaver/core/timeline"
	"github.com/siherrmann/caseweaver/database"
	"github.com/siherrmann/caseweaver/helper"
	"github.com/siherrmann/caseweaver/model"
	loadSql "github.com/siherrmann/caseweaver/sql"
)

// CaseWeaver provides a unified interface to the scenario-synthesis pipeline
type CaseWeaver struct {
	DB           *helper.Database
	Store        database.EntityStore
	Collector    *collector.Collector
	Timeline     *timeline.Constructor
	Participants *participant.Mapper
	Orchestrator *orchestrator.Orchestrator
	// Logging
	log *slog.Logger
}

// NewCaseWeaver creates a new CaseWeaver instance backed by PostgreSQL,
// with all database handlers initialized.
func NewCaseWeaver(config *helper.DatabaseConfiguration) (*CaseWeaver, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("caseweaver", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// force=false to not reload if functions already exist
	store, err := database.NewStore(db, false)
	if err != nil {
		return nil, helper.NewError("create store", err)
	}

	weaver := newWithStore(store, logger)
	weaver.DB = db
	return weaver, nil
}

// NewCaseWeaverWithStore creates a CaseWeaver over any EntityStore, e.g. the
// in-memory store for tests and embedding without PostgreSQL.
func NewCaseWeaverWithStore(store database.EntityStore) *CaseWeaver {
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	return newWithStore(store, logger)
}

func newWithStore(store database.EntityStore, logger *slog.Logger) *CaseWeaver {
	c := collector.NewCollector(store, logger)
	constructor := timeline.NewConstructor(store, logger)
	mapper := participant.NewMapper(nil, model.DefaultScenarioConfig(), logger)

	return &CaseWeaver{
		Store:        store,
		Collector:    c,
		Timeline:     constructor,
		Participants: mapper,
		Orchestrator: orchestrator.New(c, constructor, mapper, logger),
		log:          logger,
	}
}

// SetEnricher sets the optional narrative enricher used during participant
// mapping. Enrichment is fail-soft; a failing enricher never fails a run.
func (c *CaseWeaver) SetEnricher(enricher participant.NarrativeEnricher) {
	c.Participants.SetEnricher(enricher)
}

// GenerateScenario synthesizes the scenario core for one case: eligibility
// report, merged entity counts, phase-segmented timeline, and participant
// profiles with the selected protagonist. The optional onProgress callback
// receives one call per stage transition.
func (c *CaseWeaver) GenerateScenario(ctx context.Context, caseID string, onProgress orchestrator.ProgressFunc) (*model.ScenarioCore, error) {
	return c.Orchestrator.Run(ctx, caseID, onProgress)
}

// Close closes the database connection, if any.
func (c *CaseWeaver) Close() error {
	if c.DB != nil && c.DB.Instance != nil {
		return c.DB.Instance.Close()
	}
	return nil
}
