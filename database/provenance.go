package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/siherrmann/caseweaver/helper"
	"github.com/siherrmann/caseweaver/model"
	"github.com/siherrmann/caseweaver/sql"
)

// ProvenanceDBHandlerFunctions defines the interface for provenance database operations.
type ProvenanceDBHandlerFunctions interface {
	InsertExtractionSession(ctx context.Context, caseID string, session *model.ExtractionSession) error
	SelectExtractionSessions(ctx context.Context, caseID string) ([]model.ExtractionSession, error)
	InsertSynthesisRecord(ctx context.Context, caseID string) error
	SelectSynthesisRecorded(ctx context.Context, caseID string) (bool, error)
}

// ProvenanceDBHandler handles extraction-session and synthesis-record operations
type ProvenanceDBHandler struct {
	db *helper.Database
}

// NewProvenanceDBHandler creates a new provenance database handler.
// It initializes the database connection and loads provenance-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewProvenanceDBHandler(db *helper.Database, force bool) (*ProvenanceDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	provenanceDbHandler := &ProvenanceDBHandler{
		db: db,
	}

	err := sql.LoadProvenanceSql(provenanceDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load provenance sql", err)
	}

	err = provenanceDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ProvenanceDBHandler")

	return provenanceDbHandler, nil
}

// CreateTable creates the 'extraction_sessions' and 'synthesis_records'
// tables in the database. If the tables already exist, it does not create
// them again.
func (h *ProvenanceDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_provenance();`)
	if err != nil {
		log.Panicf("error initializing provenance tables: %#v", err)
	}

	h.db.Logger.Info("Checked/created tables extraction_sessions and synthesis_records")

	return nil
}

// InsertExtractionSession inserts one extraction session and fills the
// generated fields on session.
func (h *ProvenanceDBHandler) InsertExtractionSession(ctx context.Context, caseID string, session *model.ExtractionSession) error {
	var caseIdentifier string
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_extraction_session($1, $2, $3)`,
		caseID,
		session.Stage,
		session.Complete,
	)

	err := row.Scan(
		&session.ID,
		&caseIdentifier,
		&session.Stage,
		&session.Complete,
		&session.CompletedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectExtractionSessions retrieves the extraction sessions of a case in
// (completed_at, stage) order.
func (h *ProvenanceDBHandler) SelectExtractionSessions(ctx context.Context, caseID string) ([]model.ExtractionSession, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_extraction_sessions($1)`,
		caseID,
	)
	if err != nil {
		return nil, helper.NewError("select extraction sessions", err)
	}
	defer rows.Close()

	var sessions []model.ExtractionSession
	for rows.Next() {
		var caseIdentifier string
		session := model.ExtractionSession{}

		err := rows.Scan(
			&session.ID,
			&caseIdentifier,
			&session.Stage,
			&session.Complete,
			&session.CompletedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, helper.NewError("iterate rows", err)
	}

	return sessions, nil
}

// InsertSynthesisRecord marks the case as having a recorded synthesis.
// Inserting twice is a no-op.
func (h *ProvenanceDBHandler) InsertSynthesisRecord(ctx context.Context, caseID string) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT insert_synthesis_record($1)`,
		caseID,
	)
	if err != nil {
		return helper.NewError("insert synthesis record", err)
	}

	return nil
}

// SelectSynthesisRecorded reports whether a synthesis record exists for the case.
func (h *ProvenanceDBHandler) SelectSynthesisRecorded(ctx context.Context, caseID string) (bool, error) {
	var recorded bool
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_synthesis_recorded($1)`,
		caseID,
	)

	err := row.Scan(&recorded)
	if err != nil {
		return false, helper.NewError("scan", err)
	}

	return recorded, nil
}
