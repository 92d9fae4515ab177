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

// CasesDBHandlerFunctions defines the interface for Cases database operations.
type CasesDBHandlerFunctions interface {
	InsertCase(ctx context.Context, meta *model.CaseMetadata) error
	SelectCase(ctx context.Context, identifier string) (*model.CaseMetadata, error)
	UpdateCaseConsistency(ctx context.Context, identifier string, consistency string) error
	DeleteCase(ctx context.Context, identifier string) error
}

// CasesDBHandler handles case-related database operations
type CasesDBHandler struct {
	db *helper.Database
}

// NewCasesDBHandler creates a new cases database handler.
// It initializes the database connection and loads case-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewCasesDBHandler(db *helper.Database, force bool) (*CasesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	casesDbHandler := &CasesDBHandler{
		db: db,
	}

	err := sql.LoadCasesSql(casesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load cases sql", err)
	}

	err = casesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized CasesDBHandler")

	return casesDbHandler, nil
}

// CreateTable creates the 'cases' table in the database.
// If the table already exists, it does not create it again.
func (h *CasesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_cases();`)
	if err != nil {
		log.Panicf("error initializing cases table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table cases")

	return nil
}

// InsertCase inserts a new case and fills the generated fields on meta.
func (h *CasesDBHandler) InsertCase(ctx context.Context, meta *model.CaseMetadata) error {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_case($1, $2, $3)`,
		meta.Identifier,
		meta.Title,
		meta.TemporalConsistency,
	)

	err := row.Scan(
		&meta.ID,
		&meta.RID,
		&meta.Identifier,
		&meta.Title,
		&meta.TemporalConsistency,
		&meta.CreatedAt,
		&meta.UpdatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectCase retrieves a case by its URI-like identifier.
// Returns sql.ErrNoRows (wrapped) when the case does not exist.
func (h *CasesDBHandler) SelectCase(ctx context.Context, identifier string) (*model.CaseMetadata, error) {
	meta := &model.CaseMetadata{}
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_case($1)`,
		identifier,
	)

	err := row.Scan(
		&meta.ID,
		&meta.RID,
		&meta.Identifier,
		&meta.Title,
		&meta.TemporalConsistency,
		&meta.CreatedAt,
		&meta.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return meta, nil
}

// UpdateCaseConsistency sets the pass-through temporal-consistency annotation.
func (h *CasesDBHandler) UpdateCaseConsistency(ctx context.Context, identifier string, consistency string) error {
	meta := &model.CaseMetadata{}
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM update_case_consistency($1, $2)`,
		identifier,
		consistency,
	)

	err := row.Scan(
		&meta.ID,
		&meta.RID,
		&meta.Identifier,
		&meta.Title,
		&meta.TemporalConsistency,
		&meta.CreatedAt,
		&meta.UpdatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// DeleteCase deletes a case by identifier.
func (h *CasesDBHandler) DeleteCase(ctx context.Context, identifier string) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_case($1)`,
		identifier,
	)
	if err != nil {
		return helper.NewError("delete case", err)
	}

	return nil
}
