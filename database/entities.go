package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/siherrmann/caseweaver/helper"
	"github.com/siherrmann/caseweaver/model"
	loadSql "github.com/siherrmann/caseweaver/sql"
)

// EntitiesDBHandlerFunctions defines the interface for Entities database operations.
type EntitiesDBHandlerFunctions interface {
	InsertEntity(ctx context.Context, caseID string, entity *model.Entity, promoted bool) error
	SelectWorkingEntities(ctx context.Context, caseID string) ([]*model.Entity, error)
	SelectCommittedEntities(ctx context.Context, caseID string) ([]*model.Entity, error)
	DeleteCaseEntities(ctx context.Context, caseID string) error
}

// EntitiesDBHandler handles dual-tier entity database operations
type EntitiesDBHandler struct {
	db *helper.Database
}

// NewEntitiesDBHandler creates a new entities database handler.
// It initializes the database connection and loads entity-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewEntitiesDBHandler(db *helper.Database, force bool) (*EntitiesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	entitiesDbHandler := &EntitiesDBHandler{
		db: db,
	}

	err := loadSql.LoadEntitiesSql(entitiesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load entities sql", err)
	}

	err = entitiesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized EntitiesDBHandler")

	return entitiesDbHandler, nil
}

// CreateTable creates the 'case_entities' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *EntitiesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_entities();`)
	if err != nil {
		log.Panicf("error initializing entities table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table case_entities")

	return nil
}

// InsertEntity inserts an entity into the given case. The tier comes from
// entity.Source; promoted only applies to committed-tier entities.
func (h *EntitiesDBHandler) InsertEntity(ctx context.Context, caseID string, entity *model.Entity, promoted bool) error {
	var rowID int64
	var promotedOut bool
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_entity($1, $2, $3, $4, $5, $6, $7, $8)`,
		caseID,
		entity.ID,
		entity.Label,
		string(entity.Type),
		entity.Definition,
		entity.Properties,
		string(entity.Source),
		promoted,
	)

	err := row.Scan(
		&rowID,
		new(string), // case_identifier
		&entity.ID,
		&entity.Label,
		&entity.Type,
		&entity.Definition,
		&entity.Properties,
		&entity.Source,
		&promotedOut,
		&entity.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectWorkingEntities retrieves all working-tier entities of a case in
// stable (type, label, uri) order.
func (h *EntitiesDBHandler) SelectWorkingEntities(ctx context.Context, caseID string) ([]*model.Entity, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_working_entities($1)`,
		caseID,
	)
	if err != nil {
		return nil, helper.NewError("select working entities", err)
	}
	defer rows.Close()

	return scanEntities(rows)
}

// SelectCommittedEntities retrieves the promoted committed-tier entities of
// a case in stable (type, label, uri) order.
func (h *EntitiesDBHandler) SelectCommittedEntities(ctx context.Context, caseID string) ([]*model.Entity, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_committed_entities($1)`,
		caseID,
	)
	if err != nil {
		return nil, helper.NewError("select committed entities", err)
	}
	defer rows.Close()

	return scanEntities(rows)
}

// DeleteCaseEntities removes all entities of a case, both tiers.
func (h *EntitiesDBHandler) DeleteCaseEntities(ctx context.Context, caseID string) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_case_entities($1)`,
		caseID,
	)
	if err != nil {
		return helper.NewError("delete case entities", err)
	}

	return nil
}

// scanEntities scans case_entities rows into model entities.
func scanEntities(rows *sql.Rows) ([]*model.Entity, error) {
	var entities []*model.Entity
	for rows.Next() {
		var rowID int64
		var caseIdentifier string
		var promoted bool
		entity := &model.Entity{}

		err := rows.Scan(
			&rowID,
			&caseIdentifier,
			&entity.ID,
			&entity.Label,
			&entity.Type,
			&entity.Definition,
			&entity.Properties,
			&entity.Source,
			&promoted,
			&entity.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, helper.NewError("iterate rows", err)
	}

	return entities, nil
}
