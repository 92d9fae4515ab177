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

// TimepointsDBHandlerFunctions defines the interface for Timepoints database operations.
type TimepointsDBHandlerFunctions interface {
	InsertTimepoint(ctx context.Context, caseID string, position int, point model.Timepoint) error
	SelectTimepoints(ctx context.Context, caseID string) ([]model.Timepoint, error)
	DeleteCaseTimepoints(ctx context.Context, caseID string) error
}

// TimepointsDBHandler handles timepoint-related database operations
type TimepointsDBHandler struct {
	db *helper.Database
}

// NewTimepointsDBHandler creates a new timepoints database handler.
// It initializes the database connection and loads timepoint-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewTimepointsDBHandler(db *helper.Database, force bool) (*TimepointsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	timepointsDbHandler := &TimepointsDBHandler{
		db: db,
	}

	err := sql.LoadTimepointsSql(timepointsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load timepoints sql", err)
	}

	err = timepointsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized TimepointsDBHandler")

	return timepointsDbHandler, nil
}

// CreateTable creates the 'timepoints' table in the database.
// If the table already exists, it does not create it again.
func (h *TimepointsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_timepoints();`)
	if err != nil {
		log.Panicf("error initializing timepoints table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table timepoints")

	return nil
}

// InsertTimepoint inserts one timepoint at the given chronological position.
func (h *TimepointsDBHandler) InsertTimepoint(ctx context.Context, caseID string, position int, point model.Timepoint) error {
	var rowID int64
	var caseIdentifier string
	var positionOut int
	var createdAt time.Time
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_timepoint($1, $2, $3, $4, $5)`,
		caseID,
		position,
		point.Label,
		point.IsInterval,
		point.Duration,
	)

	err := row.Scan(
		&rowID,
		&caseIdentifier,
		&positionOut,
		&point.Label,
		&point.IsInterval,
		&point.Duration,
		&createdAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectTimepoints retrieves the timepoints of a case in chronological
// (position) order.
func (h *TimepointsDBHandler) SelectTimepoints(ctx context.Context, caseID string) ([]model.Timepoint, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_timepoints($1)`,
		caseID,
	)
	if err != nil {
		return nil, helper.NewError("select timepoints", err)
	}
	defer rows.Close()

	var points []model.Timepoint
	for rows.Next() {
		var rowID int64
		var caseIdentifier string
		var position int
		var createdAt time.Time
		point := model.Timepoint{}

		err := rows.Scan(
			&rowID,
			&caseIdentifier,
			&position,
			&point.Label,
			&point.IsInterval,
			&point.Duration,
			&createdAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, helper.NewError("iterate rows", err)
	}

	return points, nil
}

// DeleteCaseTimepoints removes all timepoints of a case.
func (h *TimepointsDBHandler) DeleteCaseTimepoints(ctx context.Context, caseID string) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_case_timepoints($1)`,
		caseID,
	)
	if err != nil {
		return helper.NewError("delete case timepoints", err)
	}

	return nil
}
