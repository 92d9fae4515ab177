package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed cases.sql
var casesSQL string

//go:embed entities.sql
var entitiesSQL string

//go:embed timepoints.sql
var timepointsSQL string

//go:embed provenance.sql
var provenanceSQL string

// Function lists for verification
var CasesFunctions = []string{
	"init_cases",
	"insert_case",
	"select_case",
	"update_case_consistency",
	"delete_case",
}

var EntitiesFunctions = []string{
	"init_entities",
	"insert_entity",
	"select_working_entities",
	"select_committed_entities",
	"delete_case_entities",
}

var TimepointsFunctions = []string{
	"init_timepoints",
	"insert_timepoint",
	"select_timepoints",
	"delete_case_timepoints",
}

var ProvenanceFunctions = []string{
	"init_provenance",
	"insert_extraction_session",
	"select_extraction_sessions",
	"insert_synthesis_record",
	"select_synthesis_recorded",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadCasesSql loads case-related SQL functions
func LoadCasesSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, CasesFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing cases functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(casesSQL)
	if err != nil {
		return fmt.Errorf("error executing cases SQL: %w", err)
	}

	exist, err := checkFunctions(db, CasesFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL cases functions loaded successfully")
	return nil
}

// LoadEntitiesSql loads entity-related SQL functions
func LoadEntitiesSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, EntitiesFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing entities functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(entitiesSQL)
	if err != nil {
		return fmt.Errorf("error executing entities SQL: %w", err)
	}

	exist, err := checkFunctions(db, EntitiesFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL entities functions loaded successfully")
	return nil
}

// LoadTimepointsSql loads timepoint-related SQL functions
func LoadTimepointsSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, TimepointsFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing timepoints functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(timepointsSQL)
	if err != nil {
		return fmt.Errorf("error executing timepoints SQL: %w", err)
	}

	exist, err := checkFunctions(db, TimepointsFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL timepoints functions loaded successfully")
	return nil
}

// LoadProvenanceSql loads provenance-related SQL functions
func LoadProvenanceSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, ProvenanceFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing provenance functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(provenanceSQL)
	if err != nil {
		return fmt.Errorf("error executing provenance SQL: %w", err)
	}

	exist, err := checkFunctions(db, ProvenanceFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL provenance functions loaded successfully")
	return nil
}

// LoadAllSql loads all SQL functions
func LoadAllSql(db *sql.DB, force bool) error {
	if err := LoadCasesSql(db, force); err != nil {
		return err
	}

	if err := LoadEntitiesSql(db, force); err != nil {
		return err
	}

	if err := LoadTimepointsSql(db, force); err != nil {
		return err
	}

	if err := LoadProvenanceSql(db, force); err != nil {
		return err
	}

	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
