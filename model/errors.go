package model

import (
	"fmt"
	"strings"
)

// NotFoundError reports that a case does not exist. It is fatal and never
// retried.
type NotFoundError struct {
	CaseID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("case %v not found", e.CaseID)
}

// StorageError reports a transient read failure from the entity store.
// Retry policy belongs to the caller; this core never retries internally.
type StorageError struct {
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error in %v: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// EligibilityError reports that a case exists but fails the completeness
// gate. It carries the full report so callers can explain what is missing.
type EligibilityError struct {
	Report *EligibilityReport
}

// Error implements the error interface.
func (e *EligibilityError) Error() string {
	missing := e.Report.MissingStages()
	if len(missing) == 0 {
		return fmt.Sprintf("case %v is not eligible for scenario generation", e.Report.CaseID)
	}
	return fmt.Sprintf("case %v is not eligible for scenario generation, missing stages: %v", e.Report.CaseID, strings.Join(missing, ", "))
}

// EnrichmentError reports a failure of the external narrative enrichment
// service. It is always recovered locally by falling back to unenriched
// output and never surfaced as a failure of the whole run.
type EnrichmentError struct {
	Err error
}

// Error implements the error interface.
func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("narrative enrichment failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *EnrichmentError) Unwrap() error {
	return e.Err
}

// StageError wraps an unexpected failure with the orchestration stage it
// came from. It is the only error class that signals an internal fault.
type StageError struct {
	Stage string
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("unexpected error in stage %v: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}
