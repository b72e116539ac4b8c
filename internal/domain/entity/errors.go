package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidationFailed indicates that validation checks have failed
	ErrValidationFailed = errors.New("validation failed")

	// ErrMissingUserID indicates a core call was made without a user id.
	// A null user is a programming error: the core never authenticates.
	ErrMissingUserID = errors.New("missing user id")

	// ErrAnalysisAlreadyRunning indicates a second analyzer stream was
	// requested for a user while one was already in progress.
	ErrAnalysisAlreadyRunning = errors.New("analysis already running")

	// ErrRetryNotEligible indicates an admin retry was requested for an
	// article whose ai_error is null (retry is only valid for failed
	// enrichment, never to re-run a successful one).
	ErrRetryNotEligible = errors.New("article is not eligible for retry")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
