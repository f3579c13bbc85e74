// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")
	ErrResultLocked    = errors.New("result is locked")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Configuration errors
	ErrConfiguration = errors.New("configuration error")

	// External service errors
	ErrExternalLookup     = errors.New("external lookup failed")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "result", "carryover", "grading"
	Op      string // Operation that failed, e.g., "Upsert", "Lock"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Result domain errors
var (
	ErrResultNotFound      = NewDomainError("result", "Find", ErrNotFound, "result not found")
	ErrResultIsLocked      = NewDomainError("result", "Mutate", ErrResultLocked, "result is locked, contact the head of department to unlock")
	ErrCAScoreOutOfRange   = NewDomainError("result", "Validate", ErrValueOutOfRange, "CA score must be between 0 and 30")
	ErrExamScoreOutOfRange = NewDomainError("result", "Validate", ErrValueOutOfRange, "exam score must be between 0 and 70")
	ErrNoResultsToLock     = NewDomainError("result", "Lock", ErrInvalidState, "no results to approve for this course")
	ErrNothingToUnlock     = NewDomainError("result", "Unlock", ErrInvalidState, "no locked results found for this course")
)

// Carryover domain errors
var (
	ErrCarryoverNotFound   = NewDomainError("carryover", "Find", ErrNotFound, "carryover not found")
	ErrCarryoverDuplicate  = NewDomainError("carryover", "Open", ErrAlreadyExists, "an open carryover already exists for this student and course")
	ErrCarryoverNotOpen    = NewDomainError("carryover", "Clear", ErrStateTransition, "carryover is not open")
	ErrCarryoverNotCleared = NewDomainError("carryover", "Reopen", ErrStateTransition, "carryover is not cleared")
)

// Course domain errors
var (
	ErrCourseNotFound        = NewDomainError("course", "Find", ErrNotFound, "course not found")
	ErrCourseAlreadyApproved = NewDomainError("course", "FinalApprove", ErrInvalidState, "course results already carry final approval")
	ErrNotAssignedToCourse   = NewDomainError("course", "Authorize", ErrForbidden, "actor is not assigned to this course")
	ErrNotDepartmentScope    = NewDomainError("course", "Authorize", ErrForbidden, "course is outside the actor's department scope")
)

// Grading domain errors
var (
	ErrGradingTableMissing = NewDomainError("grading", "Resolve", ErrConfiguration, "no grading bands configured for degree type")
	ErrGradingBandGap      = NewDomainError("grading", "Resolve", ErrConfiguration, "no grading band matches the score")
)

// Audit domain errors
var (
	ErrAlterationImmutable = NewDomainError("audit", "Mutate", ErrInvalidState, "alteration records are append-only")
)

// External service errors
var (
	ErrGeoLookupUnavailable = NewDomainError("geoip", "Lookup", ErrServiceUnavailable, "geolocation service is unavailable")
	ErrGeoLookupTimeout     = NewDomainError("geoip", "Lookup", ErrTimeout, "geolocation lookup timed out")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsPermission checks if the error is an authorization failure.
func IsPermission(err error) bool {
	return errors.Is(err, ErrForbidden) || errors.Is(err, ErrUnauthorized)
}

// IsLocked checks if the error is a locked-result rejection.
func IsLocked(err error) bool {
	return errors.Is(err, ErrResultLocked)
}

// IsConfiguration checks if the error is a grading configuration problem.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsExternalLookup checks if the error came from a best-effort external lookup.
func IsExternalLookup(err error) bool {
	return errors.Is(err, ErrExternalLookup) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}
