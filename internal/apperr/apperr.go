// Package apperr defines the error kinds shared by the budget, proposal and
// location services. Callers match kinds with errors.Is; typed errors carry
// the offending values.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation                 = errors.New("validation failed")
	ErrUnauthorized               = errors.New("unauthorized")
	ErrAllocationMismatch         = errors.New("allocation mismatch")
	ErrCumulativeSanctionExceeded = errors.New("cumulative sanction exceeded")
	ErrBudgetOrderViolation       = errors.New("budget order violation")
	ErrImmutableField             = errors.New("immutable field violation")
	ErrMissingLocationContext     = errors.New("missing location context")
	ErrDuplicateKey               = errors.New("duplicate key")
	ErrPersistence                = errors.New("persistence error")
	ErrNotFound                   = errors.New("not found")
)

// FieldError is a single field-level validation message.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError reports every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}

	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}

	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a ValidationError for a single field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: fmt.Sprintf(format, args...)}}}
}

// Unauthorized wraps ErrUnauthorized with a reason.
func Unauthorized(reason string) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, reason)
}

// NotFound wraps ErrNotFound with the entity that is missing.
func NotFound(entity string, id any) error {
	return fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
}

// PersistenceError is a storage failure that aborted the surrounding transaction.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistence, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// Persistence wraps err as a PersistenceError unless it already carries a
// domain kind, in which case it is returned unchanged.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}

	if IsDomain(err) {
		return err
	}

	return &PersistenceError{Op: op, Err: err}
}

// IsDomain reports whether err already belongs to a kind the callers map
// explicitly, so it must not be re-wrapped as a generic storage failure.
func IsDomain(err error) bool {
	for _, kind := range []error{
		ErrValidation,
		ErrUnauthorized,
		ErrAllocationMismatch,
		ErrCumulativeSanctionExceeded,
		ErrBudgetOrderViolation,
		ErrImmutableField,
		ErrMissingLocationContext,
		ErrNotFound,
		ErrPersistence,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}

	return false
}

// Kind names the first error kind err matches, for logs and metrics.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrAllocationMismatch):
		return "allocation_mismatch"
	case errors.Is(err, ErrCumulativeSanctionExceeded):
		return "cumulative_sanction_exceeded"
	case errors.Is(err, ErrBudgetOrderViolation):
		return "budget_order_violation"
	case errors.Is(err, ErrImmutableField):
		return "immutable_field"
	case errors.Is(err, ErrMissingLocationContext):
		return "missing_location_context"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicateKey):
		return "duplicate_key"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	}

	return "internal"
}
