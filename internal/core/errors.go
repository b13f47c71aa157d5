package core

import (
	"fmt"
	"strings"
)

// FieldViolation is one rejected field of a write request.
type FieldViolation struct {
	Field  string
	Reason string
}

// ValidationError rejects a write and lists every violated field, not just
// the first one found.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the violated field names in order.
func (e *ValidationError) Fields() []string {
	fields := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		fields = append(fields, v.Field)
	}
	return fields
}

// NotFoundError reports an operation against a missing record.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// ConflictError reports an attempt to create a second active budget for the
// same category and period of one tenant.
type ConflictError struct {
	Category string
	Period   Period
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("active budget already exists for category %q period %q", e.Category, e.Period)
}

// MigrationError wraps a failed bootstrap step. It is recorded in the
// startup report and never aborts the remaining steps.
type MigrationError struct {
	Step string
	Err  error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration step %s: %v", e.Step, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

// BulkOperationError aggregates per-collection failures of a multi-collection
// clear, import, or reset. Every collection is attempted before this is
// returned; Collections names the ones that failed.
type BulkOperationError struct {
	Op          string
	Collections []string
	Err         error
}

func (e *BulkOperationError) Error() string {
	return fmt.Sprintf("%s failed for collections [%s]: %v", e.Op, strings.Join(e.Collections, ", "), e.Err)
}

func (e *BulkOperationError) Unwrap() error { return e.Err }
