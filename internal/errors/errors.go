// Package errors defines the error taxonomy of the complaint workflow.
//
// Every failure the lifecycle engine reports falls into one of four kinds:
//   - NotFoundError: unknown complaint or officer id. Never retried internally.
//   - PreconditionError: a state-machine guard failed. Carries the rule that was violated.
//   - InvalidArgumentError: malformed input, rejected before any mutation is attempted.
//   - ConflictError: a concurrent mutation on the same complaint won. The caller may
//     re-read current state and retry the whole operation.
//
// Storage and transport failures are returned wrapped with fmt.Errorf and fall
// outside this taxonomy.
package errors

import (
	stderrors "errors"
	"fmt"
)

// NotFoundError indicates that a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// NewNotFoundError creates a not-found error for the given entity kind and id.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// PreconditionError indicates that a lifecycle guard rejected the operation.
//
// Rule is a stable, machine-readable name such as "rate.requires_resolved";
// Message explains it to a human.
type PreconditionError struct {
	Rule    string
	Message string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition violated (%s): %s", e.Rule, e.Message)
}

// NewPreconditionError creates a precondition error naming the violated rule.
func NewPreconditionError(rule, msg string) *PreconditionError {
	return &PreconditionError{Rule: rule, Message: msg}
}

// InvalidArgumentError indicates malformed input.
type InvalidArgumentError struct {
	Field   string
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Field, e.Message)
}

// NewInvalidArgumentError creates an invalid-argument error for field.
func NewInvalidArgumentError(field, msg string) *InvalidArgumentError {
	return &InvalidArgumentError{Field: field, Message: msg}
}

// ConflictError indicates a concurrent mutation on the same complaint.
type ConflictError struct {
	ComplaintID string
	Err         error
}

func (e *ConflictError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("conflicting update on complaint %s: %v", e.ComplaintID, e.Err)
	}
	return fmt.Sprintf("conflicting update on complaint %s", e.ComplaintID)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *ConflictError) Unwrap() error {
	return e.Err
}

// NewConflictError creates a conflict error for the complaint id.
func NewConflictError(complaintID string, err error) *ConflictError {
	return &ConflictError{ComplaintID: complaintID, Err: err}
}

// IsNotFound checks if the error chain contains a NotFoundError
func IsNotFound(err error) bool {
	var target *NotFoundError
	return stderrors.As(err, &target)
}

// IsPrecondition checks if the error chain contains a PreconditionError
func IsPrecondition(err error) bool {
	var target *PreconditionError
	return stderrors.As(err, &target)
}

// IsInvalidArgument checks if the error chain contains an InvalidArgumentError
func IsInvalidArgument(err error) bool {
	var target *InvalidArgumentError
	return stderrors.As(err, &target)
}

// IsConflict checks if the error chain contains a ConflictError
func IsConflict(err error) bool {
	var target *ConflictError
	return stderrors.As(err, &target)
}

// Rule returns the violated rule name if err is a PreconditionError, or "".
func Rule(err error) string {
	var target *PreconditionError
	if stderrors.As(err, &target) {
		return target.Rule
	}
	return ""
}

// Kind classifies err into one of the taxonomy names, or "internal".
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsNotFound(err):
		return "not_found"
	case IsPrecondition(err):
		return "precondition"
	case IsInvalidArgument(err):
		return "invalid_argument"
	case IsConflict(err):
		return "conflict"
	default:
		return "internal"
	}
}
