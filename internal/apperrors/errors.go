// Package apperrors defines the typed errors returned at the service boundary.
// Handlers map them onto HTTP status codes.
package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or missing input. Nothing was written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// ClassificationError reports that the prediction service was unreachable or
// answered with something unusable. The caller may retry.
type ClassificationError struct {
	Reason string
	Err    error
}

func (e *ClassificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("classification failed: %s: %v", e.Reason, e.Err)
	}
	return "classification failed: " + e.Reason
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// Retryable is always true for classification failures
func (e *ClassificationError) Retryable() bool { return true }

// NotFoundError reports a missing resource, including a pending report that
// has already been decided.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// UnauthorizedError reports that the caller's role does not grant the operation
type UnauthorizedError struct {
	Action string
}

func (e *UnauthorizedError) Error() string {
	if e.Action == "" {
		return "insufficient permissions"
	}
	return "insufficient permissions to " + e.Action
}

// ConflictError reports a uniqueness or referential conflict
type ConflictError struct {
	Reason string
	Err    error
}

func (e *ConflictError) Error() string { return e.Reason }

func (e *ConflictError) Unwrap() error { return e.Err }

// PersistenceError reports a datastore failure
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Constructors

func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func Classification(reason string, err error) error {
	return &ClassificationError{Reason: reason, Err: err}
}

func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func Unauthorized(action string) error {
	return &UnauthorizedError{Action: action}
}

func Conflict(reason string, err error) error {
	return &ConflictError{Reason: reason, Err: err}
}

func Persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// Error checking helpers

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsClassification(err error) bool {
	var target *ClassificationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target *UnauthorizedError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsPersistence(err error) bool {
	var target *PersistenceError
	return errors.As(err, &target)
}
