package core

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError reports input the caller can fix: a missing field, an illegal source state or a bad mapping.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	if err == nil && len(flds) > 0 {
		err = errors.New(flds[0].Error)
	}
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// AuthorizationError is returned when the actor's role may not perform an action.
// Allowed names the roles that could have performed it.
type AuthorizationError struct {
	Role    string
	Action  string
	Allowed []string
	Reason  string
}

func NewAuthorizationError(role, action string, allowed ...string) error {
	return &AuthorizationError{Role: role, Action: action, Allowed: allowed}
}

// NewScopeError is an AuthorizationError for an actor acting outside of their school or unit.
func NewScopeError(role, action, reason string) error {
	return &AuthorizationError{Role: role, Action: action, Reason: reason}
}

func (err AuthorizationError) Error() string {
	action := strings.ToLower(err.Action)
	if err.Reason != "" {
		return fmt.Sprintf("cannot %s: %s", action, err.Reason)
	}
	if len(err.Allowed) == 0 {
		return fmt.Sprintf("role %s cannot %s", err.Role, action)
	}
	return fmt.Sprintf("%s requires role %s", action, strings.Join(err.Allowed, " or "))
}

// ReconciliationError is returned when an import yields nothing to write.
type ReconciliationError struct {
	Reason string
}

func NewReconciliationError(reason string) error {
	return &ReconciliationError{Reason: reason}
}

func (err ReconciliationError) Error() string {
	return "reconciliation failed: " + err.Reason
}

// StoreError wraps a failed read or write of the document store.
// The outcome of a failed write is unknown; callers may retry the whole operation.
type StoreError struct {
	Op  string
	Err error
}

func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

func (err StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", err.Op, err.Err)
}

func (err StoreError) Unwrap() error { return err.Err }

// Retryable is always true: a store failure never implies the operation was rejected.
func (err StoreError) Retryable() bool { return true }

// ConflictError is returned when a document changed status since the caller last read it.
type ConflictError struct {
	Expected string
	Actual   string
}

func NewConflictError(expected, actual string) error {
	return &ConflictError{Expected: expected, Actual: actual}
}

func (err ConflictError) Error() string {
	return fmt.Sprintf("status changed: expected %s, found %s", err.Expected, err.Actual)
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}

func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

func IsAuthorizationError(err error) bool {
	_, ok := errors.Cause(err).(*AuthorizationError)
	return ok
}

func IsReconciliationError(err error) bool {
	_, ok := errors.Cause(err).(*ReconciliationError)
	return ok
}

func IsStoreError(err error) bool {
	_, ok := errors.Cause(err).(*StoreError)
	return ok
}

func IsConflictError(err error) bool {
	_, ok := errors.Cause(err).(*ConflictError)
	return ok
}
