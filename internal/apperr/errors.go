// Package apperr defines the error taxonomy shared by the repository,
// service and API layers. Handlers map these onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrAuthFailed covers bad credentials and invalid or missing tokens.
	// It deliberately carries no detail, so callers cannot tell a missing
	// account from a wrong password.
	ErrAuthFailed = errors.New("invalid credentials")
)

// ValidationError reports a missing or malformed required input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// RequiredError is a ValidationError for an absent required field.
func RequiredError(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "is required"}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StateConflictError is returned when a line item is attached to an order
// whose status is not active. It carries the status actually observed.
type StateConflictError struct {
	OrderID int
	Status  string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("order %d is %q, products can only be added to an active order", e.OrderID, e.Status)
}

func NewStateConflictError(orderID int, status string) *StateConflictError {
	return &StateConflictError{OrderID: orderID, Status: status}
}

func IsStateConflict(err error) bool {
	var sc *StateConflictError
	return errors.As(err, &sc)
}

// PersistenceError wraps a store failure (unavailable, timeout, constraint
// violation). The core never retries these; callers may.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsAuthFailed(err error) bool {
	return errors.Is(err, ErrAuthFailed)
}
