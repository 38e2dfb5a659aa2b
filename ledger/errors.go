/*
errors.go - Centralized error types for the ledger core

PURPOSE:
  All error types in one place. Callers classify failures with the
  IsValidation/IsPersistence helpers rather than matching strings.

ERROR CATEGORIES:
  1. Validation errors - rejected before any storage access, carry the
     failing field and, for per-item failures, the item index
  2. Persistence errors - the write was rolled back; wraps the storage
     cause. Never retried automatically: the insert is not idempotent,
     so a retry is the caller's explicit choice.

A catalog lookup miss is NOT an error anywhere in this package - views
fall back to the raw key.
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmptyDetail is returned when a movement carries no items.
	// A header with zero lines is never a valid state.
	ErrEmptyDetail = errors.New("movement has no detail lines")

	// ErrInvalidQuantity is returned for a non-positive item quantity.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInvalidPrice is returned for a negative unit price on a
	// sale or purchase line.
	ErrInvalidPrice = errors.New("unit price must not be negative")

	// ErrUnknownKind is returned for a movement kind outside 1..3.
	ErrUnknownKind = errors.New("unknown movement kind")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports a precondition failure. The movement was
// rejected before any storage access; zero rows were written.
type ValidationError struct {
	Field string // "items", "quantity", "unit_price", "kind"
	Index int    // item index for per-line failures, -1 otherwise
	Err   error  // sentinel cause
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid %s on item %d: %v", e.Field, e.Index, e.Err)
	}
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// PersistenceError reports a storage failure. The whole write was
// rolled back; no partial header or detail rows remain.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation reports whether err is a precondition failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPersistence reports whether err is a storage failure.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
