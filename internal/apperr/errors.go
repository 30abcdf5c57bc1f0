// Package apperr defines the error kinds shared across services and
// transports. Handlers translate them to status codes with errors.Is, so
// services wrap them rather than returning transport errors directly.
package apperr

import "errors"

var (
	// ErrNotFound indicates an entity id did not resolve.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the caller is authenticated but its role does
	// not permit the operation. Kept distinct from ErrNotFound so error
	// kinds do not leak entity existence semantics by accident.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict indicates a state rule was violated: duplicate pending
	// invitation, already-a-member, or a transition out of a terminal state.
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("validation failed")
)
