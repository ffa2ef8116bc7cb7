package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by services. Controllers translate these into HTTP
// responses with errors.Is / errors.As.
var (
	// ErrNotFound means the referenced RMA, line, entry or user does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidStatus means the requested status is not one of the canonical
	// lifecycle statuses.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrPreconditionFailed means the entity state does not allow the requested
	// action, e.g. issuing credit before it was approved.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrNothingToUndo means the session's undo slot is empty. Informational,
	// not a failure.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrForbidden means the actor lacks the role required for the action.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationErr(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
