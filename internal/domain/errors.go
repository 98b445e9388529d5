package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a request fails validation, such as a
	// content type outside the allow-list or a filename that is empty after
	// sanitization.
	ErrInvalidInput = errors.New("invalid document input")

	// ErrDocumentNotFound is returned when a document cannot be found in the
	// record store.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvalidTransition is returned when a status change is not permitted
	// by the transition table.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// TransitionError carries the rejected (from, to) pair. It matches
// ErrInvalidTransition under errors.Is.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
