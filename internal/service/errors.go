package service

import "errors"

var (
	// ErrNotFound reports an operation on an unknown issue or responder id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition reports an attempt to move an issue backwards
	// through its lifecycle, e.g. assigning a resolved issue.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrResponderUnavailable reports an assignment to a responder that is
	// already working an issue.
	ErrResponderUnavailable = errors.New("responder unavailable")
)
