package service

import (
	"fmt"
	"strings"
)

// Kind classifies a failed operation so the transport layer can map it
// to a status code without parsing messages.
type Kind int

const (
	KindInvalid Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
)

// Error is a classified failure. The message wording is part of the
// API contract and is asserted by tests, so it never carries internal
// detail.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Failures whose wording is fixed by the API contract.
var (
	ErrEmailTaken    = &Error{Kind: KindConflict, Message: "A user with this email already exists."}
	ErrUsernameTaken = &Error{Kind: KindConflict, Message: "A user with this username already exists."}
	ErrUnknownUser   = &Error{Kind: KindNotFound, Message: "No user with the given emailID or username found. Register the user and then continue to login."}
	ErrWrongPassword = &Error{Kind: KindUnauthorized, Message: "Incorrect password for given credentials."}

	ErrExerciseNameTaken = &Error{Kind: KindConflict, Message: "An exercise with this name already exists. You might want to edit it to make changes."}
	ErrDuplicateSet      = &Error{Kind: KindConflict, Message: "A set with this set number already exists for this workout and exercise."}
)

// notFound reports an absent resource, naming its kind:
// "Exercise not found."
func notFound(kind string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: strings.ToUpper(kind[:1]) + kind[1:] + " not found.",
	}
}

// forbidden reports an ownership failure, naming the denied action and
// the resource kind:
// "Forbidden: you do not have permission to delete this workout."
func forbidden(action, kind string) *Error {
	return &Error{
		Kind:    KindForbidden,
		Message: fmt.Sprintf("Forbidden: you do not have permission to %s this %s.", action, kind),
	}
}

// invalid reports a malformed input value rejected before any store access
func invalid(message string) *Error {
	return &Error{Kind: KindInvalid, Message: message}
}
