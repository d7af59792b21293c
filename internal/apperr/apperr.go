// Package apperr defines the error taxonomy shared by repositories, services
// and the HTTP layer. Repositories return sentinel errors; services wrap them
// into tagged *Error values carrying the HTTP status and user-facing messages.
package apperr

import (
	"errors"
	"net/http"
	"strings"
)

// Sentinel errors returned by repositories. Callers match with errors.Is.
var (
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Kind tags an Error for programmatic matching independent of its messages.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindNotFound           Kind = "not_found"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindInvalidCode        Kind = "invalid_code"
	KindRetriesExceeded    Kind = "retries_exceeded"
	KindAlreadyMember      Kind = "already_member"
	KindInvalidStatus      Kind = "invalid_status"
	KindConflict           Kind = "conflict"
	KindUnexpected         Kind = "unexpected"
)

// Error is the tagged error carried from services to the HTTP layer.
// Messages are user-facing; Status is the HTTP status to respond with.
type Error struct {
	Kind     Kind
	Status   int
	Messages []string
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Is reports kind equality, so errors.Is(err, &Error{Kind: k}) matches any
// error of that kind regardless of status or messages.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func New(kind Kind, status int, messages ...string) *Error {
	return &Error{Kind: kind, Status: status, Messages: messages}
}

func Validation(messages ...string) *Error {
	return New(KindValidation, http.StatusBadRequest, messages...)
}

func NotFound(message string) *Error {
	return New(KindNotFound, http.StatusBadRequest, message)
}

func InvalidCredentials(message string) *Error {
	return New(KindInvalidCredentials, http.StatusUnauthorized, message)
}

func InvalidCode(message string) *Error {
	return New(KindInvalidCode, http.StatusBadRequest, message)
}

func RetriesExceeded(message string) *Error {
	return New(KindRetriesExceeded, http.StatusBadRequest, message)
}

func AlreadyMember(message string) *Error {
	return New(KindAlreadyMember, http.StatusBadRequest, message)
}

func InvalidStatus(message string) *Error {
	return New(KindInvalidStatus, http.StatusBadRequest, message)
}

func Conflict(message string) *Error {
	return New(KindConflict, http.StatusBadRequest, message)
}

func Unexpected() *Error {
	return New(KindUnexpected, http.StatusInternalServerError,
		"an unexpected error occurred, please try again later")
}

// From returns err as a tagged *Error, converting unknown errors to
// KindUnexpected so the HTTP layer never leaks internals.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Unexpected()
}
