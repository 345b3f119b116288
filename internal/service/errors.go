package service

import (
	"errors"
	"log/slog"
)

// Error kinds every service call is classified into. Validation failures are
// reported as *validation.Error instead.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("upstream failure")
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// Error carries a user-facing message alongside its kind and cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Message returns the user-facing text of err when it carries one.
func Message(err error) (string, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Message, true
	}
	return "", false
}

func unauthorized(message string) error {
	return &Error{Kind: ErrUnauthorized, Message: message}
}

func notFound(message string, cause error) error {
	return &Error{Kind: ErrNotFound, Message: message, Err: cause}
}

func conflict(message string, cause error) error {
	return &Error{Kind: ErrConflict, Message: message, Err: cause}
}

// upstream logs cause and hides it behind a generic message.
func upstream(op string, cause error) error {
	slog.Error(op+" failed", "error", cause)
	return &Error{Kind: ErrUpstream, Message: "something went wrong, please try again", Err: cause}
}
