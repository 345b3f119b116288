// Package validation holds the input schemas for every entity. Validators
// are pure: they return normalized model values or an *Error listing
// field-level issues.
package validation

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Issue is a single field-level rejection reason.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error collects every issue found while validating one input.
type Error struct {
	Issues []Issue
}

func (e *Error) Error() string {
	if len(e.Issues) == 0 {
		return "invalid input"
	}
	return e.Issues[0].Message
}

func (e *Error) Add(field, message string) {
	e.Issues = append(e.Issues, Issue{Field: field, Message: message})
}

// Has reports whether field already has an issue.
func (e *Error) Has(field string) bool {
	for _, is := range e.Issues {
		if is.Field == field {
			return true
		}
	}
	return false
}

// Err returns e as an error, or nil when there are no issues.
func (e *Error) Err() error {
	if e == nil || len(e.Issues) == 0 {
		return nil
	}
	return e
}

// Single builds an *Error with one issue.
func Single(field, message string) *Error {
	e := &Error{}
	e.Add(field, message)
	return e
}

// AsError extracts a validation error from err.
func AsError(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// length counts characters, not bytes.
func length(s string) int {
	return utf8.RuneCountInString(s)
}

// minLen trims s and records an issue on field when it is shorter than n.
func minLen(e *Error, field, s string, n int, message string) string {
	s = strings.TrimSpace(s)
	if length(s) < n {
		e.Add(field, message)
	}
	return s
}

func maxLen(e *Error, field, s string, n int, message string) {
	if length(s) > n {
		e.Add(field, message)
	}
}
