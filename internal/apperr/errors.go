package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error crossing the resolver boundary.
type Kind string

const (
	KindValidation        Kind = "VALIDATION_ERROR"
	KindInvalidIdentifier Kind = "INVALID_IDENTIFIER"
	KindNotFound          Kind = "NOT_FOUND"
	KindConnection        Kind = "CONNECTION_FAILURE"
	KindUnclassified      Kind = "INTERNAL_ERROR"
)

// Error is the typed error carried between the store, the services and the API.
type Error struct {
	Kind    Kind
	Message string
	// Fields holds per-field messages for validation errors, in field order.
	Fields []FieldError
	Err    error
}

// FieldError is a single violated constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Extensions is picked up by the GraphQL executor and rendered under "extensions".
func (e *Error) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": string(e.Kind)}
	if len(e.Fields) > 0 {
		ext["fields"] = e.Fields
	}
	return ext
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind that keeps err as its cause.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func InvalidIdentifier(id string) *Error {
	return &Error{Kind: KindInvalidIdentifier, Message: "Invalid Laptop ID format", Err: fmt.Errorf("malformed id %q", id)}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnclassified.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnclassified
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
