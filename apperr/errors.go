// Package apperr defines the error taxonomy shared by services and handlers.
//
// Engine code returns *Error values with user-safe messages. Anything that is
// not an *Error is treated as Internal at the HTTP boundary.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindForbidden
	KindUnauthenticated
)

// String returns a stable name used in logs.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "internal"
	}
}

// HTTPStatus maps a kind to its response status. Conflicts are reported as
// 400 because clients treat them as rejected input.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// InternalMessage is the only text an Internal error ever shows a client.
const InternalMessage = "An unexpected error occurred. Please try again later."

// Error is the domain error type.
type Error struct {
	Kind    Kind
	Message string         // safe to show to the client
	Details map[string]any // optional structured context, e.g. offending ids
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Message == "" || e.Message == t.Message)
}

// WithDetails returns a copy of e carrying the given details.
func (e *Error) WithDetails(details map[string]any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validation(message string) *Error      { return New(KindValidation, message) }
func Conflict(message string) *Error        { return New(KindConflict, message) }
func NotFound(message string) *Error        { return New(KindNotFound, message) }
func Forbidden(message string) *Error       { return New(KindForbidden, message) }
func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message) }

// Internal wraps an unexpected failure. The message is for logs only.
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Cause: cause}
}

// Wrap attaches a cause to a domain error of the given kind.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}
