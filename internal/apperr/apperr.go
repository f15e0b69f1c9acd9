// Package apperr defines the error taxonomy shared by the booking core
// and the HTTP layer.  Domain errors (NotFound, Conflict, InvalidState,
// InvalidArgument) carry a user-facing message and cross layers
// unchanged.  Internal errors wrap their cause with a stack trace so the
// boundary can log it while rendering a generic message.
package apperr

import (
    "fmt"
    "net/http"

    cr "github.com/cockroachdb/errors"
)

// Kind classifies an Error.
type Kind string

const (
    KindNotFound        Kind = "NOT_FOUND"
    KindConflict        Kind = "CONFLICT"
    KindInvalidState    Kind = "INVALID_STATE"
    KindInvalidArgument Kind = "INVALID_ARGUMENT"
    KindInternal        Kind = "INTERNAL"
)

// Error is the error type returned by the booking services.
type Error struct {
    Kind    Kind
    Message string
    Fields  map[string]any
    cause   error
}

func (e *Error) Error() string {
    if e.cause != nil {
        return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
    }
    return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// WithField attaches a detail that is rendered alongside the message.
func (e *Error) WithField(key string, value any) *Error {
    if e.Fields == nil {
        e.Fields = make(map[string]any)
    }
    e.Fields[key] = value
    return e
}

// HTTPStatus maps the error kind to a response status code.
func (e *Error) HTTPStatus() int {
    switch e.Kind {
    case KindNotFound:
        return http.StatusNotFound
    case KindConflict, KindInvalidState:
        return http.StatusConflict
    case KindInvalidArgument:
        return http.StatusBadRequest
    default:
        return http.StatusInternalServerError
    }
}

func newf(kind Kind, format string, args ...any) *Error {
    return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports an absent or tombstoned entity.
func NotFound(format string, args ...any) *Error { return newf(KindNotFound, format, args...) }

// Conflict reports a double booking of a room or a seat.
func Conflict(format string, args ...any) *Error { return newf(KindConflict, format, args...) }

// InvalidState reports an operation that is not allowed at this point in
// the entity's lifecycle.
func InvalidState(format string, args ...any) *Error { return newf(KindInvalidState, format, args...) }

// InvalidArgument reports malformed input.
func InvalidArgument(format string, args ...any) *Error {
    return newf(KindInvalidArgument, format, args...)
}

// Internal wraps a store or collaborator failure.  The message shown to
// clients is generic; msg and the stack of err are kept for logging.
func Internal(err error, msg string) *Error {
    return &Error{Kind: KindInternal, Message: "internal error", cause: cr.Wrap(err, msg)}
}

// KindOf returns the kind of err, or KindInternal when err is not an
// *Error.
func KindOf(err error) Kind {
    var e *Error
    if cr.As(err, &e) {
        return e.Kind
    }
    return KindInternal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
    var e *Error
    return cr.As(err, &e) && e.Kind == kind
}

// From returns err as an *Error, wrapping unknown errors as internal.
func From(err error, msg string) *Error {
    if err == nil {
        return nil
    }
    var e *Error
    if cr.As(err, &e) {
        return e
    }
    return Internal(err, msg)
}

// Detail renders err with its stack for logs.
func Detail(err error) string {
    return fmt.Sprintf("%+v", err)
}
