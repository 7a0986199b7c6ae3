// Package apperr defines the error kinds shared by every service and the
// single mapping from kind to HTTP status.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind int

const (
	Storage Kind = iota
	Validation
	Conflict
	NotFound
	Permission
	Unauthenticated
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Conflict:
		return "conflict"
	case NotFound:
		return "not_found"
	case Permission:
		return "permission"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "storage"
	}
}

// Error is a classified failure. Message is safe to show to clients, Err is
// kept for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validationf builds a Validation error.
func Validationf(format string, args ...any) *Error { return newf(Validation, format, args...) }

// Conflictf builds a Conflict error.
func Conflictf(format string, args ...any) *Error { return newf(Conflict, format, args...) }

// NotFoundf builds a NotFound error.
func NotFoundf(format string, args ...any) *Error { return newf(NotFound, format, args...) }

// Permissionf builds a Permission error.
func Permissionf(format string, args ...any) *Error { return newf(Permission, format, args...) }

// Unauthenticatedf builds an Unauthenticated error.
func Unauthenticatedf(format string, args ...any) *Error {
	return newf(Unauthenticated, format, args...)
}

// StorageErr wraps a driver or transaction failure behind a generic message.
func StorageErr(err error) *Error {
	return &Error{Kind: Storage, Message: "internal storage error", Err: err}
}

// KindOf reports the kind of err. Unclassified errors count as Storage.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Storage
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the client-safe message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal storage error"
}

// HTTPStatus maps err to a transport status.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Validation:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case NotFound:
		return http.StatusNotFound
	case Permission:
		return http.StatusForbidden
	case Unauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
