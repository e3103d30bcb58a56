package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures crossing module boundaries
type ErrorKind uint

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindDependencyMissing
	KindPersistence
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindDependencyMissing:
		return "dependency_missing"
	case KindPersistence:
		return "persistence_error"
	default:
		return "internal_error"
	}
}

// Error is a typed error carrying its kind. errors.Is matches on kind, so
// errors.Is(err, domain.ErrNotFound) holds for every not-found error.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error comparison by kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is
var (
	ErrValidation        = &Error{Kind: KindValidation, Message: "validation error"}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrForbidden         = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "not found"}
	ErrDependencyMissing = &Error{Kind: KindDependencyMissing, Message: "dependency missing"}
	ErrPersistence       = &Error{Kind: KindPersistence, Message: "persistence error"}
)

// NewValidationError creates a validation error. fields maps input field to problem.
func NewValidationError(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func NewUnauthorizedError(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NewNotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func NewDependencyMissingError(message string) *Error {
	return &Error{Kind: KindDependencyMissing, Message: message}
}

// NewPersistenceError wraps a store failure
func NewPersistenceError(message string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// HTTPStatus maps an error to the status code returned to clients
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to show a client. Internal kinds
// never expose the underlying cause.
func PublicMessage(err error) string {
	var de *Error
	if !errors.As(err, &de) {
		return "Internal server error"
	}
	switch de.Kind {
	case KindValidation, KindUnauthorized, KindForbidden, KindNotFound:
		return de.Message
	default:
		return "Internal server error"
	}
}
