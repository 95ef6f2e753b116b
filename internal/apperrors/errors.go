// Package apperrors defines the business error taxonomy shared by services and
// handlers. Every expected rule violation is an *Error carrying a Kind; anything
// else (store down, broker unreachable) is an infrastructure error and has no Kind.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a business error.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindUnauthorized
	KindInvalidStatus
	KindInvalidTransition
	KindTerminalState
	KindUnavailable
	KindMultiFarmerConflict
	KindEmptyCart
	KindConflict
)

// Category is the transport-agnostic status family a Kind belongs to.
type Category string

const (
	CategoryValidation   Category = "validation"
	CategoryUnauthorized Category = "unauthorized"
	CategoryForbidden    Category = "forbidden"
	CategoryNotFound     Category = "not_found"
	CategoryConflict     Category = "conflict"
	CategoryInternal     Category = "internal"
)

var kindNames = map[Kind]string{
	KindValidation:          "ValidationError",
	KindNotFound:            "NotFound",
	KindForbidden:           "Forbidden",
	KindUnauthorized:        "Unauthorized",
	KindInvalidStatus:       "InvalidStatus",
	KindInvalidTransition:   "InvalidTransition",
	KindTerminalState:       "TerminalState",
	KindUnavailable:         "Unavailable",
	KindMultiFarmerConflict: "MultiFarmerConflict",
	KindEmptyCart:           "EmptyCart",
	KindConflict:            "Conflict",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Category reports the status family for the kind.
func (k Kind) Category() Category {
	switch k {
	case KindValidation, KindInvalidStatus, KindEmptyCart, KindUnavailable:
		return CategoryValidation
	case KindUnauthorized:
		return CategoryUnauthorized
	case KindForbidden:
		return CategoryForbidden
	case KindNotFound:
		return CategoryNotFound
	case KindInvalidTransition, KindTerminalState, KindMultiFarmerConflict, KindConflict:
		return CategoryConflict
	default:
		return CategoryInternal
	}
}

// Sentinels for errors.Is checks. Two *Error values match when their kinds match.
var (
	ErrValidation          = &Error{Kind: KindValidation}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrForbidden           = &Error{Kind: KindForbidden}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized}
	ErrInvalidStatus       = &Error{Kind: KindInvalidStatus}
	ErrInvalidTransition   = &Error{Kind: KindInvalidTransition}
	ErrTerminalState       = &Error{Kind: KindTerminalState}
	ErrUnavailable         = &Error{Kind: KindUnavailable}
	ErrMultiFarmerConflict = &Error{Kind: KindMultiFarmerConflict}
	ErrEmptyCart           = &Error{Kind: KindEmptyCart}
	ErrConflict            = &Error{Kind: KindConflict}
)

// Error is a business rule violation.
type Error struct {
	Kind    Kind
	Message string
	// Fields holds per-field validation messages, if any.
	Fields map[string]string
	Cause  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func Validation(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

// ValidationFields builds a validation error carrying per-field messages.
func ValidationFields(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

func NotFound(entity, id string) *Error {
	return New(KindNotFound, "%s %s not found", entity, id)
}

func Forbidden(format string, args ...any) *Error {
	return New(KindForbidden, format, args...)
}

// KindOf returns the Kind of err, or KindUnknown for infrastructure errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// CategoryOf returns the status family of err.
func CategoryOf(err error) Category {
	return KindOf(err).Category()
}

// IsKind reports whether err is a business error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
