// Package errs defines the error kinds every handler raises. The request
// pipeline propagates these unchanged; the transport boundary maps them to
// user-visible responses.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for boundary mapping
type Kind int

const (
	// KindInternal is the zero kind for unclassified failures
	KindInternal Kind = iota

	// KindValidation indicates the request's own fields are invalid.
	// Raised before any store access.
	KindValidation

	// KindUnauthenticated indicates no caller identity is present
	KindUnauthenticated

	// KindAccessDenied indicates the caller lacks rights. The message is
	// fixed so the reason is never disclosed.
	KindAccessDenied

	// KindNotFound indicates a referenced entity is absent
	KindNotFound

	// KindConflict indicates a uniqueness violation, e.g. email in use
	KindConflict
)

// String returns a short label for the kind
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_failed"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindAccessDenied:
		return "access_denied"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// FieldError carries a single field-level validation message
type FieldError struct {
	Field   string
	Message string
}

// Error is a classified application error. Handlers raise the most
// specific kind; nothing in the core translates or swallows it.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
}

// Error implements the error interface
func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

// Validation returns a field-level validation error
func Validation(fields ...FieldError) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "validation failed",
		Fields:  fields,
	}
}

// Field builds a FieldError
func Field(field, format string, args ...any) FieldError {
	return FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Unauthenticated returns the error raised when no caller identity is
// present on the request
func Unauthenticated() *Error {
	return &Error{Kind: KindUnauthenticated, Message: "authentication required"}
}

// AccessDenied returns the error raised when an authorization rule refuses
// the caller. The message is deliberately opaque: it must not reveal
// whether the entity exists or who owns it.
func AccessDenied() *Error {
	return &Error{Kind: KindAccessDenied, Message: "permission denied"}
}

// NotFound returns the error raised when a referenced entity is absent
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

// Conflict returns the error raised on a uniqueness violation
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Internal wraps an unclassified failure
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: err.Error()}
}

// KindOf extracts the kind from any error in the chain.
// Unclassified errors report KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsNotFound reports whether err is a NotFound error
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsAccessDenied reports whether err is an AccessDenied error
func IsAccessDenied(err error) bool {
	return KindOf(err) == KindAccessDenied
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// IsConflict reports whether err is a conflict error
func IsConflict(err error) bool {
	return KindOf(err) == KindConflict
}
