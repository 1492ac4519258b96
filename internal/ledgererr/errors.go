// Package ledgererr defines the coded error type shared by the custody ledger.
// Services return these errors; transports map the code to a status.
package ledgererr

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeValidation       Code = "VALIDATION"
	CodeNotFound         Code = "NOT_FOUND"
	CodeForbidden        Code = "FORBIDDEN"
	CodeConflict         Code = "CONFLICT"
	CodeAlreadyDisposed  Code = "ALREADY_DISPOSED"
	CodeImmutableRecord  Code = "IMMUTABLE_RECORD"
	CodeStoreUnavailable Code = "STORE_UNAVAILABLE"
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the ledger error type.
type Error struct {
	Code    Code
	Message string
	Fields  []FieldError
	Cause   error
}

// Sentinels for errors.Is checks. Matching is by code only.
var (
	ErrValidation       = &Error{Code: CodeValidation}
	ErrNotFound         = &Error{Code: CodeNotFound}
	ErrForbidden        = &Error{Code: CodeForbidden}
	ErrConflict         = &Error{Code: CodeConflict}
	ErrAlreadyDisposed  = &Error{Code: CodeAlreadyDisposed}
	ErrImmutableRecord  = &Error{Code: CodeImmutableRecord}
	ErrStoreUnavailable = &Error{Code: CodeStoreUnavailable}
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = strings.ToLower(strings.ReplaceAll(string(e.Code), "_", " "))
	}
	if len(e.Fields) > 0 {
		parts := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			parts[i] = f.Field + ": " + f.Message
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same code. AlreadyDisposed is a
// Conflict subtype, so it also matches ErrConflict.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Code == t.Code {
		return true
	}
	return e.Code == CodeAlreadyDisposed && t.Code == CodeConflict
}

// New creates an error with a code and message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error with a code that wraps cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Validation builds a validation error from field errors.
func Validation(fields ...FieldError) *Error {
	return &Error{Code: CodeValidation, Message: "invalid input", Fields: fields}
}

// NotFound reports a missing entity.
func NotFound(entity, id string) *Error {
	return New(CodeNotFound, "%s %s not found", entity, id)
}

// Forbidden reports an insufficient role.
func Forbidden(format string, args ...any) *Error {
	return New(CodeForbidden, format, args...)
}

// Conflict reports a lost race or uniqueness violation.
func Conflict(format string, args ...any) *Error {
	return New(CodeConflict, format, args...)
}

// AlreadyDisposed reports a second disposal of the same property.
func AlreadyDisposed(propertyID string) *Error {
	return New(CodeAlreadyDisposed, "property %s is already disposed", propertyID)
}

// StoreUnavailable wraps a driver or connection failure.
func StoreUnavailable(cause error, op string) *Error {
	return Wrap(CodeStoreUnavailable, cause, "store unavailable during %s", op)
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// FieldsOf returns the field errors of the first *Error in err's chain.
func FieldsOf(err error) []FieldError {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}
