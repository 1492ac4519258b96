// Package guard holds the result type shared by the pure guard functions in
// internal/core. Guards evaluate preconditions without side effects.
package guard

import "github.com/example/malkhana/internal/ledgererr"

// Result represents the outcome of a guard evaluation.
type Result struct {
	Allowed bool
	Code    ledgererr.Code
	Reason  string
	Fields  []ledgererr.FieldError
}

// Allow is the passing result.
func Allow() Result {
	return Result{Allowed: true}
}

// Deny returns a failing result with the given code and reason.
func Deny(code ledgererr.Code, reason string) Result {
	return Result{Code: code, Reason: reason}
}

// Invalid returns a failing validation result. It allows when fields is empty.
func Invalid(fields []ledgererr.FieldError) Result {
	if len(fields) == 0 {
		return Allow()
	}
	return Result{Code: ledgererr.CodeValidation, Reason: "invalid input", Fields: fields}
}

// Error converts the guard result to an error if not allowed.
func (r Result) Error() error {
	if r.Allowed {
		return nil
	}
	return &ledgererr.Error{Code: r.Code, Message: r.Reason, Fields: r.Fields}
}

// Required appends a "is required" field error when value is empty.
func Required(fields []ledgererr.FieldError, name, value string) []ledgererr.FieldError {
	if value == "" {
		return append(fields, ledgererr.FieldError{Field: name, Message: "is required"})
	}
	return fields
}
