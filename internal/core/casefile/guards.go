// Package casefile contains the pure business logic for case registration and closure.
// This is part of the Functional Core - no I/O, only pure functions.
package casefile

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/malkhana/internal/core/guard"
	"github.com/example/malkhana/internal/ledgererr"
)

// Status represents the possible states of a case.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusDisposed Status = "DISPOSED"
)

// InitialStatus returns the status of a newly registered case.
func InitialStatus() Status {
	return StatusPending
}

// NewCaseContext carries the registration input checked by CanCreateCase.
type NewCaseContext struct {
	Station     string
	CrimeNumber string
	Year        int
	FIRDate     time.Time
	SeizureDate *time.Time
	Now         time.Time
}

// CanCreateCase evaluates whether a case can be registered.
// Rules:
// - station, crimeNumber, year and firDate are required
// - year must be between 1900 and the current year
// - seizureDate, when given, must not precede firDate
func CanCreateCase(ctx NewCaseContext) guard.Result {
	var fields []ledgererr.FieldError
	fields = guard.Required(fields, "station", strings.TrimSpace(ctx.Station))
	fields = guard.Required(fields, "crimeNumber", strings.TrimSpace(ctx.CrimeNumber))

	switch {
	case ctx.Year == 0:
		fields = append(fields, ledgererr.FieldError{Field: "year", Message: "is required"})
	case ctx.Year < 1900 || (!ctx.Now.IsZero() && ctx.Year > ctx.Now.Year()):
		fields = append(fields, ledgererr.FieldError{Field: "year", Message: fmt.Sprintf("%d is out of range", ctx.Year)})
	}

	if ctx.FIRDate.IsZero() {
		fields = append(fields, ledgererr.FieldError{Field: "firDate", Message: "is required"})
	} else if ctx.SeizureDate != nil && ctx.SeizureDate.Before(ctx.FIRDate) {
		fields = append(fields, ledgererr.FieldError{Field: "seizureDate", Message: "must not precede firDate"})
	}

	return guard.Invalid(fields)
}

// ClosureContext provides context for the case-closure evaluation that runs
// after every disposal.
type ClosureContext struct {
	CaseID        string
	CurrentStatus Status
	PropertyCount int
	Remaining     int // properties with status != DISPOSED
}

// ClosureDecision is the outcome of EvaluateClosure.
type ClosureDecision int

const (
	// ClosureNotReady means at least one property is still in custody.
	ClosureNotReady ClosureDecision = iota
	// ClosureTransition means the case must flip PENDING -> DISPOSED.
	ClosureTransition
	// ClosureNoOp means the case is already DISPOSED.
	ClosureNoOp
)

// EvaluateClosure decides what closeIfComplete should do.
// Rules:
// - A case with properties still in custody stays PENDING
// - A case without properties is never closed by this path
// - An already DISPOSED case is a no-op, never a second transition
func EvaluateClosure(ctx ClosureContext) ClosureDecision {
	if ctx.Remaining > 0 || ctx.PropertyCount == 0 {
		return ClosureNotReady
	}
	if ctx.CurrentStatus == StatusDisposed {
		return ClosureNoOp
	}
	return ClosureTransition
}

// String returns a short label for logs.
func (d ClosureDecision) String() string {
	switch d {
	case ClosureTransition:
		return "transition"
	case ClosureNoOp:
		return "no-op"
	default:
		return "not-ready"
	}
}
