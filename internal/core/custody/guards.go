// Package custody contains the pure business logic for property registration
// and custody transfers.
package custody

import (
	"fmt"
	"strings"

	"github.com/example/malkhana/internal/core/guard"
	"github.com/example/malkhana/internal/ledgererr"
)

// Status represents the possible states of a property.
type Status string

const (
	StatusInCustody Status = "IN_CUSTODY"
	StatusDisposed  Status = "DISPOSED"
)

// BelongsTo values recorded against a property.
const (
	BelongsToAccused     = "ACCUSED"
	BelongsToComplainant = "COMPLAINANT"
	BelongsToUnknown     = "UNKNOWN"
)

// DefaultMaxAttempts bounds the compare-and-set retry loop of a transfer.
const DefaultMaxAttempts = 3

// AddPropertyContext provides context for property registration guards.
type AddPropertyContext struct {
	CaseID     string
	CaseExists bool
	Location   string
	BelongsTo  string
}

// CanAddProperty evaluates whether a property can be registered under a case.
// Rules:
// - caseId and an initial location are required
// - belongsTo, when set, must be ACCUSED, COMPLAINANT or UNKNOWN
// - the case must exist
func CanAddProperty(ctx AddPropertyContext) guard.Result {
	var fields []ledgererr.FieldError
	fields = guard.Required(fields, "caseId", ctx.CaseID)
	fields = guard.Required(fields, "location", strings.TrimSpace(ctx.Location))
	switch ctx.BelongsTo {
	case "", BelongsToAccused, BelongsToComplainant, BelongsToUnknown:
	default:
		fields = append(fields, ledgererr.FieldError{Field: "belongsTo", Message: fmt.Sprintf("unknown value %q", ctx.BelongsTo)})
	}
	if r := guard.Invalid(fields); !r.Allowed {
		return r
	}

	if !ctx.CaseExists {
		return guard.Deny(ledgererr.CodeNotFound, fmt.Sprintf("case %s not found", ctx.CaseID))
	}
	return guard.Allow()
}

// ValidateTransfer checks the caller-supplied transfer input.
func ValidateTransfer(propertyID, toLocation string) guard.Result {
	var fields []ledgererr.FieldError
	fields = guard.Required(fields, "propertyId", propertyID)
	fields = guard.Required(fields, "toLocation", strings.TrimSpace(toLocation))
	return guard.Invalid(fields)
}

// TransferContext provides context for the per-attempt transfer guard.
type TransferContext struct {
	PropertyID string
	Status     Status
}

// CanTransfer evaluates whether a property may move.
// Rules:
// - Disposed property is terminal and cannot be moved
func CanTransfer(ctx TransferContext) guard.Result {
	if ctx.Status == StatusDisposed {
		return guard.Deny(ledgererr.CodeAlreadyDisposed,
			fmt.Sprintf("property %s is disposed and can no longer be transferred", ctx.PropertyID))
	}
	return guard.Allow()
}

// LocationSnapshot is the audit payload recorded for a move.
type LocationSnapshot struct {
	Location string `json:"location"`
}
