// Package disposal contains the pure business logic for property disposal.
package disposal

import (
	"fmt"

	"github.com/example/malkhana/internal/core/custody"
	"github.com/example/malkhana/internal/core/guard"
	"github.com/example/malkhana/internal/ledgererr"
)

// Type is the terminal resolution of a property.
type Type string

const (
	TypeReturned     Type = "RETURNED"
	TypeDestroyed    Type = "DESTROYED"
	TypeAuctioned    Type = "AUCTIONED"
	TypeCourtCustody Type = "COURT_CUSTODY"
)

// Types lists every disposal type in display order.
func Types() []Type {
	return []Type{TypeReturned, TypeDestroyed, TypeAuctioned, TypeCourtCustody}
}

// ParseType validates a disposal type string.
func ParseType(s string) (Type, bool) {
	for _, t := range Types() {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// ValidateRequest checks the caller-supplied disposal input.
func ValidateRequest(propertyID, disposalType string) guard.Result {
	var fields []ledgererr.FieldError
	fields = guard.Required(fields, "propertyId", propertyID)
	if disposalType == "" {
		fields = append(fields, ledgererr.FieldError{Field: "disposalType", Message: "is required"})
	} else if _, ok := ParseType(disposalType); !ok {
		fields = append(fields, ledgererr.FieldError{
			Field:   "disposalType",
			Message: fmt.Sprintf("must be one of RETURNED, DESTROYED, AUCTIONED, COURT_CUSTODY (got %q)", disposalType),
		})
	}
	return guard.Invalid(fields)
}

// DisposeContext provides context for the disposal guard.
type DisposeContext struct {
	PropertyID     string
	PropertyStatus custody.Status
	HasDisposal    bool
}

// CanDispose evaluates whether a property can be disposed.
// Rules:
// - A property is disposed at most once: an existing disposal record or a
//   DISPOSED status both reject the request
func CanDispose(ctx DisposeContext) guard.Result {
	if ctx.HasDisposal || ctx.PropertyStatus == custody.StatusDisposed {
		return guard.Deny(ledgererr.CodeAlreadyDisposed, fmt.Sprintf("property %s is already disposed", ctx.PropertyID))
	}
	return guard.Allow()
}

// Snapshot is the audit payload recorded for a disposal.
type Snapshot struct {
	Status        string `json:"status"`
	DisposalType  string `json:"disposalType,omitempty"`
	CourtOrderRef string `json:"courtOrderRef,omitempty"`
}
