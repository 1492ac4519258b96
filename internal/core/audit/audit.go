// Package audit names the action and entity types written to the audit ledger.
package audit

import "encoding/json"

// Action types recorded in audit entries.
const (
	ActionCaseCreated      = "CASE_CREATED"
	ActionCaseDisposed     = "CASE_DISPOSED"
	ActionPropertyAdded    = "PROPERTY_ADDED"
	ActionPropertyMoved    = "PROPERTY_MOVED"
	ActionPropertyDisposed = "PROPERTY_DISPOSED"
	ActionOfficerAdded     = "OFFICER_ADDED"
)

// Entity types recorded in audit entries.
const (
	EntityCase     = "CASE"
	EntityProperty = "PROPERTY"
	EntityUser     = "USER"
)

// SystemActor is recorded when a transition is triggered by a sweep rather
// than a user request.
const SystemActor = "system"

// DefaultLimit and MaxLimit bound audit queries.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// ClampLimit applies the default and cap to a requested page size.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// Snapshot encodes an old/new value for storage. nil yields an empty string.
func Snapshot(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// OfficerSnapshot is the new value recorded when an account is created
// outside the officer service.
type OfficerSnapshot struct {
	OfficerID string `json:"officerId"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Station   string `json:"station"`
}

// StatusSnapshot is the minimal payload for status transitions.
type StatusSnapshot struct {
	Status string `json:"status"`
}
