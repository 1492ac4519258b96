// Package access holds the role allow-lists for ledger operations.
// Authentication happens upstream; these checks only gate mutations by role.
package access

import (
	"fmt"
	"strings"

	"github.com/example/malkhana/internal/core/guard"
	"github.com/example/malkhana/internal/ledgererr"
)

// Role constants
const (
	RoleAdmin   = "ADMIN"
	RoleOfficer = "OFFICER"
)

// Action names an operation subject to a role check.
type Action string

const (
	ActionCreateCase      Action = "create_case"
	ActionAddProperty     Action = "add_property"
	ActionTransferCustody Action = "transfer_custody"
	ActionDisposeProperty Action = "dispose_property"
	ActionReadAudit       Action = "read_audit"
	ActionAddOfficer      Action = "add_officer"
	ActionRunSweep        Action = "run_sweep"
	ActionCloseCase       Action = "close_case"
)

var allowList = map[Action][]string{
	ActionCreateCase:      {RoleAdmin, RoleOfficer},
	ActionAddProperty:     {RoleAdmin, RoleOfficer},
	ActionTransferCustody: {RoleAdmin, RoleOfficer},
	ActionDisposeProperty: {RoleAdmin},
	ActionReadAudit:       {RoleAdmin},
	ActionAddOfficer:      {RoleAdmin},
	ActionRunSweep:        {RoleAdmin, RoleOfficer},
	ActionCloseCase:       {RoleAdmin, RoleOfficer},
}

// NormalizeRole upper-cases and trims a role string.
func NormalizeRole(role string) string {
	return strings.ToUpper(strings.TrimSpace(role))
}

// IsKnownRole reports whether role is ADMIN or OFFICER.
func IsKnownRole(role string) bool {
	switch NormalizeRole(role) {
	case RoleAdmin, RoleOfficer:
		return true
	}
	return false
}

// EligibleForAlerts lists the roles that receive pending-case notifications.
func EligibleForAlerts() []string {
	return []string{RoleAdmin, RoleOfficer}
}

// CanPerform evaluates whether an actor with the given id and role may run action.
// Rules:
// - Actor id must be present
// - Role must be in the action's allow-list
func CanPerform(actorID, role string, action Action) guard.Result {
	if actorID == "" {
		return guard.Deny(ledgererr.CodeForbidden, fmt.Sprintf("%s requires an authenticated actor", action))
	}

	allowed, ok := allowList[action]
	if !ok {
		return guard.Deny(ledgererr.CodeForbidden, fmt.Sprintf("unknown action %s", action))
	}

	role = NormalizeRole(role)
	for _, r := range allowed {
		if r == role {
			return guard.Allow()
		}
	}

	return guard.Deny(ledgererr.CodeForbidden,
		fmt.Sprintf("role %q may not %s (allowed: %s)", role, strings.ReplaceAll(string(action), "_", " "), strings.Join(allowed, ", ")))
}
