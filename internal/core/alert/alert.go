// Package alert decides which cases are stale enough to notify about and what
// the notification says.
package alert

import (
	"fmt"
	"time"

	"github.com/example/malkhana/internal/core/guard"
	"github.com/example/malkhana/internal/ledgererr"
)

// TypePendingCase is the notification type emitted by the pending-case sweep.
const TypePendingCase = "PENDING_CASE"

// DefaultThreshold is how long a case may stay PENDING before alerting.
const DefaultThreshold = 24 * time.Hour

// StaleCutoff returns the latest creation time at which a PENDING case is
// stale. A zero threshold makes every pending case stale.
func StaleCutoff(now time.Time, threshold time.Duration) time.Time {
	if threshold < 0 {
		threshold = 0
	}
	return now.Add(-threshold)
}

// IsStale reports whether a case created at createdAt has reached the cutoff.
func IsStale(createdAt, cutoff time.Time) bool {
	return !createdAt.After(cutoff)
}

// PendingCaseMessage renders the notification text for a stale case.
func PendingCaseMessage(crimeNumber string, threshold time.Duration) string {
	return fmt.Sprintf("Case %s has been pending for more than %s", crimeNumber, humanize(threshold))
}

func humanize(d time.Duration) string {
	switch {
	case d <= 0:
		return "0s"
	case d%(24*time.Hour) == 0:
		n := int(d / (24 * time.Hour))
		if n == 1 {
			return "24 hours"
		}
		return fmt.Sprintf("%d days", n)
	case d%time.Hour == 0:
		n := int(d / time.Hour)
		if n == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", n)
	case d%time.Minute == 0:
		n := int(d / time.Minute)
		if n == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", n)
	default:
		return d.String()
	}
}

// MarkReadContext provides context for the mark-read guard.
type MarkReadContext struct {
	NotificationID string
	Exists         bool
	OwnerID        string
	ActorID        string
}

// CanMarkRead evaluates whether an actor may mark a notification read.
// Rules:
// - The notification must exist
// - Only the recipient may mark it read
func CanMarkRead(ctx MarkReadContext) guard.Result {
	if !ctx.Exists {
		return guard.Deny(ledgererr.CodeNotFound, fmt.Sprintf("notification %s not found", ctx.NotificationID))
	}
	if ctx.OwnerID != ctx.ActorID {
		return guard.Deny(ledgererr.CodeForbidden, fmt.Sprintf("notification %s belongs to another user", ctx.NotificationID))
	}
	return guard.Allow()
}
