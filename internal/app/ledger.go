package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/example/malkhana/internal/core/access"
	"github.com/example/malkhana/internal/core/audit"
	"github.com/example/malkhana/internal/ctxutil"
	"github.com/example/malkhana/internal/ports/secondary"
	"github.com/example/malkhana/internal/telemetry"
)

// newRecordID returns a time-ordered record id.
func newRecordID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// requireRole runs the role guard for action.
func requireRole(actor ctxutil.Actor, action access.Action) error {
	return access.CanPerform(actor.ID, actor.Role, action).Error()
}

// observe opens a span and returns a func that records the outcome.
// Call it as: defer done(&err).
func observe(ctx context.Context, metrics *telemetry.Metrics, operation string) (context.Context, func(*error)) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "ledger."+operation)
	return ctx, func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		metrics.Observe(ctx, operation, err, time.Since(start))
		telemetry.EndSpan(span, err)
	}
}

// auditRecord builds the audit entry paired with a mutation.
func auditRecord(action, entityType, entityID, performedBy string, at time.Time, oldValue, newValue any) *secondary.AuditRecord {
	if performedBy == "" {
		performedBy = audit.SystemActor
	}
	return &secondary.AuditRecord{
		ID:          newRecordID(),
		ActionType:  action,
		EntityType:  entityType,
		EntityID:    entityID,
		PerformedBy: performedBy,
		Timestamp:   at,
		OldValue:    audit.Snapshot(oldValue),
		NewValue:    audit.Snapshot(newValue),
	}
}

func systemNow() time.Time {
	return time.Now().UTC()
}
