package app

import (
	"context"
	"encoding/json"

	"github.com/example/malkhana/internal/core/access"
	"github.com/example/malkhana/internal/core/audit"
	"github.com/example/malkhana/internal/ctxutil"
	"github.com/example/malkhana/internal/ports/primary"
	"github.com/example/malkhana/internal/ports/secondary"
)

// AuditServiceImpl implements the AuditService interface. It only reads;
// entries are appended by the services that perform mutations.
type AuditServiceImpl struct {
	ledger secondary.AuditLedger
}

// NewAuditService creates a new AuditService.
func NewAuditService(ledger secondary.AuditLedger) *AuditServiceImpl {
	return &AuditServiceImpl{ledger: ledger}
}

// Query returns entries newest first, bounded by the clamped limit.
func (s *AuditServiceImpl) Query(ctx context.Context, query primary.AuditQuery, actor ctxutil.Actor) ([]*primary.AuditEntry, error) {
	if err := requireRole(actor, access.ActionReadAudit); err != nil {
		return nil, err
	}

	records, err := s.ledger.List(ctx, secondary.AuditFilters{
		EntityID:   query.EntityID,
		EntityType: query.EntityType,
		Limit:      audit.ClampLimit(query.Limit),
	})
	if err != nil {
		return nil, err
	}

	entries := make([]*primary.AuditEntry, len(records))
	for i, r := range records {
		entries[i] = &primary.AuditEntry{
			ID:          r.ID,
			ActionType:  r.ActionType,
			EntityType:  r.EntityType,
			EntityID:    r.EntityID,
			PerformedBy: r.PerformedBy,
			Timestamp:   r.Timestamp,
			OldValue:    rawJSON(r.OldValue),
			NewValue:    rawJSON(r.NewValue),
		}
	}
	return entries, nil
}

func rawJSON(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	return json.RawMessage(s)
}
