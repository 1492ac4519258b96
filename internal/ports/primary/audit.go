package primary

import (
	"context"
	"encoding/json"
	"time"

	"github.com/example/malkhana/internal/ctxutil"
)

// AuditService defines the primary port for reading the audit ledger.
type AuditService interface {
	// Query returns entries newest first. Only admins may read the ledger.
	Query(ctx context.Context, query AuditQuery, actor ctxutil.Actor) ([]*AuditEntry, error)
}

// AuditQuery contains filter options for the audit ledger.
type AuditQuery struct {
	EntityID   string
	EntityType string
	Limit      int
}

// AuditEntry is the public view of an audit record.
type AuditEntry struct {
	ID          string          `json:"id"`
	ActionType  string          `json:"actionType"`
	EntityType  string          `json:"entityType"`
	EntityID    string          `json:"entityId"`
	PerformedBy string          `json:"performedBy"`
	Timestamp   time.Time       `json:"timestamp"`
	OldValue    json.RawMessage `json:"oldValue,omitempty"`
	NewValue    json.RawMessage `json:"newValue,omitempty"`
}
