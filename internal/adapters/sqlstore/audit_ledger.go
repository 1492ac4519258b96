package sqlstore

import (
	"context"
	"database/sql"

	"github.com/example/malkhana/internal/ledgererr"
	"github.com/example/malkhana/internal/ports/secondary"
)

// AuditLedger implements secondary.AuditLedger. It has no update or delete
// method; the schema triggers reject both at the database as well.
type AuditLedger struct {
	c conn
}

// Append writes a new audit entry.
func (l *AuditLedger) Append(ctx context.Context, e *secondary.AuditRecord) error {
	_, err := l.c.exec(ctx,
		`INSERT INTO audit_logs (id, action_type, entity_type, entity_id, performed_by, timestamp, old_value, new_value)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ActionType, e.EntityType, e.EntityID, e.PerformedBy, e.Timestamp.UTC(),
		nullString(e.OldValue), nullString(e.NewValue),
	)
	if isUniqueViolation(err) {
		return ledgererr.New(ledgererr.CodeImmutableRecord, "audit entry %s already exists", e.ID)
	}
	if err != nil {
		return mapError("append audit entry", err)
	}
	return nil
}

// List returns entries newest first.
func (l *AuditLedger) List(ctx context.Context, filters secondary.AuditFilters) ([]*secondary.AuditRecord, error) {
	query := "SELECT id, action_type, entity_type, entity_id, performed_by, timestamp, old_value, new_value FROM audit_logs WHERE 1=1"
	args := []any{}
	if filters.EntityID != "" {
		query += " AND entity_id = ?"
		args = append(args, filters.EntityID)
	}
	if filters.EntityType != "" {
		query += " AND entity_type = ?"
		args = append(args, filters.EntityType)
	}
	query += " ORDER BY timestamp DESC, id DESC"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := l.c.query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list audit entries", err)
	}
	defer rows.Close()

	var entries []*secondary.AuditRecord
	for rows.Next() {
		var oldValue, newValue sql.NullString
		e := &secondary.AuditRecord{}
		if err := rows.Scan(&e.ID, &e.ActionType, &e.EntityType, &e.EntityID, &e.PerformedBy, &e.Timestamp, &oldValue, &newValue); err != nil {
			return nil, mapError("list audit entries", err)
		}
		e.OldValue = oldValue.String
		e.NewValue = newValue.String
		e.Timestamp = e.Timestamp.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list audit entries", err)
	}
	return entries, nil
}
