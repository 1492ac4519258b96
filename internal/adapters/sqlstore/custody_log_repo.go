package sqlstore

import (
	"context"
	"database/sql"

	"github.com/example/malkhana/internal/ports/secondary"
)

// CustodyLogRepository implements secondary.CustodyLogRepository.
type CustodyLogRepository struct {
	c conn
}

// Create persists a new custody log entry.
func (r *CustodyLogRepository) Create(ctx context.Context, l *secondary.CustodyLogRecord) error {
	_, err := r.c.exec(ctx,
		`INSERT INTO custody_logs (id, property_id, from_location, to_location, purpose, handled_by, timestamp, remarks)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.PropertyID, l.FromLocation, l.ToLocation, nullString(l.Purpose), l.HandledBy,
		l.Timestamp.UTC(), nullString(l.Remarks),
	)
	if err != nil {
		return mapError("create custody log", err)
	}
	return nil
}

// ListByProperty returns the transfer chain of a property, oldest first.
func (r *CustodyLogRepository) ListByProperty(ctx context.Context, propertyID string) ([]*secondary.CustodyLogRecord, error) {
	rows, err := r.c.query(ctx,
		`SELECT id, property_id, from_location, to_location, purpose, handled_by, timestamp, remarks
		 FROM custody_logs WHERE property_id = ? ORDER BY timestamp, id`,
		propertyID,
	)
	if err != nil {
		return nil, mapError("list custody logs", err)
	}
	defer rows.Close()

	var logs []*secondary.CustodyLogRecord
	for rows.Next() {
		var purpose, remarks sql.NullString
		l := &secondary.CustodyLogRecord{}
		if err := rows.Scan(&l.ID, &l.PropertyID, &l.FromLocation, &l.ToLocation, &purpose, &l.HandledBy, &l.Timestamp, &remarks); err != nil {
			return nil, mapError("list custody logs", err)
		}
		l.Purpose = purpose.String
		l.Remarks = remarks.String
		l.Timestamp = l.Timestamp.UTC()
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list custody logs", err)
	}
	return logs, nil
}
