package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/malkhana/internal/ledgererr"
	"github.com/example/malkhana/internal/ports/secondary"
)

// NotificationRepository implements secondary.NotificationRepository.
type NotificationRepository struct {
	c conn
}

const notificationSelectCols = "id, user_id, type, reference_id, message, read, created_at"

func scanNotification(scanner interface {
	Scan(dest ...any) error
}) (*secondary.NotificationRecord, error) {
	n := &secondary.NotificationRecord{}
	if err := scanner.Scan(&n.ID, &n.UserID, &n.Type, &n.ReferenceID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.CreatedAt = n.CreatedAt.UTC()
	return n, nil
}

// InsertIgnoreConflict inserts n unless the (user, type, reference) triple
// already exists. The unique index decides; there is no prior lookup.
func (r *NotificationRepository) InsertIgnoreConflict(ctx context.Context, n *secondary.NotificationRecord) (bool, error) {
	res, err := r.c.exec(ctx,
		`INSERT INTO notifications (`+notificationSelectCols+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, type, reference_id) DO NOTHING`,
		n.ID, n.UserID, n.Type, n.ReferenceID, n.Message, n.Read, n.CreatedAt.UTC(),
	)
	if err != nil {
		return false, mapError("insert notification", err)
	}
	return rowsChanged(res)
}

// GetByID retrieves a notification by its ID.
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*secondary.NotificationRecord, error) {
	n, err := scanNotification(r.c.queryRow(ctx, "SELECT "+notificationSelectCols+" FROM notifications WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledgererr.NotFound("notification", id)
	}
	if err != nil {
		return nil, mapError("get notification", err)
	}
	return n, nil
}

// ListForUser returns a user's notifications, newest first.
func (r *NotificationRepository) ListForUser(ctx context.Context, userID string, limit int) ([]*secondary.NotificationRecord, error) {
	query := "SELECT " + notificationSelectCols + " FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id DESC"
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.c.query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list notifications", err)
	}
	defer rows.Close()

	var out []*secondary.NotificationRecord
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, mapError("list notifications", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list notifications", err)
	}
	return out, nil
}

// MarkRead sets the read flag.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	res, err := r.c.exec(ctx, "UPDATE notifications SET read = ? WHERE id = ?", true, id)
	if err != nil {
		return mapError("mark notification read", err)
	}
	changed, err := rowsChanged(res)
	if err != nil {
		return err
	}
	if !changed {
		return ledgererr.NotFound("notification", id)
	}
	return nil
}
