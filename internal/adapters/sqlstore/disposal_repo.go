package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/malkhana/internal/ledgererr"
	"github.com/example/malkhana/internal/ports/secondary"
)

// DisposalRepository implements secondary.DisposalRepository.
type DisposalRepository struct {
	c conn
}

const disposalSelectCols = "id, property_id, disposal_type, court_order_ref, disposed_by, timestamp, remarks"

func scanDisposal(scanner interface {
	Scan(dest ...any) error
}) (*secondary.DisposalRecord, error) {
	var courtOrderRef, remarks sql.NullString
	d := &secondary.DisposalRecord{}
	if err := scanner.Scan(&d.ID, &d.PropertyID, &d.DisposalType, &courtOrderRef, &d.DisposedBy, &d.Timestamp, &remarks); err != nil {
		return nil, err
	}
	d.CourtOrderRef = courtOrderRef.String
	d.Remarks = remarks.String
	d.Timestamp = d.Timestamp.UTC()
	return d, nil
}

// Create persists a disposal. The unique property_id index rejects a second one.
func (r *DisposalRepository) Create(ctx context.Context, d *secondary.DisposalRecord) error {
	_, err := r.c.exec(ctx,
		"INSERT INTO disposals ("+disposalSelectCols+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		d.ID, d.PropertyID, d.DisposalType, nullString(d.CourtOrderRef), d.DisposedBy, d.Timestamp.UTC(), nullString(d.Remarks),
	)
	if isUniqueViolation(err) {
		return ledgererr.AlreadyDisposed(d.PropertyID)
	}
	if err != nil {
		return mapError("create disposal", err)
	}
	return nil
}

// GetByProperty returns the disposal of a property.
func (r *DisposalRepository) GetByProperty(ctx context.Context, propertyID string) (*secondary.DisposalRecord, error) {
	row := r.c.queryRow(ctx, "SELECT "+disposalSelectCols+" FROM disposals WHERE property_id = ?", propertyID)
	d, err := scanDisposal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledgererr.NotFound("disposal for property", propertyID)
	}
	if err != nil {
		return nil, mapError("get disposal", err)
	}
	return d, nil
}

// List retrieves disposals, newest first.
func (r *DisposalRepository) List(ctx context.Context, filters secondary.DisposalFilters) ([]*secondary.DisposalRecord, error) {
	query := "SELECT " + disposalSelectCols + " FROM disposals WHERE 1=1"
	args := []any{}
	if filters.PropertyID != "" {
		query += " AND property_id = ?"
		args = append(args, filters.PropertyID)
	}
	query += " ORDER BY timestamp DESC, id DESC"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.c.query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list disposals", err)
	}
	defer rows.Close()

	var disposals []*secondary.DisposalRecord
	for rows.Next() {
		d, err := scanDisposal(rows)
		if err != nil {
			return nil, mapError("list disposals", err)
		}
		disposals = append(disposals, d)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list disposals", err)
	}
	return disposals, nil
}

// CountByProperty returns how many disposals reference a property.
func (r *DisposalRepository) CountByProperty(ctx context.Context, propertyID string) (int, error) {
	var n int
	if err := r.c.queryRow(ctx, "SELECT COUNT(*) FROM disposals WHERE property_id = ?", propertyID).Scan(&n); err != nil {
		return 0, mapError("count disposals", err)
	}
	return n, nil
}
