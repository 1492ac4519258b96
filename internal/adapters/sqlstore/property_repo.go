package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/malkhana/internal/ledgererr"
	"github.com/example/malkhana/internal/ports/secondary"
)

// PropertyRepository implements secondary.PropertyRepository.
type PropertyRepository struct {
	c conn
}

const propertySelectCols = "id, case_id, category, belongs_to, nature, quantity, location, description, status, version, created_at, updated_at"

// scanProperty scans a property row into a PropertyRecord.
func scanProperty(scanner interface {
	Scan(dest ...any) error
}) (*secondary.PropertyRecord, error) {
	var category, belongsTo, nature, quantity, description sql.NullString

	record := &secondary.PropertyRecord{}
	err := scanner.Scan(
		&record.ID, &record.CaseID, &category, &belongsTo, &nature, &quantity,
		&record.Location, &description, &record.Status, &record.Version,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Category = category.String
	record.BelongsTo = belongsTo.String
	record.Nature = nature.String
	record.Quantity = quantity.String
	record.Description = description.String
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()

	return record, nil
}

// Create persists a new property.
func (r *PropertyRepository) Create(ctx context.Context, p *secondary.PropertyRecord) error {
	version := p.Version
	if version == 0 {
		version = 1
	}
	_, err := r.c.exec(ctx,
		`INSERT INTO properties (id, case_id, category, belongs_to, nature, quantity, location, description, status, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CaseID, nullString(p.Category), nullString(p.BelongsTo), nullString(p.Nature), nullString(p.Quantity),
		p.Location, nullString(p.Description), p.Status, version, p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	)
	if err != nil {
		return mapError("create property", err)
	}
	return nil
}

// GetByID retrieves a property by its ID.
func (r *PropertyRepository) GetByID(ctx context.Context, id string) (*secondary.PropertyRecord, error) {
	row := r.c.queryRow(ctx, "SELECT "+propertySelectCols+" FROM properties WHERE id = ?", id)

	record, err := scanProperty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledgererr.NotFound("property", id)
	}
	if err != nil {
		return nil, mapError("get property", err)
	}
	return record, nil
}

// List retrieves properties matching the given filters.
func (r *PropertyRepository) List(ctx context.Context, filters secondary.PropertyFilters) ([]*secondary.PropertyRecord, error) {
	query := "SELECT " + propertySelectCols + " FROM properties WHERE 1=1"
	args := []any{}

	if filters.CaseID != "" {
		query += " AND case_id = ?"
		args = append(args, filters.CaseID)
	}
	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	query += " ORDER BY created_at, id"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.c.query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list properties", err)
	}
	defer rows.Close()

	var properties []*secondary.PropertyRecord
	for rows.Next() {
		record, err := scanProperty(rows)
		if err != nil {
			return nil, mapError("list properties", err)
		}
		properties = append(properties, record)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list properties", err)
	}
	return properties, nil
}

// CompareAndSetLocation moves a property iff its version is unchanged.
func (r *PropertyRepository) CompareAndSetLocation(ctx context.Context, id string, expectedVersion int, location string, at time.Time) (bool, error) {
	res, err := r.c.exec(ctx,
		`UPDATE properties SET location = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ? AND status = 'IN_CUSTODY'`,
		location, at.UTC(), id, expectedVersion,
	)
	if err != nil {
		return false, mapError("transfer property", err)
	}
	return rowsChanged(res)
}

// MarkDisposed flips an IN_CUSTODY property to DISPOSED. The version bump
// makes any in-flight transfer lose its compare-and-set.
func (r *PropertyRepository) MarkDisposed(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.c.exec(ctx,
		`UPDATE properties SET status = 'DISPOSED', version = version + 1, updated_at = ?
		 WHERE id = ? AND status = 'IN_CUSTODY'`,
		at.UTC(), id,
	)
	if err != nil {
		return false, mapError("dispose property", err)
	}
	return rowsChanged(res)
}

// CountByCase returns the total and not-yet-disposed property counts of a case.
func (r *PropertyRepository) CountByCase(ctx context.Context, caseID string) (int, int, error) {
	var total, remaining int
	err := r.c.queryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN status <> 'DISPOSED' THEN 1 ELSE 0 END), 0)
		 FROM properties WHERE case_id = ?`,
		caseID,
	).Scan(&total, &remaining)
	if err != nil {
		return 0, 0, mapError("count properties", err)
	}
	return total, remaining, nil
}

// CountByStatus returns the number of properties per status.
func (r *PropertyRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	return countByStatus(ctx, r.c, "properties")
}
