package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/example/malkhana/internal/ledgererr"
	"github.com/example/malkhana/internal/ports/secondary"
)

// CaseRepository implements secondary.CaseRepository.
type CaseRepository struct {
	c conn
}

const caseSelectCols = "id, station, crime_number, year, fir_date, seizure_date, act_law, sections, officer_id, status, created_at, updated_at"

// scanCase scans a case row into a CaseRecord.
func scanCase(scanner interface {
	Scan(dest ...any) error
}) (*secondary.CaseRecord, error) {
	var (
		seizureDate sql.NullTime
		actLaw      sql.NullString
		sections    string
	)

	record := &secondary.CaseRecord{}
	err := scanner.Scan(
		&record.ID, &record.Station, &record.CrimeNumber, &record.Year, &record.FIRDate,
		&seizureDate, &actLaw, &sections, &record.OfficerID, &record.Status,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if seizureDate.Valid {
		t := seizureDate.Time.UTC()
		record.SeizureDate = &t
	}
	record.ActLaw = actLaw.String
	if sections != "" {
		if err := json.Unmarshal([]byte(sections), &record.Sections); err != nil {
			return nil, err
		}
	}
	record.FIRDate = record.FIRDate.UTC()
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()

	return record, nil
}

// Create persists a new case.
func (r *CaseRepository) Create(ctx context.Context, c *secondary.CaseRecord) error {
	var seizureDate sql.NullTime
	if c.SeizureDate != nil {
		seizureDate = sql.NullTime{Time: c.SeizureDate.UTC(), Valid: true}
	}
	sections := c.Sections
	if sections == nil {
		sections = []string{}
	}
	encoded, err := json.Marshal(sections)
	if err != nil {
		return err
	}

	_, err = r.c.exec(ctx,
		`INSERT INTO cases (id, station, crime_number, year, fir_date, seizure_date, act_law, sections, officer_id, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Station, c.CrimeNumber, c.Year, c.FIRDate.UTC(), seizureDate, nullString(c.ActLaw),
		string(encoded), c.OfficerID, c.Status, c.CreatedAt.UTC(), c.UpdatedAt.UTC(),
	)
	if err != nil {
		return mapError("create case", err)
	}
	return nil
}

// GetByID retrieves a case by its ID.
func (r *CaseRepository) GetByID(ctx context.Context, id string) (*secondary.CaseRecord, error) {
	row := r.c.queryRow(ctx, "SELECT "+caseSelectCols+" FROM cases WHERE id = ?", id)

	record, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledgererr.NotFound("case", id)
	}
	if err != nil {
		return nil, mapError("get case", err)
	}
	return record, nil
}

// List retrieves cases matching the given filters, newest first.
func (r *CaseRepository) List(ctx context.Context, filters secondary.CaseFilters) ([]*secondary.CaseRecord, error) {
	query := "SELECT " + caseSelectCols + " FROM cases WHERE 1=1"
	args := []any{}

	if s := strings.TrimSpace(filters.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		query += " AND (LOWER(crime_number) LIKE ? OR LOWER(station) LIKE ?)"
		args = append(args, pattern, pattern)
	}
	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	query += " ORDER BY created_at DESC, id DESC"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	return r.list(ctx, "list cases", query, args...)
}

// MarkDisposed flips a PENDING case to DISPOSED.
func (r *CaseRepository) MarkDisposed(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.c.exec(ctx,
		"UPDATE cases SET status = 'DISPOSED', updated_at = ? WHERE id = ? AND status = 'PENDING'",
		at.UTC(), id,
	)
	if err != nil {
		return false, mapError("close case", err)
	}
	return rowsChanged(res)
}

// ListStale returns PENDING cases created at or before cutoff.
func (r *CaseRepository) ListStale(ctx context.Context, cutoff time.Time) ([]*secondary.CaseRecord, error) {
	return r.list(ctx, "list stale cases",
		"SELECT "+caseSelectCols+" FROM cases WHERE status = 'PENDING' AND created_at <= ? ORDER BY created_at, id",
		cutoff.UTC(),
	)
}

// ListClosable returns ids of PENDING cases whose properties are all disposed.
func (r *CaseRepository) ListClosable(ctx context.Context) ([]string, error) {
	rows, err := r.c.query(ctx, `
		SELECT c.id FROM cases c
		WHERE c.status = 'PENDING'
		  AND EXISTS (SELECT 1 FROM properties p WHERE p.case_id = c.id)
		  AND NOT EXISTS (SELECT 1 FROM properties p WHERE p.case_id = c.id AND p.status <> 'DISPOSED')
		ORDER BY c.created_at, c.id`)
	if err != nil {
		return nil, mapError("list closable cases", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapError("scan case id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list closable cases", err)
	}
	return ids, nil
}

// CountByStatus returns the number of cases per status.
func (r *CaseRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	return countByStatus(ctx, r.c, "cases")
}

func (r *CaseRepository) list(ctx context.Context, op, query string, args ...any) ([]*secondary.CaseRecord, error) {
	rows, err := r.c.query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	var cases []*secondary.CaseRecord
	for rows.Next() {
		record, err := scanCase(rows)
		if err != nil {
			return nil, mapError(op, err)
		}
		cases = append(cases, record)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(op, err)
	}
	return cases, nil
}

// countByStatus groups a table with a status column.
func countByStatus(ctx context.Context, c conn, table string) (map[string]int, error) {
	rows, err := c.query(ctx, "SELECT status, COUNT(*) FROM "+table+" GROUP BY status")
	if err != nil {
		return nil, mapError("count "+table, err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, mapError("count "+table, err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("count "+table, err)
	}
	return counts, nil
}

func rowsChanged(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, mapError("rows affected", err)
	}
	return n > 0, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
