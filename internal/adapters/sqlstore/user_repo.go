package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/example/malkhana/internal/ledgererr"
	"github.com/example/malkhana/internal/ports/secondary"
)

// UserRepository implements secondary.UserRepository.
type UserRepository struct {
	c conn
}

const userSelectCols = "id, officer_id, name, password_hash, role, station, created_at"

func scanUser(scanner interface {
	Scan(dest ...any) error
}) (*secondary.UserRecord, error) {
	u := &secondary.UserRecord{}
	if err := scanner.Scan(&u.ID, &u.OfficerID, &u.Name, &u.PasswordHash, &u.Role, &u.Station, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

// Create persists a user.
func (r *UserRepository) Create(ctx context.Context, u *secondary.UserRecord) error {
	_, err := r.c.exec(ctx,
		"INSERT INTO users ("+userSelectCols+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		u.ID, u.OfficerID, u.Name, u.PasswordHash, u.Role, u.Station, u.CreatedAt.UTC(),
	)
	if isUniqueViolation(err) {
		return ledgererr.Conflict("officer %s already exists", u.OfficerID)
	}
	if err != nil {
		return mapError("create user", err)
	}
	return nil
}

// GetByID retrieves a user by its ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*secondary.UserRecord, error) {
	u, err := scanUser(r.c.queryRow(ctx, "SELECT "+userSelectCols+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledgererr.NotFound("user", id)
	}
	if err != nil {
		return nil, mapError("get user", err)
	}
	return u, nil
}

// ListByRoles returns users whose role is in roles, oldest first.
func (r *UserRepository) ListByRoles(ctx context.Context, roles []string) ([]*secondary.UserRecord, error) {
	query := "SELECT " + userSelectCols + " FROM users"
	args := make([]any, 0, len(roles))
	if len(roles) > 0 {
		query += " WHERE role IN (" + strings.TrimSuffix(strings.Repeat("?, ", len(roles)), ", ") + ")"
		for _, role := range roles {
			args = append(args, role)
		}
	}
	query += " ORDER BY created_at, id"

	rows, err := r.c.query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list users", err)
	}
	defer rows.Close()

	var users []*secondary.UserRecord
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapError("list users", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list users", err)
	}
	return users, nil
}
