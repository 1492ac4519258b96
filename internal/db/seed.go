package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/malkhana/internal/core/audit"
)

// SeedUser is a development account created by SeedFixtures.
type SeedUser struct {
	OfficerID string
	Name      string
	Password  string
	Role      string
	Station   string
}

// DefaultSeedUsers are the accounts created by `malkhana init --seed`.
var DefaultSeedUsers = []SeedUser{
	{OfficerID: "ADMIN-001", Name: "Station Admin", Password: "admin123", Role: "ADMIN", Station: "Central"},
	{OfficerID: "OFF-001", Name: "Duty Officer", Password: "officer123", Role: "OFFICER", Station: "Central"},
}

// SeedFixtures creates development officer accounts, each with its
// OFFICER_ADDED audit entry. Existing officer ids are skipped.
func SeedFixtures(ctx context.Context, database *sql.DB, dialect Dialect, users []SeedUser) (int, error) {
	now := time.Now().UTC()
	created := 0

	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return created, fmt.Errorf("seed users: %w", err)
		}

		tx, err := database.BeginTx(ctx, nil)
		if err != nil {
			return created, fmt.Errorf("seed users: %w", err)
		}

		id := uuid.Must(uuid.NewV7()).String()
		res, err := tx.ExecContext(ctx, Rebind(dialect,
			`INSERT INTO users (id, officer_id, name, password_hash, role, station, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?) ON CONFLICT(officer_id) DO NOTHING`),
			id, u.OfficerID, u.Name, string(hash), u.Role, u.Station, now)
		if err != nil {
			tx.Rollback()
			return created, fmt.Errorf("seed users: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			tx.Rollback()
			continue
		}

		newValue := audit.Snapshot(audit.OfficerSnapshot{
			OfficerID: u.OfficerID,
			Name:      u.Name,
			Role:      u.Role,
			Station:   u.Station,
		})
		if _, err := tx.ExecContext(ctx, Rebind(dialect,
			`INSERT INTO audit_logs (id, action_type, entity_type, entity_id, performed_by, timestamp, old_value, new_value)
			 VALUES (?, ?, ?, ?, ?, ?, NULL, ?)`),
			uuid.Must(uuid.NewV7()).String(), audit.ActionOfficerAdded, audit.EntityUser, id, audit.SystemActor, now, newValue); err != nil {
			tx.Rollback()
			return created, fmt.Errorf("seed audit: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return created, fmt.Errorf("seed users: %w", err)
		}
		created++
	}

	return created, nil
}
