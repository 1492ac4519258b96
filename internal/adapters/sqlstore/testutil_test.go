// Package sqlstore_test contains integration tests for the SQL repositories.
//
// All setup goes through setupTestStore, which loads db.GetSchemaSQL() so the
// tests run against the authoritative schema. Do not hardcode CREATE TABLE
// statements in test files.
package sqlstore_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/example/malkhana/internal/adapters/sqlstore"
	"github.com/example/malkhana/internal/config"
	"github.com/example/malkhana/internal/db"
	"github.com/example/malkhana/internal/logging"
	"github.com/example/malkhana/internal/ports/secondary"
)

// setupTestStore creates an in-memory store with the authoritative schema.
func setupTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()

	testDB, err := sql.Open("sqlite3", db.SQLiteDSN(":memory:"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Every connection to :memory: is its own database.
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return sqlstore.New(testDB, db.DialectSQLite, logging.Discard())
}

// setupFileStore opens a WAL store on a temp file so several connections
// can run transactions concurrently.
func setupFileStore(t *testing.T) *sqlstore.Store {
	t.Helper()

	cfg := config.StoreConfig{Driver: config.DriverSQLite, DSN: filepath.Join(t.TempDir(), "ledger.db")}
	database, dialect, err := db.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to open file store: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return sqlstore.New(database, dialect, logging.Discard())
}

var testEpoch = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// seedCase inserts a PENDING case and returns it.
func seedCase(t *testing.T, s *sqlstore.Store, crimeNumber string, createdAt time.Time) *secondary.CaseRecord {
	t.Helper()
	c := &secondary.CaseRecord{
		ID:          newID(),
		Station:     "Central",
		CrimeNumber: crimeNumber,
		Year:        2024,
		FIRDate:     testEpoch,
		Sections:    []string{"379", "411"},
		OfficerID:   "U-1",
		Status:      "PENDING",
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if err := s.Cases().Create(context.Background(), c); err != nil {
		t.Fatalf("failed to seed case: %v", err)
	}
	return c
}

// seedProperty inserts an IN_CUSTODY property under caseID.
func seedProperty(t *testing.T, s *sqlstore.Store, caseID, location string) *secondary.PropertyRecord {
	t.Helper()
	p := &secondary.PropertyRecord{
		ID:        newID(),
		CaseID:    caseID,
		Category:  "Vehicle",
		Location:  location,
		Status:    "IN_CUSTODY",
		Version:   1,
		CreatedAt: testEpoch,
		UpdatedAt: testEpoch,
	}
	if err := s.Properties().Create(context.Background(), p); err != nil {
		t.Fatalf("failed to seed property: %v", err)
	}
	return p
}

// seedUser inserts a user with the given role.
func seedUser(t *testing.T, s *sqlstore.Store, officerID, role string) *secondary.UserRecord {
	t.Helper()
	u := &secondary.UserRecord{
		ID:           newID(),
		OfficerID:    officerID,
		Name:         officerID,
		PasswordHash: "x",
		Role:         role,
		Station:      "Central",
		CreatedAt:    testEpoch,
	}
	if err := s.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return u
}
