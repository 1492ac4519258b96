package db

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete SQLite schema for fresh ledger installs.
// It reflects the current state after all migrations and is the single
// source of truth used by tests through GetSchemaSQL().
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL and postgresSchema here
//  3. Bump the latest version (it is derived from the migrations list)
const SchemaSQL = `
-- Officer accounts
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	officer_id TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL CHECK(role IN ('ADMIN', 'OFFICER')),
	station TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);

-- Cases
CREATE TABLE IF NOT EXISTS cases (
	id TEXT PRIMARY KEY,
	station TEXT NOT NULL,
	crime_number TEXT NOT NULL,
	year INTEGER NOT NULL,
	fir_date DATETIME NOT NULL,
	seizure_date DATETIME,
	act_law TEXT,
	sections TEXT NOT NULL DEFAULT '[]',
	officer_id TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('PENDING', 'DISPOSED')) DEFAULT 'PENDING',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cases_status_created ON cases(status, created_at);
CREATE INDEX IF NOT EXISTS idx_cases_crime_number ON cases(crime_number);

-- Properties
CREATE TABLE IF NOT EXISTS properties (
	id TEXT PRIMARY KEY,
	case_id TEXT NOT NULL,
	category TEXT,
	belongs_to TEXT,
	nature TEXT,
	quantity TEXT,
	location TEXT NOT NULL,
	description TEXT,
	status TEXT NOT NULL CHECK(status IN ('IN_CUSTODY', 'DISPOSED')) DEFAULT 'IN_CUSTODY',
	version INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (case_id) REFERENCES cases(id)
);

CREATE INDEX IF NOT EXISTS idx_properties_case ON properties(case_id);
CREATE INDEX IF NOT EXISTS idx_properties_status ON properties(status);

-- Custody transfers
CREATE TABLE IF NOT EXISTS custody_logs (
	id TEXT PRIMARY KEY,
	property_id TEXT NOT NULL,
	from_location TEXT NOT NULL,
	to_location TEXT NOT NULL,
	purpose TEXT,
	handled_by TEXT NOT NULL,
	timestamp DATETIME NOT NULL,
	remarks TEXT,
	FOREIGN KEY (property_id) REFERENCES properties(id)
);

CREATE INDEX IF NOT EXISTS idx_custody_logs_property ON custody_logs(property_id, timestamp);

-- Disposals (at most one per property)
CREATE TABLE IF NOT EXISTS disposals (
	id TEXT PRIMARY KEY,
	property_id TEXT NOT NULL UNIQUE,
	disposal_type TEXT NOT NULL CHECK(disposal_type IN ('RETURNED', 'DESTROYED', 'AUCTIONED', 'COURT_CUSTODY')),
	court_order_ref TEXT,
	disposed_by TEXT NOT NULL,
	timestamp DATETIME NOT NULL,
	remarks TEXT,
	FOREIGN KEY (property_id) REFERENCES properties(id)
);

-- Audit ledger (append-only)
CREATE TABLE IF NOT EXISTS audit_logs (
	id TEXT PRIMARY KEY,
	action_type TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	performed_by TEXT NOT NULL,
	timestamp DATETIME NOT NULL,
	old_value TEXT,
	new_value TEXT
);

CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs(entity_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_audit_logs_timestamp ON audit_logs(timestamp);

CREATE TRIGGER IF NOT EXISTS audit_logs_no_update
BEFORE UPDATE ON audit_logs
BEGIN
	SELECT RAISE(ABORT, 'audit_logs is append-only');
END;

CREATE TRIGGER IF NOT EXISTS audit_logs_no_delete
BEFORE DELETE ON audit_logs
BEGIN
	SELECT RAISE(ABORT, 'audit_logs is append-only');
END;

-- Notifications (one per user, type and reference)
CREATE TABLE IF NOT EXISTS notifications (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	type TEXT NOT NULL,
	reference_id TEXT NOT NULL,
	message TEXT NOT NULL,
	read INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	UNIQUE(user_id, type, reference_id)
);

CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at);
`

// postgresSchema mirrors SchemaSQL for Postgres, one statement per entry.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		officer_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL CHECK(role IN ('ADMIN', 'OFFICER')),
		station TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)`,
	`CREATE TABLE IF NOT EXISTS cases (
		id TEXT PRIMARY KEY,
		station TEXT NOT NULL,
		crime_number TEXT NOT NULL,
		year INTEGER NOT NULL,
		fir_date TIMESTAMPTZ NOT NULL,
		seizure_date TIMESTAMPTZ,
		act_law TEXT,
		sections TEXT NOT NULL DEFAULT '[]',
		officer_id TEXT NOT NULL,
		status TEXT NOT NULL CHECK(status IN ('PENDING', 'DISPOSED')) DEFAULT 'PENDING',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cases_status_created ON cases(status, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_cases_crime_number ON cases(crime_number)`,
	`CREATE TABLE IF NOT EXISTS properties (
		id TEXT PRIMARY KEY,
		case_id TEXT NOT NULL REFERENCES cases(id),
		category TEXT,
		belongs_to TEXT,
		nature TEXT,
		quantity TEXT,
		location TEXT NOT NULL,
		description TEXT,
		status TEXT NOT NULL CHECK(status IN ('IN_CUSTODY', 'DISPOSED')) DEFAULT 'IN_CUSTODY',
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_case ON properties(case_id)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_status ON properties(status)`,
	`CREATE TABLE IF NOT EXISTS custody_logs (
		id TEXT PRIMARY KEY,
		property_id TEXT NOT NULL REFERENCES properties(id),
		from_location TEXT NOT NULL,
		to_location TEXT NOT NULL,
		purpose TEXT,
		handled_by TEXT NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL,
		remarks TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_custody_logs_property ON custody_logs(property_id, timestamp)`,
	`CREATE TABLE IF NOT EXISTS disposals (
		id TEXT PRIMARY KEY,
		property_id TEXT NOT NULL UNIQUE REFERENCES properties(id),
		disposal_type TEXT NOT NULL CHECK(disposal_type IN ('RETURNED', 'DESTROYED', 'AUCTIONED', 'COURT_CUSTODY')),
		court_order_ref TEXT,
		disposed_by TEXT NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL,
		remarks TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id TEXT PRIMARY KEY,
		action_type TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		performed_by TEXT NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL,
		old_value TEXT,
		new_value TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs(entity_id, timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_timestamp ON audit_logs(timestamp)`,
	`CREATE OR REPLACE FUNCTION audit_logs_append_only() RETURNS trigger AS $$
	BEGIN
		RAISE EXCEPTION 'audit_logs is append-only';
	END;
	$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS audit_logs_no_mutation ON audit_logs`,
	`CREATE TRIGGER audit_logs_no_mutation BEFORE UPDATE OR DELETE ON audit_logs
		FOR EACH ROW EXECUTE FUNCTION audit_logs_append_only()`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		reference_id TEXT NOT NULL,
		message TEXT NOT NULL,
		read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE(user_id, type, reference_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at)`,
}

const schemaVersionSQL = `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)
`

// InitSchema creates the schema on a fresh store, or runs pending
// migrations when a schema_version table already exists.
func InitSchema(ctx context.Context, database *sql.DB, dialect Dialect) error {
	exists, err := schemaVersionExists(ctx, database, dialect)
	if err != nil {
		return err
	}
	if exists {
		return RunMigrations(ctx, database, dialect)
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range SchemaStatements(dialect) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, schemaVersionSQL); err != nil {
		return err
	}
	// A fresh schema already includes every migration.
	for _, m := range migrations {
		if _, err := tx.ExecContext(ctx, Rebind(dialect, "INSERT INTO schema_version (version) VALUES (?)"), m.Version); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SchemaStatements returns the schema for a dialect as executable statements.
func SchemaStatements(dialect Dialect) []string {
	if dialect == DialectPostgres {
		return postgresSchema
	}
	return []string{SchemaSQL}
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}

func schemaVersionExists(ctx context.Context, database *sql.DB, dialect Dialect) (bool, error) {
	query := "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'"
	if dialect == DialectPostgres {
		query = "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = 'schema_version'"
	}
	var n int
	if err := database.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
