package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	Up      func(ctx context.Context, tx *sql.Tx, dialect Dialect) error
}

// migrations is the list of all migrations in order.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_ledger_tables",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_property_version_and_belongs_to",
		Up:      migrationV2,
	},
}

// LatestVersion is the schema version a fresh install starts at.
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

// RunMigrations executes all pending migrations, each in its own transaction.
func RunMigrations(ctx context.Context, database *sql.DB, dialect Dialect) error {
	if _, err := database.ExecContext(ctx, schemaVersionSQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	if err := database.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion); err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		slog.InfoContext(ctx, "running migration", "version", migration.Version, "name", migration.Name)

		tx, err := database.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(ctx, tx, dialect); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.ExecContext(ctx, Rebind(dialect, "INSERT INTO schema_version (version) VALUES (?)"), migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// migrationV1 creates the ledger tables. Statements are idempotent, so a
// store created by a newer binary is unaffected.
func migrationV1(ctx context.Context, tx *sql.Tx, dialect Dialect) error {
	for _, stmt := range SchemaStatements(dialect) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrationV2 adds the compare-and-set version counter and the belongs_to
// attribute to stores created before they existed.
func migrationV2(ctx context.Context, tx *sql.Tx, dialect Dialect) error {
	for _, col := range []struct{ name, ddl string }{
		{"version", "ALTER TABLE properties ADD COLUMN version INTEGER NOT NULL DEFAULT 1"},
		{"belongs_to", "ALTER TABLE properties ADD COLUMN belongs_to TEXT"},
	} {
		exists, err := columnExists(ctx, tx, dialect, "properties", col.name)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if _, err := tx.ExecContext(ctx, col.ddl); err != nil {
			return err
		}
	}
	return nil
}

func columnExists(ctx context.Context, tx *sql.Tx, dialect Dialect, table, column string) (bool, error) {
	var n int
	var err error
	if dialect == DialectPostgres {
		err = tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = $1 AND column_name = $2",
			table, column).Scan(&n)
	} else {
		err = tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?", table, column).Scan(&n)
	}
	return n > 0, err
}
