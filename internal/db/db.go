// Package db opens the record store and owns its schema.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/example/malkhana/internal/config"
)

// Dialect identifies the SQL flavour behind a *sql.DB.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DialectFor maps a configured driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverSQLite:
		return DialectSQLite, nil
	case config.DriverPostgres:
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unsupported store driver %q", driver)
	}
}

// sqliteParams are applied to every SQLite DSN. WAL plus immediate
// transactions let several processes share one ledger file.
var sqliteParams = map[string]string{
	"_busy_timeout": "5000",
	"_journal_mode": "WAL",
	"_foreign_keys": "on",
	"_txlock":       "immediate",
}

// SQLiteDSN appends the connection parameters to a file path or file: URI.
// Parameters already present in path win.
func SQLiteDSN(path string) string {
	base, query, _ := strings.Cut(path, "?")
	values, err := url.ParseQuery(query)
	if err != nil {
		values = url.Values{}
	}
	for k, v := range sqliteParams {
		if values.Get(k) == "" {
			values.Set(k, v)
		}
	}
	return base + "?" + values.Encode()
}

// Open connects to the configured store, verifies the connection and
// installs the schema.
func Open(ctx context.Context, cfg config.StoreConfig) (*sql.DB, Dialect, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, "", err
	}

	dsn := cfg.DSN
	if dialect == DialectSQLite {
		if err := ensureDir(dsn); err != nil {
			return nil, "", err
		}
		dsn = SQLiteDSN(dsn)
	}

	database, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}
	if isMemory(cfg.DSN) {
		// Each connection to :memory: is a separate database.
		database.SetMaxOpenConns(1)
	}

	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, "", fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := InitSchema(ctx, database, dialect); err != nil {
		database.Close()
		return nil, "", fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, dialect, nil
}

func isMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func ensureDir(dsn string) error {
	if isMemory(dsn) {
		return nil
	}
	path, _, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

// Rebind converts ? placeholders to $n for Postgres.
func Rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres {
		return query
	}
	out := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}
