// Package sqlstore implements the record store ports on database/sql.
// The same repositories serve SQLite (mattn/go-sqlite3) and Postgres
// (pgx stdlib); queries are written with ? placeholders and rebound per dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/example/malkhana/internal/db"
	"github.com/example/malkhana/internal/ledgererr"
	"github.com/example/malkhana/internal/ports/secondary"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn binds a querier to its dialect.
type conn struct {
	q       querier
	dialect db.Dialect
}

func (c conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.q.ExecContext(ctx, db.Rebind(c.dialect, query), args...)
}

func (c conn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.q.QueryContext(ctx, db.Rebind(c.dialect, query), args...)
}

func (c conn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.q.QueryRowContext(ctx, db.Rebind(c.dialect, query), args...)
}

// Store implements secondary.Store.
type Store struct {
	db      *sql.DB
	dialect db.Dialect
	logger  *slog.Logger
	repos
}

var _ secondary.Store = (*Store)(nil)

// New wraps an open database handle.
func New(database *sql.DB, dialect db.Dialect, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:      database,
		dialect: dialect,
		logger:  logger,
		repos:   newRepos(conn{q: database, dialect: dialect}),
	}
}

// RunInTransaction runs fn inside one transaction. Only fn's tx-bound
// repositories may be used inside fn.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx secondary.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError("begin transaction", err)
	}

	if err := fn(newRepos(conn{q: sqlTx, dialect: s.dialect})); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			s.logger.WarnContext(ctx, "rollback failed", "error", rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return mapError("commit transaction", err)
	}
	return nil
}

// Notifications returns the notification repository.
func (s *Store) Notifications() secondary.NotificationRepository {
	return &NotificationRepository{c: conn{q: s.db, dialect: s.dialect}}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return ledgererr.StoreUnavailable(err, "ping")
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the handle for schema tooling.
func (s *Store) DB() *sql.DB {
	return s.db
}

// repos implements secondary.Repositories over one conn.
type repos struct {
	cases       *CaseRepository
	properties  *PropertyRepository
	custodyLogs *CustodyLogRepository
	disposals   *DisposalRepository
	audit       *AuditLedger
	users       *UserRepository
}

func newRepos(c conn) repos {
	return repos{
		cases:       &CaseRepository{c: c},
		properties:  &PropertyRepository{c: c},
		custodyLogs: &CustodyLogRepository{c: c},
		disposals:   &DisposalRepository{c: c},
		audit:       &AuditLedger{c: c},
		users:       &UserRepository{c: c},
	}
}

func (r repos) Cases() secondary.CaseRepository             { return r.cases }
func (r repos) Properties() secondary.PropertyRepository    { return r.properties }
func (r repos) CustodyLogs() secondary.CustodyLogRepository { return r.custodyLogs }
func (r repos) Disposals() secondary.DisposalRepository     { return r.disposals }
func (r repos) Audit() secondary.AuditLedger                { return r.audit }
func (r repos) Users() secondary.UserRepository             { return r.users }
