package sqlstore

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/example/malkhana/internal/ledgererr"
)

// appendOnlyMarker is raised by the audit_logs triggers on both dialects.
const appendOnlyMarker = "append-only"

// isUniqueViolation reports whether err is a unique or primary key violation.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isAppendOnlyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), appendOnlyMarker)
}

// mapError translates a driver error into a ledger error. Ledger errors pass
// through unchanged; anything unrecognised is STORE_UNAVAILABLE.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var le *ledgererr.Error
	if errors.As(err, &le) {
		return err
	}
	if isAppendOnlyViolation(err) {
		return ledgererr.Wrap(ledgererr.CodeImmutableRecord, err, "audit entries cannot be modified (%s)", op)
	}
	return ledgererr.StoreUnavailable(err, op)
}
