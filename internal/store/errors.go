package store

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"afterschool/internal/apperr"
)

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// RetryMessage is returned when a transaction lost a write race.
const RetryMessage = "concurrent update, please retry"

// IsUniqueViolation reports whether err is a unique or primary key violation
// from either supported driver.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			// connections without extended result codes
			return strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
		}
	}
	return false
}

// IsSerializationFailure reports whether Postgres aborted the transaction
// because a concurrent one won.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

// Classify turns err into an *apperr.Error. Classified errors pass through,
// unique violations become Conflict with conflictMsg, serialization failures
// Conflict with RetryMessage, the rest Storage.
func Classify(err error, conflictMsg string) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if IsUniqueViolation(err) {
		return &apperr.Error{Kind: apperr.Conflict, Message: conflictMsg, Err: err}
	}
	if IsSerializationFailure(err) {
		return &apperr.Error{Kind: apperr.Conflict, Message: RetryMessage, Err: err}
	}
	return apperr.StorageErr(err)
}

// NoRows reports whether err is sql.ErrNoRows.
func NoRows(err error) bool { return errors.Is(err, sql.ErrNoRows) }
