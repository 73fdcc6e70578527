package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// IsRecordNotFoundError checks if the error is a record not found error
func IsRecordNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKeyError checks if the error is a unique constraint violation
func IsDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// IsConnectivityError reports whether err means the store itself is
// unreachable, as opposed to a statement-level failure. SQLSTATE class 08
// covers connection exceptions; 57P01-57P03 cover server shutdown and
// refused connections.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.EOF) {
		return true
	}

	// context.DeadlineExceeded satisfies net.Error but is a per-call
	// deadline, not a dead store.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, "08") {
			return true
		}
		switch pgErr.Code {
		case "57P01", "57P02", "57P03":
			return true
		}
	}

	return false
}

// IsUndefinedObjectError reports whether err means a function, operator or
// relation the statement relies on does not exist. These are the failures
// a missing extension produces: 42883 undefined_function, 42704
// undefined_object, 42P01 undefined_table, 42703 undefined_column.
func IsUndefinedObjectError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "42883", "42704", "42P01", "42703":
		return true
	}
	return false
}

// IsTimeoutError reports whether err is a statement timeout or a context
// deadline hit during query execution.
func IsTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 57014 query_canceled, raised by statement_timeout.
		return pgErr.Code == "57014"
	}
	return false
}
