// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting driver errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an update cannot be performed because of
// the current state of the row, such as confirming payment on a booking
// that is already cancelled.
var ErrConflict = errors.New("conflict")

// ErrDuplicateReference is returned when an insert collides with an
// existing booking_reference.  Callers regenerate and retry.
var ErrDuplicateReference = errors.New("duplicate booking reference")

// ErrEmailExists is returned when a user email is already registered.
var ErrEmailExists = errors.New("email already exists")

// isUniqueViolation reports whether err is a unique-key violation on an
// index or column whose name contains column (MySQL 1062, SQLite
// SQLITE_CONSTRAINT_UNIQUE).  An empty column matches any unique key.
func isUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062 && strings.Contains(myErr.Message, column)
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return (code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY) &&
			strings.Contains(liteErr.Error(), column)
	}
	return false
}
