package store

import (
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// IsConstraintErr reports whether err is a SQLite primary-key or unique
// constraint violation. The username and token columns rely on this as the
// hard uniqueness guarantee behind any application-level pre-check.
func IsConstraintErr(err error) bool {
	if err == nil {
		return false
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
		return false
	}

	// Other drivers (the cgo driver used in tests) surface their own error
	// types; fall back on the stable SQLite message text.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
