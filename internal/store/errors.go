package store

import (
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrNotFound is returned when a row does not exist or is not visible to
// the requesting owner.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert would violate a uniqueness constraint.
var ErrConflict = errors.New("conflict")

// ConflictError names the field whose uniqueness was violated. It matches
// ErrConflict under errors.Is.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return e.Field + " already exists"
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// uniqueViolation reports whether err is a SQLite UNIQUE constraint failure
// and, if so, which column of table it hit.
func uniqueViolation(err error, table string) (string, bool) {
	var serr *sqlite.Error
	if !errors.As(err, &serr) || serr.Code() != sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return "", false
	}

	// Message format: "UNIQUE constraint failed: users.email".
	msg := serr.Error()
	prefix := table + "."
	if i := strings.Index(msg, prefix); i >= 0 {
		column := msg[i+len(prefix):]
		if end := strings.IndexAny(column, " ,)"); end >= 0 {
			column = column[:end]
		}
		return column, true
	}
	return "", true
}
