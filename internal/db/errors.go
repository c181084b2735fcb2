package db

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// PersistenceError reports a failed statement. Statement holds the text that
// failed so it can be logged; it must not be shown to remote callers.
type PersistenceError struct {
	Statement string
	Err       error
}

func (e *PersistenceError) Error() string {
	return "persistence: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsConstraint reports whether err was caused by a constraint violation
// (UNIQUE, NOT NULL, CHECK, FOREIGN KEY).
func IsConstraint(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.Code == sqlite3.ErrConstraint
}

// IsUniqueViolation reports whether err was caused by a UNIQUE constraint.
func IsUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}
