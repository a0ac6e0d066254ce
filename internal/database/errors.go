package database

import (
	"errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrNotFound is returned when a lookup, update or delete matches no row.
var ErrNotFound = errors.New("record not found")

// ConstraintError wraps an integrity violation reported by the store, such
// as a NOT NULL or foreign key failure. Its message is the store's message.
type ConstraintError struct {
	Err error
}

func (e *ConstraintError) Error() string { return e.Err.Error() }

func (e *ConstraintError) Unwrap() error { return e.Err }

func classify(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return &ConstraintError{Err: err}
	}
	return err
}
