package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a lookup or a targeted update/delete matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique index rejects an insert or update.
	ErrDuplicate = errors.New("duplicate record")
	// ErrMissingReference is returned when a foreign key points to a missing row.
	ErrMissingReference = errors.New("referenced record does not exist")
)

// mapError translates driver errors into the package sentinels, keeping the cause.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	switch constraintCode(err) {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return fmt.Errorf("%s: %w: %v", op, ErrDuplicate, err)
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return fmt.Errorf("%s: %w: %v", op, ErrMissingReference, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func constraintCode(err error) int {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() != sqlite3.SQLITE_CONSTRAINT {
		return se.Code()
	}
	// Primary result codes do not say which constraint failed.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return sqlite3.SQLITE_CONSTRAINT_UNIQUE
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return 0
}
