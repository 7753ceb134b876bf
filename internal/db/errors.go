package db

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// IsForeignKeyViolation reports whether err is a SQLite foreign key constraint failure.
func IsForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}
