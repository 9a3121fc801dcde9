// Package repositories implements the stores on top of the SQLite database.
package repositories

import (
	"github.com/mattn/go-sqlite3"
	"github.com/myrjola/ikigai/internal/errors"
)

// isConstraintViolation reports whether err is a unique or primary key violation.
func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
