package sqlite

import (
	"database/sql"
	"errors"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// isNoRowsError checks if error is a "no rows" error
func isNoRowsError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isForeignKeyError checks if error is a foreign key violation
func isForeignKeyError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}
