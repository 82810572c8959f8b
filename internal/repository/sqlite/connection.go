package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const memoryPath = ":memory:"

// dbtx is implemented by both *sql.DB and *sql.Tx
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// OpenConnection opens and configures a SQLite database.
// path can be a file path or ":memory:".
//
// Connection parameters:
//   - _foreign_keys=on: cascade deletes (folders → folders/bookmarks → favicons) are
//     enforced by SQLite; the setting is per connection, hence the DSN, not a PRAGMA.
//   - _txlock=immediate: every transaction takes the write lock at BEGIN, so the
//     count-then-insert position assignment cannot interleave with another writer.
//   - _busy_timeout: writers wait for the lock instead of failing with SQLITE_BUSY.
func OpenConnection(path string) (*sql.DB, error) {
	params := []string{"_foreign_keys=on", "_txlock=immediate", "_busy_timeout=5000"}
	if path != memoryPath {
		params = append(params, "_journal_mode=WAL")
	}
	dsn := path + "?" + strings.Join(params, "&")

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if path == memoryPath {
		// Each connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// txKey is the context key for the active transaction
type txKey struct{}

// getExecutor returns the transaction stored in ctx, or db when there is none.
// This lets repositories participate in transactions opened by TransactionManager.
func getExecutor(ctx context.Context, db *sql.DB) dbtx {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok && tx != nil {
		return tx
	}
	return db
}
