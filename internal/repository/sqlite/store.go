package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"

	"bookmarkd/internal/domain/repositories"
	"bookmarkd/internal/repository/sqlite/migrations"
)

// Open connects to the database at path, applies pending migrations and
// returns the repository bundle. Closing the store closes the connection.
func Open(path string, logger *slog.Logger) (*repositories.Store, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return NewStore(db, logger), nil
}

// NewStore wraps an existing, migrated connection
func NewStore(db *sql.DB, logger *slog.Logger) *repositories.Store {
	return repositories.NewStore(
		NewFolderRepository(db),
		NewBookmarkRepository(db),
		NewFaviconRepository(db),
		NewTransactionManager(db, logger),
		db.Close,
	)
}
