package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"bookmarkd/internal/domain/repositories"
	"bookmarkd/internal/repository/postgres/migrations"
)

// Open connects to databaseURL, applies pending migrations and returns the
// repository bundle. Closing the store closes the pool.
func Open(ctx context.Context, databaseURL string, logger *slog.Logger) (*repositories.Store, error) {
	pool, err := CreateConnectionPool(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return NewStore(pool, logger), nil
}

// NewStore wraps an existing, migrated pool
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *repositories.Store {
	return repositories.NewStore(
		NewFolderRepository(pool),
		NewBookmarkRepository(pool),
		NewFaviconRepository(pool),
		NewTransactionManager(pool, logger),
		func() error {
			pool.Close()
			return nil
		},
	)
}
