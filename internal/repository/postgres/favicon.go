package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"bookmarkd/internal/domain"
	"bookmarkd/internal/domain/models"
	"bookmarkd/internal/domain/repositories"
)

type PostgresFaviconRepository struct {
	pool *pgxpool.Pool
}

// NewFaviconRepository creates a new favicon repository
func NewFaviconRepository(pool *pgxpool.Pool) repositories.FaviconRepository {
	return &PostgresFaviconRepository{pool: pool}
}

// Upsert inserts or replaces a bookmark's favicon
func (r *PostgresFaviconRepository) Upsert(ctx context.Context, favicon *models.Favicon) error {
	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, `
		INSERT INTO favicons (content_type, favicon, bookmark_id) VALUES ($1, $2, $3)
		ON CONFLICT (bookmark_id) DO UPDATE SET
			content_type = EXCLUDED.content_type,
			favicon = EXCLUDED.favicon
	`, favicon.ContentType, favicon.Data, favicon.BookmarkID)
	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("bookmark %d: %w", favicon.BookmarkID, domain.ErrNotFound)
		}
		return fmt.Errorf("upsert favicon: %w", err)
	}
	return nil
}

// GetByBookmarkID retrieves a bookmark's favicon
func (r *PostgresFaviconRepository) GetByBookmarkID(ctx context.Context, bookmarkID int64) (*models.Favicon, error) {
	f := models.Favicon{BookmarkID: bookmarkID}
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx,
		`SELECT content_type, favicon FROM favicons WHERE bookmark_id = $1`, bookmarkID,
	).Scan(&f.ContentType, &f.Data)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("favicon for bookmark %d: %w", bookmarkID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get favicon: %w", err)
	}
	return &f, nil
}

// DeleteByBookmarkID removes a bookmark's favicon
func (r *PostgresFaviconRepository) DeleteByBookmarkID(ctx context.Context, bookmarkID int64) error {
	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, `DELETE FROM favicons WHERE bookmark_id = $1`, bookmarkID); err != nil {
		return fmt.Errorf("delete favicon: %w", err)
	}
	return nil
}
