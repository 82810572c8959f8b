package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"bookmarkd/internal/domain"
	"bookmarkd/internal/domain/models"
	"bookmarkd/internal/domain/repositories"
)

// FaviconRepository implements repositories.FaviconRepository
type FaviconRepository struct {
	db *sql.DB
}

// NewFaviconRepository creates a new favicon repository
func NewFaviconRepository(db *sql.DB) repositories.FaviconRepository {
	return &FaviconRepository{db: db}
}

// Upsert inserts or replaces a bookmark's favicon (unique index on bookmark_id)
func (r *FaviconRepository) Upsert(ctx context.Context, favicon *models.Favicon) error {
	_, err := getExecutor(ctx, r.db).ExecContext(ctx, `
		INSERT INTO favicons (content_type, favicon, bookmark_id) VALUES (?, ?, ?)
		ON CONFLICT(bookmark_id) DO UPDATE SET
			content_type = excluded.content_type,
			favicon = excluded.favicon
	`, favicon.ContentType, favicon.Data, favicon.BookmarkID)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("bookmark %d: %w", favicon.BookmarkID, domain.ErrNotFound)
		}
		return fmt.Errorf("upsert favicon: %w", err)
	}
	return nil
}

// GetByBookmarkID retrieves a bookmark's favicon
func (r *FaviconRepository) GetByBookmarkID(ctx context.Context, bookmarkID int64) (*models.Favicon, error) {
	f := models.Favicon{BookmarkID: bookmarkID}
	err := getExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT content_type, favicon FROM favicons WHERE bookmark_id = ? LIMIT 1`, bookmarkID,
	).Scan(&f.ContentType, &f.Data)
	if err != nil {
		if isNoRowsError(err) {
			return nil, fmt.Errorf("favicon for bookmark %d: %w", bookmarkID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get favicon: %w", err)
	}
	return &f, nil
}

// DeleteByBookmarkID removes a bookmark's favicon
func (r *FaviconRepository) DeleteByBookmarkID(ctx context.Context, bookmarkID int64) error {
	_, err := getExecutor(ctx, r.db).ExecContext(ctx,
		`DELETE FROM favicons WHERE bookmark_id = ?`, bookmarkID,
	)
	if err != nil {
		return fmt.Errorf("delete favicon: %w", err)
	}
	return nil
}
