package repositories

import (
	"context"

	"bookmarkd/internal/domain/models"
)

// FaviconRepository defines data access operations for stored favicons
type FaviconRepository interface {
	// Upsert inserts or replaces the favicon of favicon.BookmarkID
	Upsert(ctx context.Context, favicon *models.Favicon) error

	// GetByBookmarkID retrieves a bookmark's favicon (domain.ErrNotFound if none)
	GetByBookmarkID(ctx context.Context, bookmarkID int64) (*models.Favicon, error)

	// DeleteByBookmarkID removes a bookmark's favicon; missing rows are not an error
	DeleteByBookmarkID(ctx context.Context, bookmarkID int64) error
}
