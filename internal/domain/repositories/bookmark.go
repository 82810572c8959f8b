package repositories

import (
	"context"

	"bookmarkd/internal/domain/models"
)

// BookmarkRepository defines data access operations for bookmarks
type BookmarkRepository interface {
	// Create inserts a bookmark and sets bookmark.ID
	Create(ctx context.Context, bookmark *models.Bookmark) error

	// GetByID retrieves a bookmark by ID (domain.ErrNotFound if missing)
	GetByID(ctx context.Context, id int64) (*models.Bookmark, error)

	// ListAll returns every bookmark ordered by position, then id
	ListAll(ctx context.Context) ([]models.Bookmark, error)

	// ListIDsByFolder returns the ids of a folder's bookmarks ordered by position
	ListIDsByFolder(ctx context.Context, folderID int64) ([]int64, error)

	// CountByFolder counts the bookmarks of a folder
	CountByFolder(ctx context.Context, folderID int64) (int, error)

	// UpdateName renames a bookmark
	UpdateName(ctx context.Context, id int64, name string) error

	// UpdateURL re-points a bookmark
	UpdateURL(ctx context.Context, id int64, url string) error

	// UpdatePlacement sets folder and position together
	UpdatePlacement(ctx context.Context, id, folderID int64, position int) error

	// SetPosition sets the position only
	SetPosition(ctx context.Context, id int64, position int) error

	// CloseGap decrements the position of every bookmark in folderID ranked after position
	CloseGap(ctx context.Context, folderID int64, position int) error

	// Delete removes a bookmark; the store cascades to its favicon
	Delete(ctx context.Context, id int64) error

	// LockContainer serializes position assignment within a folder's bookmarks
	LockContainer(ctx context.Context, folderID int64) error
}
