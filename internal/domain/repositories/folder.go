package repositories

import (
	"context"

	"bookmarkd/internal/domain/models"
)

// FolderRepository defines data access operations for folders.
// A nil parentID addresses the root-level sibling group.
type FolderRepository interface {
	// Create inserts a folder and sets folder.ID
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID (domain.ErrNotFound if missing)
	GetByID(ctx context.Context, id int64) (*models.Folder, error)

	// ListAll returns every folder ordered by position, then id
	ListAll(ctx context.Context) ([]models.Folder, error)

	// ListChildIDs returns the ids of a sibling group ordered by position
	ListChildIDs(ctx context.Context, parentID *int64) ([]int64, error)

	// CountChildren counts the folders of a sibling group
	CountChildren(ctx context.Context, parentID *int64) (int, error)

	// UpdateName renames a folder
	UpdateName(ctx context.Context, id int64, name string) error

	// UpdateOpen sets the UI expand flag
	UpdateOpen(ctx context.Context, id int64, isOpen bool) error

	// UpdatePlacement sets parent and position together
	UpdatePlacement(ctx context.Context, id int64, parentID *int64, position int) error

	// SetPosition sets the position only
	SetPosition(ctx context.Context, id int64, position int) error

	// CloseGap decrements the position of every sibling ranked after position
	CloseGap(ctx context.Context, parentID *int64, position int) error

	// Delete removes a folder; the store cascades to descendants, bookmarks and favicons
	Delete(ctx context.Context, id int64) error

	// LockContainer serializes position assignment for a sibling group until the
	// surrounding transaction ends
	LockContainer(ctx context.Context, parentID *int64) error

	// LockTree serializes every change of folder parentage until the surrounding
	// transaction ends. Taken before any LockContainer call.
	LockTree(ctx context.Context) error
}
