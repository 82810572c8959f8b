package services

import (
	"context"

	"bookmarkd/internal/domain/models"
)

// TreeStore owns the ordered folder/bookmark hierarchy. Every operation runs in
// one transaction and leaves each sibling group with positions {0..n-1}.
type TreeStore interface {
	// CreateFolder appends a folder to its parent's children (root when ParentID is nil)
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)

	// CreateBookmark appends a bookmark to a folder and resolves its favicon
	CreateBookmark(ctx context.Context, req *CreateBookmarkRequest) (*models.Bookmark, error)

	// RenameItem changes the name of a folder or bookmark
	RenameItem(ctx context.Context, itemType models.ItemType, id int64, name string) error

	// UpdateBookmarkURL re-points a bookmark and replaces its favicon
	UpdateBookmarkURL(ctx context.Context, id int64, url string) error

	// MoveItem reparents an item, appending it at the end of the destination.
	// For folders a nil destination means root.
	MoveItem(ctx context.Context, itemType models.ItemType, id int64, dest *int64) error

	// ReorderSiblings assigns position = index for the full id set of one sibling group
	ReorderSiblings(ctx context.Context, itemType models.ItemType, containerID *int64, ids []int64) error

	// ReorderItems is ReorderSiblings with the container taken from the first id
	ReorderItems(ctx context.Context, itemType models.ItemType, ids []int64) error

	// SetFolderOpen sets the UI expand flag of a folder
	SetFolderOpen(ctx context.Context, id int64, isOpen bool) error

	// UpdateItem applies a partial update (rename, url, move, open flag) atomically
	UpdateItem(ctx context.Context, req *UpdateItemRequest) error

	// DeleteItem removes an item; folders cascade to their whole subtree
	DeleteItem(ctx context.Context, itemType models.ItemType, id int64) error

	// FetchTree returns all folders and bookmarks ordered by position
	FetchTree(ctx context.Context) (*models.TreeData, error)

	// GetFavicon returns the stored favicon of a bookmark
	GetFavicon(ctx context.Context, bookmarkID int64) (*models.Favicon, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name     string
	ParentID *int64 // nil (or 0) for root
}

// CreateBookmarkRequest represents a bookmark creation request
type CreateBookmarkRequest struct {
	Name     string
	URL      string
	FolderID int64
}

// UpdateItemRequest represents a partial update. Nil fields are left unchanged.
// ParentID applies to folders (0 = root), URL and FolderID to bookmarks.
type UpdateItemRequest struct {
	ItemType models.ItemType
	ID       int64
	Name     *string
	URL      *string
	ParentID *int64
	FolderID *int64
	IsOpen   *bool
}
