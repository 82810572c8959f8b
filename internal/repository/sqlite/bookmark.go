package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"bookmarkd/internal/domain"
	"bookmarkd/internal/domain/models"
	"bookmarkd/internal/domain/repositories"
)

const bookmarkColumns = `id, name, url, folder_id, COALESCE(position, 0)`

// BookmarkRepository implements repositories.BookmarkRepository
type BookmarkRepository struct {
	db *sql.DB
}

// NewBookmarkRepository creates a new bookmark repository
func NewBookmarkRepository(db *sql.DB) repositories.BookmarkRepository {
	return &BookmarkRepository{db: db}
}

// Create creates a new bookmark
func (r *BookmarkRepository) Create(ctx context.Context, bookmark *models.Bookmark) error {
	res, err := getExecutor(ctx, r.db).ExecContext(ctx,
		`INSERT INTO bookmarks (name, url, folder_id, position) VALUES (?, ?, ?, ?)`,
		bookmark.Name, bookmark.URL, bookmark.FolderID, bookmark.Position,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("folder %d: %w", bookmark.FolderID, domain.ErrInvalidArgument)
		}
		return fmt.Errorf("create bookmark: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create bookmark: %w", err)
	}
	bookmark.ID = id
	return nil
}

// GetByID retrieves a bookmark by ID
func (r *BookmarkRepository) GetByID(ctx context.Context, id int64) (*models.Bookmark, error) {
	var b models.Bookmark
	err := getExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+bookmarkColumns+` FROM bookmarks WHERE id = ?`, id,
	).Scan(&b.ID, &b.Name, &b.URL, &b.FolderID, &b.Position)
	if err != nil {
		if isNoRowsError(err) {
			return nil, fmt.Errorf("bookmark %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get bookmark: %w", err)
	}
	return &b, nil
}

// ListAll returns every bookmark ordered by position
func (r *BookmarkRepository) ListAll(ctx context.Context) ([]models.Bookmark, error) {
	rows, err := getExecutor(ctx, r.db).QueryContext(ctx,
		`SELECT `+bookmarkColumns+` FROM bookmarks ORDER BY position, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := []models.Bookmark{}
	for rows.Next() {
		var b models.Bookmark
		if err := rows.Scan(&b.ID, &b.Name, &b.URL, &b.FolderID, &b.Position); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookmarks: %w", err)
	}
	return bookmarks, nil
}

// ListIDsByFolder returns the ids of a folder's bookmarks ordered by position
func (r *BookmarkRepository) ListIDsByFolder(ctx context.Context, folderID int64) ([]int64, error) {
	rows, err := getExecutor(ctx, r.db).QueryContext(ctx,
		`SELECT id FROM bookmarks WHERE folder_id = ? ORDER BY position, id`, folderID,
	)
	if err != nil {
		return nil, fmt.Errorf("list folder bookmarks: %w", err)
	}
	return scanIDs(rows)
}

// CountByFolder counts the bookmarks of a folder
func (r *BookmarkRepository) CountByFolder(ctx context.Context, folderID int64) (int, error) {
	var count int
	err := getExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookmarks WHERE folder_id = ?`, folderID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count folder bookmarks: %w", err)
	}
	return count, nil
}

// UpdateName renames a bookmark
func (r *BookmarkRepository) UpdateName(ctx context.Context, id int64, name string) error {
	return r.update(ctx, id, `UPDATE bookmarks SET name = ? WHERE id = ?`, name, id)
}

// UpdateURL re-points a bookmark
func (r *BookmarkRepository) UpdateURL(ctx context.Context, id int64, url string) error {
	return r.update(ctx, id, `UPDATE bookmarks SET url = ? WHERE id = ?`, url, id)
}

// UpdatePlacement sets folder and position together
func (r *BookmarkRepository) UpdatePlacement(ctx context.Context, id, folderID int64, position int) error {
	return r.update(ctx, id, `UPDATE bookmarks SET folder_id = ?, position = ? WHERE id = ?`, folderID, position, id)
}

// SetPosition sets the position only
func (r *BookmarkRepository) SetPosition(ctx context.Context, id int64, position int) error {
	return r.update(ctx, id, `UPDATE bookmarks SET position = ? WHERE id = ?`, position, id)
}

// CloseGap shifts every bookmark of folderID after position one place up
func (r *BookmarkRepository) CloseGap(ctx context.Context, folderID int64, position int) error {
	_, err := getExecutor(ctx, r.db).ExecContext(ctx,
		`UPDATE bookmarks SET position = position - 1 WHERE folder_id = ? AND position > ?`,
		folderID, position,
	)
	if err != nil {
		return fmt.Errorf("renumber bookmarks: %w", err)
	}
	return nil
}

// Delete deletes a bookmark. Foreign keys cascade to its favicon.
func (r *BookmarkRepository) Delete(ctx context.Context, id int64) error {
	return r.update(ctx, id, `DELETE FROM bookmarks WHERE id = ?`, id)
}

// LockContainer is a no-op, see FolderRepository.LockContainer
func (r *BookmarkRepository) LockContainer(ctx context.Context, folderID int64) error {
	return nil
}

func (r *BookmarkRepository) update(ctx context.Context, id int64, query string, args ...any) error {
	res, err := getExecutor(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("bookmark %d references a missing folder: %w", id, domain.ErrInvalidArgument)
		}
		return fmt.Errorf("update bookmark: %w", err)
	}
	return requireAffected(res, "bookmark", id)
}
