package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"bookmarkd/internal/domain"
	"bookmarkd/internal/domain/models"
	"bookmarkd/internal/domain/repositories"
)

const bookmarkColumns = `id, name, url, folder_id, position`

type PostgresBookmarkRepository struct {
	pool *pgxpool.Pool
}

// NewBookmarkRepository creates a new bookmark repository
func NewBookmarkRepository(pool *pgxpool.Pool) repositories.BookmarkRepository {
	return &PostgresBookmarkRepository{pool: pool}
}

// Create creates a new bookmark
func (r *PostgresBookmarkRepository) Create(ctx context.Context, bookmark *models.Bookmark) error {
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx,
		`INSERT INTO bookmarks (name, url, folder_id, position) VALUES ($1, $2, $3, $4) RETURNING id`,
		bookmark.Name, bookmark.URL, bookmark.FolderID, bookmark.Position,
	).Scan(&bookmark.ID)
	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("folder %d: %w", bookmark.FolderID, domain.ErrInvalidArgument)
		}
		return fmt.Errorf("create bookmark: %w", err)
	}
	return nil
}

// GetByID retrieves a bookmark by ID
func (r *PostgresBookmarkRepository) GetByID(ctx context.Context, id int64) (*models.Bookmark, error) {
	var b models.Bookmark
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx,
		`SELECT `+bookmarkColumns+` FROM bookmarks WHERE id = $1`, id,
	).Scan(&b.ID, &b.Name, &b.URL, &b.FolderID, &b.Position)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("bookmark %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get bookmark: %w", err)
	}
	return &b, nil
}

// ListAll returns every bookmark ordered by position
func (r *PostgresBookmarkRepository) ListAll(ctx context.Context) ([]models.Bookmark, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, `SELECT `+bookmarkColumns+` FROM bookmarks ORDER BY position, id`)
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
func (r *PostgresBookmarkRepository) ListIDsByFolder(ctx context.Context, folderID int64) ([]int64, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx,
		`SELECT id FROM bookmarks WHERE folder_id = $1 ORDER BY position, id`, folderID,
	)
	if err != nil {
		return nil, fmt.Errorf("list folder bookmarks: %w", err)
	}
	return scanIDs(rows)
}

// CountByFolder counts the bookmarks of a folder
func (r *PostgresBookmarkRepository) CountByFolder(ctx context.Context, folderID int64) (int, error) {
	var count int
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookmarks WHERE folder_id = $1`, folderID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count folder bookmarks: %w", err)
	}
	return count, nil
}

// UpdateName renames a bookmark
func (r *PostgresBookmarkRepository) UpdateName(ctx context.Context, id int64, name string) error {
	return r.update(ctx, id, `UPDATE bookmarks SET name = $1 WHERE id = $2`, name, id)
}

// UpdateURL re-points a bookmark
func (r *PostgresBookmarkRepository) UpdateURL(ctx context.Context, id int64, url string) error {
	return r.update(ctx, id, `UPDATE bookmarks SET url = $1 WHERE id = $2`, url, id)
}

// UpdatePlacement sets folder and position together
func (r *PostgresBookmarkRepository) UpdatePlacement(ctx context.Context, id, folderID int64, position int) error {
	return r.update(ctx, id, `UPDATE bookmarks SET folder_id = $1, position = $2 WHERE id = $3`, folderID, position, id)
}

// SetPosition sets the position only
func (r *PostgresBookmarkRepository) SetPosition(ctx context.Context, id int64, position int) error {
	return r.update(ctx, id, `UPDATE bookmarks SET position = $1 WHERE id = $2`, position, id)
}

// CloseGap shifts every bookmark of folderID after position one place up
func (r *PostgresBookmarkRepository) CloseGap(ctx context.Context, folderID int64, position int) error {
	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx,
		`UPDATE bookmarks SET position = position - 1 WHERE folder_id = $1 AND position > $2`,
		folderID, position,
	)
	if err != nil {
		return fmt.Errorf("renumber bookmarks: %w", err)
	}
	return nil
}

// Delete deletes a bookmark. Foreign keys cascade to its favicon.
func (r *PostgresBookmarkRepository) Delete(ctx context.Context, id int64) error {
	return r.update(ctx, id, `DELETE FROM bookmarks WHERE id = $1`, id)
}

// LockContainer takes a transaction-scoped advisory lock on the folder's bookmark group
func (r *PostgresBookmarkRepository) LockContainer(ctx context.Context, folderID int64) error {
	return lockKey(ctx, GetExecutor(ctx, r.pool), fmt.Sprintf("bookmarks:%d", folderID))
}

func (r *PostgresBookmarkRepository) update(ctx context.Context, id int64, query string, args ...any) error {
	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, args...)
	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("bookmark %d references a missing folder: %w", id, domain.ErrInvalidArgument)
		}
		return fmt.Errorf("update bookmark: %w", err)
	}
	return requireAffected(tag, "bookmark", id)
}
