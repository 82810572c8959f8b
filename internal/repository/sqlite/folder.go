package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"bookmarkd/internal/domain"
	"bookmarkd/internal/domain/models"
	"bookmarkd/internal/domain/repositories"
)

const folderColumns = `id, name, parent_id, is_open, COALESCE(position, 0)`

// FolderRepository implements repositories.FolderRepository.
// parent_id is compared with IS so that a nil parent matches root-level rows.
type FolderRepository struct {
	db *sql.DB
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(db *sql.DB) repositories.FolderRepository {
	return &FolderRepository{db: db}
}

// Create creates a new folder
func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	res, err := getExecutor(ctx, r.db).ExecContext(ctx,
		`INSERT INTO folders (name, parent_id, is_open, position) VALUES (?, ?, ?, ?)`,
		folder.Name, folder.ParentID, folder.IsOpen, folder.Position,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("parent folder %d: %w", derefID(folder.ParentID), domain.ErrInvalidArgument)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create folder: %w", err)
	}
	folder.ID = id
	return nil
}

// GetByID retrieves a folder by ID
func (r *FolderRepository) GetByID(ctx context.Context, id int64) (*models.Folder, error) {
	var f models.Folder
	err := getExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE id = ?`, id,
	).Scan(&f.ID, &f.Name, &f.ParentID, &f.IsOpen, &f.Position)
	if err != nil {
		if isNoRowsError(err) {
			return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}
	return &f, nil
}

// ListAll returns every folder ordered by position
func (r *FolderRepository) ListAll(ctx context.Context) ([]models.Folder, error) {
	rows, err := getExecutor(ctx, r.db).QueryContext(ctx,
		`SELECT `+folderColumns+` FROM folders ORDER BY position, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		var f models.Folder
		if err := rows.Scan(&f.ID, &f.Name, &f.ParentID, &f.IsOpen, &f.Position); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}
	return folders, nil
}

// ListChildIDs returns the ids of a sibling group ordered by position
func (r *FolderRepository) ListChildIDs(ctx context.Context, parentID *int64) ([]int64, error) {
	rows, err := getExecutor(ctx, r.db).QueryContext(ctx,
		`SELECT id FROM folders WHERE parent_id IS ? ORDER BY position, id`, parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list child folders: %w", err)
	}
	return scanIDs(rows)
}

// CountChildren counts the folders of a sibling group
func (r *FolderRepository) CountChildren(ctx context.Context, parentID *int64) (int, error) {
	var count int
	err := getExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM folders WHERE parent_id IS ?`, parentID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count child folders: %w", err)
	}
	return count, nil
}

// UpdateName renames a folder
func (r *FolderRepository) UpdateName(ctx context.Context, id int64, name string) error {
	return r.update(ctx, id, `UPDATE folders SET name = ? WHERE id = ?`, name, id)
}

// UpdateOpen sets the UI expand flag
func (r *FolderRepository) UpdateOpen(ctx context.Context, id int64, isOpen bool) error {
	return r.update(ctx, id, `UPDATE folders SET is_open = ? WHERE id = ?`, isOpen, id)
}

// UpdatePlacement sets parent and position together
func (r *FolderRepository) UpdatePlacement(ctx context.Context, id int64, parentID *int64, position int) error {
	return r.update(ctx, id, `UPDATE folders SET parent_id = ?, position = ? WHERE id = ?`, parentID, position, id)
}

// SetPosition sets the position only
func (r *FolderRepository) SetPosition(ctx context.Context, id int64, position int) error {
	return r.update(ctx, id, `UPDATE folders SET position = ? WHERE id = ?`, position, id)
}

// CloseGap shifts every sibling after position one place up
func (r *FolderRepository) CloseGap(ctx context.Context, parentID *int64, position int) error {
	_, err := getExecutor(ctx, r.db).ExecContext(ctx,
		`UPDATE folders SET position = position - 1 WHERE parent_id IS ? AND position > ?`,
		parentID, position,
	)
	if err != nil {
		return fmt.Errorf("renumber folders: %w", err)
	}
	return nil
}

// Delete deletes a folder. Foreign keys cascade to the subtree.
func (r *FolderRepository) Delete(ctx context.Context, id int64) error {
	return r.update(ctx, id, `DELETE FROM folders WHERE id = ?`, id)
}

// LockContainer is a no-op: transactions begin IMMEDIATE and already hold the
// database write lock.
func (r *FolderRepository) LockContainer(ctx context.Context, parentID *int64) error {
	return nil
}

// LockTree is a no-op for the same reason as LockContainer
func (r *FolderRepository) LockTree(ctx context.Context) error {
	return nil
}

func (r *FolderRepository) update(ctx context.Context, id int64, query string, args ...any) error {
	res, err := getExecutor(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("folder %d references a missing folder: %w", id, domain.ErrInvalidArgument)
		}
		return fmt.Errorf("update folder: %w", err)
	}
	return requireAffected(res, "folder", id)
}

// scanIDs drains rows of a single id column
func scanIDs(rows *sql.Rows) ([]int64, error) {
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ids: %w", err)
	}
	return ids, nil
}

// requireAffected maps a zero-row write to domain.ErrNotFound
func requireAffected(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}

func derefID(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}
