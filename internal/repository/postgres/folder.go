package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookmarkd/internal/domain"
	"bookmarkd/internal/domain/models"
	"bookmarkd/internal/domain/repositories"
)

const folderColumns = `id, name, parent_id, is_open, position`

type PostgresFolderRepository struct {
	pool *pgxpool.Pool
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(pool *pgxpool.Pool) repositories.FolderRepository {
	return &PostgresFolderRepository{pool: pool}
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx,
		`INSERT INTO folders (name, parent_id, is_open, position) VALUES ($1, $2, $3, $4) RETURNING id`,
		folder.Name, folder.ParentID, folder.IsOpen, folder.Position,
	).Scan(&folder.ID)
	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("parent folder %d: %w", derefID(folder.ParentID), domain.ErrInvalidArgument)
		}
		return fmt.Errorf("create folder: %w", err)
	}
	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id int64) (*models.Folder, error) {
	var f models.Folder
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE id = $1`, id,
	).Scan(&f.ID, &f.Name, &f.ParentID, &f.IsOpen, &f.Position)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}
	return &f, nil
}

// ListAll returns every folder ordered by position
func (r *PostgresFolderRepository) ListAll(ctx context.Context) ([]models.Folder, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, `SELECT `+folderColumns+` FROM folders ORDER BY position, id`)
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
func (r *PostgresFolderRepository) ListChildIDs(ctx context.Context, parentID *int64) ([]int64, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx,
		`SELECT id FROM folders WHERE parent_id IS NOT DISTINCT FROM $1 ORDER BY position, id`, parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list child folders: %w", err)
	}
	return scanIDs(rows)
}

// CountChildren counts the folders of a sibling group
func (r *PostgresFolderRepository) CountChildren(ctx context.Context, parentID *int64) (int, error) {
	var count int
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx,
		`SELECT COUNT(*) FROM folders WHERE parent_id IS NOT DISTINCT FROM $1`, parentID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count child folders: %w", err)
	}
	return count, nil
}

// UpdateName renames a folder
func (r *PostgresFolderRepository) UpdateName(ctx context.Context, id int64, name string) error {
	return r.update(ctx, id, `UPDATE folders SET name = $1 WHERE id = $2`, name, id)
}

// UpdateOpen sets the UI expand flag
func (r *PostgresFolderRepository) UpdateOpen(ctx context.Context, id int64, isOpen bool) error {
	return r.update(ctx, id, `UPDATE folders SET is_open = $1 WHERE id = $2`, isOpen, id)
}

// UpdatePlacement sets parent and position together
func (r *PostgresFolderRepository) UpdatePlacement(ctx context.Context, id int64, parentID *int64, position int) error {
	return r.update(ctx, id, `UPDATE folders SET parent_id = $1, position = $2 WHERE id = $3`, parentID, position, id)
}

// SetPosition sets the position only
func (r *PostgresFolderRepository) SetPosition(ctx context.Context, id int64, position int) error {
	return r.update(ctx, id, `UPDATE folders SET position = $1 WHERE id = $2`, position, id)
}

// CloseGap shifts every sibling after position one place up
func (r *PostgresFolderRepository) CloseGap(ctx context.Context, parentID *int64, position int) error {
	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx,
		`UPDATE folders SET position = position - 1 WHERE parent_id IS NOT DISTINCT FROM $1 AND position > $2`,
		parentID, position,
	)
	if err != nil {
		return fmt.Errorf("renumber folders: %w", err)
	}
	return nil
}

// Delete deletes a folder. Foreign keys cascade to the subtree.
func (r *PostgresFolderRepository) Delete(ctx context.Context, id int64) error {
	return r.update(ctx, id, `DELETE FROM folders WHERE id = $1`, id)
}

// LockContainer takes a transaction-scoped advisory lock on the sibling group
func (r *PostgresFolderRepository) LockContainer(ctx context.Context, parentID *int64) error {
	key := "folders:root"
	if parentID != nil {
		key = fmt.Sprintf("folders:%d", *parentID)
	}
	return lockKey(ctx, GetExecutor(ctx, r.pool), key)
}

// LockTree takes the advisory lock shared by all folder moves
func (r *PostgresFolderRepository) LockTree(ctx context.Context) error {
	return lockKey(ctx, GetExecutor(ctx, r.pool), "folders:tree")
}

func (r *PostgresFolderRepository) update(ctx context.Context, id int64, query string, args ...any) error {
	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, args...)
	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("folder %d references a missing folder: %w", id, domain.ErrInvalidArgument)
		}
		return fmt.Errorf("update folder: %w", err)
	}
	return requireAffected(tag, "folder", id)
}

// lockKey blocks until the advisory lock for key is held; it is released at commit or rollback
func lockKey(ctx context.Context, executor DBTX, key string) error {
	if _, err := executor.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
		return fmt.Errorf("lock %s: %w", key, err)
	}
	return nil
}

// scanIDs drains rows of a single id column
func scanIDs(rows pgx.Rows) ([]int64, error) {
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan ids: %w", err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// requireAffected maps a zero-row write to domain.ErrNotFound
func requireAffected(tag pgconn.CommandTag, kind string, id int64) error {
	if tag.RowsAffected() == 0 {
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
