package bookmarks

import (
	"context"
	"fmt"
	"strings"

	"bookmarkd/internal/domain"
	"bookmarkd/internal/domain/models"
	"bookmarkd/internal/domain/services"
)

// CreateFolder appends a new, closed folder to its parent's children
func (s *Service) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	in := *req
	in.Name = strings.TrimSpace(in.Name)
	in.ParentID = rootIfZero(in.ParentID)

	if err := validateCreateFolder(&in); err != nil {
		return nil, err
	}

	folder := &models.Folder{
		Name:     in.Name,
		ParentID: in.ParentID,
	}

	err := s.mutate(ctx, func(ctx context.Context) error {
		if folder.ParentID != nil {
			if _, err := s.requireFolder(ctx, *folder.ParentID); err != nil {
				return err
			}
		}

		if err := s.folderRepo.LockContainer(ctx, folder.ParentID); err != nil {
			return err
		}
		count, err := s.folderRepo.CountChildren(ctx, folder.ParentID)
		if err != nil {
			return err
		}
		folder.Position = count

		return s.folderRepo.Create(ctx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
		"position", folder.Position,
	)

	return folder, nil
}

// SetFolderOpen persists the UI expand state of a folder
func (s *Service) SetFolderOpen(ctx context.Context, id int64, isOpen bool) error {
	return s.mutate(ctx, func(ctx context.Context) error {
		return s.folderRepo.UpdateOpen(ctx, id, isOpen)
	})
}

// moveFolder reparents a folder to the end of dest (nil = root) and closes the gap it leaves.
// Must run inside a transaction.
func (s *Service) moveFolder(ctx context.Context, id int64, dest *int64) error {
	// Parentage only changes under the tree lock, so the ancestry walk and
	// the parent read below stay valid until commit
	if err := s.folderRepo.LockTree(ctx); err != nil {
		return err
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if dest != nil {
		if _, err := s.requireFolder(ctx, *dest); err != nil {
			return err
		}
		if err := s.validateNoCircularReference(ctx, id, *dest); err != nil {
			return err
		}
	}

	if err := s.lockFolderGroups(ctx, folder.ParentID, dest); err != nil {
		return err
	}
	// Reload under the group locks: siblings may have shifted the position
	folder, err = s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.folderRepo.CloseGap(ctx, folder.ParentID, folder.Position); err != nil {
		return err
	}

	count, err := s.folderRepo.CountChildren(ctx, dest)
	if err != nil {
		return err
	}
	if sameParent(folder.ParentID, dest) {
		count-- // the folder itself is still counted
	}

	if err := s.folderRepo.UpdatePlacement(ctx, id, dest, count); err != nil {
		return err
	}

	s.logger.Debug("folder moved",
		"id", id,
		"from_parent_id", folder.ParentID,
		"to_parent_id", dest,
		"position", count,
	)
	return nil
}

// validateNoCircularReference rejects moving a folder into itself or one of its descendants
func (s *Service) validateNoCircularReference(ctx context.Context, folderID, newParentID int64) error {
	if folderID == newParentID {
		return fmt.Errorf("%w: cannot move folder into itself", domain.ErrInvalidArgument)
	}

	// Walk up from the new parent; visited guards against a tree that is already corrupt
	visited := map[int64]bool{}
	currentID := newParentID
	for !visited[currentID] {
		visited[currentID] = true

		parent, err := s.folderRepo.GetByID(ctx, currentID)
		if err != nil {
			return err
		}
		if parent.ParentID == nil {
			return nil
		}
		if *parent.ParentID == folderID {
			return fmt.Errorf("%w: cannot move folder into its own descendant", domain.ErrInvalidArgument)
		}
		currentID = *parent.ParentID
	}

	return fmt.Errorf("%w: folder ancestry of %d contains a cycle", domain.ErrInternal, newParentID)
}

// lockFolderGroups locks up to two sibling groups in a fixed order
func (s *Service) lockFolderGroups(ctx context.Context, a, b *int64) error {
	if sameParent(a, b) {
		return s.folderRepo.LockContainer(ctx, a)
	}
	if groupKey(b) < groupKey(a) {
		a, b = b, a
	}
	if err := s.folderRepo.LockContainer(ctx, a); err != nil {
		return err
	}
	return s.folderRepo.LockContainer(ctx, b)
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func groupKey(parentID *int64) int64 {
	if parentID == nil {
		return 0
	}
	return *parentID
}
