package bookmarks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookmarkd/internal/domain"
	"bookmarkd/internal/domain/models"
	"bookmarkd/internal/domain/services"
)

// RenameItem changes the name of a folder or bookmark
func (s *Service) RenameItem(ctx context.Context, itemType models.ItemType, id int64, name string) error {
	name = strings.TrimSpace(name)
	return s.UpdateItem(ctx, &services.UpdateItemRequest{ItemType: itemType, ID: id, Name: &name})
}

// MoveItem appends an item to the end of dest. For folders nil (or 0) is the root.
func (s *Service) MoveItem(ctx context.Context, itemType models.ItemType, id int64, dest *int64) error {
	itemType, err := parseType(itemType)
	if err != nil {
		return err
	}

	return s.mutate(ctx, func(ctx context.Context) error {
		if itemType == models.ItemTypeFolder {
			return s.moveFolder(ctx, id, rootIfZero(dest))
		}
		if dest == nil {
			return fmt.Errorf("%w: bookmarks must be moved into a folder", domain.ErrInvalidArgument)
		}
		return s.moveBookmark(ctx, id, *dest)
	})
}

// UpdateItem applies every non-nil field of req to one item in a single transaction.
// Fields that do not apply to the item type are ignored.
func (s *Service) UpdateItem(ctx context.Context, req *services.UpdateItemRequest) error {
	itemType, err := parseType(req.ItemType)
	if err != nil {
		return err
	}
	isBookmark := itemType == models.ItemTypeBookmark

	var name string
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if err := validateName(itemType, name); err != nil {
			return err
		}
	}

	setURL := isBookmark && req.URL != nil
	var rawURL string
	var icon *models.Icon
	if setURL {
		rawURL = strings.TrimSpace(*req.URL)
		if err := validateURL(rawURL); err != nil {
			return err
		}
		if !s.async() {
			if _, err := s.bookmarkRepo.GetByID(ctx, req.ID); err != nil {
				return classify(err)
			}
			icon = s.resolver.Resolve(ctx, rawURL)
		}
	}

	err = s.mutate(ctx, func(ctx context.Context) error {
		// Existence check so that a request with no applicable fields still reports a missing item
		if err := s.requireItem(ctx, itemType, req.ID); err != nil {
			return err
		}

		if req.Name != nil {
			if err := s.rename(ctx, itemType, req.ID, name); err != nil {
				return err
			}
		}

		if isBookmark {
			if setURL {
				if err := s.setBookmarkURL(ctx, req.ID, rawURL, icon, !s.async()); err != nil {
					return err
				}
			}
			if req.FolderID != nil {
				return s.moveBookmark(ctx, req.ID, *req.FolderID)
			}
			return nil
		}

		if req.ParentID != nil {
			if err := s.moveFolder(ctx, req.ID, rootIfZero(req.ParentID)); err != nil {
				return err
			}
		}
		if req.IsOpen != nil {
			return s.folderRepo.UpdateOpen(ctx, req.ID, *req.IsOpen)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("item updated", "type", itemType, "id", req.ID)

	if setURL && s.async() {
		s.scheduleFavicon(req.ID, rawURL)
	}
	return nil
}

// ReorderSiblings assigns position = index to the complete id set of one sibling group.
// For folders containerID nil (or 0) is the root group; bookmarks need a folder.
func (s *Service) ReorderSiblings(ctx context.Context, itemType models.ItemType, containerID *int64, ids []int64) error {
	itemType, err := parseType(itemType)
	if err != nil {
		return err
	}
	if err := validateReorderIDs(ids); err != nil {
		return err
	}

	return s.mutate(ctx, func(ctx context.Context) error {
		return s.reorder(ctx, itemType, containerID, ids)
	})
}

// ReorderItems reorders the sibling group that contains ids[0]
func (s *Service) ReorderItems(ctx context.Context, itemType models.ItemType, ids []int64) error {
	itemType, err := parseType(itemType)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: reorder needs at least one id", domain.ErrInvalidArgument)
	}
	if err := validateReorderIDs(ids); err != nil {
		return err
	}

	return s.mutate(ctx, func(ctx context.Context) error {
		var containerID *int64
		switch itemType {
		case models.ItemTypeFolder:
			folder, err := s.folderRepo.GetByID(ctx, ids[0])
			if err != nil {
				return notFoundAsInvalid(err)
			}
			containerID = folder.ParentID
		case models.ItemTypeBookmark:
			bookmark, err := s.bookmarkRepo.GetByID(ctx, ids[0])
			if err != nil {
				return notFoundAsInvalid(err)
			}
			containerID = &bookmark.FolderID
		}
		return s.reorder(ctx, itemType, containerID, ids)
	})
}

// reorder must run inside a transaction
func (s *Service) reorder(ctx context.Context, itemType models.ItemType, containerID *int64, ids []int64) error {
	var (
		current []int64
		err     error
	)

	switch itemType {
	case models.ItemTypeFolder:
		parentID := rootIfZero(containerID)
		if parentID != nil {
			if _, err := s.requireFolder(ctx, *parentID); err != nil {
				return err
			}
		}
		if err := s.folderRepo.LockContainer(ctx, parentID); err != nil {
			return err
		}
		current, err = s.folderRepo.ListChildIDs(ctx, parentID)
	case models.ItemTypeBookmark:
		if containerID == nil {
			return fmt.Errorf("%w: bookmarks are reordered within a folder", domain.ErrInvalidArgument)
		}
		if _, err := s.requireFolder(ctx, *containerID); err != nil {
			return err
		}
		if err := s.bookmarkRepo.LockContainer(ctx, *containerID); err != nil {
			return err
		}
		current, err = s.bookmarkRepo.ListIDsByFolder(ctx, *containerID)
	}
	if err != nil {
		return err
	}

	if err := sameIDSet(current, ids); err != nil {
		return err
	}

	for i, id := range ids {
		if itemType == models.ItemTypeFolder {
			err = s.folderRepo.SetPosition(ctx, id, i)
		} else {
			err = s.bookmarkRepo.SetPosition(ctx, id, i)
		}
		if err != nil {
			return err
		}
	}

	s.logger.Debug("siblings reordered", "type", itemType, "container_id", containerID, "count", len(ids))
	return nil
}

// DeleteItem removes an item and renumbers its former siblings.
// Deleting a folder cascades to its subfolders, bookmarks and favicons.
func (s *Service) DeleteItem(ctx context.Context, itemType models.ItemType, id int64) error {
	itemType, err := parseType(itemType)
	if err != nil {
		return err
	}

	err = s.mutate(ctx, func(ctx context.Context) error {
		if itemType == models.ItemTypeFolder {
			if err := s.folderRepo.LockTree(ctx); err != nil {
				return err
			}
			folder, err := s.folderRepo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if err := s.folderRepo.LockContainer(ctx, folder.ParentID); err != nil {
				return err
			}
			if folder, err = s.folderRepo.GetByID(ctx, id); err != nil {
				return err
			}
			if err := s.folderRepo.Delete(ctx, id); err != nil {
				return err
			}
			return s.folderRepo.CloseGap(ctx, folder.ParentID, folder.Position)
		}

		bookmark, err := s.bookmarkRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.bookmarkRepo.LockContainer(ctx, bookmark.FolderID); err != nil {
			return err
		}
		reloaded, err := s.bookmarkRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if reloaded.FolderID != bookmark.FolderID {
			return fmt.Errorf("%w: bookmark %d was moved concurrently", domain.ErrInternal, id)
		}
		bookmark = reloaded
		if err := s.bookmarkRepo.Delete(ctx, id); err != nil {
			return err
		}
		return s.bookmarkRepo.CloseGap(ctx, bookmark.FolderID, bookmark.Position)
	})
	if err != nil {
		return err
	}

	s.logger.Info("item deleted", "type", itemType, "id", id)
	return nil
}

// FetchTree returns every folder and bookmark ordered by position, ties broken by id
func (s *Service) FetchTree(ctx context.Context) (*models.TreeData, error) {
	data := &models.TreeData{}
	err := s.execTx(ctx, func(ctx context.Context) error {
		var err error
		if data.Folders, err = s.folderRepo.ListAll(ctx); err != nil {
			return err
		}
		data.Bookmarks, err = s.bookmarkRepo.ListAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// GetFavicon returns the stored favicon of a bookmark
func (s *Service) GetFavicon(ctx context.Context, bookmarkID int64) (*models.Favicon, error) {
	favicon, err := s.faviconRepo.GetByBookmarkID(ctx, bookmarkID)
	if err != nil {
		return nil, classify(err)
	}
	return favicon, nil
}

func (s *Service) requireItem(ctx context.Context, itemType models.ItemType, id int64) error {
	if itemType == models.ItemTypeFolder {
		_, err := s.folderRepo.GetByID(ctx, id)
		return err
	}
	_, err := s.bookmarkRepo.GetByID(ctx, id)
	return err
}

func (s *Service) rename(ctx context.Context, itemType models.ItemType, id int64, name string) error {
	if itemType == models.ItemTypeFolder {
		return s.folderRepo.UpdateName(ctx, id, name)
	}
	return s.bookmarkRepo.UpdateName(ctx, id, name)
}

// sameIDSet requires ids to be a duplicate-free permutation of current
func sameIDSet(current, ids []int64) error {
	if len(current) != len(ids) {
		return fmt.Errorf("%w: reorder lists %d ids, group has %d", domain.ErrInvalidArgument, len(ids), len(current))
	}

	members := make(map[int64]bool, len(current))
	for _, id := range current {
		members[id] = true
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !members[id] {
			return fmt.Errorf("%w: id %d is not in this group", domain.ErrInvalidArgument, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: id %d listed twice", domain.ErrInvalidArgument, id)
		}
		seen[id] = true
	}
	return nil
}

func notFoundAsInvalid(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return err
}
