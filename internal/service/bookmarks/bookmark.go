package bookmarks

import (
	"context"
	"fmt"
	"strings"

	"bookmarkd/internal/domain"
	"bookmarkd/internal/domain/models"
	"bookmarkd/internal/domain/services"
)

// CreateBookmark appends a bookmark to a folder and resolves its favicon
func (s *Service) CreateBookmark(ctx context.Context, req *services.CreateBookmarkRequest) (*models.Bookmark, error) {
	in := *req
	in.Name = strings.TrimSpace(in.Name)
	in.URL = strings.TrimSpace(in.URL)

	if err := validateCreateBookmark(&in); err != nil {
		return nil, err
	}

	// Resolve outside the transaction: no lock is held across network calls
	var icon *models.Icon
	if !s.async() {
		if _, err := s.requireFolder(ctx, in.FolderID); err != nil {
			return nil, classify(err)
		}
		icon = s.resolver.Resolve(ctx, in.URL)
	}

	bookmark := &models.Bookmark{
		Name:     in.Name,
		URL:      in.URL,
		FolderID: in.FolderID,
	}

	err := s.mutate(ctx, func(ctx context.Context) error {
		if _, err := s.requireFolder(ctx, bookmark.FolderID); err != nil {
			return err
		}

		if err := s.bookmarkRepo.LockContainer(ctx, bookmark.FolderID); err != nil {
			return err
		}
		count, err := s.bookmarkRepo.CountByFolder(ctx, bookmark.FolderID)
		if err != nil {
			return err
		}
		bookmark.Position = count

		if err := s.bookmarkRepo.Create(ctx, bookmark); err != nil {
			return err
		}

		if icon != nil {
			return s.faviconRepo.Upsert(ctx, models.NewFavicon(bookmark.ID, icon))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bookmark created",
		"id", bookmark.ID,
		"folder_id", bookmark.FolderID,
		"position", bookmark.Position,
		"favicon", icon != nil,
	)

	if s.async() {
		s.scheduleFavicon(bookmark.ID, bookmark.URL)
	}

	return bookmark, nil
}

// UpdateBookmarkURL re-points a bookmark and replaces its favicon
func (s *Service) UpdateBookmarkURL(ctx context.Context, id int64, rawURL string) error {
	return s.UpdateItem(ctx, &services.UpdateItemRequest{
		ItemType: models.ItemTypeBookmark,
		ID:       id,
		URL:      &rawURL,
	})
}

// setBookmarkURL writes the new url and the inline favicon result. Must run inside a transaction.
// With resolved unset (background mode) the favicon is left for the background job.
func (s *Service) setBookmarkURL(ctx context.Context, id int64, rawURL string, icon *models.Icon, resolved bool) error {
	if err := s.bookmarkRepo.UpdateURL(ctx, id, rawURL); err != nil {
		return err
	}
	if !resolved {
		return nil
	}
	if icon == nil {
		return s.faviconRepo.DeleteByBookmarkID(ctx, id)
	}
	return s.faviconRepo.Upsert(ctx, models.NewFavicon(id, icon))
}

// moveBookmark reassigns a bookmark to the end of dest and closes the gap it leaves.
// Must run inside a transaction.
func (s *Service) moveBookmark(ctx context.Context, id, dest int64) error {
	bookmark, err := s.bookmarkRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.requireFolder(ctx, dest); err != nil {
		return err
	}

	if err := s.lockBookmarkGroups(ctx, bookmark.FolderID, dest); err != nil {
		return err
	}
	reloaded, err := s.bookmarkRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	// The locked source group is only valid if the bookmark is still in it
	if reloaded.FolderID != bookmark.FolderID {
		return fmt.Errorf("%w: bookmark %d was moved concurrently", domain.ErrInternal, id)
	}
	bookmark = reloaded

	if err := s.bookmarkRepo.CloseGap(ctx, bookmark.FolderID, bookmark.Position); err != nil {
		return err
	}

	count, err := s.bookmarkRepo.CountByFolder(ctx, dest)
	if err != nil {
		return err
	}
	if bookmark.FolderID == dest {
		count--
	}

	if err := s.bookmarkRepo.UpdatePlacement(ctx, id, dest, count); err != nil {
		return err
	}

	s.logger.Debug("bookmark moved",
		"id", id,
		"from_folder_id", bookmark.FolderID,
		"to_folder_id", dest,
		"position", count,
	)
	return nil
}

func (s *Service) lockBookmarkGroups(ctx context.Context, a, b int64) error {
	if a == b {
		return s.bookmarkRepo.LockContainer(ctx, a)
	}
	if b < a {
		a, b = b, a
	}
	if err := s.bookmarkRepo.LockContainer(ctx, a); err != nil {
		return err
	}
	return s.bookmarkRepo.LockContainer(ctx, b)
}
