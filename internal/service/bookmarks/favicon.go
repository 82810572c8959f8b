package bookmarks

import (
	"context"
	"errors"

	"bookmarkd/internal/domain"
	"bookmarkd/internal/domain/models"
)

var errStaleJob = errors.New("bookmark url changed")

// scheduleFavicon resolves the icon of rawURL in the background and attaches it
// only if the bookmark still exists and still points at rawURL
func (s *Service) scheduleFavicon(id int64, rawURL string) {
	scheduled := s.dispatcher.Go(func(ctx context.Context) {
		icon := s.resolver.Resolve(ctx, rawURL)

		err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
			bookmark, err := s.bookmarkRepo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if bookmark.URL != rawURL {
				return errStaleJob
			}
			if icon == nil {
				return s.faviconRepo.DeleteByBookmarkID(ctx, id)
			}
			return s.faviconRepo.Upsert(ctx, models.NewFavicon(id, icon))
		})

		switch {
		case err == nil:
			s.logger.Debug("favicon attached", "bookmark_id", id, "found", icon != nil)
			s.notify(models.ChangeEvent{Kind: models.ChangeFavicon, BookmarkID: id})
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, errStaleJob):
			s.logger.Debug("favicon discarded", "bookmark_id", id, "reason", err)
		default:
			s.logger.Error("failed to store favicon", "bookmark_id", id, "error", err)
		}
	})

	if !scheduled {
		s.logger.Warn("favicon job dropped, dispatcher closed", "bookmark_id", id)
	}
}
