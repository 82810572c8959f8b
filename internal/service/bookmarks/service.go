// Package bookmarks implements the ordered folder/bookmark tree.
package bookmarks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bookmarkd/internal/domain"
	"bookmarkd/internal/domain/models"
	"bookmarkd/internal/domain/repositories"
	"bookmarkd/internal/domain/services"
)

// Dispatcher runs favicon jobs in the background
type Dispatcher interface {
	Go(job func(ctx context.Context)) bool
	Close(ctx context.Context) error
}

// Service implements services.TreeStore on top of a repository Store.
// A nil dispatcher resolves favicons inline with the write; otherwise icons are
// attached after the write commits.
type Service struct {
	folderRepo   repositories.FolderRepository
	bookmarkRepo repositories.BookmarkRepository
	faviconRepo  repositories.FaviconRepository
	txManager    repositories.TransactionManager
	resolver     services.FaviconResolver
	dispatcher   Dispatcher
	notifier     services.ChangeNotifier
	logger       *slog.Logger
}

// Option configures optional Service collaborators
type Option func(*Service)

// WithNotifier publishes a change event after every committed write
func WithNotifier(n services.ChangeNotifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

var _ services.TreeStore = (*Service)(nil)

// NewService creates a new tree service
func NewService(
	store *repositories.Store,
	resolver services.FaviconResolver,
	dispatcher Dispatcher,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		folderRepo:   store.Folders,
		bookmarkRepo: store.Bookmarks,
		faviconRepo:  store.Favicons,
		txManager:    store.Tx,
		resolver:     resolver,
		dispatcher:   dispatcher,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close waits for background favicon jobs until ctx is done
func (s *Service) Close(ctx context.Context) error {
	if s.dispatcher == nil {
		return nil
	}
	return s.dispatcher.Close(ctx)
}

func (s *Service) async() bool {
	return s.dispatcher != nil
}

// execTx runs fn in one transaction and classifies whatever error escapes it
func (s *Service) execTx(ctx context.Context, fn repositories.TxFn) error {
	return classify(s.txManager.ExecTx(ctx, fn))
}

// mutate is execTx for writes: a committed change is announced to the notifier
func (s *Service) mutate(ctx context.Context, fn repositories.TxFn) error {
	if err := s.execTx(ctx, fn); err != nil {
		return err
	}
	s.notify(models.ChangeEvent{Kind: models.ChangeTree})
	return nil
}

func (s *Service) notify(event models.ChangeEvent) {
	if s.notifier != nil {
		s.notifier.Publish(event)
	}
}

// classify wraps errors outside the domain taxonomy as ErrInternal, keeping the cause for logs
func classify(err error) error {
	if err == nil || errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInternal) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrInternal, err)
}

// requireFolder loads a referenced folder; a missing one is an invalid argument, not a missing target
func (s *Service) requireFolder(ctx context.Context, id int64) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: folder %d does not exist", domain.ErrInvalidArgument, id)
		}
		return nil, err
	}
	return folder, nil
}

func parseType(itemType models.ItemType) (models.ItemType, error) {
	t, err := models.ParseItemType(string(itemType))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return t, nil
}

// rootIfZero maps the wire convention "0 means root" onto a nil parent
func rootIfZero(id *int64) *int64 {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}
