package repositories

// Store bundles the repositories and transaction manager of one persistence adapter
type Store struct {
	Folders   FolderRepository
	Bookmarks BookmarkRepository
	Favicons  FaviconRepository
	Tx        TransactionManager
	closeFn   func() error
}

// NewStore assembles a Store. closeFn releases the underlying connection(s).
func NewStore(folders FolderRepository, bookmarks BookmarkRepository, favicons FaviconRepository, tx TransactionManager, closeFn func() error) *Store {
	return &Store{
		Folders:   folders,
		Bookmarks: bookmarks,
		Favicons:  favicons,
		Tx:        tx,
		closeFn:   closeFn,
	}
}

// Close releases the adapter's resources
func (s *Store) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}
