package models

// Icon is the outcome of a successful favicon resolution
type Icon struct {
	ContentType string
	Data        []byte
}

// Favicon is a stored icon. At most one exists per bookmark.
type Favicon struct {
	BookmarkID  int64
	ContentType string
	Data        []byte
}

// NewFavicon binds a resolved icon to a bookmark
func NewFavicon(bookmarkID int64, icon *Icon) *Favicon {
	return &Favicon{
		BookmarkID:  bookmarkID,
		ContentType: icon.ContentType,
		Data:        icon.Data,
	}
}
