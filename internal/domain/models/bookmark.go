package models

// Bookmark is a leaf entry. It always belongs to exactly one folder;
// Position is the zero-based rank among bookmarks of that folder.
type Bookmark struct {
	ID       int64
	Name     string
	URL      string
	FolderID int64
	Position int
}
