package models

// ChangeKind names what a ChangeEvent reports
type ChangeKind string

const (
	ChangeTree    ChangeKind = "tree"    // structure, names or open flags changed
	ChangeFavicon ChangeKind = "favicon" // a stored icon was attached or removed
)

// ChangeEvent tells live clients which view to refetch
type ChangeEvent struct {
	Kind       ChangeKind `json:"kind"`
	BookmarkID int64      `json:"bookmarkId,omitempty"`
}
