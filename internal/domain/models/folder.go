package models

// Folder is a tree node. ParentID nil means the folder sits at root level.
// Position is the zero-based rank among folders sharing the same ParentID.
type Folder struct {
	ID       int64
	Name     string
	ParentID *int64
	IsOpen   bool
	Position int
}

// IsRoot reports whether the folder has no parent
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}
