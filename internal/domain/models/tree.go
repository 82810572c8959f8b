package models

// TreeData is the flat snapshot returned by FetchTree. Folders and bookmarks are
// ordered by position; clients rebuild the hierarchy from ParentID/FolderID links.
type TreeData struct {
	Folders   []Folder
	Bookmarks []Bookmark
}

// TreeNode represents the root of the nested bookmark tree
type TreeNode struct {
	Folders []*FolderTreeNode `json:"folders"`
}

// FolderTreeNode represents a folder in the tree with nested children
type FolderTreeNode struct {
	ID        int64              `json:"id"`
	Name      string             `json:"name"`
	ParentID  *int64             `json:"parentId"`
	IsOpen    bool               `json:"isOpen"`
	Position  int                `json:"position"`
	Folders   []*FolderTreeNode  `json:"folders"` // Pointers for proper nesting
	Bookmarks []BookmarkTreeNode `json:"bookmarks"`
}

// BookmarkTreeNode represents a bookmark leaf in the tree
type BookmarkTreeNode struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	FolderID int64  `json:"folderId"`
	Position int    `json:"position"`
}

// BuildTree nests a flat snapshot into a folder hierarchy.
// Children keep the order they have in data, so a position-ordered snapshot
// yields position-ordered children.
func BuildTree(data *TreeData) *TreeNode {
	folderMap := make(map[int64]*FolderTreeNode, len(data.Folders))
	var rootIDs []int64

	// First pass: create all folder nodes
	for _, f := range data.Folders {
		folderMap[f.ID] = &FolderTreeNode{
			ID:        f.ID,
			Name:      f.Name,
			ParentID:  f.ParentID,
			IsOpen:    f.IsOpen,
			Position:  f.Position,
			Folders:   []*FolderTreeNode{},
			Bookmarks: []BookmarkTreeNode{},
		}
	}

	// Second pass: connect children to parents
	for _, f := range data.Folders {
		node := folderMap[f.ID]
		if f.ParentID == nil {
			rootIDs = append(rootIDs, f.ID)
			continue
		}
		if parent, ok := folderMap[*f.ParentID]; ok {
			parent.Folders = append(parent.Folders, node)
		}
	}

	// Third pass: attach bookmarks
	for _, b := range data.Bookmarks {
		if parent, ok := folderMap[b.FolderID]; ok {
			parent.Bookmarks = append(parent.Bookmarks, BookmarkTreeNode{
				ID:       b.ID,
				Name:     b.Name,
				URL:      b.URL,
				FolderID: b.FolderID,
				Position: b.Position,
			})
		}
	}

	roots := make([]*FolderTreeNode, 0, len(rootIDs))
	for _, id := range rootIDs {
		roots = append(roots, folderMap[id])
	}
	return &TreeNode{Folders: roots}
}
