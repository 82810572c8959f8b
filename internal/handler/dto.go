package handler

import "bookmarkd/internal/domain/models"

// FolderDTO is the wire form of a folder
type FolderDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parentId"`
	IsOpen   bool   `json:"isOpen"`
	Position int    `json:"position"`
}

// BookmarkDTO is the wire form of a bookmark
type BookmarkDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	FolderID int64  `json:"folderId"`
	Position int    `json:"position"`
}

// DataResponse is the body of GET /api/data
type DataResponse struct {
	Folders   []FolderDTO   `json:"folders"`
	Bookmarks []BookmarkDTO `json:"bookmarks"`
}

type createFolderRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parentId"`
}

type createBookmarkRequest struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	FolderID int64  `json:"folderId"`
}

// updateItemRequest: absent or null fields are left unchanged; parentId 0 moves a folder to root
type updateItemRequest struct {
	Name     *string `json:"name"`
	URL      *string `json:"url"`
	ParentID *int64  `json:"parentId"`
	FolderID *int64  `json:"folderId"`
	IsOpen   *bool   `json:"isOpen"`
}

type reorderRequest struct {
	IDs []int64 `json:"ids"`
}

func toFolderDTO(f *models.Folder) FolderDTO {
	return FolderDTO{
		ID:       f.ID,
		Name:     f.Name,
		ParentID: f.ParentID,
		IsOpen:   f.IsOpen,
		Position: f.Position,
	}
}

func toBookmarkDTO(b *models.Bookmark) BookmarkDTO {
	return BookmarkDTO{
		ID:       b.ID,
		Name:     b.Name,
		URL:      b.URL,
		FolderID: b.FolderID,
		Position: b.Position,
	}
}

func toDataResponse(data *models.TreeData) DataResponse {
	resp := DataResponse{
		Folders:   make([]FolderDTO, 0, len(data.Folders)),
		Bookmarks: make([]BookmarkDTO, 0, len(data.Bookmarks)),
	}
	for i := range data.Folders {
		resp.Folders = append(resp.Folders, toFolderDTO(&data.Folders[i]))
	}
	for i := range data.Bookmarks {
		resp.Bookmarks = append(resp.Bookmarks, toBookmarkDTO(&data.Bookmarks[i]))
	}
	return resp
}
