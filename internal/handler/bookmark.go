package handler

import (
	"log/slog"
	"net/http"

	"bookmarkd/internal/domain/services"
	"bookmarkd/internal/httputil"
)

// BookmarkHandler handles bookmark HTTP requests
type BookmarkHandler struct {
	treeStore services.TreeStore
	logger    *slog.Logger
}

// NewBookmarkHandler creates a new bookmark handler
func NewBookmarkHandler(treeStore services.TreeStore, logger *slog.Logger) *BookmarkHandler {
	return &BookmarkHandler{
		treeStore: treeStore,
		logger:    logger,
	}
}

// CreateBookmark appends a bookmark to a folder
// POST /api/bookmarks
func (h *BookmarkHandler) CreateBookmark(w http.ResponseWriter, r *http.Request) {
	var req createBookmarkRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookmark, err := h.treeStore.CreateBookmark(r.Context(), &services.CreateBookmarkRequest{
		Name:     req.Name,
		URL:      req.URL,
		FolderID: req.FolderID,
	})
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, toBookmarkDTO(bookmark))
}
