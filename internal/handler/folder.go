package handler

import (
	"log/slog"
	"net/http"

	"bookmarkd/internal/domain/services"
	"bookmarkd/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	treeStore services.TreeStore
	logger    *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(treeStore services.TreeStore, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		treeStore: treeStore,
		logger:    logger,
	}
}

// CreateFolder appends a folder to its parent (root when parentId is null or 0)
// POST /api/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.treeStore.CreateFolder(r.Context(), &services.CreateFolderRequest{
		Name:     req.Name,
		ParentID: req.ParentID,
	})
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, toFolderDTO(folder))
}
