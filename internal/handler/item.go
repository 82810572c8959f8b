package handler

import (
	"log/slog"
	"net/http"

	"bookmarkd/internal/domain/models"
	"bookmarkd/internal/domain/services"
	"bookmarkd/internal/httputil"
)

// ItemHandler handles the type-generic /api/items routes
type ItemHandler struct {
	treeStore services.TreeStore
	logger    *slog.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(treeStore services.TreeStore, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{
		treeStore: treeStore,
		logger:    logger,
	}
}

// Reorder rewrites the positions of one sibling group
// POST /api/items/{type}/reorder
func (h *ItemHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	itemType, ok := parseItemType(w, r)
	if !ok {
		return
	}

	var req reorderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.treeStore.ReorderItems(r.Context(), itemType, req.IDs); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondStatus(w, http.StatusOK, nil)
}

// Update renames, re-points, moves or opens/closes an item
// PUT /api/items/{type}/{id}
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	itemType, ok := parseItemType(w, r)
	if !ok {
		return
	}
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateItemRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.treeStore.UpdateItem(r.Context(), &services.UpdateItemRequest{
		ItemType: itemType,
		ID:       id,
		Name:     req.Name,
		URL:      req.URL,
		ParentID: req.ParentID,
		FolderID: req.FolderID,
		IsOpen:   req.IsOpen,
	})
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondStatus(w, http.StatusOK, map[string]interface{}{"id": id})
}

// Delete removes an item; folders take their whole subtree with them
// DELETE /api/items/{type}/{id}
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	itemType, ok := parseItemType(w, r)
	if !ok {
		return
	}
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.treeStore.DeleteItem(r.Context(), itemType, id); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseItemType(w http.ResponseWriter, r *http.Request) (models.ItemType, bool) {
	itemType, err := models.ParseItemType(r.PathValue("type"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid item type")
		return "", false
	}
	return itemType, true
}
