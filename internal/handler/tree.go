package handler

import (
	"log/slog"
	"net/http"

	"bookmarkd/internal/domain/models"
	"bookmarkd/internal/domain/services"
	"bookmarkd/internal/httputil"
)

// TreeHandler serves read-only views of the whole tree
type TreeHandler struct {
	treeStore services.TreeStore
	logger    *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(treeStore services.TreeStore, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		treeStore: treeStore,
		logger:    logger,
	}
}

// GetData returns every folder and bookmark as flat lists
// GET /api/data
func (h *TreeHandler) GetData(w http.ResponseWriter, r *http.Request) {
	data, err := h.treeStore.FetchTree(r.Context())
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, toDataResponse(data))
}

// GetTree returns the nested folder tree
// GET /api/tree
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	data, err := h.treeStore.FetchTree(r.Context())
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.BuildTree(data))
}

// HealthCheck reports liveness
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
