package handler

import (
	_ "embed"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"bookmarkd/internal/domain"
	"bookmarkd/internal/domain/services"
	"bookmarkd/internal/httputil"
)

//go:embed assets/weblink.svg
var embeddedDefaultIcon []byte

// FaviconHandler serves stored favicons, falling back to a default icon
type FaviconHandler struct {
	treeStore   services.TreeStore
	defaultIcon []byte
	defaultType string
	logger      *slog.Logger
}

// NewFaviconHandler creates a favicon handler. The default icon is read from
// defaultIconPath; when that file is unavailable the embedded icon is used.
func NewFaviconHandler(treeStore services.TreeStore, defaultIconPath string, logger *slog.Logger) *FaviconHandler {
	h := &FaviconHandler{
		treeStore:   treeStore,
		defaultIcon: embeddedDefaultIcon,
		defaultType: "image/svg+xml",
		logger:      logger,
	}

	if defaultIconPath == "" {
		return h
	}
	data, err := os.ReadFile(defaultIconPath)
	if err != nil || len(data) == 0 {
		logger.Debug("default icon file unavailable, using embedded icon", "path", defaultIconPath, "error", err)
		return h
	}

	h.defaultIcon = data
	h.defaultType = mime.TypeByExtension(filepath.Ext(defaultIconPath))
	if h.defaultType == "" {
		h.defaultType = http.DetectContentType(data)
	}
	return h
}

// GetFavicon writes the bookmark's icon bytes
// GET /api/favicon/{id}
func (h *FaviconHandler) GetFavicon(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	favicon, err := h.treeStore.GetFavicon(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeIcon(w, h.defaultType, h.defaultIcon)
			return
		}
		handleError(w, r, h.logger, err)
		return
	}

	writeIcon(w, favicon.ContentType, favicon.Data)
}

func writeIcon(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
