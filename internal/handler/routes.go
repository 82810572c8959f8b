package handler

import (
	"log/slog"
	"net/http"

	"bookmarkd/internal/domain/services"
)

// RegisterRoutes mounts the API on mux
func RegisterRoutes(mux *http.ServeMux, treeStore services.TreeStore, defaultIconPath string, logger *slog.Logger) {
	treeHandler := NewTreeHandler(treeStore, logger)
	folderHandler := NewFolderHandler(treeStore, logger)
	bookmarkHandler := NewBookmarkHandler(treeStore, logger)
	itemHandler := NewItemHandler(treeStore, logger)
	faviconHandler := NewFaviconHandler(treeStore, defaultIconPath, logger)

	// Health check
	mux.HandleFunc("GET /health", HealthCheck)

	// Tree views
	mux.HandleFunc("GET /api/data", treeHandler.GetData)
	mux.HandleFunc("GET /api/tree", treeHandler.GetTree)

	// Creation
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("POST /api/bookmarks", bookmarkHandler.CreateBookmark)

	// Item routes
	mux.HandleFunc("POST /api/items/{type}/reorder", itemHandler.Reorder)
	mux.HandleFunc("PUT /api/items/{type}/{id}", itemHandler.Update)
	mux.HandleFunc("DELETE /api/items/{type}/{id}", itemHandler.Delete)

	// Favicons
	mux.HandleFunc("GET /api/favicon/{id}", faviconHandler.GetFavicon)
}
