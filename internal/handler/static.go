package handler

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
)

// RegisterStatic serves the frontend from dir: index.html at /, assets under
// /static/ and the service worker at /sw.js. It does nothing if dir is missing.
func RegisterStatic(mux *http.ServeMux, dir string, logger *slog.Logger) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		logger.Info("static directory not found, frontend disabled", "dir", dir)
		return false
	}

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(dir))))

	mux.HandleFunc("GET /sw.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/javascript")
		http.ServeFile(w, r, filepath.Join(dir, "sw.js"))
	})

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	})

	return true
}
