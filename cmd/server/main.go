package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bookmarkd/internal/config"
	"bookmarkd/internal/events"
	"bookmarkd/internal/favicon"
	"bookmarkd/internal/handler"
	"bookmarkd/internal/handler/sse"
	"bookmarkd/internal/middleware"
	"bookmarkd/internal/repository"
	"bookmarkd/internal/service/bookmarks"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup structured logging
	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"db_driver", cfg.Database.Driver,
		"favicon_mode", cfg.Favicon.Mode,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open the store (migrations run on open)
	store, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	// Favicon resolution
	resolver := favicon.NewResolver(cfg.Favicon, &http.Client{}, logger)

	// Mode was checked by Validate; sync mode needs no dispatcher
	var dispatcher bookmarks.Dispatcher
	if cfg.Favicon.Mode == config.FaviconModeAsync {
		dispatcher = favicon.NewDispatcher(cfg.Favicon.Workers, logger)
	}

	// Live change feed for connected browsers
	broker := events.NewBroker(logger)

	treeService := bookmarks.NewService(store, resolver, dispatcher, logger, bookmarks.WithNotifier(broker))

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, treeService, cfg.DefaultIconPath, logger)
	handler.RegisterEvents(mux, broker, sse.DefaultConfig(), logger)
	handler.RegisterStatic(mux, cfg.StaticDir, logger)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → RequestLogger → Recovery → Routes
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLogger(logger)(h)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("server failed", "error", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Event streams never end on their own; closing the broker releases them
	broker.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	// Pending favicon jobs finish (or are cancelled) before the store closes
	if err := treeService.Close(shutdownCtx); err != nil {
		logger.Warn("favicon jobs abandoned", "error", err)
	}

	logger.Info("server stopped")
}
