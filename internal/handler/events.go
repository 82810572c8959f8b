package handler

import (
	"log/slog"
	"net/http"
	"time"

	"bookmarkd/internal/domain/models"
	"bookmarkd/internal/handler/sse"
	"bookmarkd/internal/httputil"
)

// ChangeFeed is the subscription side of the change broker
type ChangeFeed interface {
	Subscribe() (string, <-chan models.ChangeEvent)
	Unsubscribe(clientID string)
}

// EventsHandler streams change events to browsers
type EventsHandler struct {
	feed   ChangeFeed
	config sse.Config
	logger *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(feed ChangeFeed, config sse.Config, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		feed:   feed,
		config: config,
		logger: logger,
	}
}

// Stream handles GET /api/events
// Each committed change is sent as an event named after its kind ("tree" or "favicon").
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	clientID, events := h.feed.Subscribe()
	defer h.feed.Unsubscribe(clientID)

	out, err := sse.NewWriter(w)
	if err != nil {
		// Headers are already sent
		h.logger.Error("failed to open event stream", "error", err, "request_id", httputil.GetRequestID(r))
		return
	}

	h.logger.Debug("SSE client registered", "client_id", clientID)
	defer h.logger.Debug("SSE client removed", "client_id", clientID)

	ticker := time.NewTicker(h.config.KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				// Broker closed (server shutting down)
				return
			}
			if err := out.WriteEvent(string(event.Kind), event); err != nil {
				h.logger.Info("client disconnected during event write", "client_id", clientID, "error", err)
				return
			}

		case <-ticker.C:
			if err := out.WriteKeepAlive(); err != nil {
				h.logger.Info("client disconnected during keepalive", "client_id", clientID, "error", err)
				return
			}

		case <-r.Context().Done():
			return
		}
	}
}

// RegisterEvents mounts the live change stream on mux
func RegisterEvents(mux *http.ServeMux, feed ChangeFeed, config sse.Config, logger *slog.Logger) {
	mux.HandleFunc("GET /api/events", NewEventsHandler(feed, config, logger).Stream)
}
