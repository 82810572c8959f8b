package handler

import (
	"log/slog"
	"net/http"

	"bookmarkd/internal/domain"
	"bookmarkd/internal/httputil"
)

// handleError converts domain errors to HTTP responses.
// Anything outside NotFound/InvalidArgument is logged and answered without detail.
func handleError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := domain.StatusCode(err)
	if status != http.StatusInternalServerError {
		httputil.RespondError(w, status, err.Error())
		return
	}

	requestID := httputil.GetRequestID(r)
	logger.Error("request failed",
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", requestID,
	)
	httputil.RespondErrorWithExtras(w, http.StatusInternalServerError, "internal server error",
		map[string]interface{}{"request_id": requestID})
}
