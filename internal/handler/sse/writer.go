// Package sse writes Server-Sent Events to an http.ResponseWriter.
package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Writer frames and flushes events on one response. It is not safe for
// concurrent use; the handler goroutine owns it.
type Writer struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

// NewWriter sets the event-stream headers and disables the server write
// deadline for this response. The response controller reaches through
// middleware wrappers that implement Unwrap.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return nil, fmt.Errorf("clear write deadline: %w", err)
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.WriteHeader(http.StatusOK)

	sw := &Writer{w: w, rc: rc}
	if err := sw.flush(); err != nil {
		return nil, err
	}
	return sw, nil
}

// WriteEvent sends one named event with a JSON payload
func (s *Writer) WriteEvent(name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return fmt.Errorf("write event failed: %w", err)
	}
	return s.flush()
}

// WriteKeepAlive writes an SSE comment (: keepalive) and flushes
func (s *Writer) WriteKeepAlive() error {
	if _, err := fmt.Fprint(s.w, ": keepalive\n\n"); err != nil {
		return fmt.Errorf("write keepalive failed: %w", err)
	}
	return s.flush()
}

func (s *Writer) flush() error {
	if err := s.rc.Flush(); err != nil {
		return fmt.Errorf("flush failed: %w", err)
	}
	return nil
}
