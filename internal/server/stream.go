package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ayusman/pinchball/internal/app"
)

// StreamHandler serves the rendered canvas as MJPEG.
type StreamHandler struct {
	hub      *app.Hub
	interval time.Duration
}

// NewStreamHandler creates a new StreamHandler reading frames from hub.
func NewStreamHandler(hub *app.Hub) *StreamHandler {
	return &StreamHandler{hub: hub, interval: time.Second / app.StreamFPS}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Registering makes the loop start encoding frames.
	stop := h.hub.Watch()
	defer stop()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	var lastSeq uint64
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		frame, seq := h.hub.Frame()
		if seq != lastSeq && len(frame) > 0 {
			lastSeq = seq

			fmt.Fprintf(w, "--frame\r\n")
			fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
			fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(frame))
			if _, err := w.Write(frame); err != nil {
				return
			}
			fmt.Fprintf(w, "\r\n")

			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
