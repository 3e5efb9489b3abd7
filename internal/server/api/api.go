// Package api provides the JSON HTTP handlers for pinchball.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/pinchball/internal/app"
)

// Controller accepts commands for the simulation loop.
type Controller interface {
	Submit(cmd app.Command) error
}

// StateSource provides the latest loop snapshot.
type StateSource interface {
	Latest() app.Snapshot
}

type errorResponse struct {
	Error string `json:"error"`
}

const timeFormat = time.RFC3339

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
