package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/pinchball/internal/store"
)

// SessionHandler serves the session log.
type SessionHandler struct {
	store *store.Store
}

// NewSessionHandler creates a new SessionHandler with the given store.
func NewSessionHandler(s *store.Store) *SessionHandler {
	return &SessionHandler{store: s}
}

type sessionResponse struct {
	ID        string `json:"id"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Ticks     int64  `json:"ticks"`
	StartedAt string `json:"started_at"`
	EndedAt   string `json:"ended_at,omitempty"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

type eventResponse struct {
	Hand    string  `json:"hand"`
	Pinched bool    `json:"pinched"`
	Tick    int64   `json:"tick"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

type listEventsResponse struct {
	SessionID string          `json:"session_id"`
	Events    []eventResponse `json:"events"`
}

func toSessionResponse(s *store.Session) sessionResponse {
	resp := sessionResponse{
		ID:        s.ID,
		Width:     s.Width,
		Height:    s.Height,
		Ticks:     s.Ticks,
		StartedAt: s.StartedAt.Format(timeFormat),
	}
	if s.EndedAt != nil {
		resp.EndedAt = s.EndedAt.Format(timeFormat)
	}
	return resp
}

// ServeHTTP routes /api/sessions, /api/sessions/{id} and
// /api/sessions/{id}/events.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	parts := strings.Split(path, "/")
	id := parts[0]
	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodDelete:
			h.delete(w, r, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case len(parts) == 2 && parts[1] == "events":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.events(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

// list handles GET /api/sessions?limit=N.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	sessions, err := h.store.Sessions().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	response := listSessionsResponse{
		Sessions: make([]sessionResponse, 0, len(sessions)),
	}
	for _, s := range sessions {
		response.Sessions = append(response.Sessions, toSessionResponse(s))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/sessions/{id}.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	session, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

// delete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Sessions().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// events handles GET /api/sessions/{id}/events.
func (h *SessionHandler) events(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := h.store.Sessions().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	events, err := h.store.Sessions().Events(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	response := listEventsResponse{
		SessionID: id,
		Events:    make([]eventResponse, 0, len(events)),
	}
	for _, e := range events {
		response.Events = append(response.Events, eventResponse{
			Hand:    e.Hand,
			Pinched: e.Pinched,
			Tick:    e.Tick,
			X:       e.X,
			Y:       e.Y,
		})
	}

	writeJSON(w, http.StatusOK, response)
}
