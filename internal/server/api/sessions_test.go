package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ayusman/pinchball/internal/store"
)

func createSession(t *testing.T, s *store.Store) *store.Session {
	t.Helper()
	sess := &store.Session{Width: 1000, Height: 800}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return sess
}

func TestSessionHandler_List(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)
	first := createSession(t, s)
	second := createSession(t, s)
	if err := s.Sessions().Finish(first.ID, 42); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response listSessionsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(response.Sessions))
	}
	if response.Sessions[0].ID != second.ID {
		t.Errorf("newest session should be listed first")
	}
	if response.Sessions[1].Ticks != 42 || response.Sessions[1].EndedAt == "" {
		t.Errorf("finished session = %+v", response.Sessions[1])
	}
	if response.Sessions[0].EndedAt != "" {
		t.Error("running session should have no end time")
	}
}

func TestSessionHandler_ListLimit(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)
	for i := 0; i < 3; i++ {
		createSession(t, s)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/sessions?limit=2", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var response listSessionsResponse
	json.NewDecoder(rec.Body).Decode(&response)
	if len(response.Sessions) != 2 {
		t.Errorf("expected 2 sessions, got %d", len(response.Sessions))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/sessions?limit=lots", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestSessionHandler_Get(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)
	sess := createSession(t, s)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+sess.ID, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var response sessionResponse
	json.NewDecoder(rec.Body).Decode(&response)
	if response.ID != sess.ID || response.Width != 1000 {
		t.Errorf("got %+v", response)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/sessions/missing", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestSessionHandler_Events(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)
	sess := createSession(t, s)
	err := s.Sessions().AddEvents([]store.PinchEvent{
		{SessionID: sess.ID, Hand: "RIGHT", Pinched: true, Tick: 3, X: 10, Y: 20},
		{SessionID: sess.ID, Hand: "RIGHT", Pinched: false, Tick: 9, X: 11, Y: 21},
	})
	if err != nil {
		t.Fatalf("AddEvents: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+sess.ID+"/events", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var response listEventsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.SessionID != sess.ID || len(response.Events) != 2 {
		t.Fatalf("got %+v", response)
	}
	if !response.Events[0].Pinched || response.Events[1].Pinched {
		t.Errorf("events out of order: %+v", response.Events)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/sessions/missing/events", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestSessionHandler_Delete(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)
	sess := createSession(t, s)

	req := httptest.NewRequest(http.MethodDelete, "/api/sessions/"+sess.ID, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestSessionHandler_Routing(t *testing.T) {
	handler := NewSessionHandler(newTestStore(t))

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodPost, "/api/sessions", http.StatusMethodNotAllowed},
		{http.MethodPut, "/api/sessions/abc", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/sessions/abc/events", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/sessions/abc/frames", http.StatusNotFound},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.path, tt.want, rec.Code)
		}
	}
}
