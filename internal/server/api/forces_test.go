package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ayusman/pinchball/internal/app"
)

func defaultControls() app.Controls {
	return app.Controls{Gravity: 0.1, Bounce: 0.9, Gestures: true, Wind: true}
}

func TestForcesHandler_Get(t *testing.T) {
	loop := &fakeLoop{snap: app.Snapshot{Controls: defaultControls()}}
	handler := NewForcesHandler(loop, loop, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/forces", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var got app.Controls
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got != defaultControls() {
		t.Errorf("got %+v, want %+v", got, defaultControls())
	}
}

func putForces(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, "/api/forces", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestForcesHandler_PutPartial(t *testing.T) {
	loop := &fakeLoop{snap: app.Snapshot{Controls: defaultControls()}}
	handler := NewForcesHandler(loop, loop, nil)

	rec := putForces(t, handler, `{"gravity": 0.3, "wind": false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	want := defaultControls()
	want.Gravity = 0.3
	want.Wind = false

	if len(loop.commands) != 1 {
		t.Fatalf("expected 1 command, got %d", len(loop.commands))
	}
	cmd := loop.commands[0]
	if cmd.Kind != app.CmdPatchControls {
		t.Fatalf("command kind = %v, want %v", cmd.Kind, app.CmdPatchControls)
	}
	if cmd.Patch.WindX != nil || cmd.Patch.Bounce != nil || cmd.Patch.Gestures != nil {
		t.Errorf("patch carries fields that were not sent: %+v", cmd.Patch)
	}
	if got := cmd.Patch.Apply(defaultControls()); got != want {
		t.Errorf("patch applied = %+v, want %+v", got, want)
	}

	var got app.Controls
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got != want {
		t.Errorf("response = %+v, want %+v", got, want)
	}
}

func TestForcesHandler_PutBurstKeepsEarlierFields(t *testing.T) {
	// The snapshot never changes between the two requests, as when both
	// arrive within one frame.
	loop := &fakeLoop{snap: app.Snapshot{Controls: defaultControls()}}
	handler := NewForcesHandler(loop, loop, nil)

	for _, body := range []string{`{"gravity": 0.2}`, `{"wind_x": 1}`} {
		if rec := putForces(t, handler, body); rec.Code != http.StatusOK {
			t.Fatalf("PUT %s: status %d", body, rec.Code)
		}
	}

	if len(loop.commands) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(loop.commands))
	}
	if loop.commands[1].Patch.Gravity != nil {
		t.Errorf("second command must not carry gravity, got %v", *loop.commands[1].Patch.Gravity)
	}

	controls := defaultControls()
	for _, cmd := range loop.commands {
		controls = cmd.Patch.Apply(controls)
	}
	if controls.Gravity != 0.2 || controls.WindX != 1 {
		t.Errorf("merged controls = %+v, want gravity 0.2 and wind_x 1", controls)
	}
}

func TestForcesHandler_PutInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"gravity":`},
		{"unknown field", `{"magnetism": 1}`},
		{"wrong type", `{"gravity": "heavy"}`},
		{"no fields", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loop := &fakeLoop{snap: app.Snapshot{Controls: defaultControls()}}
			handler := NewForcesHandler(loop, loop, nil)

			req := httptest.NewRequest(http.MethodPut, "/api/forces", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
			if len(loop.commands) != 0 {
				t.Error("no command should be submitted for a bad request")
			}
		})
	}
}

func TestForcesHandler_Busy(t *testing.T) {
	loop := &fakeLoop{snap: app.Snapshot{Controls: defaultControls()}, err: app.ErrCommandQueueFull}
	handler := NewForcesHandler(loop, loop, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/forces", strings.NewReader(`{"gravity": 0.2}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
}

func TestForcesHandler_MethodNotAllowed(t *testing.T) {
	loop := &fakeLoop{}
	handler := NewForcesHandler(loop, loop, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/forces", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}
