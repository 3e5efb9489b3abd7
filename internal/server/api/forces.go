package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"go.uber.org/zap"

	"github.com/ayusman/pinchball/internal/app"
)

// ForcesHandler serves the slider values and switches.
type ForcesHandler struct {
	state      StateSource
	controller Controller
	log        *zap.Logger
}

// NewForcesHandler creates a ForcesHandler. The loop persists accepted
// updates.
func NewForcesHandler(state StateSource, controller Controller, log *zap.Logger) *ForcesHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ForcesHandler{
		state:      state,
		controller: controller,
		log:        log.Named("forces"),
	}
}

// ServeHTTP implements the http.Handler interface.
func (h *ForcesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.state.Latest().Controls)
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// update handles PUT /api/forces. Only the fields present in the body are
// sent to the loop, which merges them into its own controls.
func (h *ForcesHandler) update(w http.ResponseWriter, r *http.Request) {
	var patch app.ControlsPatch

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if patch.Empty() {
		writeError(w, http.StatusBadRequest, "No fields to update")
		return
	}
	if !finite(patch.Gravity, patch.Bounce, patch.WindX, patch.WindY) {
		writeError(w, http.StatusBadRequest, "Force magnitudes must be finite numbers")
		return
	}

	if err := h.controller.Submit(app.PatchControls(patch)); err != nil {
		if errors.Is(err, app.ErrCommandQueueFull) {
			writeError(w, http.StatusServiceUnavailable, "Simulation busy, try again")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to apply controls")
		return
	}

	// The loop applies the patch on its next frame; answer with the
	// expected result.
	controls := patch.Apply(h.state.Latest().Controls)
	h.log.Info("controls updated", zap.Object("controls", controls))
	writeJSON(w, http.StatusOK, controls)
}

func finite(values ...*float64) bool {
	for _, v := range values {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return false
		}
	}
	return true
}
