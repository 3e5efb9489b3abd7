package app

import (
	"math"
	"strconv"

	"go.uber.org/zap/zapcore"

	"github.com/ayusman/pinchball/internal/config"
	"github.com/ayusman/pinchball/internal/hand"
	"github.com/ayusman/pinchball/internal/physics"
	"github.com/ayusman/pinchball/internal/store"
	"github.com/ayusman/pinchball/internal/tracking"
)

// Settings keys for the switches. Force magnitudes are stored by
// SettingsRepository.SaveForces.
const (
	settingGestures = "controls.gestures"
	settingWind     = "controls.wind"
)

// Controls are the slider values and switches that drive the forces.
type Controls struct {
	Gravity  float64 `json:"gravity"`
	Bounce   float64 `json:"bounce"`
	WindX    float64 `json:"wind_x"`
	WindY    float64 `json:"wind_y"`
	Gestures bool    `json:"gestures"`
	Wind     bool    `json:"wind"`
}

// ControlsFromConfig returns the initial controls from the configuration.
func ControlsFromConfig(cfg *config.Config) Controls {
	return Controls{
		Gravity:  cfg.Forces.Gravity,
		Bounce:   cfg.Forces.Damping,
		WindX:    cfg.Forces.WindX,
		WindY:    cfg.Forces.WindY,
		Gestures: cfg.Controls.Gestures,
		Wind:     cfg.Controls.Wind,
	}
}

// Magnitude returns the slider value for a force.
func (c Controls) Magnitude(name physics.ForceName) float64 {
	switch name {
	case physics.ForceGravity:
		return c.Gravity
	case physics.ForceBounce:
		return c.Bounce
	case physics.ForceWindX:
		return c.WindX
	case physics.ForceWindY:
		return c.WindY
	}
	return 0
}

// Valid reports whether every magnitude is a finite number.
func (c Controls) Valid() bool {
	for _, f := range []float64{c.Gravity, c.Bounce, c.WindX, c.WindY} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// ControlsPatch is a partial update of Controls. Nil fields are left
// unchanged.
type ControlsPatch struct {
	Gravity  *float64 `json:"gravity,omitempty"`
	Bounce   *float64 `json:"bounce,omitempty"`
	WindX    *float64 `json:"wind_x,omitempty"`
	WindY    *float64 `json:"wind_y,omitempty"`
	Gestures *bool    `json:"gestures,omitempty"`
	Wind     *bool    `json:"wind,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ControlsPatch) Empty() bool {
	return p == ControlsPatch{}
}

// Apply returns c with the set fields of p overlaid.
func (p ControlsPatch) Apply(c Controls) Controls {
	if p.Gravity != nil {
		c.Gravity = *p.Gravity
	}
	if p.Bounce != nil {
		c.Bounce = *p.Bounce
	}
	if p.WindX != nil {
		c.WindX = *p.WindX
	}
	if p.WindY != nil {
		c.WindY = *p.WindY
	}
	if p.Gestures != nil {
		c.Gestures = *p.Gestures
	}
	if p.Wind != nil {
		c.Wind = *p.Wind
	}
	return c
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (c Controls) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddFloat64("gravity", c.Gravity)
	enc.AddFloat64("bounce", c.Bounce)
	enc.AddFloat64("wind_x", c.WindX)
	enc.AddFloat64("wind_y", c.WindY)
	enc.AddBool("gestures", c.Gestures)
	enc.AddBool("wind", c.Wind)
	return nil
}

// LoadControls overlays persisted values onto c. Missing keys keep the
// values already in c.
func LoadControls(st *store.Store, c Controls) (Controls, error) {
	forces, err := st.Settings().Forces()
	if err != nil {
		return c, err
	}
	for name, v := range forces {
		n, ok := physics.ParseForceName(name)
		if !ok {
			continue
		}
		switch n {
		case physics.ForceGravity:
			c.Gravity = v
		case physics.ForceBounce:
			c.Bounce = v
		case physics.ForceWindX:
			c.WindX = v
		case physics.ForceWindY:
			c.WindY = v
		}
	}

	all, err := st.Settings().All()
	if err != nil {
		return c, err
	}
	if b, err := strconv.ParseBool(all[settingGestures]); err == nil {
		c.Gestures = b
	}
	if b, err := strconv.ParseBool(all[settingWind]); err == nil {
		c.Wind = b
	}
	return c, nil
}

// SaveControls persists c to the settings table.
func SaveControls(st *store.Store, c Controls) error {
	err := st.Settings().SaveForces(map[string]float64{
		physics.ForceGravity.String(): c.Gravity,
		physics.ForceBounce.String():  c.Bounce,
		physics.ForceWindX.String():   c.WindX,
		physics.ForceWindY.String():   c.WindY,
	})
	if err != nil {
		return err
	}
	if err := st.Settings().Set(settingGestures, strconv.FormatBool(c.Gestures)); err != nil {
		return err
	}
	return st.Settings().Set(settingWind, strconv.FormatBool(c.Wind))
}

// GestureWind is the wind requested by pinched hands in one frame.
type GestureWind struct {
	X       float64
	Y       float64
	Signals physics.Signals
	Active  [tracking.NumLabels]bool
}

// WindFromHands maps pinched hands to wind. The right hand's palm offset
// from the horizontal center drives wind_x, the left hand's offset from the
// vertical center drives wind_y. Offsets are measured in half-canvas units
// and capped at one, so an edge pinch gives maxWind.
func WindFromHands(out tracking.FrameOutput, width, height, maxWind float64) GestureWind {
	var w GestureWind

	if r := out.Hands[tracking.Right]; r.Present && r.Clicked {
		dx := r.Landmarks[hand.MiddleMCP].X - width/2
		w.X = maxWind * math.Min(math.Abs(dx)/(width/2), 1)
		if dx < 0 {
			w.Signals = w.Signals.Add(physics.Left)
		}
		w.Active[tracking.Right] = true
	}

	if l := out.Hands[tracking.Left]; l.Present && l.Clicked {
		dy := l.Landmarks[hand.MiddleMCP].Y - height/2
		w.Y = maxWind * math.Min(math.Abs(dy)/(height/2), 1)
		if dy < 0 {
			w.Signals = w.Signals.Add(physics.Up)
		}
		w.Active[tracking.Left] = true
	}

	return w
}
