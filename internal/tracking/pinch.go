package tracking

import (
	"math"

	"github.com/ayusman/pinchball/internal/hand"
)

// Pinch thresholds in hand-size units, and the debounce frame count.
const (
	DefaultPinchOn     = 0.15
	DefaultPinchOff    = 0.20
	DefaultPinchFrames = 3
)

// PinchConfig holds the hysteresis thresholds and debounce length.
// On must be below Off.
type PinchConfig struct {
	On     float64 `yaml:"on"`
	Off    float64 `yaml:"off"`
	Frames int     `yaml:"frames"`
}

// DefaultPinchConfig returns the standard thresholds.
func DefaultPinchConfig() PinchConfig {
	return PinchConfig{
		On:     DefaultPinchOn,
		Off:    DefaultPinchOff,
		Frames: DefaultPinchFrames,
	}
}

// withDefaults replaces a non-positive frame count and thresholds that do
// not satisfy 0 < On < Off with the defaults.
func (c PinchConfig) withDefaults() PinchConfig {
	if c.Frames <= 0 {
		c.Frames = DefaultPinchFrames
	}
	if c.On <= 0 || c.On >= c.Off {
		c.On, c.Off = DefaultPinchOn, DefaultPinchOff
	}
	return c
}

// PinchReading is the result of one pinch update.
type PinchReading struct {
	RawDistance float64 // thumb tip to index tip, normalized units
	Scale       float64 // wrist to middle MCP, normalized units
	RelDistance float64 // RawDistance / Scale, +Inf when Scale is zero
	Pinched     bool
}

// PinchDetector debounces the relative thumb-index distance of one hand into
// a pinched/unpinched state.
//
// While unpinched, readings below On count up; while pinched, readings above
// Off count down. The counter saturates at ±Frames and the state flips when
// it reaches the bound on the other side.
type PinchDetector struct {
	cfg     PinchConfig
	counter int
	pinched bool
}

// NewPinchDetector creates an unpinched detector with a zero counter.
// Invalid thresholds or frame counts take the defaults.
func NewPinchDetector(cfg PinchConfig) *PinchDetector {
	return &PinchDetector{cfg: cfg.withDefaults()}
}

// Update measures h and advances the state machine.
func (p *PinchDetector) Update(h *hand.Landmarks) PinchReading {
	raw := planarDistance(h.Points[hand.ThumbTip], h.Points[hand.IndexTip])
	scale := planarDistance(h.Points[hand.Wrist], h.Points[hand.MiddleMCP])

	rel := math.Inf(1)
	if scale > 0 {
		rel = raw / scale
	}

	return PinchReading{
		RawDistance: raw,
		Scale:       scale,
		RelDistance: rel,
		Pinched:     p.Step(rel),
	}
}

// Step advances the state machine with a relative distance and returns the
// new pinched state.
func (p *PinchDetector) Step(rel float64) bool {
	k := p.cfg.Frames

	if p.pinched {
		if rel > p.cfg.Off {
			p.counter--
		}
	} else if rel < p.cfg.On {
		p.counter++
	}

	p.counter = max(-k, min(k, p.counter))

	switch {
	case !p.pinched && p.counter >= k:
		p.pinched = true
	case p.pinched && p.counter <= -k:
		p.pinched = false
	}

	return p.pinched
}

// Pinched reports the current state.
func (p *PinchDetector) Pinched() bool { return p.pinched }

// Counter returns the debounce counter.
func (p *PinchDetector) Counter() int { return p.counter }

func planarDistance(a, b hand.Point3D) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
