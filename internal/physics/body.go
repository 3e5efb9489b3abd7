package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// IntegrationFactor scales velocity when it is added to position each tick.
// It is a damping constant rather than a time step.
const IntegrationFactor = 0.9

// BodyConfig describes the initial state of a Body.
type BodyConfig struct {
	Position         r2.Vec
	Size             r2.Vec
	TerminalVelocity r2.Vec
	// Friction is subtracted from the magnitude of horizontal velocity each
	// tick, stopping at zero. Zero disables it.
	Friction float64
}

// Body is a point mass with a bounding box, moved by a set of forces.
type Body struct {
	Position         r2.Vec
	Size             r2.Vec
	Velocity         r2.Vec
	TerminalVelocity r2.Vec
	Friction         float64
	Forces           ForceSet

	initial BodyConfig
}

// NewBody creates a body at rest. Negative terminal velocity components are
// treated as their absolute value.
func NewBody(cfg BodyConfig) *Body {
	cfg.TerminalVelocity = r2.Vec{
		X: math.Abs(cfg.TerminalVelocity.X),
		Y: math.Abs(cfg.TerminalVelocity.Y),
	}
	b := &Body{initial: cfg}
	b.Reset()
	return b
}

// Reset restores the position and velocity from construction time. The
// registered forces are left alone.
func (b *Body) Reset() {
	b.Position = b.initial.Position
	b.Size = b.initial.Size
	b.TerminalVelocity = b.initial.TerminalVelocity
	b.Friction = b.initial.Friction
	b.Velocity = r2.Vec{}
}

// Tick advances the body by one step: apply forces in registration order,
// clamp to terminal velocity, apply friction, then integrate position.
func (b *Body) Tick(s Signals) {
	b.Forces.apply(b, s)

	b.Velocity.X = clamp(b.Velocity.X, b.TerminalVelocity.X)
	b.Velocity.Y = clamp(b.Velocity.Y, b.TerminalVelocity.Y)

	if b.Friction > 0 {
		b.Velocity.X = decay(b.Velocity.X, b.Friction)
	}

	b.Position = r2.Add(b.Position, r2.Scale(IntegrationFactor, b.Velocity))
}

// SetMagnitude updates the force registered under name. It reports false
// when no such force exists.
func (b *Body) SetMagnitude(name ForceName, m float64) bool {
	f := b.Forces.Get(name)
	if f == nil {
		return false
	}
	f.SetMagnitude(m)
	return true
}

func clamp(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}

// decay moves v toward zero by step without crossing it.
func decay(v, step float64) float64 {
	if v >= 0 {
		return math.Max(0, v-step)
	}
	return math.Min(0, v+step)
}
