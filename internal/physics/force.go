// Package physics implements the force-composition model that drives the ball.
package physics

// Signal is a per-tick event that forces may react to.
type Signal uint8

const (
	// BounceX reports a collision with a vertical (left/right) wall.
	BounceX Signal = 1 << iota
	// BounceY reports a collision with a horizontal (top/bottom) wall.
	BounceY
	// Left flips the direction of horizontal wind.
	Left
	// Up flips the direction of vertical wind.
	Up
)

// Signals is the set of signals active for one tick.
type Signals uint8

// NewSignals returns a set containing the given signals.
func NewSignals(sigs ...Signal) Signals {
	var s Signals
	for _, sig := range sigs {
		s = s.Add(sig)
	}
	return s
}

// Add returns s with sig included.
func (s Signals) Add(sig Signal) Signals { return s | Signals(sig) }

// Has reports whether sig is in s.
func (s Signals) Has(sig Signal) bool { return s&Signals(sig) != 0 }

// Axis selects a velocity component.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	if a == AxisX {
		return "x"
	}
	return "y"
}

// Force mutates a body's velocity once per tick.
type Force interface {
	// Apply adjusts b.Velocity in place. It never fails.
	Apply(b *Body, s Signals)

	// Magnitude returns the force's scalar parameter.
	Magnitude() float64

	// SetMagnitude replaces the force's scalar parameter.
	SetMagnitude(m float64)
}

// Gravity is a constant downward pull.
type Gravity struct {
	Pull float64
}

// NewGravity creates a Gravity force with the given pull per tick.
func NewGravity(pull float64) *Gravity { return &Gravity{Pull: pull} }

func (g *Gravity) Apply(b *Body, _ Signals) {
	b.Velocity.Y += g.Pull
}

func (g *Gravity) Magnitude() float64     { return g.Pull }
func (g *Gravity) SetMagnitude(m float64) { g.Pull = m }

// Bounce reflects and damps velocity on a wall collision signal.
// Only one axis is reflected per tick and BounceX wins over BounceY, so a
// corner hit reflects horizontally only.
type Bounce struct {
	Damping float64
}

// NewBounce creates a Bounce force with the given damping factor.
func NewBounce(damping float64) *Bounce { return &Bounce{Damping: damping} }

func (f *Bounce) Apply(b *Body, s Signals) {
	switch {
	case s.Has(BounceX):
		b.Velocity.X *= -f.Damping
	case s.Has(BounceY):
		b.Velocity.Y *= -f.Damping
	}
}

func (f *Bounce) Magnitude() float64     { return f.Damping }
func (f *Bounce) SetMagnitude(m float64) { f.Damping = m }

// Wind is a constant push along one axis. The Left signal reverses an
// x-axis wind and the Up signal reverses a y-axis wind.
type Wind struct {
	Strength float64
	Axis     Axis
}

// NewWind creates a Wind force along axis.
func NewWind(strength float64, axis Axis) *Wind {
	return &Wind{Strength: strength, Axis: axis}
}

func (w *Wind) Apply(b *Body, s Signals) {
	dir := 1.0
	switch w.Axis {
	case AxisX:
		if s.Has(Left) {
			dir = -1
		}
		b.Velocity.X += w.Strength * dir
	case AxisY:
		if s.Has(Up) {
			dir = -1
		}
		b.Velocity.Y += w.Strength * dir
	}
}

func (w *Wind) Magnitude() float64     { return w.Strength }
func (w *Wind) SetMagnitude(m float64) { w.Strength = m }
