package physics

// EdgeOffset is how far inside a wall a colliding body is placed.
const EdgeOffset = 1.0

// Bounds is the drawable area. Bodies are positioned by their center, so a
// body touches a wall when its center is half its size away from it.
type Bounds struct {
	Width  float64
	Height float64
}

// Resolve pushes b back inside the bounds and returns s with the matching
// bounce signals added.
func (bd Bounds) Resolve(b *Body, s Signals) Signals {
	halfW := b.Size.X / 2
	halfH := b.Size.Y / 2

	switch {
	case b.Position.X+halfW >= bd.Width:
		b.Position.X = bd.Width - halfW - EdgeOffset
		s = s.Add(BounceX)
	case b.Position.X-halfW <= 0:
		b.Position.X = halfW + EdgeOffset
		s = s.Add(BounceX)
	}

	switch {
	case b.Position.Y+halfH >= bd.Height:
		b.Position.Y = bd.Height - halfH - EdgeOffset
		s = s.Add(BounceY)
	case b.Position.Y-halfH <= 0:
		b.Position.Y = halfH + EdgeOffset
		s = s.Add(BounceY)
	}

	return s
}
