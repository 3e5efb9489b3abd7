package hand

// OpenPalm returns a preset hand with all fingers extended.
// The wrist to middle MCP distance is 0.14.
func OpenPalm(handedness string) Landmarks {
	landmarks := Landmarks{
		Handedness: handedness,
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended to the side
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	landmarks.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	landmarks.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	landmarks.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	landmarks.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return landmarks
}

// PinchDistance returns an open palm whose thumb and index tips are
// rel hand-sizes apart, where hand size is the wrist to middle MCP distance.
func PinchDistance(handedness string, rel float64) Landmarks {
	landmarks := OpenPalm(handedness)

	wrist := landmarks.Points[Wrist]
	mcp := landmarks.Points[MiddleMCP]
	scale := wrist.Y - mcp.Y

	landmarks.Points[ThumbTip] = Point3D{X: 0.60, Y: 0.50}
	landmarks.Points[IndexTip] = Point3D{X: 0.60 + rel*scale, Y: 0.50}
	landmarks.Points[IndexDIP] = Point3D{X: 0.60 + rel*scale, Y: 0.46}

	return landmarks
}

// Pinch returns a preset hand with thumb and index tips touching.
func Pinch(handedness string) Landmarks {
	return PinchDistance(handedness, 0.05)
}
