// Package hand defines the 21-point hand landmark set shared by detectors
// and the tracking core. It has no OpenCV dependency.
package hand

import (
	"errors"
	"fmt"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// ErrMalformedLandmarks is returned when a detector produces a landmark set
// that does not have exactly NumLandmarks points.
var ErrMalformedLandmarks = errors.New("malformed landmark set")

// Connections lists landmark index pairs forming the hand skeleton.
var Connections = [][2]int{
	{Wrist, ThumbCMC}, {ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
	{Wrist, IndexMCP}, {IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
	{IndexMCP, MiddleMCP}, {MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip},
	{MiddleMCP, RingMCP}, {RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
	{RingMCP, PinkyMCP}, {Wrist, PinkyMCP}, {PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
}

// Point3D represents a normalized landmark position. X and Y are in [0,1]
// image coordinates; Z is relative depth and unused by the tracking core.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Landmarks represents the 21 hand landmarks detected by MediaPipe.
type Landmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// New builds a Landmarks from a variable-length point list.
// It fails with ErrMalformedLandmarks unless exactly NumLandmarks points are given.
func New(points []Point3D, handedness string, score float64) (Landmarks, error) {
	if len(points) != NumLandmarks {
		return Landmarks{}, fmt.Errorf("%w: got %d points, want %d", ErrMalformedLandmarks, len(points), NumLandmarks)
	}
	h := Landmarks{Handedness: handedness, Score: score}
	copy(h.Points[:], points)
	return h, nil
}

// Translate returns a copy of h with every point shifted by (dx, dy).
func (h Landmarks) Translate(dx, dy float64) Landmarks {
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
	}
	return h
}
