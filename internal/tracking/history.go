// Package tracking turns per-frame hand detections into smoothed, debounced
// gesture state for each hand.
package tracking

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/pinchball/internal/hand"
)

// DefaultHistorySize is the number of frames kept per hand.
const DefaultHistorySize = 5

// Label identifies a hand.
type Label int

const (
	Left Label = iota
	Right

	NumLabels
)

// Labels lists every hand label in a fixed order.
var Labels = [NumLabels]Label{Left, Right}

func (l Label) String() string {
	switch l {
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	default:
		return fmt.Sprintf("Label(%d)", int(l))
	}
}

// ParseLabel maps detector handedness ("Left", "RIGHT", ...) to a Label.
func ParseLabel(s string) (Label, bool) {
	switch {
	case strings.EqualFold(s, "left"):
		return Left, true
	case strings.EqualFold(s, "right"):
		return Right, true
	default:
		return 0, false
	}
}

// Frame is one landmark set in pixel space.
type Frame [hand.NumLandmarks]r2.Vec

// ToPixels converts normalized landmarks to a horizontally mirrored pixel
// frame of the given size.
func ToPixels(h *hand.Landmarks, width, height float64) Frame {
	var f Frame
	for i, p := range h.Points {
		f[i] = r2.Vec{
			X: -p.X*width + width,
			Y: p.Y * height,
		}
	}
	return f
}

// History is a fixed-capacity FIFO of frames. When full, observing a new
// frame evicts the oldest.
type History struct {
	frames []Frame
	start  int
	n      int
}

// NewHistory creates a History holding up to capacity frames.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{frames: make([]Frame, capacity)}
}

// Observe appends f, evicting the oldest frame if the history is full.
func (h *History) Observe(f Frame) {
	c := len(h.frames)
	if h.n < c {
		h.frames[(h.start+h.n)%c] = f
		h.n++
		return
	}
	h.frames[h.start] = f
	h.start = (h.start + 1) % c
}

// Len returns the number of frames held.
func (h *History) Len() int { return h.n }

// Cap returns the capacity.
func (h *History) Cap() int { return len(h.frames) }

// Full reports whether Len equals Cap.
func (h *History) Full() bool { return h.n == len(h.frames) }

// At returns the i-th frame, oldest first. It panics if i is out of range.
func (h *History) At(i int) Frame {
	if i < 0 || i >= h.n {
		panic(fmt.Sprintf("tracking: history index %d out of range [0,%d)", i, h.n))
	}
	return h.frames[(h.start+i)%len(h.frames)]
}

// Newest returns the most recent frame.
func (h *History) Newest() (Frame, bool) {
	if h.n == 0 {
		return Frame{}, false
	}
	return h.At(h.n - 1), true
}

// Velocity is the average per-frame displacement of the middle MCP across
// the window. It is zero until the history is full.
func (h *History) Velocity() r2.Vec {
	if !h.Full() {
		return r2.Vec{}
	}
	oldest := h.At(0)[hand.MiddleMCP]
	newest := h.At(h.n - 1)[hand.MiddleMCP]
	return r2.Scale(1/float64(len(h.frames)), r2.Sub(newest, oldest))
}

// Clear drops all frames.
func (h *History) Clear() {
	h.start = 0
	h.n = 0
}
