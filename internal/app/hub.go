package app

import (
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/pinchball/internal/hand"
	"github.com/ayusman/pinchball/internal/physics"
	"github.com/ayusman/pinchball/internal/tracking"
)

// Vec is a JSON-friendly 2D vector.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func vec(v r2.Vec) Vec { return Vec{X: v.X, Y: v.Y} }

// BallState is the body as seen by observers.
type BallState struct {
	Position Vec `json:"position"`
	Size     Vec `json:"size"`
	Velocity Vec `json:"velocity"`
}

// HandState is one tracked hand as seen by observers.
type HandState struct {
	Label   string `json:"label"`
	Present bool   `json:"present"`
	Ghost   bool   `json:"ghost"`
	Pinched bool   `json:"pinched"`
	// ClickDistance is nil when the hand size was degenerate.
	ClickDistance *float64 `json:"click_distance,omitempty"`
	Palm          Vec      `json:"palm"`
	Landmarks     []Vec    `json:"landmarks,omitempty"`
}

// WindState is the wind actually applied in a frame.
type WindState struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Left    bool    `json:"left"`
	Up      bool    `json:"up"`
	Gesture bool    `json:"gesture"`
}

// Snapshot is the observable state after one frame.
type Snapshot struct {
	Tick      int64       `json:"tick"`
	SessionID string      `json:"session_id,omitempty"`
	Time      time.Time   `json:"time"`
	Ball      BallState   `json:"ball"`
	Hands     []HandState `json:"hands"`
	NoHands   bool        `json:"no_hands"`
	Wind      WindState   `json:"wind"`
	Controls  Controls    `json:"controls"`
}

func newBallState(b *physics.Body) BallState {
	return BallState{
		Position: vec(b.Position),
		Size:     vec(b.Size),
		Velocity: vec(b.Velocity),
	}
}

func newHandState(h tracking.HandOutput) HandState {
	s := HandState{
		Label:   h.Label.String(),
		Present: h.Present,
		Ghost:   h.Ghost,
		Pinched: h.Clicked,
	}
	if !h.Present {
		return s
	}

	if !math.IsInf(h.ClickDistance, 0) && !math.IsNaN(h.ClickDistance) {
		d := h.ClickDistance
		s.ClickDistance = &d
	}
	s.Palm = vec(h.Landmarks[hand.MiddleMCP])
	s.Landmarks = make([]Vec, len(h.Landmarks))
	for i, p := range h.Landmarks {
		s.Landmarks[i] = vec(p)
	}
	return s
}

// Hub hands the latest snapshot and rendered frame from the loop to other
// goroutines.
type Hub struct {
	mu       sync.RWMutex
	snap     Snapshot
	frame    []byte
	frameSeq uint64
	viewers  int
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{}
}

// Publish replaces the latest snapshot.
func (h *Hub) Publish(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snap = s
}

// Latest returns the most recent snapshot.
func (h *Hub) Latest() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snap
}

// PublishFrame replaces the latest encoded frame.
func (h *Hub) PublishFrame(jpeg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frame = jpeg
	h.frameSeq++
}

// Frame returns the latest encoded frame and its sequence number. The
// sequence number increases with every published frame.
func (h *Hub) Frame() ([]byte, uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.frame, h.frameSeq
}

// Watch registers a stream viewer. The loop only encodes frames while at
// least one viewer is registered. Call the returned func to unregister.
func (h *Hub) Watch() func() {
	h.mu.Lock()
	h.viewers++
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			h.viewers--
			h.mu.Unlock()
		})
	}
}

// Viewers returns the number of registered stream viewers.
func (h *Hub) Viewers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.viewers
}
