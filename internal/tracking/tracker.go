package tracking

import (
	"errors"

	"go.uber.org/zap"

	"github.com/ayusman/pinchball/internal/hand"
)

// Config holds tracker settings.
type Config struct {
	Width       float64
	Height      float64
	HistorySize int
	Pinch       PinchConfig
}

// HandOutput is the per-frame gesture result for one hand.
type HandOutput struct {
	Label         Label
	Landmarks     Frame   // latest pixel-space landmarks, real or ghost
	Scale         float64 // hand size in normalized units
	ClickDistance float64 // relative thumb-index distance
	Clicked       bool    // debounced pinch state
	Changed       bool    // pinch state flipped this frame
	Present       bool
	Ghost         bool
}

// FrameOutput is the gesture result for one frame.
type FrameOutput struct {
	Hands    [NumLabels]HandOutput
	Detected int // hands actually detected, excluding ghosts
}

// NoHands reports whether the detector found no hands this frame.
func (f FrameOutput) NoHands() bool { return f.Detected == 0 }

// Tracker keeps per-hand history and pinch state across frames.
type Tracker struct {
	cfg   Config
	hands [NumLabels]*handTrack
	log   *zap.Logger
}

// New creates a Tracker. A non-positive HistorySize and invalid Pinch
// fields take defaults.
func New(cfg Config, log *zap.Logger) *Tracker {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultHistorySize
	}
	cfg.Pinch = cfg.Pinch.withDefaults()
	if log == nil {
		log = zap.NewNop()
	}

	t := &Tracker{cfg: cfg, log: log.Named("tracking")}
	for _, l := range Labels {
		t.hands[l] = newHandTrack(l, cfg.HistorySize, cfg.Pinch)
	}
	return t
}

// Update consumes one frame's detection result. A non-nil err is treated
// as a frame with no hands; missing hands fall back to ghost frames.
func (t *Tracker) Update(hands []hand.Landmarks, err error) FrameOutput {
	if err != nil {
		switch {
		case errors.Is(err, hand.ErrMalformedLandmarks):
			t.log.Error("detector returned malformed landmarks", zap.Error(err))
		default:
			t.log.Debug("detection unavailable", zap.Error(err))
		}
		hands = nil
	}

	var out FrameOutput
	var seen [NumLabels]bool

	for i := range hands {
		h := &hands[i]
		label, ok := ParseLabel(h.Handedness)
		if !ok {
			t.log.Debug("skipping hand with unknown handedness", zap.String("handedness", h.Handedness))
			continue
		}
		if seen[label] {
			t.log.Debug("skipping duplicate hand", zap.Stringer("label", label))
			continue
		}
		seen[label] = true
		out.Detected++
		out.Hands[label] = t.hands[label].observe(h, t.cfg.Width, t.cfg.Height)
	}

	for _, l := range Labels {
		if seen[l] {
			continue
		}
		out.Hands[l] = t.hands[l].ghost()
		if out.Hands[l].Ghost {
			t.log.Debug("generated ghost frame", zap.Stringer("label", l), zap.Int("missing", t.hands[l].missing))
		}
	}

	return out
}

// Reset forgets all history and pinch state.
func (t *Tracker) Reset() {
	for _, ht := range t.hands {
		ht.reset()
	}
}

// History returns the landmark history for a label.
func (t *Tracker) History(l Label) *History { return t.hands[l].history }

// Missing returns the number of consecutive frames a label has gone undetected.
func (t *Tracker) Missing(l Label) int { return t.hands[l].missing }
