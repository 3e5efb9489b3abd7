package tracking

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/pinchball/internal/hand"
)

// handTrack is the persistent state for one hand label.
type handTrack struct {
	label   Label
	history *History
	pinch   *PinchDetector
	missing int
	last    PinchReading
}

func newHandTrack(label Label, historySize int, pinch PinchConfig) *handTrack {
	return &handTrack{
		label:   label,
		history: NewHistory(historySize),
		pinch:   NewPinchDetector(pinch),
	}
}

// observe records a real detection.
func (ht *handTrack) observe(h *hand.Landmarks, width, height float64) HandOutput {
	reading := ht.pinch.Update(h)
	changed := reading.Pinched != ht.last.Pinched
	ht.last = reading

	frame := ToPixels(h, width, height)
	ht.history.Observe(frame)
	ht.missing = 0

	return HandOutput{
		Label:         ht.label,
		Landmarks:     frame,
		Scale:         reading.Scale,
		ClickDistance: reading.RelDistance,
		Clicked:       reading.Pinched,
		Changed:       changed,
		Present:       true,
	}
}

// ghost handles a frame in which the hand was not detected. While fewer than
// Cap consecutive frames have been missed and at least two frames are known,
// the newest frame is extrapolated by the history velocity and recorded as
// if it had been seen. Otherwise the hand is reported absent.
func (ht *handTrack) ghost() HandOutput {
	ht.missing++

	if ht.history.Len() < 2 || ht.missing >= ht.history.Cap() {
		return absent(ht.label)
	}

	newest, _ := ht.history.Newest()
	frame := Extrapolate(newest, ht.history.Velocity())
	ht.history.Observe(frame)

	return HandOutput{
		Label:         ht.label,
		Landmarks:     frame,
		Scale:         ht.last.Scale,
		ClickDistance: ht.last.RelDistance,
		Clicked:       ht.last.Pinched,
		Present:       true,
		Ghost:         true,
	}
}

func (ht *handTrack) reset() {
	ht.history.Clear()
	ht.pinch = NewPinchDetector(ht.pinch.cfg)
	ht.missing = 0
	ht.last = PinchReading{}
}

// Extrapolate returns f with every point moved by v.
func Extrapolate(f Frame, v r2.Vec) Frame {
	for i := range f {
		f[i] = r2.Add(f[i], v)
	}
	return f
}

func absent(label Label) HandOutput {
	return HandOutput{Label: label, Scale: 1}
}
