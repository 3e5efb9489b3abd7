package tracking

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/pinchball/internal/hand"
)

func TestPinchDetector_Enter(t *testing.T) {
	p := NewPinchDetector(DefaultPinchConfig())

	assert.False(t, p.Step(0.10))
	assert.Equal(t, 1, p.Counter())
	assert.False(t, p.Step(0.10))
	assert.True(t, p.Step(0.10), "pinch must engage on the third frame")
	assert.Equal(t, 3, p.Counter())
}

func TestPinchDetector_SingleReleaseFrameHolds(t *testing.T) {
	p := NewPinchDetector(DefaultPinchConfig())
	for i := 0; i < 3; i++ {
		p.Step(0.10)
	}
	require.True(t, p.Pinched())

	assert.True(t, p.Step(0.25))
	assert.Equal(t, 2, p.Counter())
}

func TestPinchDetector_Release(t *testing.T) {
	p := NewPinchDetector(DefaultPinchConfig())
	for i := 0; i < 3; i++ {
		p.Step(0.10)
	}

	// The counter walks from +K to -K before the state flips back.
	for i := 0; i < 5; i++ {
		require.True(t, p.Step(0.30), "frame %d", i)
	}
	assert.False(t, p.Step(0.30))
	assert.Equal(t, -3, p.Counter())
}

func TestPinchDetector_Hysteresis(t *testing.T) {
	t.Run("values between thresholds never change the counter", func(t *testing.T) {
		p := NewPinchDetector(DefaultPinchConfig())
		for i := 0; i < 10; i++ {
			assert.False(t, p.Step(0.17))
		}
		assert.Equal(t, 0, p.Counter())

		for i := 0; i < 3; i++ {
			p.Step(0.10)
		}
		require.True(t, p.Pinched())
		for i := 0; i < 10; i++ {
			assert.True(t, p.Step(0.17))
		}
		assert.Equal(t, 3, p.Counter())
	})

	t.Run("below on while pinched does not count", func(t *testing.T) {
		p := NewPinchDetector(DefaultPinchConfig())
		for i := 0; i < 3; i++ {
			p.Step(0.10)
		}
		p.Step(0.25)
		p.Step(0.05)
		assert.Equal(t, 2, p.Counter())
	})

	t.Run("non-consecutive frames still accumulate", func(t *testing.T) {
		p := NewPinchDetector(DefaultPinchConfig())
		p.Step(0.10)
		p.Step(0.50)
		p.Step(0.10)
		p.Step(0.17)
		assert.True(t, p.Step(0.10))
	})
}

func TestPinchDetector_CounterSaturates(t *testing.T) {
	p := NewPinchDetector(DefaultPinchConfig())
	for i := 0; i < 3; i++ {
		p.Step(0.10)
	}
	for i := 0; i < 6; i++ {
		p.Step(0.30)
	}
	require.False(t, p.Pinched())
	assert.Equal(t, -3, p.Counter())

	// Re-entering from -K takes 2K frames.
	for i := 0; i < 5; i++ {
		require.False(t, p.Step(0.10), "frame %d", i)
	}
	assert.True(t, p.Step(0.10))
	assert.Equal(t, 3, p.Counter())
}

func TestPinchDetector_Update(t *testing.T) {
	t.Run("reports distances", func(t *testing.T) {
		p := NewPinchDetector(DefaultPinchConfig())
		h := hand.PinchDistance("Left", 0.10)

		r := p.Update(&h)

		assert.InDelta(t, 0.14, r.Scale, 1e-9)
		assert.InDelta(t, 0.10*0.14, r.RawDistance, 1e-9)
		assert.InDelta(t, 0.10, r.RelDistance, 1e-9)
		assert.False(t, r.Pinched)
	})

	t.Run("pinch preset engages after debounce", func(t *testing.T) {
		p := NewPinchDetector(DefaultPinchConfig())
		h := hand.Pinch("Right")

		var r PinchReading
		for i := 0; i < 3; i++ {
			r = p.Update(&h)
		}
		assert.True(t, r.Pinched)
	})

	t.Run("degenerate hand size is infinitely far", func(t *testing.T) {
		p := NewPinchDetector(DefaultPinchConfig())
		h := hand.Pinch("Right")
		h.Points[hand.MiddleMCP] = h.Points[hand.Wrist]

		var r PinchReading
		for i := 0; i < 10; i++ {
			r = p.Update(&h)
		}

		assert.True(t, math.IsInf(r.RelDistance, 1))
		assert.Equal(t, 0.0, r.Scale)
		assert.False(t, r.Pinched)
	})
}

func TestNewPinchDetector_InvalidConfigTakesDefaults(t *testing.T) {
	tests := []struct {
		name string
		cfg  PinchConfig
	}{
		{"zero frames", PinchConfig{On: 0.15, Off: 0.20, Frames: 0}},
		{"negative frames", PinchConfig{On: 0.15, Off: 0.20, Frames: -2}},
		{"on above off", PinchConfig{On: 0.30, Off: 0.20, Frames: 3}},
		{"zero on", PinchConfig{On: 0, Off: 0.20, Frames: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPinchDetector(tt.cfg)

			assert.False(t, p.Step(10), "a far reading must never engage")
			assert.False(t, p.Step(0.10))
			assert.False(t, p.Step(0.10))
			assert.True(t, p.Step(0.10), "pinch engages after the default debounce")
		})
	}
}

func TestNewPinchDetector_ValidConfigKept(t *testing.T) {
	p := NewPinchDetector(PinchConfig{On: 0.10, Off: 0.30, Frames: 1})

	assert.False(t, p.Step(0.12))
	assert.True(t, p.Step(0.05))
}
