package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/pinchball/internal/physics"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1000, cfg.Display.Width)
	assert.Equal(t, 800, cfg.Display.Height)
	assert.Equal(t, Vec{X: 100, Y: 10}, cfg.Ball.Position)
	assert.Equal(t, 0.1, cfg.Forces.Gravity)
	assert.Equal(t, 0.9, cfg.Forces.Damping)
	assert.Equal(t, 5, cfg.Tracking.HistorySize)
	assert.Equal(t, 0.15, cfg.Tracking.Pinch.On)
	assert.Equal(t, 0.20, cfg.Tracking.Pinch.Off)
	assert.Equal(t, 3, cfg.Tracking.Pinch.Frames)

	order, err := cfg.ForceOrder()
	require.NoError(t, err)
	assert.Equal(t, []physics.ForceName{
		physics.ForceGravity, physics.ForceBounce, physics.ForceWindX, physics.ForceWindY,
	}, order)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pinchball.yaml")
	yml := `
ui: headless
display:
  width: 640
  height: 480
forces:
  gravity: 0.25
  order: [bounce, gravity]
tracking:
  pinch:
    frames: 4
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, UIHeadless, cfg.UI)
	assert.Equal(t, 640, cfg.Display.Width)
	assert.Equal(t, 0.25, cfg.Forces.Gravity)
	assert.Equal(t, 4, cfg.Tracking.Pinch.Frames)

	// Untouched fields keep defaults.
	assert.Equal(t, 0.9, cfg.Forces.Damping)
	assert.Equal(t, 0.15, cfg.Tracking.Pinch.On)
	assert.Equal(t, 60, cfg.Display.FPS)

	order, err := cfg.ForceOrder()
	require.NoError(t, err)
	assert.Equal(t, []physics.ForceName{physics.ForceBounce, physics.ForceGravity}, order)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("display: [1, 2"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestApplyEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PINCHBALL_UI", "tray")
	t.Setenv("PINCHBALL_ADDR", ":9999")
	t.Setenv("PINCHBALL_CAMERA", "2")
	t.Setenv("PINCHBALL_GRAVITY", "0.3")
	t.Setenv("PINCHBALL_CAMERA_ENABLED", "false")
	t.Setenv("PINCHBALL_FPS", "not-a-number")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, UITray, cfg.UI)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, 2, cfg.Camera.DeviceID)
	assert.Equal(t, 0.3, cfg.Forces.Gravity)
	assert.False(t, cfg.Camera.Enabled)
	assert.Equal(t, 60, cfg.Display.FPS, "unparsable values fall back")
}

func TestApplyEnv_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PINCHBALL_WIND_X=0.4\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("PINCHBALL_WIND_X") })

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, 0.4, cfg.Forces.WindX)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown ui", func(c *Config) { c.UI = "vr" }},
		{"zero width", func(c *Config) { c.Display.Width = 0 }},
		{"zero fps", func(c *Config) { c.Display.FPS = 0 }},
		{"zero ball", func(c *Config) { c.Ball.Size.X = 0 }},
		{"negative terminal", func(c *Config) { c.Ball.TerminalVelocity.Y = -1 }},
		{"negative friction", func(c *Config) { c.Ball.Friction = -0.1 }},
		{"unknown force", func(c *Config) { c.Forces.Order = []string{"magnetism"} }},
		{"duplicate force", func(c *Config) { c.Forces.Order = []string{"gravity", "gravity"} }},
		{"short history", func(c *Config) { c.Tracking.HistorySize = 1 }},
		{"inverted pinch", func(c *Config) { c.Tracking.Pinch.On = 0.3 }},
		{"zero pinch frames", func(c *Config) { c.Tracking.Pinch.Frames = 0 }},
		{"negative max wind", func(c *Config) { c.Controls.MaxWind = -1 }},
		{"unknown detector", func(c *Config) { c.Detector.Kind = "leap" }},
		{"confidence above one", func(c *Config) { c.Detector.MinConfidence = 1.5 }},
		{"negative tracking confidence", func(c *Config) { c.Detector.MinTrackingConfidence = -0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestLoad_TrackingConfidence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pinchball.yaml")
	require.NoError(t, os.WriteFile(path, []byte("detector:\n  min_confidence: 0.5\n  min_tracking_confidence: 0.7\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Detector.MinConfidence)
	assert.Equal(t, 0.7, cfg.Detector.MinTrackingConfidence)
	assert.NoError(t, cfg.Validate())
}
