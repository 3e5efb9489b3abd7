// Package config loads pinchball settings from defaults, a YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/pinchball/internal/physics"
	"github.com/ayusman/pinchball/internal/tracking"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// UI modes.
const (
	UIWindow   = "window"
	UITray     = "tray"
	UIHeadless = "headless"
)

// Detector kinds.
const (
	DetectorMediaPipe = "mediapipe"
	DetectorMock      = "mock"
)

// Vec is a YAML-friendly 2D vector.
type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type DisplayConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`
}

type BallConfig struct {
	Position         Vec     `yaml:"position"`
	Size             Vec     `yaml:"size"`
	TerminalVelocity Vec     `yaml:"terminal_velocity"`
	Friction         float64 `yaml:"friction"`
}

// ForcesConfig holds initial force magnitudes. Order is the registration
// order and therefore the order forces are applied each tick.
type ForcesConfig struct {
	Gravity float64  `yaml:"gravity"`
	Damping float64  `yaml:"damping"`
	WindX   float64  `yaml:"wind_x"`
	WindY   float64  `yaml:"wind_y"`
	Order   []string `yaml:"order"`
}

type TrackingConfig struct {
	HistorySize int                  `yaml:"history_size"`
	Pinch       tracking.PinchConfig `yaml:"pinch"`
}

// ControlsConfig holds the switches and gesture mapping.
type ControlsConfig struct {
	Gestures bool    `yaml:"gestures"`
	Wind     bool    `yaml:"wind"`
	MaxWind  float64 `yaml:"max_wind"`
}

type CameraConfig struct {
	Enabled  bool `yaml:"enabled"`
	DeviceID int  `yaml:"device_id"`
}

type DetectorConfig struct {
	Kind                  string  `yaml:"kind"`
	ScriptPath            string  `yaml:"script_path"`
	MinConfidence         float64 `yaml:"min_confidence"`
	MinTrackingConfidence float64 `yaml:"min_tracking_confidence"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the root configuration.
type Config struct {
	UI       string         `yaml:"ui"`
	Display  DisplayConfig  `yaml:"display"`
	Ball     BallConfig     `yaml:"ball"`
	Forces   ForcesConfig   `yaml:"forces"`
	Tracking TrackingConfig `yaml:"tracking"`
	Controls ControlsConfig `yaml:"controls"`
	Camera   CameraConfig   `yaml:"camera"`
	Detector DetectorConfig `yaml:"detector"`
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Log      LogConfig      `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		UI: UIWindow,
		Display: DisplayConfig{
			Width:  1000,
			Height: 800,
			FPS:    60,
		},
		Ball: BallConfig{
			Position:         Vec{X: 100, Y: 10},
			Size:             Vec{X: 10, Y: 10},
			TerminalVelocity: Vec{X: 10, Y: 10},
			Friction:         0.1,
		},
		Forces: ForcesConfig{
			Gravity: 0.1,
			Damping: 0.9,
			Order:   []string{"gravity", "bounce", "wind_x", "wind_y"},
		},
		Tracking: TrackingConfig{
			HistorySize: tracking.DefaultHistorySize,
			Pinch:       tracking.DefaultPinchConfig(),
		},
		Controls: ControlsConfig{
			Gestures: true,
			Wind:     true,
			MaxWind:  0.5,
		},
		Camera: CameraConfig{
			Enabled: true,
		},
		Detector: DetectorConfig{
			Kind:                  DetectorMediaPipe,
			MinConfidence:         0.2,
			MinTrackingConfidence: 0.2,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads a YAML file over the defaults. Fields missing from the file
// keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// ApplyEnv loads a .env file if present and applies PINCHBALL_* overrides.
func (c *Config) ApplyEnv() {
	godotenv.Load()

	c.UI = getEnv("PINCHBALL_UI", c.UI)
	c.Server.Addr = getEnv("PINCHBALL_ADDR", c.Server.Addr)
	c.Server.StaticDir = getEnv("PINCHBALL_STATIC_DIR", c.Server.StaticDir)
	c.Store.Path = getEnv("PINCHBALL_DB", c.Store.Path)
	c.Log.Level = getEnv("PINCHBALL_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("PINCHBALL_LOG_FORMAT", c.Log.Format)
	c.Detector.Kind = getEnv("PINCHBALL_DETECTOR", c.Detector.Kind)
	c.Detector.ScriptPath = getEnv("PINCHBALL_MEDIAPIPE_SCRIPT", c.Detector.ScriptPath)
	c.Camera.DeviceID = getEnvInt("PINCHBALL_CAMERA", c.Camera.DeviceID)
	c.Camera.Enabled = getEnvBool("PINCHBALL_CAMERA_ENABLED", c.Camera.Enabled)
	c.Display.FPS = getEnvInt("PINCHBALL_FPS", c.Display.FPS)
	c.Forces.Gravity = getEnvFloat("PINCHBALL_GRAVITY", c.Forces.Gravity)
	c.Forces.Damping = getEnvFloat("PINCHBALL_DAMPING", c.Forces.Damping)
	c.Forces.WindX = getEnvFloat("PINCHBALL_WIND_X", c.Forces.WindX)
	c.Forces.WindY = getEnvFloat("PINCHBALL_WIND_Y", c.Forces.WindY)
}

// Validate checks the configuration for values the simulation cannot run with.
func (c *Config) Validate() error {
	switch c.UI {
	case UIWindow, UITray, UIHeadless:
	default:
		return fmt.Errorf("%w: unknown ui %q", ErrInvalidConfig, c.UI)
	}

	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return fmt.Errorf("%w: display must be positive, got %dx%d", ErrInvalidConfig, c.Display.Width, c.Display.Height)
	}
	if c.Display.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidConfig, c.Display.FPS)
	}

	if c.Ball.Size.X <= 0 || c.Ball.Size.Y <= 0 {
		return fmt.Errorf("%w: ball size must be positive", ErrInvalidConfig)
	}
	if c.Ball.TerminalVelocity.X < 0 || c.Ball.TerminalVelocity.Y < 0 {
		return fmt.Errorf("%w: terminal velocity must not be negative", ErrInvalidConfig)
	}
	if c.Ball.Friction < 0 {
		return fmt.Errorf("%w: friction must not be negative", ErrInvalidConfig)
	}

	if _, err := c.ForceOrder(); err != nil {
		return err
	}

	if c.Tracking.HistorySize < 2 {
		return fmt.Errorf("%w: history_size must be at least 2, got %d", ErrInvalidConfig, c.Tracking.HistorySize)
	}
	p := c.Tracking.Pinch
	if p.On <= 0 || p.On >= p.Off {
		return fmt.Errorf("%w: pinch thresholds need 0 < on < off, got on=%g off=%g", ErrInvalidConfig, p.On, p.Off)
	}
	if p.Frames < 1 {
		return fmt.Errorf("%w: pinch frames must be at least 1, got %d", ErrInvalidConfig, p.Frames)
	}

	if c.Controls.MaxWind < 0 {
		return fmt.Errorf("%w: max_wind must not be negative", ErrInvalidConfig)
	}

	switch c.Detector.Kind {
	case DetectorMediaPipe, DetectorMock:
	default:
		return fmt.Errorf("%w: unknown detector %q", ErrInvalidConfig, c.Detector.Kind)
	}
	if !unit(c.Detector.MinConfidence) || !unit(c.Detector.MinTrackingConfidence) {
		return fmt.Errorf("%w: detector confidences must be in [0, 1], got %g and %g",
			ErrInvalidConfig, c.Detector.MinConfidence, c.Detector.MinTrackingConfidence)
	}

	return nil
}

// ForceOrder parses Forces.Order. Every name must be known and appear once.
func (c *Config) ForceOrder() ([]physics.ForceName, error) {
	seen := make(map[physics.ForceName]bool)
	order := make([]physics.ForceName, 0, len(c.Forces.Order))
	for _, s := range c.Forces.Order {
		name, ok := physics.ParseForceName(s)
		if !ok {
			return nil, fmt.Errorf("%w: unknown force %q", ErrInvalidConfig, s)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: force %q listed twice", ErrInvalidConfig, s)
		}
		seen[name] = true
		order = append(order, name)
	}
	return order, nil
}

func unit(v float64) bool { return v >= 0 && v <= 1 }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
