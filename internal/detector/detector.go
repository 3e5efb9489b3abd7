package detector

import (
	"errors"

	"gocv.io/x/gocv"

	"github.com/ayusman/pinchball/internal/hand"
)

// ErrUnavailable is returned when no detection could be run for a frame,
// for example because the camera produced no image.
var ErrUnavailable = errors.New("detection unavailable")

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]hand.Landmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// ScriptPath overrides the location of mediapipe_service.py.
	ScriptPath string
}

// DefaultConfig returns a Config with low confidence thresholds for two hands.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.2,
		MinTrackingConf: 0.2,
	}
}
