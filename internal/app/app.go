// Package app runs the pinchball loop: camera, hand tracking, gesture
// controls, physics and rendering, one frame at a time.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/pinchball/internal/capture"
	"github.com/ayusman/pinchball/internal/config"
	"github.com/ayusman/pinchball/internal/detector"
	"github.com/ayusman/pinchball/internal/hand"
	"github.com/ayusman/pinchball/internal/physics"
	"github.com/ayusman/pinchball/internal/render"
	"github.com/ayusman/pinchball/internal/store"
	"github.com/ayusman/pinchball/internal/tracking"
)

// StreamFPS is the target rate of encoded frames for stream viewers.
const StreamFPS = 15

// Display shows a rendered canvas and reports the pressed key, or -1.
type Display interface {
	Show(c *render.Canvas) int
	Close() error
}

// Config holds the collaborators of an App. Camera, Store and Display may
// be nil.
type Config struct {
	Settings *config.Config
	Camera   capture.Camera
	Detector detector.Detector
	Store    *store.Store
	Display  Display
	Logger   *zap.Logger
}

// App owns every piece of per-frame state. Step and Run must be called from
// a single goroutine; other goroutines use Submit and Hub.
type App struct {
	settings *config.Config
	camera   capture.Camera
	detector detector.Detector
	display  Display
	store    *store.Store

	body    *physics.Body
	bounds  physics.Bounds
	tracker *tracking.Tracker
	canvas  *render.Canvas
	hub     *Hub

	commands chan Command
	controls Controls
	recorder *recorder
	log      *zap.Logger

	tick        int64
	streamEvery int64
	last        tracking.FrameOutput
	wind        WindState
	quit        bool
}

// New builds an App from validated settings.
func New(cfg Config) (*App, error) {
	if cfg.Settings == nil {
		return nil, fmt.Errorf("%w: settings are required", config.ErrInvalidConfig)
	}
	if cfg.Detector == nil {
		return nil, fmt.Errorf("%w: detector is required", config.ErrInvalidConfig)
	}
	if err := cfg.Settings.Validate(); err != nil {
		return nil, err
	}
	order, err := cfg.Settings.ForceOrder()
	if err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("app")

	s := cfg.Settings
	controls := ControlsFromConfig(s)
	if cfg.Store != nil {
		loaded, err := LoadControls(cfg.Store, controls)
		if err != nil {
			log.Warn("failed to load saved controls, using config", zap.Error(err))
		} else {
			controls = loaded
		}
	}

	body := physics.NewBody(physics.BodyConfig{
		Position:         r2.Vec{X: s.Ball.Position.X, Y: s.Ball.Position.Y},
		Size:             r2.Vec{X: s.Ball.Size.X, Y: s.Ball.Size.Y},
		TerminalVelocity: r2.Vec{X: s.Ball.TerminalVelocity.X, Y: s.Ball.TerminalVelocity.Y},
		Friction:         s.Ball.Friction,
	})
	for _, name := range order {
		body.Forces.Set(name, newForce(name, controls.Magnitude(name)))
	}

	streamEvery := int64(s.Display.FPS / StreamFPS)
	if streamEvery < 1 {
		streamEvery = 1
	}

	a := &App{
		settings: s,
		camera:   cfg.Camera,
		detector: cfg.Detector,
		display:  cfg.Display,
		store:    cfg.Store,
		body:     body,
		bounds:   physics.Bounds{Width: float64(s.Display.Width), Height: float64(s.Display.Height)},
		tracker: tracking.New(tracking.Config{
			Width:       float64(s.Display.Width),
			Height:      float64(s.Display.Height),
			HistorySize: s.Tracking.HistorySize,
			Pinch:       s.Tracking.Pinch,
		}, log),
		canvas:      render.NewCanvas(s.Display.Width, s.Display.Height),
		hub:         NewHub(),
		commands:    make(chan Command, commandQueueSize),
		controls:    controls,
		recorder:    newRecorder(cfg.Store, log),
		log:         log,
		streamEvery: streamEvery,
	}
	a.publish()

	log.Info("app ready",
		zap.Int("width", s.Display.Width),
		zap.Int("height", s.Display.Height),
		zap.Stringers("forces", body.Forces.Names()),
		zap.Object("controls", controls),
	)
	return a, nil
}

func newForce(name physics.ForceName, magnitude float64) physics.Force {
	switch name {
	case physics.ForceGravity:
		return physics.NewGravity(magnitude)
	case physics.ForceBounce:
		return physics.NewBounce(magnitude)
	case physics.ForceWindX:
		return physics.NewWind(magnitude, physics.AxisX)
	case physics.ForceWindY:
		return physics.NewWind(magnitude, physics.AxisY)
	}
	panic(fmt.Sprintf("app: no force for %v", name))
}

// Run steps the loop at the configured frame rate until ctx is cancelled
// or a Quit command arrives.
func (a *App) Run(ctx context.Context) error {
	if a.camera != nil {
		if err := a.camera.Open(); err != nil {
			// Reads will fail and every frame is treated as empty.
			a.log.Warn("camera unavailable, running without hand input", zap.Error(err))
		}
	}

	a.recorder.start(a.settings.Display.Width, a.settings.Display.Height)
	defer func() { a.recorder.finish(a.tick) }()

	ticker := time.NewTicker(time.Second / time.Duration(a.settings.Display.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !a.Step() {
				a.log.Info("quit requested", zap.Int64("tick", a.tick))
				return nil
			}
		}
	}
}

// Step runs one frame and reports whether the loop should continue.
func (a *App) Step() bool {
	a.drainCommands()
	if a.quit {
		return false
	}

	hands, err := a.detect()
	out := a.tracker.Update(hands, err)
	a.last = out
	a.tick++
	a.recorder.observe(a.tick, out)
	if a.tick%int64(a.settings.Display.FPS) == 0 {
		a.recorder.flush()
	}

	signals := a.applyControls(out)
	signals = a.bounds.Resolve(a.body, signals)
	a.body.Tick(signals)

	a.render()
	a.publish()

	return true
}

// detect reads one camera frame and runs the detector on it.
func (a *App) detect() ([]hand.Landmarks, error) {
	if a.camera == nil {
		return a.detector.Detect(nil)
	}

	frame, err := a.camera.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	defer frame.Close()

	return a.detector.Detect(frame)
}

// applyControls sets force magnitudes for this frame and returns the wind
// direction signals.
func (a *App) applyControls(out tracking.FrameOutput) physics.Signals {
	c := a.controls
	windX, windY := c.WindX, c.WindY

	var gw GestureWind
	if c.Gestures {
		gw = WindFromHands(out,
			float64(a.settings.Display.Width),
			float64(a.settings.Display.Height),
			a.settings.Controls.MaxWind,
		)
		if gw.Active[tracking.Right] {
			windX = gw.X
		}
		if gw.Active[tracking.Left] {
			windY = gw.Y
		}
	}
	if !c.Wind {
		windX, windY = 0, 0
	}

	a.body.SetMagnitude(physics.ForceGravity, c.Gravity)
	a.body.SetMagnitude(physics.ForceBounce, c.Bounce)
	a.body.SetMagnitude(physics.ForceWindX, windX)
	a.body.SetMagnitude(physics.ForceWindY, windY)

	a.wind = WindState{
		X:       windX,
		Y:       windY,
		Left:    gw.Signals.Has(physics.Left),
		Up:      gw.Signals.Has(physics.Up),
		Gesture: gw.Active[tracking.Left] || gw.Active[tracking.Right],
	}
	return gw.Signals
}

func (a *App) render() {
	a.canvas.Draw(render.Scene{
		BallPosition: a.body.Position,
		BallSize:     a.body.Size,
		Hands:        a.last.Hands,
		NoHands:      a.last.NoHands(),
		Status:       a.status(),
	})

	if a.display != nil {
		if cmd, ok := CommandForKey(a.display.Show(a.canvas)); ok {
			if err := a.Submit(cmd); err != nil {
				a.log.Warn("dropped key command", zap.Stringer("command", cmd.Kind), zap.Error(err))
			}
		}
	}

	if a.hub.Viewers() > 0 && a.tick%a.streamEvery == 0 {
		jpeg, err := a.canvas.EncodeJPEG()
		if err != nil {
			a.log.Debug("failed to encode frame", zap.Error(err))
			return
		}
		a.hub.PublishFrame(jpeg)
	}
}

func (a *App) status() string {
	return fmt.Sprintf("gestures %s | wind %s | wind_x %.2f wind_y %.2f",
		onOff(a.controls.Gestures), onOff(a.controls.Wind), a.wind.X, a.wind.Y)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (a *App) publish() {
	hands := make([]HandState, 0, tracking.NumLabels)
	for _, h := range a.last.Hands {
		hands = append(hands, newHandState(h))
	}

	a.hub.Publish(Snapshot{
		Tick:      a.tick,
		SessionID: a.recorder.id(),
		Time:      time.Now(),
		Ball:      newBallState(a.body),
		Hands:     hands,
		NoHands:   a.last.NoHands(),
		Wind:      a.wind,
		Controls:  a.controls,
	})
}

// Hub returns the snapshot hub shared with the server and tray.
func (a *App) Hub() *Hub { return a.hub }

// Body returns the simulated ball. Only safe to use from the loop goroutine
// or when the loop is not running.
func (a *App) Body() *physics.Body { return a.body }

// Tracker returns the hand tracker. Same rules as Body.
func (a *App) Tracker() *tracking.Tracker { return a.tracker }

// Controls returns the controls in effect. Same rules as Body.
func (a *App) Controls() Controls { return a.controls }

// Ticks returns how many frames have been stepped.
func (a *App) Ticks() int64 { return a.tick }

// Close releases the camera, detector, display and canvas.
func (a *App) Close() error {
	var errs []error

	if a.camera != nil {
		if err := a.camera.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close camera: %w", err))
		}
	}
	if err := a.detector.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close detector: %w", err))
	}
	if a.display != nil {
		if err := a.display.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close display: %w", err))
		}
	}
	if err := a.canvas.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close canvas: %w", err))
	}

	for _, err := range errs {
		a.log.Warn("error during shutdown", zap.Error(err))
	}
	return errors.Join(errs...)
}
