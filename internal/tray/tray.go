// Package tray provides a system tray interface for pinchball.
package tray

import (
	"fmt"
	"sync"
	"time"

	"github.com/getlantern/systray"
	"go.uber.org/zap"

	"github.com/ayusman/pinchball/internal/app"
)

// refreshInterval is how often menu titles follow the simulation state.
const refreshInterval = 250 * time.Millisecond

// Controller accepts commands for the simulation loop.
type Controller interface {
	Submit(cmd app.Command) error
}

// StateSource provides the latest published snapshot.
type StateSource interface {
	Latest() app.Snapshot
}

// Tray represents the system tray application.
type Tray struct {
	controller Controller
	state      StateSource
	log        *zap.Logger

	onOpen func()
	onQuit func()
	mu     sync.RWMutex

	// Menu items stored for later updates
	menuGestures *systray.MenuItem
	menuWind     *systray.MenuItem
	menuStatus   *systray.MenuItem

	done chan struct{}
	once sync.Once
}

// New creates a new Tray sending commands to controller.
func New(controller Controller, state StateSource, log *zap.Logger) *Tray {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tray{
		controller: controller,
		state:      state,
		log:        log.Named("tray"),
		done:       make(chan struct{}),
	}
}

// OnOpen sets the callback function to be called when the viewer menu item is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Pinchball")
	systray.SetTooltip("Pinchball hand-controlled ball")

	t.mu.Lock()
	t.menuGestures = systray.AddMenuItemCheckbox("Gestures", "Steer wind with pinches", true)
	t.menuWind = systray.AddMenuItemCheckbox("Wind", "Apply wind forces", true)
	menuReset := systray.AddMenuItem("Reset Ball", "Put the ball back at its start position")
	systray.AddSeparator()

	t.menuStatus = systray.AddMenuItem("Waiting for frames", "Simulation status")
	t.menuStatus.Disable()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Viewer...", "Open the live view in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Pinchball")
	t.mu.Unlock()

	// Handle menu item clicks in a separate goroutine
	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-t.menuGestures.ClickedCh:
				t.handleToggleGestures()
			case <-t.menuWind.ClickedCh:
				t.handleToggleWind()
			case <-menuReset.ClickedCh:
				t.handleReset()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				systray.Quit()
				return
			case <-t.done:
				return
			case <-ticker.C:
				t.Refresh()
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
	t.once.Do(func() { close(t.done) })
}

func (t *Tray) submit(cmd app.Command) {
	if err := t.controller.Submit(cmd); err != nil {
		t.log.Warn("command dropped", zap.Stringer("command", cmd.Kind), zap.Error(err))
	}
}

func (t *Tray) handleToggleGestures() { t.submit(app.ToggleGestures()) }

func (t *Tray) handleToggleWind() { t.submit(app.ToggleWind()) }

func (t *Tray) handleReset() { t.submit(app.ResetBall()) }

// handleOpen handles the viewer menu item click.
func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit asks the loop to stop and runs the quit callback.
func (t *Tray) handleQuit() {
	t.submit(app.Quit())

	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// Refresh updates the checkboxes and status line from the latest snapshot.
func (t *Tray) Refresh() {
	if t.state == nil {
		return
	}
	snap := t.state.Latest()

	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuGestures != nil {
		setChecked(t.menuGestures, snap.Controls.Gestures)
	}
	if t.menuWind != nil {
		setChecked(t.menuWind, snap.Controls.Wind)
	}
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(StatusLine(snap))
	}
}

func setChecked(item *systray.MenuItem, on bool) {
	if on {
		item.Check()
	} else {
		item.Uncheck()
	}
}

// StatusLine summarizes a snapshot for the tray menu.
func StatusLine(snap app.Snapshot) string {
	if snap.Tick == 0 {
		return "Waiting for frames"
	}
	if snap.NoHands {
		return fmt.Sprintf("Ball %.0f,%.0f | no hands", snap.Ball.Position.X, snap.Ball.Position.Y)
	}
	return fmt.Sprintf("Ball %.0f,%.0f | wind %.2f,%.2f",
		snap.Ball.Position.X, snap.Ball.Position.Y, snap.Wind.X, snap.Wind.Y)
}
