package app

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrCommandQueueFull is returned by Submit when the loop is not keeping up.
var ErrCommandQueueFull = errors.New("command queue full")

// commandQueueSize bounds how many commands may wait for the next frame.
const commandQueueSize = 64

// CommandKind identifies what a Command does.
type CommandKind int

const (
	CmdSetControls CommandKind = iota
	CmdPatchControls
	CmdToggleGestures
	CmdToggleWind
	CmdReset
	CmdQuit
)

func (k CommandKind) String() string {
	switch k {
	case CmdSetControls:
		return "set_controls"
	case CmdPatchControls:
		return "patch_controls"
	case CmdToggleGestures:
		return "toggle_gestures"
	case CmdToggleWind:
		return "toggle_wind"
	case CmdReset:
		return "reset"
	case CmdQuit:
		return "quit"
	default:
		return fmt.Sprintf("CommandKind(%d)", int(k))
	}
}

// Command is a request from outside the loop. It is applied at the start
// of the next frame.
type Command struct {
	Kind     CommandKind
	Controls Controls      // CmdSetControls only
	Patch    ControlsPatch // CmdPatchControls only
}

// SetControls replaces the slider values and switches.
func SetControls(c Controls) Command { return Command{Kind: CmdSetControls, Controls: c} }

// PatchControls merges the set fields of p into the loop's current controls.
func PatchControls(p ControlsPatch) Command { return Command{Kind: CmdPatchControls, Patch: p} }

// ToggleGestures flips gesture input on or off.
func ToggleGestures() Command { return Command{Kind: CmdToggleGestures} }

// ToggleWind flips the wind forces on or off.
func ToggleWind() Command { return Command{Kind: CmdToggleWind} }

// ResetBall puts the ball back at its starting position at rest.
func ResetBall() Command { return Command{Kind: CmdReset} }

// Quit stops the loop after the current frame.
func Quit() Command { return Command{Kind: CmdQuit} }

// Key codes returned by the window.
const (
	keyEsc = 27
)

// CommandForKey maps a window key code to a command.
func CommandForKey(key int) (Command, bool) {
	if key < 0 {
		return Command{}, false
	}

	switch key & 0xFF {
	case 'q', keyEsc:
		return Quit(), true
	case 'r':
		return ResetBall(), true
	case 'g':
		return ToggleGestures(), true
	case 'w':
		return ToggleWind(), true
	}
	return Command{}, false
}

// Submit queues cmd for the loop without blocking.
func (a *App) Submit(cmd Command) error {
	select {
	case a.commands <- cmd:
		return nil
	default:
		return ErrCommandQueueFull
	}
}

// drainCommands applies every queued command.
func (a *App) drainCommands() {
	for {
		select {
		case cmd := <-a.commands:
			a.apply(cmd)
		default:
			return
		}
	}
}

func (a *App) apply(cmd Command) {
	switch cmd.Kind {
	case CmdSetControls:
		a.controls = cmd.Controls
		a.saveControls()
	case CmdPatchControls:
		a.controls = cmd.Patch.Apply(a.controls)
		a.saveControls()
	case CmdToggleGestures:
		a.controls.Gestures = !a.controls.Gestures
	case CmdToggleWind:
		a.controls.Wind = !a.controls.Wind
	case CmdReset:
		a.body.Reset()
	case CmdQuit:
		a.quit = true
	}
	a.log.Debug("applied command", zap.Stringer("command", cmd.Kind), zap.Object("controls", a.controls))
}

// saveControls persists the loop's controls. A nil store disables it.
func (a *App) saveControls() {
	if a.store == nil {
		return
	}
	if err := SaveControls(a.store, a.controls); err != nil {
		a.log.Error("failed to save controls", zap.Error(err))
	}
}
