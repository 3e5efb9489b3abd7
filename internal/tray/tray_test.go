package tray

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayusman/pinchball/internal/app"
)

type fakeController struct {
	cmds []app.Command
	err  error
}

func (f *fakeController) Submit(cmd app.Command) error {
	f.cmds = append(f.cmds, cmd)
	return f.err
}

func kinds(cmds []app.Command) []app.CommandKind {
	out := make([]app.CommandKind, len(cmds))
	for i, c := range cmds {
		out[i] = c.Kind
	}
	return out
}

func TestTray_MenuCommands(t *testing.T) {
	ctrl := &fakeController{}
	tr := New(ctrl, nil, nil)

	tr.handleToggleGestures()
	tr.handleToggleWind()
	tr.handleReset()

	assert.Equal(t, []app.CommandKind{app.CmdToggleGestures, app.CmdToggleWind, app.CmdReset}, kinds(ctrl.cmds))
}

func TestTray_QuitCallback(t *testing.T) {
	ctrl := &fakeController{}
	tr := New(ctrl, nil, nil)

	called := false
	tr.OnQuit(func() { called = true })
	tr.handleQuit()

	assert.True(t, called)
	assert.Equal(t, []app.CommandKind{app.CmdQuit}, kinds(ctrl.cmds))
}

func TestTray_OpenCallback(t *testing.T) {
	tr := New(&fakeController{}, nil, nil)
	tr.handleOpen()

	opened := 0
	tr.OnOpen(func() { opened++ })
	tr.handleOpen()

	assert.Equal(t, 1, opened)
}

func TestTray_SubmitErrorIsLogged(t *testing.T) {
	ctrl := &fakeController{err: errors.New("full")}
	tr := New(ctrl, nil, nil)

	assert.NotPanics(t, tr.handleReset)
	assert.Len(t, ctrl.cmds, 1)
}

func TestTray_RefreshWithoutMenu(t *testing.T) {
	hub := app.NewHub()
	hub.Publish(app.Snapshot{Tick: 3})
	tr := New(&fakeController{}, hub, nil)

	assert.NotPanics(t, tr.Refresh)
}

func TestStatusLine(t *testing.T) {
	tests := []struct {
		name string
		snap app.Snapshot
		want string
	}{
		{"before first frame", app.Snapshot{}, "Waiting for frames"},
		{
			"no hands",
			app.Snapshot{Tick: 1, NoHands: true, Ball: app.BallState{Position: app.Vec{X: 100, Y: 10.4}}},
			"Ball 100,10 | no hands",
		},
		{
			"wind",
			app.Snapshot{Tick: 1, Ball: app.BallState{Position: app.Vec{X: 5, Y: 6}}, Wind: app.WindState{X: 0.25, Y: -0.1}},
			"Ball 5,6 | wind 0.25,-0.10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusLine(tt.snap))
		})
	}
}
