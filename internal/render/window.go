package render

import "gocv.io/x/gocv"

// Window shows the canvas in a native OpenCV window.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a window with the given title.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

// Show displays the canvas and polls the keyboard for one millisecond.
// It returns the pressed key code, or -1 when no key was pressed.
func (w *Window) Show(c *Canvas) int {
	w.win.IMShow(c.mat)
	return w.win.WaitKey(1)
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}
