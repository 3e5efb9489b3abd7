package capture

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera plays back pre-recorded frames. With no frames it produces
// blank images of the given size, which is enough to drive a scripted
// detector.
type MockCamera struct {
	frames  []*gocv.Mat
	index   int
	loop    bool
	width   int
	height  int
	reads   int
	mu      sync.Mutex
	running bool
	failAt  map[int]bool
}

// NewMockCamera plays frames in order, restarting when loop is set.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{
		frames: frames,
		loop:   loop,
		width:  DefaultWidth,
		height: DefaultHeight,
		failAt: make(map[int]bool),
	}
}

// NewBlankCamera returns a camera that yields black frames forever.
func NewBlankCamera(width, height int) *MockCamera {
	c := NewMockCamera(nil, true)
	c.width = width
	c.height = height
	return c
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.index = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}

	read := c.reads
	c.reads++
	if c.failAt[read] {
		return nil, ErrReadFailed
	}

	if len(c.frames) == 0 {
		if !c.loop {
			return nil, fmt.Errorf("no frames available")
		}
		mat := gocv.NewMatWithSize(c.height, c.width, gocv.MatTypeCV8UC3)
		return &mat, nil
	}

	if c.index >= len(c.frames) {
		if c.loop {
			c.index = 0
		} else {
			return nil, fmt.Errorf("no more frames")
		}
	}

	// Clone the frame so the original isn't modified
	frame := c.frames[c.index].Clone()
	c.index++

	return &frame, nil
}

func (c *MockCamera) SetFPS(fps int) {}
func (c *MockCamera) FPS() int       { return DefaultFPS }
func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// FailRead makes the n-th ReadFrame call (zero based) return ErrReadFailed.
func (c *MockCamera) FailRead(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failAt[n] = true
}

// Reads returns the number of ReadFrame calls made while open.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// SetFrames replaces the frame sequence
func (c *MockCamera) SetFrames(frames []*gocv.Mat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = frames
	c.index = 0
}

// Reset restarts playback from the beginning
func (c *MockCamera) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = 0
}
