// Package render draws the ball and tracked hands onto a gocv canvas.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/pinchball/internal/hand"
	"github.com/ayusman/pinchball/internal/tracking"
)

// NoHandsText is drawn when no hand, real or ghost, is present.
const NoHandsText = "NO HANDS DETECTED"

// ghostDim scales colors of extrapolated hands.
const ghostDim = 0.4

var (
	BackgroundColor = color.RGBA{0, 0, 0, 0}
	BallColor       = color.RGBA{255, 255, 255, 0}
	LandmarkColor   = color.RGBA{255, 255, 255, 0}
	ConnectionColor = color.RGBA{0, 0, 255, 0}
	PinchOnColor    = color.RGBA{0, 255, 0, 0}
	PinchOffColor   = color.RGBA{128, 128, 128, 0}
	AdvisoryColor   = color.RGBA{255, 0, 0, 0}
	StatusColor     = color.RGBA{200, 200, 200, 0}
)

// Scene is everything drawn in one frame.
type Scene struct {
	BallPosition r2.Vec
	BallSize     r2.Vec
	Hands        [tracking.NumLabels]tracking.HandOutput
	NoHands      bool
	Status       string
}

// Canvas owns the Mat the scene is drawn onto. It is not safe for
// concurrent use.
type Canvas struct {
	width  int
	height int
	mat    gocv.Mat
}

// NewCanvas allocates a black width x height canvas.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		width:  width,
		height: height,
		mat:    gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8UC3),
	}
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.height }

// Mat exposes the canvas for display. The Mat stays owned by the Canvas.
func (c *Canvas) Mat() *gocv.Mat { return &c.mat }

// Draw clears the canvas and renders s.
func (c *Canvas) Draw(s Scene) {
	c.mat.SetTo(gocv.NewScalar(0, 0, 0, 0))

	for _, h := range s.Hands {
		if h.Present {
			c.drawHand(h)
		}
	}

	radius := int(math.Round(math.Max(s.BallSize.X, s.BallSize.Y) / 2))
	if radius < 1 {
		radius = 1
	}
	gocv.Circle(&c.mat, point(s.BallPosition), radius, BallColor, -1)

	if s.NoHands {
		gocv.PutText(&c.mat, NoHandsText, image.Pt(10, 24), gocv.FontHersheyPlain, 1.5, AdvisoryColor, 2)
	}
	if s.Status != "" {
		gocv.PutText(&c.mat, s.Status, image.Pt(10, c.height-10), gocv.FontHersheyPlain, 1, StatusColor, 1)
	}
}

func (c *Canvas) drawHand(h tracking.HandOutput) {
	lineColor, dotColor := ConnectionColor, LandmarkColor
	if h.Ghost {
		lineColor, dotColor = dim(lineColor), dim(dotColor)
	}

	for _, conn := range hand.Connections {
		gocv.Line(&c.mat, point(h.Landmarks[conn[0]]), point(h.Landmarks[conn[1]]), lineColor, 1)
	}
	for _, p := range h.Landmarks {
		gocv.Circle(&c.mat, point(p), 2, dotColor, -1)
	}

	thumb, index := h.Landmarks[hand.ThumbTip], h.Landmarks[hand.IndexTip]
	mid := r2.Scale(0.5, r2.Add(thumb, index))
	if h.Clicked {
		gocv.Circle(&c.mat, point(mid), 8, PinchOnColor, -1)
	} else {
		gocv.Circle(&c.mat, point(mid), 8, PinchOffColor, 1)
	}

	label := h.Label.String()
	if h.Ghost {
		label += " (ghost)"
	}
	wrist := h.Landmarks[hand.Wrist]
	gocv.PutText(&c.mat, label, image.Pt(int(wrist.X)+6, int(wrist.Y)+16), gocv.FontHersheyPlain, 1, dotColor, 1)
}

// EncodeJPEG returns the current canvas as JPEG bytes.
func (c *Canvas) EncodeJPEG() ([]byte, error) {
	buf, err := gocv.IMEncode(".jpg", c.mat)
	if err != nil {
		return nil, fmt.Errorf("encode canvas: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Close releases the canvas Mat.
func (c *Canvas) Close() error {
	return c.mat.Close()
}

func point(v r2.Vec) image.Point {
	return image.Pt(int(math.Round(v.X)), int(math.Round(v.Y)))
}

func dim(c color.RGBA) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * ghostDim),
		G: uint8(float64(c.G) * ghostDim),
		B: uint8(float64(c.B) * ghostDim),
		A: c.A,
	}
}
