package render

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	red   = color.RGBA{R: 0xFF, A: 0xFF}
	green = color.RGBA{G: 0xFF, A: 0xFF}
	blue  = color.RGBA{B: 0xFF, A: 0xFF}
)

func TestCanvasComposeBackdropUnderLayer(t *testing.T) {
	c := NewCanvas(20, 20)
	c.SetBackground(blue)
	c.FillRect(image.Rect(5, 5, 10, 10), red)

	frame := c.Compose()
	assert.Equal(t, blue, frame.RGBAAt(0, 0))
	assert.Equal(t, red, frame.RGBAAt(7, 7))
}

func TestCanvasClear(t *testing.T) {
	c := NewCanvas(10, 10)
	c.SetBackground(green)
	c.FillRect(image.Rect(0, 0, 10, 10), red)
	c.Clear()

	assert.Equal(t, green, c.Compose().RGBAAt(3, 3))
}

func TestCanvasStrokeLine(t *testing.T) {
	c := NewCanvas(100, 100)
	c.StrokeLine(Point{X: 50, Y: 50}, Point{X: 90, Y: 50}, 10, red)

	frame := c.Compose()
	assert.Equal(t, red, frame.RGBAAt(70, 50))
	assert.Equal(t, red, frame.RGBAAt(70, 47))
	// Flat ends: nothing before the start point.
	assert.Equal(t, color.RGBA{A: 0xFF}, frame.RGBAAt(45, 50))
	assert.Equal(t, color.RGBA{A: 0xFF}, frame.RGBAAt(70, 60))
}

func TestCanvasStrokeDegenerate(t *testing.T) {
	c := NewCanvas(10, 10)
	c.StrokeLine(Point{X: 5, Y: 5}, Point{X: 5, Y: 5}, 4, red)
	assert.Equal(t, color.RGBA{A: 0xFF}, c.Compose().RGBAAt(5, 5))
}

type failingDisplay struct {
	err    error
	frames int
}

func (d *failingDisplay) Present(image.Image) error {
	d.frames++
	return d.err
}

func TestDisplaysPresentsToAll(t *testing.T) {
	boom := errors.New("boom")
	a := &failingDisplay{err: boom}
	b := &failingDisplay{}

	err := Displays{a, nil, b}.Present(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, a.frames)
	assert.Equal(t, 1, b.frames)
}
