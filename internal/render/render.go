package render

import (
	"image"
	"image/color"
)

// Point is a position on the logical canvas.
type Point struct {
	X, Y float64
}

// Surface is the 2D drawing surface the watchface paints onto.
// Coordinates are logical canvas pixels with y growing downwards.
type Surface interface {
	// Size returns the logical surface size in pixels.
	Size() (width int, height int)

	// Clear erases everything drawn since the previous Clear.
	Clear()
	// SetBackground sets the backdrop shown beneath drawn content.
	SetBackground(c color.Color)

	FillRect(rect image.Rectangle, c color.Color)
	// StrokeLine strokes a segment of the given width with flat ends.
	StrokeLine(from, to Point, width float64, c color.Color)
}

// Display presents composed frames to the user.
type Display interface {
	Present(frame image.Image) error
}

// NoopDisplay drops every frame.
type NoopDisplay struct{}

func (NoopDisplay) Present(image.Image) error { return nil }

// Displays fans a frame out to several displays. Every display is tried;
// the first error is returned.
type Displays []Display

func (d Displays) Present(frame image.Image) error {
	var first error
	for _, display := range d {
		if display == nil {
			continue
		}
		if err := display.Present(frame); err != nil && first == nil {
			first = err
		}
	}
	return first
}
