package render

// Logical canvas size; scaled to the physical display.
const (
	CanvasWidth  = 360
	CanvasHeight = 360
)
