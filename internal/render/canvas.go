package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// Canvas is an offscreen Surface: a transparent drawing layer over a
// solid backdrop color.
type Canvas struct {
	layer      *image.RGBA
	background color.Color
	raster     *vector.Rasterizer
}

// NewCanvas returns a cleared canvas of the given size with a black backdrop.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		layer:      image.NewRGBA(image.Rect(0, 0, width, height)),
		background: color.Black,
		raster:     vector.NewRasterizer(width, height),
	}
}

func (c *Canvas) Size() (int, int) {
	b := c.layer.Bounds()
	return b.Dx(), b.Dy()
}

func (c *Canvas) Clear() {
	draw.Draw(c.layer, c.layer.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

func (c *Canvas) SetBackground(col color.Color) { c.background = col }

func (c *Canvas) FillRect(rect image.Rectangle, col color.Color) {
	draw.Draw(c.layer, rect.Intersect(c.layer.Bounds()), image.NewUniform(col), image.Point{}, draw.Over)
}

func (c *Canvas) StrokeLine(from, to Point, width float64, col color.Color) {
	dx, dy := to.X-from.X, to.Y-from.Y
	length := math.Hypot(dx, dy)
	if length == 0 || width <= 0 {
		return
	}
	// Unit normal scaled to half the stroke width.
	nx, ny := -dy/length*width/2, dx/length*width/2

	w, h := c.Size()
	c.raster.Reset(w, h)
	c.raster.MoveTo(float32(from.X+nx), float32(from.Y+ny))
	c.raster.LineTo(float32(to.X+nx), float32(to.Y+ny))
	c.raster.LineTo(float32(to.X-nx), float32(to.Y-ny))
	c.raster.LineTo(float32(from.X-nx), float32(from.Y-ny))
	c.raster.ClosePath()
	c.raster.Draw(c.layer, c.layer.Bounds(), image.NewUniform(col), image.Point{})
}

// Compose returns a new image of the backdrop with the drawing layer over it.
func (c *Canvas) Compose() *image.RGBA {
	out := image.NewRGBA(c.layer.Bounds())
	draw.Draw(out, out.Bounds(), image.NewUniform(c.background), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), c.layer, c.layer.Bounds().Min, draw.Over)
	return out
}
