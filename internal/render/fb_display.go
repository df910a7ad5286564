package render

import (
	"fmt"
	"image"
	"image/draw"
	"sync"

	fb "github.com/gonutz/framebuffer"
	"github.com/rook-computer/retrowatch/internal/render/layout"
	xdraw "golang.org/x/image/draw"
)

// FBDisplay presents frames on a Linux framebuffer device. The square
// watchface is scaled into the largest centered square of the screen.
type FBDisplay struct {
	Path   string
	Logger interface {
		Infof(string, string, ...interface{})
		Errorf(string, string, ...interface{})
	}

	mu     sync.Mutex
	dev    *fb.Device
	target image.Rectangle
	scaled *image.RGBA
}

func NewFBDisplay(path string) *FBDisplay { return &FBDisplay{Path: path} }

// Open opens the framebuffer and blanks it.
func (d *FBDisplay) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	path := d.Path
	if path == "" {
		path = "/dev/fb0"
	}
	dev, err := fb.Open(path)
	if err != nil {
		return fmt.Errorf("open framebuffer %s: %w", path, err)
	}
	d.dev = dev
	bounds := dev.Bounds()
	d.target = layout.CenterSquare(bounds)
	d.scaled = image.NewRGBA(image.Rect(0, 0, d.target.Dx(), d.target.Dy()))
	draw.Draw(dev, bounds, image.Black, image.Point{}, draw.Src)
	if d.Logger != nil {
		d.Logger.Infof("fb", "framebuffer open, bounds=%dx%d face=%dx%d", bounds.Dx(), bounds.Dy(), d.target.Dx(), d.target.Dy())
	}
	return nil
}

func (d *FBDisplay) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev == nil {
		return nil
	}
	d.dev.Close()
	d.dev = nil
	return nil
}

// Present scales frame to the face area and copies it to the device.
// It is a no-op before Open.
func (d *FBDisplay) Present(frame image.Image) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev == nil {
		return nil
	}
	xdraw.NearestNeighbor.Scale(d.scaled, d.scaled.Bounds(), frame, frame.Bounds(), xdraw.Src, nil)
	draw.Draw(d.dev, d.target, d.scaled, image.Point{}, draw.Src)
	return nil
}
