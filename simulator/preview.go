package main

import (
	"image"
	"image/color"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rook-computer/retrowatch/internal/render/layout"
	xdraw "golang.org/x/image/draw"
)

const (
	halfBlock  = '▀'
	statusRows = 1
)

const helpLine = " a ambient  t tick  v visible  space/click cycle  q quit "

// TerminalDisplay previews frames in a terminal. Each cell shows two
// vertical pixels: the upper half as foreground, the lower as background.
type TerminalDisplay struct {
	screen tcell.Screen

	mu      sync.Mutex
	last    image.Image
	scratch *image.RGBA
	status  string
}

func NewTerminalDisplay(screen tcell.Screen) *TerminalDisplay {
	return &TerminalDisplay{screen: screen}
}

func (d *TerminalDisplay) Present(frame image.Image) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = frame
	d.draw()
	return nil
}

// SetStatus replaces the text shown on the bottom row.
func (d *TerminalDisplay) SetStatus(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = s
	d.draw()
}

// Redraw repaints the last frame, e.g. after a resize.
func (d *TerminalDisplay) Redraw() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.screen.Sync()
	d.draw()
}

func (d *TerminalDisplay) draw() {
	cols, rows := d.screen.Size()
	d.screen.Clear()
	if d.last != nil {
		d.drawFrame(cols, rows-statusRows)
	}
	d.drawStatus(cols, rows)
	d.screen.Show()
}

func (d *TerminalDisplay) drawFrame(cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	src := d.last.Bounds()
	// Pixel space is cols x rows*2; keep the frame's aspect ratio.
	target := layout.FitAspect(image.Rect(0, 0, cols, rows*2), src.Dx(), src.Dy())
	if target.Empty() {
		return
	}
	size := image.Rect(0, 0, target.Dx(), target.Dy())
	if d.scratch == nil || d.scratch.Bounds() != size {
		d.scratch = image.NewRGBA(size)
	}
	xdraw.NearestNeighbor.Scale(d.scratch, size, d.last, src, xdraw.Src, nil)

	x0, y0 := target.Min.X, target.Min.Y/2
	for y := 0; y < size.Dy(); y += 2 {
		for x := 0; x < size.Dx(); x++ {
			top := d.scratch.RGBAAt(x, y)
			bottom := top
			if y+1 < size.Dy() {
				bottom = d.scratch.RGBAAt(x, y+1)
			}
			style := tcell.StyleDefault.Foreground(toTcell(top)).Background(toTcell(bottom))
			d.screen.SetContent(x0+x, y0+y/2, halfBlock, nil, style)
		}
	}
}

func (d *TerminalDisplay) drawStatus(cols, rows int) {
	if rows <= 0 {
		return
	}
	text := helpLine
	if d.status != "" {
		text = " " + d.status + " |" + helpLine
	}
	style := tcell.StyleDefault.Reverse(true)
	x := 0
	for _, r := range text {
		if x >= cols {
			break
		}
		d.screen.SetContent(x, rows-1, r, nil, style)
		x++
	}
}

func toTcell(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

type action int

const (
	actionNone action = iota
	actionAmbient
	actionTick
	actionVisible
	actionCycle
	actionResize
	actionQuit
)

// actionFor maps terminal events onto watchface signals.
func actionFor(ev tcell.Event) action {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return actionQuit
		case tcell.KeyEnter:
			return actionCycle
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return actionQuit
			case 'a':
				return actionAmbient
			case 't':
				return actionTick
			case 'v':
				return actionVisible
			case ' ':
				return actionCycle
			}
		}
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			return actionCycle
		}
	case *tcell.EventResize:
		return actionResize
	}
	return actionNone
}
