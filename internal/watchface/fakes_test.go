package watchface

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sort"
	"time"

	"github.com/rook-computer/retrowatch/internal/loop"
	"github.com/rook-computer/retrowatch/internal/render"
)

// recordingSurface logs every draw call as a string.
type recordingSurface struct {
	w, h  int
	ops   []string
	rects []rectOp
	lines []lineOp
	bg    color.Color
}

type rectOp struct {
	r image.Rectangle
	c color.Color
}

type lineOp struct {
	from, to render.Point
	width    float64
	c        color.Color
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{w: render.CanvasWidth, h: render.CanvasHeight}
}

func (s *recordingSurface) Size() (int, int) { return s.w, s.h }

func (s *recordingSurface) Clear() {
	s.ops = append(s.ops, "clear")
}

func (s *recordingSurface) SetBackground(c color.Color) {
	s.bg = c
	s.ops = append(s.ops, fmt.Sprintf("bg %v", c))
}

func (s *recordingSurface) FillRect(r image.Rectangle, c color.Color) {
	s.rects = append(s.rects, rectOp{r: r, c: c})
	s.ops = append(s.ops, fmt.Sprintf("rect %v %v", r, c))
}

func (s *recordingSurface) StrokeLine(from, to render.Point, width float64, c color.Color) {
	s.lines = append(s.lines, lineOp{from: from, to: to, width: width, c: c})
	s.ops = append(s.ops, fmt.Sprintf("line %v %v %v %v", from, to, width, c))
}

// rectsWithin returns the fills fully inside area.
func (s *recordingSurface) rectsWithin(area image.Rectangle) []rectOp {
	var out []rectOp
	for _, op := range s.rects {
		if op.r.In(area) {
			out = append(out, op)
		}
	}
	return out
}

type fakeTimeout struct {
	d  time.Duration
	fn func()
}

// fakeTimers is a manually driven Timers implementation.
type fakeTimers struct {
	next      loop.Handle
	timeouts  map[loop.Handle]fakeTimeout
	frames    map[loop.Handle]func()
	delays    []time.Duration
	cancelled []loop.Handle
}

func newFakeTimers() *fakeTimers {
	return &fakeTimers{timeouts: map[loop.Handle]fakeTimeout{}, frames: map[loop.Handle]func(){}}
}

func (f *fakeTimers) After(d time.Duration, fn func()) loop.Handle {
	f.next++
	f.timeouts[f.next] = fakeTimeout{d: d, fn: fn}
	f.delays = append(f.delays, d)
	return f.next
}

func (f *fakeTimers) NextFrame(fn func()) loop.Handle {
	f.next++
	f.frames[f.next] = fn
	return f.next
}

func (f *fakeTimers) Cancel(h loop.Handle) {
	f.cancelled = append(f.cancelled, h)
	delete(f.timeouts, h)
	delete(f.frames, h)
}

func (f *fakeTimers) pending() int { return len(f.timeouts) + len(f.frames) }

// fireTimeouts runs every pending timeout in handle order.
func (f *fakeTimers) fireTimeouts() int {
	handles := make([]loop.Handle, 0, len(f.timeouts))
	for h := range f.timeouts {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	for _, h := range handles {
		t := f.timeouts[h]
		delete(f.timeouts, h)
		t.fn()
	}
	return len(handles)
}

// fireFrames runs the frame callbacks registered before the call.
func (f *fakeTimers) fireFrames() int {
	handles := make([]loop.Handle, 0, len(f.frames))
	for h := range f.frames {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	for _, h := range handles {
		fn, ok := f.frames[h]
		if !ok {
			continue
		}
		delete(f.frames, h)
		fn()
	}
	return len(handles)
}

type countingDisplay struct {
	frames int
	err    error
	last   image.Image
}

func (d *countingDisplay) Present(frame image.Image) error {
	d.frames++
	d.last = frame
	return d.err
}

var errPresent = errors.New("display gone")

type memLogger struct {
	infos  []string
	errors []string
}

func (l *memLogger) Infof(component string, format string, args ...interface{}) {
	l.infos = append(l.infos, component+": "+fmt.Sprintf(format, args...))
}

func (l *memLogger) Errorf(component string, format string, args ...interface{}) {
	l.errors = append(l.errors, component+": "+fmt.Sprintf(format, args...))
}

// panickyDisplay panics on the first Present and succeeds after.
type panickyDisplay struct{ frames int }

func (d *panickyDisplay) Present(image.Image) error {
	d.frames++
	if d.frames == 1 {
		panic("present exploded")
	}
	return nil
}
