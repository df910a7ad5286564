// Package watchface renders an analog clock face and runs its mode state
// machine.
//
// A Watchface is driven entirely from one goroutine: the host delivers
// signals and timer callbacks on its event loop and never calls into a
// Watchface concurrently.
package watchface

import (
	"github.com/rook-computer/retrowatch/internal/battery"
	"github.com/rook-computer/retrowatch/internal/clock"
	"github.com/rook-computer/retrowatch/internal/palette"
	"github.com/rook-computer/retrowatch/internal/render"
)

type Mode int

const (
	Normal Mode = iota
	Ambient
)

func (m Mode) String() string {
	switch m {
	case Normal:
		return "normal"
	case Ambient:
		return "ambient"
	default:
		return "unknown"
	}
}

// Clock supplies the current time. It never fails.
type Clock interface {
	Now() clock.Sample
}

// Battery supplies the current battery reading. It never fails.
type Battery interface {
	Level() battery.Level
}

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Snapshot is a point-in-time view of the watchface state.
type Snapshot struct {
	Mode          Mode
	Palette       palette.Name
	NormalFrames  int
	AmbientFrames int
	Outstanding   int
	Cancels       int
	LastSample    clock.Sample
	Battery       battery.Level
}

type Deps struct {
	Canvas  *render.Canvas
	Display render.Display
	Clock   Clock
	Battery Battery
	Timers  Timers
	Logger  Logger

	// Palette is the starting palette. Empty means palette.Default.
	Palette palette.Name

	// OnChange, when set, is called with a fresh snapshot after every
	// render and transition.
	OnChange func(Snapshot)
}

// Watchface owns the drawing surface, the current mode and palette, and
// the normal-mode scheduler.
type Watchface struct {
	canvas   *render.Canvas
	display  render.Display
	clock    Clock
	battery  Battery
	logger   Logger
	onChange func(Snapshot)

	scheduler *Scheduler
	mode      Mode
	palette   palette.Name

	normalFrames  int
	ambientFrames int
	lastSample    clock.Sample
	lastBattery   battery.Level
}

func New(deps Deps) *Watchface {
	w := &Watchface{
		canvas:   deps.Canvas,
		display:  deps.Display,
		clock:    deps.Clock,
		battery:  deps.Battery,
		logger:   deps.Logger,
		onChange: deps.OnChange,
		mode:     Normal,
		palette:  deps.Palette,
	}
	if w.canvas == nil {
		w.canvas = render.NewCanvas(render.CanvasWidth, render.CanvasHeight)
	}
	if w.display == nil {
		w.display = render.NoopDisplay{}
	}
	if w.battery == nil {
		w.battery = battery.Static(battery.Unavailable)
	}
	if w.logger == nil {
		w.logger = noopLogger{}
	}
	if w.palette == "" {
		w.palette = palette.Default
	}
	w.scheduler = NewScheduler(deps.Timers, deps.Clock, w.renderNormal)
	return w
}

// Init starts the normal-mode render loop.
func (w *Watchface) Init() {
	w.logger.Infof("watchface", "init, palette=%s", w.palette)
	w.scheduler.CancelAll()
	w.scheduler.Start()
	w.changed()
}

// AmbientModeChanged handles the host's ambient mode signal.
func (w *Watchface) AmbientModeChanged(ambient bool) {
	w.scheduler.CancelAll()
	if ambient {
		w.setMode(Ambient)
		w.renderAmbient()
		return
	}
	w.setMode(Normal)
	w.scheduler.Start()
	w.changed()
}

// Tick handles the host's ambient refresh tick. Ignored in normal mode,
// which keeps its own schedule.
func (w *Watchface) Tick() {
	if w.mode != Ambient {
		return
	}
	w.renderAmbient()
}

// VisibilityRestored redraws immediately after the display wakes up.
func (w *Watchface) VisibilityRestored() {
	w.scheduler.CancelAll()
	if w.mode == Ambient {
		w.renderAmbient()
		return
	}
	w.scheduler.Start()
	w.changed()
}

// CycleInput advances to the next palette and redraws. Ambient rendering
// is monochrome, so the input is ignored there.
func (w *Watchface) CycleInput() {
	if w.mode != Normal {
		return
	}
	w.palette = palette.Next(w.palette)
	w.logger.Infof("watchface", "palette=%s", w.palette)
	w.renderNormal()
}

func (w *Watchface) Mode() Mode            { return w.mode }
func (w *Watchface) Palette() palette.Name { return w.palette }
func (w *Watchface) Scheduler() *Scheduler { return w.scheduler }

func (w *Watchface) Snapshot() Snapshot {
	return Snapshot{
		Mode:          w.mode,
		Palette:       w.palette,
		NormalFrames:  w.normalFrames,
		AmbientFrames: w.ambientFrames,
		Outstanding:   w.scheduler.Outstanding(),
		Cancels:       w.scheduler.Cancels(),
		LastSample:    w.lastSample,
		Battery:       w.lastBattery,
	}
}

func (w *Watchface) setMode(m Mode) {
	if w.mode != m {
		w.logger.Infof("watchface", "mode %s -> %s", w.mode, m)
	}
	w.mode = m
}

func (w *Watchface) renderNormal() {
	w.lastSample = w.clock.Now()
	w.lastBattery = w.battery.Level()
	RenderNormal(w.canvas, w.lastSample, w.lastBattery, w.palette)
	w.normalFrames++
	w.present()
}

func (w *Watchface) renderAmbient() {
	w.lastSample = w.clock.Now()
	RenderAmbient(w.canvas, w.lastSample)
	w.ambientFrames++
	w.present()
}

func (w *Watchface) present() {
	if err := w.display.Present(w.canvas.Compose()); err != nil {
		w.logger.Errorf("watchface", "present failed: %v", err)
	}
	w.changed()
}

func (w *Watchface) changed() {
	if w.onChange != nil {
		w.onChange(w.Snapshot())
	}
}

type noopLogger struct{}

func (noopLogger) Infof(string, string, ...interface{})  {}
func (noopLogger) Errorf(string, string, ...interface{}) {}
