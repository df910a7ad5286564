package app

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rook-computer/retrowatch/internal/battery"
	"github.com/rook-computer/retrowatch/internal/buttons"
	"github.com/rook-computer/retrowatch/internal/clock"
	"github.com/rook-computer/retrowatch/internal/loop"
	"github.com/rook-computer/retrowatch/internal/palette"
	"github.com/rook-computer/retrowatch/internal/render"
	"github.com/rook-computer/retrowatch/internal/state"
	"github.com/rook-computer/retrowatch/internal/watchface"
	"github.com/rook-computer/retrowatch/internal/web"
)

// Console switches the terminal into a mode suitable for drawing. The
// returned func undoes it.
type Console interface {
	EnterGraphics() (restore func())
}

type Options struct {
	Palette   palette.Name
	FrameRate int
	// Debug lets render panics crash the process instead of being logged.
	Debug bool

	Clock    watchface.Clock
	Battery  watchface.Battery
	Displays []render.Display
	Logger   Logger
}

type App struct {
	Store   *state.Store
	Loop    *loop.Loop
	Face    *watchface.Watchface
	Web     web.Server
	Buttons buttons.Buttons
	Console Console
	Logger  Logger

	clock watchface.Clock

	exitOnce atomic.Bool
	exitCh   chan error
}

func New(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = NoopLogger{}
	}
	c := opts.Clock
	if c == nil {
		c = clock.New("", logger)
	}
	b := opts.Battery
	if b == nil {
		b = battery.Static(battery.Unavailable)
	}

	loopOpts := loop.Options{}
	if opts.FrameRate > 0 {
		loopOpts.FrameInterval = time.Second / time.Duration(opts.FrameRate)
	}
	if !opts.Debug {
		loopOpts.OnPanic = func(v any) {
			logger.Errorf("loop", "recovered panic: %v\n%s", v, debug.Stack())
		}
	}

	app := &App{
		Store:   state.NewStore(),
		Loop:    loop.New(loopOpts),
		Web:     web.NoopServer{},
		Buttons: buttons.NewNoopButtons(),
		Logger:  logger,
		clock:   c,
		exitCh:  make(chan error, 1),
	}

	displays := render.Displays{app.Store}
	displays = append(displays, opts.Displays...)
	app.Face = watchface.New(watchface.Deps{
		Display:  displays,
		Clock:    c,
		Battery:  b,
		Timers:   app.Loop,
		Logger:   logger,
		Palette:  opts.Palette,
		OnChange: app.publish,
	})
	return app
}

// Exit requests the app to stop running.
// Any subsystem can call this to terminate the process via the generic codepath.
func (app *App) Exit(err error) {
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

// Start runs until ctx is done or Exit is called.
func (app *App) Start(ctx context.Context) error {
	if app.Console != nil {
		restore := app.Console.EnterGraphics()
		defer restore()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := app.Buttons.Start(runCtx); err != nil {
		app.Logger.Errorf("input", "buttons start error: %v", err)
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.forwardButtons(runCtx)
	}()

	loopErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		loopErr <- app.Loop.Run(runCtx)
	}()

	app.Loop.Post(func() {
		app.Face.Init()
		app.scheduleTick()
		app.Store.SetPhase(state.RUNNING)
	})

	// The loop is draining its queue before any handler can post to it.
	if err := app.Web.Start(ctx); err != nil {
		app.Logger.Errorf("app", "web server start error: %v", err)
		cancel()
		_ = app.Buttons.Stop()
		wg.Wait()
		app.Store.SetPhase(state.STOPPED)
		return fmt.Errorf("start web server: %w", err)
	}
	defer func() { _ = app.Web.Stop() }()

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-app.exitCh:
	case err = <-loopErr:
		if err == nil {
			err = errors.New("render loop stopped")
		}
	}
	cancel()
	_ = app.Buttons.Stop()
	wg.Wait()
	app.Store.SetPhase(state.STOPPED)
	app.Logger.Infof("app", "stopped: %v", err)
	return err
}

// SetAmbient delivers an ambient-mode change.
func (app *App) SetAmbient(ambient bool) {
	app.Loop.Post(func() { app.Face.AmbientModeChanged(ambient) })
}

// ToggleAmbient flips the current mode. Used by signals that carry no value.
func (app *App) ToggleAmbient() {
	app.Loop.Post(func() { app.Face.AmbientModeChanged(app.Face.Mode() != watchface.Ambient) })
}

func (app *App) Tick() {
	app.Loop.Post(app.Face.Tick)
}

func (app *App) VisibilityRestored() {
	app.Loop.Post(app.Face.VisibilityRestored)
}

func (app *App) Cycle() {
	app.Loop.Post(app.Face.CycleInput)
}

func (app *App) forwardButtons(ctx context.Context) {
	events := app.Buttons.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev {
			case buttons.Cycle:
				app.Cycle()
			case buttons.Exit:
				app.Logger.Infof("input", "exit requested")
				app.Exit(nil)
			}
		}
	}
}

// UntilNextMinute is the delay from t to the next wall-clock minute.
func UntilNextMinute(t clock.Sample) time.Duration {
	return time.Minute - time.Duration(t.Seconds)*time.Second - time.Duration(t.Milliseconds)*time.Millisecond
}

// scheduleTick delivers Tick on every minute boundary. Normal mode ignores it.
func (app *App) scheduleTick() {
	app.Loop.After(UntilNextMinute(app.clock.Now()), func() {
		app.Face.Tick()
		app.scheduleTick()
	})
}

func (app *App) publish(s watchface.Snapshot) {
	t := s.LastSample
	app.Store.UpdateFace(state.FaceInfo{
		Mode:          s.Mode.String(),
		Palette:       string(s.Palette),
		NormalFrames:  s.NormalFrames,
		AmbientFrames: s.AmbientFrames,
		Outstanding:   s.Outstanding,
		Cancels:       s.Cancels,
		ShownTime:     fmt.Sprintf("%02d:%02d:%02d", t.Hours, t.Minutes, t.Seconds),
		Day:           t.Day,
	}, state.BatteryInfo{Present: s.Battery.Present, Level: s.Battery.Value}, time.Now())
}
