package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rook-computer/retrowatch/internal/battery"
	"github.com/rook-computer/retrowatch/internal/buttons"
	"github.com/rook-computer/retrowatch/internal/clock"
	"github.com/rook-computer/retrowatch/internal/palette"
	"github.com/rook-computer/retrowatch/internal/render"
	"github.com/rook-computer/retrowatch/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	poll    = 5 * time.Millisecond
)

type memLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *memLogger) Infof(string, string, ...interface{}) {}

func (l *memLogger) Errorf(component string, format string, args ...interface{}) {
	l.mu.Lock()
	l.errors = append(l.errors, component+": "+fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *memLogger) contains(s string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.errors {
		if strings.Contains(e, s) {
			return true
		}
	}
	return false
}

type chanButtons struct{ ch chan buttons.Event }

func (b *chanButtons) Start(context.Context) error   { return nil }
func (b *chanButtons) Stop() error                   { return nil }
func (b *chanButtons) Events() <-chan buttons.Event { return b.ch }

type fakeConsole struct {
	entered, restored bool
}

func (c *fakeConsole) EnterGraphics() func() {
	c.entered = true
	return func() { c.restored = true }
}

type harness struct {
	app     *App
	buttons *chanButtons
	logger  *memLogger
	done    chan error
	cancel  context.CancelFunc
}

func start(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		buttons: &chanButtons{ch: make(chan buttons.Event, 4)},
		logger:  &memLogger{},
		done:    make(chan error, 1),
	}
	h.app = New(Options{
		Palette:   palette.C64,
		FrameRate: 200,
		Clock:     &clock.Fixed{T: time.Date(2026, time.October, 23, 10, 30, 0, 0, time.UTC)},
		Battery:   battery.Static(battery.Of(0.55)),
		Logger:    h.logger,
	})
	h.app.Buttons = h.buttons

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- h.app.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-h.done:
		case <-time.After(waitFor):
		}
	})

	h.eventually(t, func(s state.State) bool { return s.Phase == state.RUNNING && s.Face.NormalFrames >= 1 })
	return h
}

func (h *harness) eventually(t *testing.T, cond func(state.State) bool) {
	t.Helper()
	require.Eventually(t, func() bool { return cond(h.app.Store.Snapshot()) }, waitFor, poll)
}

func TestAppRendersAndPublishes(t *testing.T) {
	h := start(t)

	snap := h.app.Store.Snapshot()
	assert.Equal(t, "normal", snap.Face.Mode)
	assert.Equal(t, "c64", snap.Face.Palette)
	assert.Equal(t, "10:30:00", snap.Face.ShownTime)
	assert.Equal(t, 23, snap.Face.Day)
	assert.True(t, snap.Battery.Present)
	assert.Equal(t, 0.55, snap.Battery.Level)

	frame := h.app.Store.Frame()
	require.NotNil(t, frame)
	assert.Equal(t, palette.Resolve(palette.C64, palette.Background1), frame.RGBAAt(5, 5))
}

func TestAppSignals(t *testing.T) {
	h := start(t)

	h.app.SetAmbient(true)
	h.eventually(t, func(s state.State) bool { return s.Face.Mode == "ambient" && s.Face.AmbientFrames == 1 })

	h.app.Tick()
	h.eventually(t, func(s state.State) bool { return s.Face.AmbientFrames == 2 })

	// Ignored in ambient mode; the following toggle proves it was processed.
	h.app.Cycle()
	h.app.ToggleAmbient()
	h.eventually(t, func(s state.State) bool { return s.Face.Mode == "normal" && s.Face.NormalFrames >= 2 })
	assert.Equal(t, "c64", h.app.Store.Snapshot().Face.Palette)

	h.buttons.ch <- buttons.Cycle
	h.eventually(t, func(s state.State) bool { return s.Face.Palette == "nes" })

	h.app.VisibilityRestored()
	h.eventually(t, func(s state.State) bool { return s.Face.Outstanding == 1 && s.Face.Cancels >= 4 })
}

func TestAppExitButton(t *testing.T) {
	h := start(t)
	h.buttons.ch <- buttons.Exit

	select {
	case err := <-h.done:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("app did not exit")
	}
	assert.Equal(t, state.STOPPED, h.app.Store.Snapshot().Phase)
}

func TestAppContextCancel(t *testing.T) {
	h := start(t)
	h.cancel()

	select {
	case err := <-h.done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(waitFor):
		t.Fatal("app did not stop")
	}
}

func TestAppRecoversLoopPanics(t *testing.T) {
	h := start(t)
	h.app.Loop.Post(func() { panic("boom") })
	require.Eventually(t, func() bool { return h.logger.contains("boom") }, waitFor, poll)

	h.app.Cycle()
	h.eventually(t, func(s state.State) bool { return s.Face.Palette == "nes" })
}

func TestAppConsoleRestored(t *testing.T) {
	console := &fakeConsole{}
	a := New(Options{Clock: &clock.Fixed{T: time.Now()}})
	a.Console = console
	a.Exit(nil)

	require.NoError(t, a.Start(context.Background()))
	assert.True(t, console.entered)
	assert.True(t, console.restored)
}

// flakyDisplay panics on exactly one Present call.
type flakyDisplay struct {
	mu      sync.Mutex
	calls   int
	panicOn int
}

func (d *flakyDisplay) Present(image.Image) error {
	d.mu.Lock()
	d.calls++
	n := d.calls
	d.mu.Unlock()
	if n == d.panicOn {
		panic("present exploded")
	}
	return nil
}

func (d *flakyDisplay) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func TestAppKeepsRenderingAfterDisplayPanic(t *testing.T) {
	display := &flakyDisplay{panicOn: 2}
	logger := &memLogger{}
	a := New(Options{
		FrameRate: 200,
		Clock:     &clock.Fixed{T: time.Date(2026, time.October, 23, 10, 30, 0, int(900*time.Millisecond), time.UTC)},
		Battery:   battery.Static(battery.Of(0.5)),
		Displays:  []render.Display{display},
		Logger:    logger,
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Start(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	require.Eventually(t, func() bool { return logger.contains("present exploded") }, waitFor, poll)
	require.Eventually(t, func() bool { return display.count() >= 4 }, waitFor, poll)
}

// floodServer posts more work than the loop queue holds while starting.
type floodServer struct {
	loop    interface{ Post(func()) }
	posts   int
	stopped bool
	err     error
}

func (s *floodServer) Start(context.Context) error {
	for i := 0; i < s.posts; i++ {
		s.loop.Post(func() {})
	}
	return s.err
}

func (s *floodServer) Stop() error {
	s.stopped = true
	return nil
}

func TestAppStartsWebAfterLoop(t *testing.T) {
	a := New(Options{Clock: &clock.Fixed{T: time.Now()}, FrameRate: 200})
	server := &floodServer{loop: a.Loop, posts: 200}
	a.Web = server

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Start(ctx) }()

	require.Eventually(t, func() bool { return a.Store.Snapshot().Phase == state.RUNNING }, waitFor, poll)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(waitFor):
		t.Fatal("app did not stop")
	}
	assert.True(t, server.stopped)
}

func TestAppWebStartFailure(t *testing.T) {
	a := New(Options{Clock: &clock.Fixed{T: time.Now()}})
	errBind := errors.New("address in use")
	a.Web = &floodServer{loop: a.Loop, err: errBind}

	err := a.Start(context.Background())
	assert.ErrorIs(t, err, errBind)
	assert.Equal(t, state.STOPPED, a.Store.Snapshot().Phase)
}

func TestUntilNextMinute(t *testing.T) {
	assert.Equal(t, time.Minute, UntilNextMinute(clock.Sample{}))
	assert.Equal(t, 29*time.Second+500*time.Millisecond, UntilNextMinute(clock.Sample{Seconds: 30, Milliseconds: 500}))
	assert.Equal(t, time.Millisecond, UntilNextMinute(clock.Sample{Seconds: 59, Milliseconds: 999}))
}
