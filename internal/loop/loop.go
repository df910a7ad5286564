// Package loop provides a single-threaded cooperative event loop with
// deferred and frame-aligned callbacks.
//
// Every callback runs on the goroutine that called Run, one at a time, so
// callers never need locking for state touched only from callbacks. Other
// goroutines hand work to the loop with Post.
package loop

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Handle identifies a pending After or NextFrame callback.
type Handle uint64

// DefaultFrameInterval approximates a 60 Hz display refresh.
const DefaultFrameInterval = time.Second / 60

type Options struct {
	// FrameInterval is the period between frame ticks.
	FrameInterval time.Duration
	// OnPanic, when set, receives values recovered from panicking callbacks
	// and the loop keeps running. When nil a panic stops the process.
	OnPanic func(v any)
}

type Loop struct {
	queue         chan func()
	done          chan struct{}
	frameInterval time.Duration
	onPanic       func(v any)

	mu      sync.Mutex
	nextID  Handle
	timers  map[Handle]*time.Timer
	frames  map[Handle]func()
	running bool
}

func New(opts Options) *Loop {
	interval := opts.FrameInterval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Loop{
		queue:         make(chan func(), 64),
		done:          make(chan struct{}),
		frameInterval: interval,
		onPanic:       opts.OnPanic,
		timers:        make(map[Handle]*time.Timer),
		frames:        make(map[Handle]func()),
	}
}

// Post queues fn to run on the loop. Safe from any goroutine.
// Work posted after Run has returned is dropped.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

// After runs fn on the loop once d has elapsed, unless cancelled first.
func (l *Loop) After(d time.Duration, fn func()) Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	h := l.nextID
	l.timers[h] = time.AfterFunc(d, func() {
		l.Post(func() {
			if l.takeTimer(h) {
				fn()
			}
		})
	})
	return h
}

// NextFrame runs fn on the loop at the next frame tick, unless cancelled first.
func (l *Loop) NextFrame(fn func()) Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	h := l.nextID
	l.frames[h] = fn
	return h
}

// Cancel drops a pending callback. Unknown or finished handles are ignored.
// A timer that has already fired but not yet run on the loop is dropped too.
func (l *Loop) Cancel(h Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t, ok := l.timers[h]; ok {
		t.Stop()
		delete(l.timers, h)
	}
	delete(l.frames, h)
}

// Pending reports the number of outstanding After and NextFrame callbacks.
func (l *Loop) Pending() (timers int, frames int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.timers), len(l.frames)
}

// Run executes callbacks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return fmt.Errorf("loop already running")
	}
	select {
	case <-l.done:
		l.mu.Unlock()
		return fmt.Errorf("loop already stopped")
	default:
	}
	l.running = true
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.running = false
		close(l.done)
		for h, t := range l.timers {
			t.Stop()
			delete(l.timers, h)
		}
		l.mu.Unlock()
	}()

	ticker := time.NewTicker(l.frameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.queue:
			l.call(fn)
		case <-ticker.C:
			for _, fn := range l.takeFrames() {
				l.call(fn)
			}
		}
	}
}

func (l *Loop) call(fn func()) {
	if l.onPanic != nil {
		defer func() {
			if v := recover(); v != nil {
				l.onPanic(v)
			}
		}()
	}
	fn()
}

func (l *Loop) takeTimer(h Handle) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.timers[h]; !ok {
		return false
	}
	delete(l.timers, h)
	return true
}

// takeFrames removes the callbacks registered before this tick, in
// registration order. Each is rechecked before running so a callback can
// cancel a later one in the same tick.
func (l *Loop) takeFrames() []func() {
	l.mu.Lock()
	handles := make([]Handle, 0, len(l.frames))
	for h := range l.frames {
		handles = append(handles, h)
	}
	l.mu.Unlock()
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	out := make([]func(), 0, len(handles))
	for _, h := range handles {
		h := h
		out = append(out, func() {
			l.mu.Lock()
			fn, ok := l.frames[h]
			delete(l.frames, h)
			l.mu.Unlock()
			if ok {
				fn()
			}
		})
	}
	return out
}
