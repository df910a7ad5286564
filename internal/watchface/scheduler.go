package watchface

import (
	"time"

	"github.com/rook-computer/retrowatch/internal/clock"
	"github.com/rook-computer/retrowatch/internal/loop"
)

// Timers are the host's deferred and frame-aligned callback primitives.
type Timers interface {
	After(d time.Duration, fn func()) loop.Handle
	NextFrame(fn func()) loop.Handle
	Cancel(h loop.Handle)
}

// NextMove is the delay until the next wall-clock second boundary.
func NextMove(t clock.Sample) time.Duration {
	return time.Duration(1000-t.Milliseconds) * time.Millisecond
}

// Scheduler drives the normal-mode render loop. Each cycle re-samples the
// clock, waits out the rest of the current second, then renders on the
// following frame, so the loop stays aligned with real second boundaries.
//
// At most one timeout and one frame request are outstanding at a time.
type Scheduler struct {
	timers Timers
	clock  Clock
	render func()

	timeout    loop.Handle
	hasTimeout bool
	frame      loop.Handle
	hasFrame   bool

	cancels int
}

func NewScheduler(timers Timers, c Clock, render func()) *Scheduler {
	return &Scheduler{timers: timers, clock: c, render: render}
}

// Start renders on the next frame and keeps the loop running from there.
func (s *Scheduler) Start() {
	s.requestFrame()
}

// ScheduleNormalFrame arms the delay to the next second boundary, after
// which a frame is requested that renders and schedules again.
func (s *Scheduler) ScheduleNormalFrame() {
	delay := NextMove(s.clock.Now())
	s.hasTimeout = true
	s.timeout = s.timers.After(delay, func() {
		s.hasTimeout = false
		s.requestFrame()
	})
}

func (s *Scheduler) requestFrame() {
	s.hasFrame = true
	s.frame = s.timers.NextFrame(func() {
		s.hasFrame = false
		// Rearm even if render panics and the loop recovers.
		defer s.ScheduleNormalFrame()
		s.render()
	})
}

// CancelAll drops any outstanding timeout and frame request. Idempotent.
func (s *Scheduler) CancelAll() {
	s.cancels++
	if s.hasTimeout {
		s.timers.Cancel(s.timeout)
		s.hasTimeout = false
	}
	if s.hasFrame {
		s.timers.Cancel(s.frame)
		s.hasFrame = false
	}
}

// Outstanding reports the number of pending callbacks owned by the scheduler.
func (s *Scheduler) Outstanding() int {
	n := 0
	if s.hasTimeout {
		n++
	}
	if s.hasFrame {
		n++
	}
	return n
}

// Cancels reports how many times CancelAll has been called.
func (s *Scheduler) Cancels() int { return s.cancels }
