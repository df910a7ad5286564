//go:build linux

package buttons

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"
)

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// Evdev watches Linux evdev devices under /dev/input/event* and emits
// Cycle on key/touch presses and Exit on F4.
//
// It is best-effort: if no input devices are available, it logs and emits nothing.
type Evdev struct {
	Glob   string
	Logger logger

	ch     chan Event
	done   chan struct{}
	stop   sync.Once
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewEvdev(l logger) *Evdev {
	return &Evdev{Glob: "/dev/input/event*", Logger: l, ch: make(chan Event, 8), done: make(chan struct{})}
}

func (e *Evdev) Events() <-chan Event { return e.ch }

func (e *Evdev) Start(ctx context.Context) error {
	paths, err := filepath.Glob(e.Glob)
	if err != nil || len(paths) == 0 {
		e.infof("no evdev devices found under %s", e.Glob)
		return nil
	}

	ctx, e.cancel = context.WithCancel(ctx)
	tvSize := binary.Size(unix.Timeval{})
	for _, path := range paths {
		e.wg.Add(1)
		go func(p string) {
			defer e.wg.Done()
			e.watch(ctx, p, tvSize)
		}(path)
	}
	e.infof("watching %d input devices", len(paths))
	return nil
}

func (e *Evdev) Stop() error {
	e.stop.Do(func() {
		if e.cancel != nil {
			e.cancel()
		}
		close(e.done)
		e.wg.Wait()
	})
	return nil
}

func (e *Evdev) watch(ctx context.Context, path string, tvSize int) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return
	}
	f := os.NewFile(uintptr(fd), path)
	defer func() {
		_ = f.Close()
	}()

	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pollFds, 250); err != nil {
			if err == unix.EINTR {
				continue
			}
			// Device might have gone away.
			return
		}
		if pollFds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}
		for _, ev := range Decode(buf[:n], tvSize) {
			select {
			case e.ch <- ev:
			case <-e.done:
				return
			}
		}
	}
}

func (e *Evdev) infof(format string, args ...interface{}) {
	if e.Logger != nil {
		e.Logger.Infof("input", format, args...)
	}
}
