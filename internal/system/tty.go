package system

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// KD console modes from linux/kd.h
const (
	kdText     = 0x00
	kdGraphics = 0x01
	kdSetMode  = 0x4B3A // KDSETMODE ioctl
)

const (
	escHideCursor = "\x1b[?25l"
	escShowCursor = "\x1b[?25h"
)

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// Console toggles the active virtual terminal between text and graphics
// mode so the blinking cursor does not draw over the framebuffer.
type Console struct {
	// Paths are tried in order; the first that accepts the ioctl wins.
	Paths  []string
	Logger logger
}

func NewConsole(l logger) Console {
	// Prefer /dev/tty (active VT), fallback to /dev/tty0
	return Console{Paths: []string{"/dev/tty", "/dev/tty0"}, Logger: l}
}

// EnterGraphics switches to KD_GRAPHICS and hides the cursor. Both steps
// are best-effort. The returned func undoes them and is always non-nil.
func (c Console) EnterGraphics() (restore func()) {
	graphics := false
	if err := c.setMode(kdGraphics); err != nil {
		c.errorf("KD_GRAPHICS failed: %v", err)
	} else {
		graphics = true
		c.infof("KD_GRAPHICS set")
	}
	if err := c.write(escHideCursor); err != nil {
		c.errorf("hide cursor failed: %v", err)
	}

	return func() {
		if err := c.write(escShowCursor); err != nil {
			c.errorf("show cursor failed: %v", err)
		}
		if !graphics {
			return
		}
		if err := c.setMode(kdText); err != nil {
			c.errorf("KD_TEXT failed: %v", err)
			return
		}
		c.infof("KD_TEXT set")
	}
}

func (c Console) setMode(mode int) error {
	var errs []error
	for _, p := range c.Paths {
		fd, err := unix.Open(p, unix.O_RDONLY, 0)
		if err != nil {
			errs = append(errs, fmt.Errorf("open %s: %w", p, err))
			continue
		}
		err = unix.IoctlSetInt(fd, kdSetMode, mode)
		_ = unix.Close(fd)
		if err != nil {
			errs = append(errs, fmt.Errorf("KDSETMODE %d on %s: %w", mode, p, err))
			continue
		}
		return nil
	}
	if len(errs) == 0 {
		return errors.New("no console paths configured")
	}
	return errors.Join(errs...)
}

func (c Console) write(s string) error {
	var errs []error
	for _, p := range c.Paths {
		f, err := os.OpenFile(p, os.O_WRONLY, 0)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		_, err = f.WriteString(s)
		_ = f.Close()
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return errors.New("no console paths configured")
	}
	return fmt.Errorf("write VT: %w", errors.Join(errs...))
}

func (c Console) infof(format string, args ...interface{}) {
	if c.Logger != nil {
		c.Logger.Infof("tty", format, args...)
	}
}

func (c Console) errorf(format string, args ...interface{}) {
	if c.Logger != nil {
		c.Logger.Errorf("tty", format, args...)
	}
}
