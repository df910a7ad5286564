//go:build !linux

package buttons

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// Evdev has no input source outside Linux; it never emits.
type Evdev struct {
	*NoopButtons
}

func NewEvdev(l logger) *Evdev {
	if l != nil {
		l.Infof("input", "evdev input is only available on linux")
	}
	return &Evdev{NoopButtons: NewNoopButtons()}
}
