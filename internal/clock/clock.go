package clock

import (
	"time"
)

// Sample is an immutable snapshot of wall-clock time as the watchface sees it.
type Sample struct {
	Hours        int
	Minutes      int
	Seconds      int
	Milliseconds int
	Day          int
}

// FromTime converts t into a Sample in t's location.
func FromTime(t time.Time) Sample {
	h, m, s := t.Clock()
	return Sample{
		Hours:        h,
		Minutes:      m,
		Seconds:      s,
		Milliseconds: t.Nanosecond() / int(time.Millisecond),
		Day:          t.Day(),
	}
}

type logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Clock samples the current time. It prefers a configured time zone and
// falls back to the platform local time when that zone cannot be loaded.
type Clock struct {
	now      func() time.Time
	location *time.Location
}

// New returns a Clock for zone. An empty zone means platform local time.
// A zone that fails to load is logged and the local zone is used instead.
func New(zone string, l logger) *Clock {
	c := &Clock{now: time.Now, location: time.Local}
	if zone == "" {
		return c
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		if l != nil {
			l.Errorf("clock", "load zone %q failed, using local time: %v", zone, err)
		}
		return c
	}
	c.location = loc
	if l != nil {
		l.Infof("clock", "using zone %s", loc)
	}
	return c
}

// Location reports the zone samples are taken in.
func (c *Clock) Location() *time.Location { return c.location }

// Now returns a fresh Sample. It never fails.
func (c *Clock) Now() Sample {
	return FromTime(c.now().In(c.location))
}

// Fixed is a Clock stand-in that always reports the same instant.
type Fixed struct{ T time.Time }

func (f *Fixed) Now() Sample { return FromTime(f.T) }

// Advance moves the fixed instant forward by d.
func (f *Fixed) Advance(d time.Duration) { f.T = f.T.Add(d) }
