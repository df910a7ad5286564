package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rook-computer/retrowatch/internal/battery"
	"github.com/rook-computer/retrowatch/internal/clock"
	"github.com/rook-computer/retrowatch/internal/render"
)

type SimFaults struct {
	PresentFail bool `json:"presentFail"`
}

var errSimPresent = errors.New("simulated present failure")

// SimControl owns the knobs the /sim endpoints turn: a clock offset, a
// battery override and display faults.
type SimControl struct {
	location       *time.Location
	now            func() time.Time
	startupBattery battery.Level

	mu      sync.RWMutex
	offset  time.Duration
	battery battery.Level
	faults  SimFaults
}

func NewSimControl(location *time.Location, startupBattery battery.Level) *SimControl {
	if location == nil {
		location = time.Local
	}
	return &SimControl{location: location, now: time.Now, startupBattery: startupBattery, battery: startupBattery}
}

// Now implements watchface.Clock with the configured offset applied.
func (c *SimControl) Now() clock.Sample {
	c.mu.RLock()
	offset := c.offset
	c.mu.RUnlock()
	return clock.FromTime(c.now().Add(offset).In(c.location))
}

// Level implements watchface.Battery.
func (c *SimControl) Level() battery.Level {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.battery
}

func (c *SimControl) Offset() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offset
}

func (c *SimControl) SetOffset(d time.Duration) {
	c.mu.Lock()
	c.offset = d
	c.mu.Unlock()
}

func (c *SimControl) SetBattery(level battery.Level) {
	c.mu.Lock()
	c.battery = level
	c.mu.Unlock()
}

func (c *SimControl) Faults() SimFaults {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.faults
}

func (c *SimControl) SetFaults(v SimFaults) {
	c.mu.Lock()
	c.faults = v
	c.mu.Unlock()
}

func (c *SimControl) Reset() {
	c.mu.Lock()
	c.offset = 0
	c.battery = c.startupBattery
	c.faults = SimFaults{}
	c.mu.Unlock()
}

// Display wraps inner so PresentFail can be injected.
func (c *SimControl) Display(inner render.Display) render.Display {
	return faultyDisplay{control: c, inner: inner}
}

type faultyDisplay struct {
	control *SimControl
	inner   render.Display
}

func (d faultyDisplay) Present(frame image.Image) error {
	if d.control.Faults().PresentFail {
		return errSimPresent
	}
	if d.inner == nil {
		return nil
	}
	return d.inner.Present(frame)
}

type simStatus struct {
	OffsetSeconds float64   `json:"offsetSeconds"`
	Battery       *float64  `json:"battery"`
	Faults        SimFaults `json:"faults"`
	Now           string    `json:"now"`
}

func (c *SimControl) status() simStatus {
	s := simStatus{OffsetSeconds: c.Offset().Seconds(), Faults: c.Faults()}
	if b := c.Level(); b.Present {
		v := b.Value
		s.Battery = &v
	}
	t := c.Now()
	s.Now = fmt.Sprintf("%02d:%02d:%02d.%03d day %d", t.Hours, t.Minutes, t.Seconds, t.Milliseconds, t.Day)
	return s
}

// redraw is called after a knob changes so the preview reflects it.
func registerSimEndpoints(r chi.Router, control *SimControl, redraw func()) {
	if redraw == nil {
		redraw = func() {}
	}
	r.Route("/sim", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			writeSimJSON(w, http.StatusOK, control.status())
		})

		r.Post("/reset", func(w http.ResponseWriter, _ *http.Request) {
			control.Reset()
			redraw()
			writeSimJSON(w, http.StatusOK, control.status())
		})

		r.Post("/clock", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				OffsetSeconds *float64 `json:"offsetSeconds"`
				Time          *string  `json:"time"` // RFC 3339
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeSimError(w, http.StatusBadRequest, "invalid json")
				return
			}
			switch {
			case req.Time != nil:
				at, err := time.Parse(time.RFC3339, *req.Time)
				if err != nil {
					writeSimError(w, http.StatusBadRequest, "time must be RFC 3339")
					return
				}
				control.SetOffset(time.Until(at))
			case req.OffsetSeconds != nil:
				control.SetOffset(time.Duration(*req.OffsetSeconds * float64(time.Second)))
			default:
				writeSimError(w, http.StatusBadRequest, `want "offsetSeconds" or "time"`)
				return
			}
			redraw()
			writeSimJSON(w, http.StatusOK, control.status())
		})

		r.Post("/battery", func(w http.ResponseWriter, r *http.Request) {
			// {"level": 0.4} sets a level; {"level": null} removes the battery.
			var req struct {
				Level *float64 `json:"level"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeSimError(w, http.StatusBadRequest, "invalid json")
				return
			}
			if req.Level == nil {
				control.SetBattery(battery.Unavailable)
			} else {
				if *req.Level < 0 || *req.Level > 1 {
					writeSimError(w, http.StatusBadRequest, "level must be within [0, 1]")
					return
				}
				control.SetBattery(battery.Of(*req.Level))
			}
			redraw()
			writeSimJSON(w, http.StatusOK, control.status())
		})

		r.Get("/faults", func(w http.ResponseWriter, _ *http.Request) {
			writeSimJSON(w, http.StatusOK, control.Faults())
		})

		r.Post("/faults", func(w http.ResponseWriter, r *http.Request) {
			var patch struct {
				PresentFail *bool `json:"presentFail"`
			}
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				writeSimError(w, http.StatusBadRequest, "invalid json")
				return
			}
			current := control.Faults()
			if patch.PresentFail != nil {
				current.PresentFail = *patch.PresentFail
			}
			control.SetFaults(current)
			writeSimJSON(w, http.StatusOK, current)
		})
	})
}

func writeSimJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSimError(w http.ResponseWriter, status int, message string) {
	writeSimJSON(w, status, map[string]any{"error": message})
}
