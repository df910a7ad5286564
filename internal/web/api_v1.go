package web

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type apiV1 struct {
	controller Controller
	state      StateSource
	logger     Logger
}

type AmbientRequest struct {
	Ambient *bool `json:"ambient"`
}

type StateResponse struct {
	Phase         string    `json:"phase"`
	Mode          string    `json:"mode"`
	Palette       string    `json:"palette"`
	NormalFrames  int       `json:"normalFrames"`
	AmbientFrames int       `json:"ambientFrames"`
	Outstanding   int       `json:"outstanding"`
	Cancels       int       `json:"cancels"`
	ShownTime     string    `json:"shownTime"`
	Day           int       `json:"day"`
	Battery       *float64  `json:"battery"` // null when no battery is present
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (api apiV1) routes(r chi.Router) {
	r.Get("/state", api.handleState)
	r.Get("/frame.png", api.handleFrame)
	r.Post("/ambient", api.handleAmbient)
	r.Post("/tick", api.signal(func(c Controller) { c.Tick() }))
	r.Post("/visible", api.signal(func(c Controller) { c.VisibilityRestored() }))
	r.Post("/cycle", api.signal(func(c Controller) { c.Cycle() }))
}

func (api apiV1) handleState(w http.ResponseWriter, r *http.Request) {
	if api.state == nil {
		writeError(w, http.StatusServiceUnavailable, "state not available")
		return
	}
	snap := api.state.Snapshot()
	resp := StateResponse{
		Phase:         snap.Phase.String(),
		Mode:          snap.Face.Mode,
		Palette:       snap.Face.Palette,
		NormalFrames:  snap.Face.NormalFrames,
		AmbientFrames: snap.Face.AmbientFrames,
		Outstanding:   snap.Face.Outstanding,
		Cancels:       snap.Face.Cancels,
		ShownTime:     snap.Face.ShownTime,
		Day:           snap.Face.Day,
		UpdatedAt:     snap.UpdatedAt,
	}
	if snap.Battery.Present {
		level := snap.Battery.Level
		resp.Battery = &level
	}
	writeJSON(w, http.StatusOK, resp)
}

func (api apiV1) handleFrame(w http.ResponseWriter, r *http.Request) {
	if api.state == nil {
		writeError(w, http.StatusServiceUnavailable, "state not available")
		return
	}
	frame := api.state.Frame()
	if frame == nil {
		writeError(w, http.StatusServiceUnavailable, "no frame rendered yet")
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		if api.logger != nil {
			api.logger.Errorf("web", "encode frame: %v", err)
		}
		writeError(w, http.StatusInternalServerError, "encode frame failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (api apiV1) handleAmbient(w http.ResponseWriter, r *http.Request) {
	if api.controller == nil {
		writeError(w, http.StatusServiceUnavailable, "controller not available")
		return
	}
	var req AmbientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Ambient == nil {
		writeError(w, http.StatusBadRequest, `missing "ambient"`)
		return
	}
	api.controller.SetAmbient(*req.Ambient)
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true, "ambient": *req.Ambient})
}

// signal answers 202 since the loop applies the signal asynchronously.
func (api apiV1) signal(fn func(Controller)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if api.controller == nil {
			writeError(w, http.StatusServiceUnavailable, "controller not available")
			return
		}
		fn(api.controller)
		writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
