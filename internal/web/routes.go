package web

import (
	"image"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rook-computer/retrowatch/internal/state"
)

// Controller receives the watchface signals. Implementations must be safe
// to call from HTTP handler goroutines.
type Controller interface {
	SetAmbient(ambient bool)
	Tick()
	VisibilityRestored()
	Cycle()
}

// StateSource is read by GET /state and GET /frame.png.
type StateSource interface {
	Snapshot() state.State
	Frame() *image.RGBA
}

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type RouterConfig struct {
	Controller Controller
	State      StateSource
	Logger     Logger
	DevMode    bool

	// Extra mounts additional routes at the root, e.g. simulator controls.
	Extra func(r chi.Router)
}

// NewRouter builds the handler used by both the device and simulator:
// - /api/v1/* for the control API
// - whatever Extra registers
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	if cfg.Logger != nil {
		r.Use(requestLogger(cfg.Logger))
	}
	r.Use(middleware.Recoverer)
	if cfg.DevMode {
		r.Use(WithDevCORS)
	}

	api := apiV1{controller: cfg.Controller, state: cfg.State, logger: cfg.Logger}
	r.Route("/api/v1", api.routes)

	if cfg.Extra != nil {
		cfg.Extra(r)
	}
	return r
}

func requestLogger(l Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			l.Infof("web", "%s %s %d %dms", r.Method, r.URL.Path, ww.Status(), time.Since(start).Milliseconds())
		})
	}
}
