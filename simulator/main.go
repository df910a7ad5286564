package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/go-chi/chi/v5"
	"github.com/rook-computer/retrowatch/internal/app"
	"github.com/rook-computer/retrowatch/internal/battery"
	"github.com/rook-computer/retrowatch/internal/clock"
	"github.com/rook-computer/retrowatch/internal/config"
	"github.com/rook-computer/retrowatch/internal/render"
	"github.com/rook-computer/retrowatch/internal/web"
)

const defaultSimLog = "./retrowatch-sim.log"

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load("retrowatch-sim", os.Args[1:], config.SimulatorDefaults(), os.Stderr)
	if errors.Is(err, config.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		return 2
	}

	// The preview owns the terminal, so logs go to a file unless headless.
	logFile := cfg.LogFile
	if logFile == "" && !cfg.Headless {
		logFile = defaultSimLog
	}
	logger, err := app.NewZapLogger(cfg.EffectiveLogLevel(), logFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger error:", err)
		return 2
	}
	defer func() { _ = logger.Close() }()

	control := NewSimControl(clock.New(cfg.Timezone, logger).Location(), battery.Of(0.8))

	var preview *TerminalDisplay
	var screen tcell.Screen
	if !cfg.Headless {
		screen, err = tcell.NewScreen()
		if err == nil {
			err = screen.Init()
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "terminal error:", err)
			return 1
		}
		defer screen.Fini()
		screen.EnableMouse(tcell.MouseButtonEvents)
		preview = NewTerminalDisplay(screen)
	}

	var inner render.Display = render.NoopDisplay{}
	if preview != nil {
		inner = preview
	}
	a := app.New(app.Options{
		Palette:   cfg.Palette,
		FrameRate: cfg.FrameRate,
		Debug:     cfg.Debug,
		Clock:     control,
		Battery:   control,
		Displays:  []render.Display{control.Display(inner)},
		Logger:    logger,
	})

	if cfg.Listen != "" {
		server := web.NewHTTPServer(cfg.Listen, web.NewRouter(web.RouterConfig{
			Controller: a,
			State:      a.Store,
			Logger:     logger,
			DevMode:    cfg.Dev,
			Extra: func(r chi.Router) {
				registerSimEndpoints(r, control, a.VisibilityRestored)
			},
		}))
		server.Logger = logger
		a.Web = server
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if screen != nil {
		if cfg.Listen != "" {
			preview.SetStatus("api http://" + displayAddr(cfg.Listen) + "/api/v1/")
		}
		go pollTerminal(screen, preview, a)
	} else {
		fmt.Println("Retrowatch simulator (headless)")
		if cfg.Listen != "" {
			fmt.Println("API: http://" + displayAddr(cfg.Listen) + "/api/v1/")
		}
	}

	if err := a.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("sim", "app error: %v", err)
		if screen != nil {
			screen.Fini()
		}
		fmt.Fprintln(os.Stderr, "app error:", err)
		return 1
	}
	return 0
}

// pollTerminal returns once the screen is finalized.
func pollTerminal(screen tcell.Screen, preview *TerminalDisplay, a *app.App) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		switch actionFor(ev) {
		case actionAmbient:
			a.ToggleAmbient()
		case actionTick:
			a.Tick()
		case actionVisible:
			a.VisibilityRestored()
		case actionCycle:
			a.Cycle()
		case actionResize:
			preview.Redraw()
		case actionQuit:
			a.Exit(nil)
			return
		}
	}
}

func displayAddr(addr string) string {
	// Best-effort for display; don't attempt full URL parsing here.
	if len(addr) > 0 && addr[0] == ':' {
		return "127.0.0.1" + addr
	}
	return addr
}
