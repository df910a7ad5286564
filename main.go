package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rook-computer/retrowatch/internal/app"
	"github.com/rook-computer/retrowatch/internal/battery"
	"github.com/rook-computer/retrowatch/internal/buttons"
	"github.com/rook-computer/retrowatch/internal/clock"
	"github.com/rook-computer/retrowatch/internal/config"
	"github.com/rook-computer/retrowatch/internal/render"
	"github.com/rook-computer/retrowatch/internal/system"
	"github.com/rook-computer/retrowatch/internal/web"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load("retrowatch", os.Args[1:], config.DeviceDefaults(), os.Stderr)
	if errors.Is(err, config.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		return 2
	}

	// Best-effort: redirect all stdout/stderr output (including panic stack traces)
	// to a file so crashes are diagnosable even when the console is left in graphics mode.
	if cfg.StdioLog != "" {
		if err := redirectStdIO(cfg.StdioLog); err != nil {
			fmt.Fprintln(os.Stderr, "stdio log redirect error:", err)
		}
	}

	logger, err := app.NewZapLogger(cfg.EffectiveLogLevel(), cfg.LogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger error:", err)
		return 2
	}
	defer func() { _ = logger.Close() }()
	logger.Infof("main", "retrowatch starting, palette=%s fb=%q listen=%q", cfg.Palette, cfg.Framebuffer, cfg.Listen)

	var displays []render.Display
	if cfg.Framebuffer != "" {
		fb := render.NewFBDisplay(cfg.Framebuffer)
		fb.Logger = logger
		if err := fb.Open(); err != nil {
			logger.Errorf("main", "framebuffer: %v", err)
			return 1
		}
		defer func() { _ = fb.Close() }()
		displays = append(displays, fb)
	}

	a := app.New(app.Options{
		Palette:   cfg.Palette,
		FrameRate: cfg.FrameRate,
		Debug:     cfg.Debug,
		Clock:     clock.New(cfg.Timezone, logger),
		Battery:   battery.Sysfs{Root: cfg.BatteryRoot},
		Displays:  displays,
		Logger:    logger,
	})
	if cfg.Framebuffer != "" {
		a.Console = system.NewConsole(logger)
	}
	if !cfg.NoInput {
		a.Buttons = buttons.NewEvdev(logger)
	}
	if cfg.Listen != "" {
		server := web.NewHTTPServer(cfg.Listen, web.NewRouter(web.RouterConfig{
			Controller: a,
			State:      a.Store,
			Logger:     logger,
			DevMode:    cfg.Dev,
		}))
		server.Logger = logger
		a.Web = server
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go forwardSignals(ctx, a, logger)

	if err := a.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("main", "app error: %v", err)
		return 1
	}
	return 0
}

// forwardSignals maps host signals onto watchface signals:
// SIGUSR1 = display visible again, SIGUSR2 = toggle ambient mode.
func forwardSignals(ctx context.Context, a *app.App, logger app.Logger) {
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(ch)
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-ch:
			logger.Infof("main", "signal %v", sig)
			switch sig {
			case syscall.SIGUSR1:
				a.VisibilityRestored()
			case syscall.SIGUSR2:
				a.ToggleAmbient()
			}
		}
	}
}
