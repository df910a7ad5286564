package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rook-computer/retrowatch/internal/battery"
	"github.com/rook-computer/retrowatch/internal/palette"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every key for environment overrides,
// e.g. WATCHFACE_LISTEN or WATCHFACE_BATTERY_ROOT.
const EnvPrefix = "WATCHFACE"

const (
	KeyConfig      = "config"
	KeyFramebuffer = "framebuffer"
	KeyListen      = "listen"
	KeyTimezone    = "timezone"
	KeyBatteryRoot = "battery_root"
	KeyPalette     = "palette"
	KeyFrameRate   = "frame_rate"
	KeyLogLevel    = "log_level"
	KeyLogFile     = "log_file"
	KeyDebug       = "debug"
	KeyDev         = "dev"
	KeyStdioLog    = "stdio_log"
	KeyNoInput     = "no_input"
	KeyHeadless    = "headless"
)

// Defaults differ per binary:
// - real device: :80
// - simulator:   :8080
type Defaults struct {
	Listen      string
	Framebuffer string
}

func DeviceDefaults() Defaults {
	return Defaults{Listen: ":80", Framebuffer: "/dev/fb0"}
}

func SimulatorDefaults() Defaults {
	return Defaults{Listen: ":8080"}
}

type Config struct {
	ConfigFile  string
	Framebuffer string
	Listen      string
	Timezone    string
	BatteryRoot string
	Palette     palette.Name
	FrameRate   int
	LogLevel    string
	LogFile     string
	Debug       bool
	Dev         bool
	StdioLog    string
	NoInput     bool
	Headless    bool
}

// ErrHelp is returned when -h or --help was requested.
var ErrHelp = pflag.ErrHelp

// Load resolves the configuration from flags, WATCHFACE_* environment
// variables, an optional YAML file and defaults, in that precedence.
func Load(name string, args []string, defaults Defaults, usage io.Writer) (Config, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	if usage != nil {
		fs.SetOutput(usage)
	}
	fs.String(KeyConfig, "", "optional YAML config file")
	fs.String(KeyFramebuffer, defaults.Framebuffer, "framebuffer device; empty disables the framebuffer display")
	fs.String(KeyListen, defaults.Listen, "http listen address for the control API; empty disables it")
	fs.String(KeyTimezone, "", "IANA time zone for the watchface; empty uses local time")
	fs.String("battery-root", battery.DefaultRoot, "sysfs power_supply directory")
	fs.String(KeyPalette, string(palette.Default), "initial palette: "+joinNames())
	fs.Int("frame-rate", 60, "frame callbacks per second")
	fs.String("log-level", "info", "debug | info | warn | error")
	fs.String("log-file", "", "write logs to this file instead of stderr")
	fs.Bool(KeyDebug, false, "fail fast on render panics and log at debug level")
	fs.Bool(KeyDev, false, "enable dev mode (permissive CORS)")
	fs.String("stdio-log", "", "redirect stdout+stderr (including panics) to this file")
	fs.Bool("no-input", false, "do not watch input devices")
	fs.Bool(KeyHeadless, false, "simulator only: run without the terminal preview")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	bind := map[string]string{
		KeyConfig:      KeyConfig,
		KeyFramebuffer: KeyFramebuffer,
		KeyListen:      KeyListen,
		KeyTimezone:    KeyTimezone,
		KeyBatteryRoot: "battery-root",
		KeyPalette:     KeyPalette,
		KeyFrameRate:   "frame-rate",
		KeyLogLevel:    "log-level",
		KeyLogFile:     "log-file",
		KeyDebug:       KeyDebug,
		KeyDev:         KeyDev,
		KeyStdioLog:    "stdio-log",
		KeyNoInput:     "no-input",
		KeyHeadless:    KeyHeadless,
	}
	for key, flagName := range bind {
		if err := v.BindPFlag(key, fs.Lookup(flagName)); err != nil {
			return Config{}, fmt.Errorf("bind flag %s: %w", flagName, err)
		}
	}

	if path := v.GetString(KeyConfig); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		ConfigFile:  v.GetString(KeyConfig),
		Framebuffer: v.GetString(KeyFramebuffer),
		Listen:      v.GetString(KeyListen),
		Timezone:    strings.TrimSpace(v.GetString(KeyTimezone)),
		BatteryRoot: v.GetString(KeyBatteryRoot),
		FrameRate:   v.GetInt(KeyFrameRate),
		LogLevel:    strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
		LogFile:     v.GetString(KeyLogFile),
		Debug:       v.GetBool(KeyDebug),
		Dev:         v.GetBool(KeyDev),
		StdioLog:    v.GetString(KeyStdioLog),
		NoInput:     v.GetBool(KeyNoInput),
		Headless:    v.GetBool(KeyHeadless),
	}

	p, err := palette.Parse(v.GetString(KeyPalette))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", KeyPalette, err)
	}
	cfg.Palette = p

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.FrameRate < 1 || c.FrameRate > 240 {
		errs = append(errs, fmt.Errorf("%s must be between 1 and 240 (got %d)", KeyFrameRate, c.FrameRate))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("%s must be debug, info, warn or error (got %q)", KeyLogLevel, c.LogLevel))
	}
	if c.BatteryRoot == "" {
		errs = append(errs, fmt.Errorf("%s must not be empty", KeyBatteryRoot))
	}
	return errors.Join(errs...)
}

// EffectiveLogLevel lowers the level to debug when debug mode is on.
func (c Config) EffectiveLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}

func joinNames() string {
	names := palette.Names()
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return strings.Join(out, " | ")
}
