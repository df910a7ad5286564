package app

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger interface and implementations
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type NoopLogger struct{}

func (NoopLogger) Infof(component, format string, args ...interface{})  {}
func (NoopLogger) Errorf(component, format string, args ...interface{}) {}

const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// ZapLogger adapts a sugared zap logger to the component-tagged Logger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
	sync  func() error
}

func toZapLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case DebugLevel:
		return zapcore.DebugLevel, nil
	case InfoLevel, "":
		return zapcore.InfoLevel, nil
	case WarnLevel:
		return zapcore.WarnLevel, nil
	case ErrorLevel:
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// NewZapLogger writes console-encoded lines to path, or to stderr when
// path is empty.
func NewZapLogger(level, path string) (*ZapLogger, error) {
	lvl, err := toZapLevel(level)
	if err != nil {
		return nil, err
	}

	ws := zapcore.Lock(os.Stderr)
	closeFn := func() error { return nil }
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		ws = zapcore.Lock(f)
		closeFn = f.Close
	}
	return newZapLogger(lvl, ws, closeFn), nil
}

func newZapLogger(level zapcore.Level, ws zapcore.WriteSyncer, closeFn func() error) *ZapLogger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), ws, zap.NewAtomicLevelAt(level))
	sugar := zap.New(core).Sugar()
	return &ZapLogger{
		sugar: sugar,
		sync: func() error {
			_ = sugar.Sync()
			return closeFn()
		},
	}
}

func (l *ZapLogger) Infof(component string, format string, args ...interface{}) {
	l.sugar.With("component", component).Infof(format, args...)
}

func (l *ZapLogger) Errorf(component string, format string, args ...interface{}) {
	l.sugar.With("component", component).Errorf(format, args...)
}

// Close flushes buffered entries and closes the log file, if any.
func (l *ZapLogger) Close() error {
	return l.sync()
}
