package lexer

import (
	"io"
	"log/slog"
	"os"
)

// DebugEnv enables debug logging in the default logger when set to any value.
const DebugEnv = "LEXACTION_DEBUG"

// TelemetryMode controls telemetry collection.
type TelemetryMode int

const (
	TelemetryOff   TelemetryMode = iota // Zero overhead (default)
	TelemetryBasic                      // Per-kind execution, underflow and fault counts
)

// DebugLevel controls debug tracing.
type DebugLevel int

const (
	DebugOff     DebugLevel = iota // No tracing (default)
	DebugActions                   // One debug record per executed action
)

// Config holds executor configuration.
type Config struct {
	Telemetry TelemetryMode
	Debug     DebugLevel
	Logger    *slog.Logger
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	cfg := Config{Logger: DefaultLogger(os.Stderr)}
	if os.Getenv(DebugEnv) != "" {
		cfg.Debug = DebugActions
	}
	return cfg
}

// ExecutorOpt configures an Executor.
type ExecutorOpt func(*Config)

// WithTelemetry enables basic telemetry.
func WithTelemetry() ExecutorOpt {
	return func(c *Config) {
		c.Telemetry = TelemetryBasic
	}
}

// WithDebugActions traces every executed action at debug level.
func WithDebugActions() ExecutorOpt {
	return func(c *Config) {
		c.Debug = DebugActions
	}
}

// WithLogger sets the logger used for tracing and diagnostics.
func WithLogger(logger *slog.Logger) ExecutorOpt {
	return func(c *Config) {
		c.Logger = logger
	}
}

// DefaultLogger returns a compact text logger: no timestamps or level field. Debug
// records are only written when DebugEnv is set.
func DefaultLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv(DebugEnv) != "" {
		level = slog.LevelDebug
	}
	return NewLogger(w, level)
}

// NewLogger returns the compact text logger at an explicit level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}
