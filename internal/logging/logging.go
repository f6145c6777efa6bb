// Package logging provides structured logging for tkeyfido, built on
// log/slog the way the wider example pack's daemons do: component-tagged
// handlers, a choice of text or JSON output, and a redaction hook so a
// misplaced log call can never leak the device secret or a derived
// private key.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level is the logging verbosity threshold.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format selects the slog handler used for output.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// Config configures a Logger.
type Config struct {
	Level     Level
	Format    Format
	Output    io.Writer // defaults to os.Stderr when nil
	Component string
}

// DefaultConfig returns the simulator's default logging configuration:
// info level, human-readable text, to stderr.
func DefaultConfig() Config {
	return Config{Level: LevelInfo, Format: FormatText, Component: "tkeyfido-sim"}
}

// Logger wraps slog.Logger. The zero Logger is not usable; use New or
// Discard.
type Logger struct {
	*slog.Logger
}

// sensitiveKeys names log attribute keys that must never carry real
// values: anything derived from or equal to the device secret.
var sensitiveKeys = []string{"secret", "cdi", "priv", "private_key", "key_handle", "nonce"}

func shouldRedact(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// New builds a Logger from cfg.
func New(cfg Config) *Logger {
	w := cfg.Output
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level: cfg.Level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if shouldRedact(a.Key) {
				a.Value = slog.StringValue("[redacted]")
			}
			return a
		},
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	if cfg.Component != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("component", cfg.Component)})
	}

	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a Logger that drops every record, the nil-safe default
// for callers (tests, library use) that don't want device activity
// logged anywhere.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// WithComponent returns a derived Logger tagging records with a
// different component name, e.g. "dispatcher" vs "drbg".
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("component", name))}
}

// ParseLevel parses a case-insensitive level name.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("logging: unknown level %q", s)
	}
}
