// Package log wraps log/slog so every record carries a component attribute.
package log

import (
	"log/slog"
	"os"
)

// Logger is a slog.Logger bound to a component. The attribute is attached
// once at construction, so the promoted Info/Warn/Error/Debug methods all
// carry it without per-call plumbing.
type Logger struct {
	*slog.Logger
	component string
}

// Config holds logger configuration.
type Config struct {
	Level     slog.Level
	Component string
	// Handler overrides the default text handler, mainly for tests.
	Handler slog.Handler
}

// New builds a component-bound logger. Without an explicit handler it writes
// text records to stdout at the configured level.
func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: config.Level})
	}
	return &Logger{
		Logger:    slog.New(handler).With(FieldComponent, config.Component),
		component: config.Component,
	}
}

// With returns a logger with extra attributes attached.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), component: l.component}
}

// WithComponent rebinds the logger to a different component.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    l.Logger.With(FieldComponent, component),
		component: component,
	}
}

// Component returns the logger's component name.
func (l *Logger) Component() string {
	return l.component
}

// SetDefault installs the logger process-wide.
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}
