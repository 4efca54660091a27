// Package logging provides a minimal structured logging interface so the
// upload pipeline can emit component-tagged diagnostics without binding
// callers to a concrete logger. The slog adapter is the production
// implementation; Discard keeps tests and embedded use quiet.
package logging

import (
	"log/slog"
)

// Logger is the minimal interface the pipeline logs through.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// slogAdapter wraps *slog.Logger to satisfy Logger.
type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Debug(msg string, args ...any) { a.logger.Debug(msg, args...) }
func (a *slogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }

// NewSlog adapts an *slog.Logger, tagging every entry with the given
// component name. A nil logger falls back to slog.Default.
func NewSlog(logger *slog.Logger, component string) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogAdapter{logger: logger.With(slog.String("component", component))}
}

// discard drops all log messages.
type discard struct{}

func (discard) Debug(string, ...any) {}
func (discard) Info(string, ...any)  {}
func (discard) Warn(string, ...any)  {}
func (discard) Error(string, ...any) {}

// Discard returns a Logger that drops everything.
func Discard() Logger { return discard{} }
