// pattern: Imperative Shell

package logging

import "log/slog"

// LoggerProvider hands out scoped loggers. *Manager and *TestLogManager
// both implement it.
type LoggerProvider interface {
	For(scope string) *ScopedLogger
}

// ScopedLogger is an slog-style logger bound to a dotted scope such as
// "loader.Code" or "web".
type ScopedLogger struct {
	slog  *slog.Logger
	scope string
}

// NopLogger returns a logger that discards everything.
func NopLogger() *ScopedLogger {
	return &ScopedLogger{}
}

func (l *ScopedLogger) Debug(msg string, args ...any) {
	if l.slog != nil {
		l.slog.Debug(msg, args...)
	}
}

func (l *ScopedLogger) Info(msg string, args ...any) {
	if l.slog != nil {
		l.slog.Info(msg, args...)
	}
}

func (l *ScopedLogger) Warn(msg string, args ...any) {
	if l.slog != nil {
		l.slog.Warn(msg, args...)
	}
}

func (l *ScopedLogger) Error(msg string, args ...any) {
	if l.slog != nil {
		l.slog.Error(msg, args...)
	}
}

// With returns a logger that adds args to every entry.
func (l *ScopedLogger) With(args ...any) *ScopedLogger {
	if l.slog == nil {
		return l
	}
	return &ScopedLogger{slog: l.slog.With(args...), scope: l.scope}
}

// Scope returns the logger's dotted scope.
func (l *ScopedLogger) Scope() string {
	return l.scope
}
