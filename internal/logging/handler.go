// pattern: Imperative Shell

package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapHandler lets slog front a zap core. Groups become dotted key prefixes.
type zapHandler struct {
	zap    *zap.Logger
	level  zapcore.Level
	fields []zap.Field
	prefix string
}

func (h *zapHandler) Enabled(_ context.Context, level slog.Level) bool {
	return zapLevel(level) >= h.level
}

func (h *zapHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]zap.Field, 0, len(h.fields)+r.NumAttrs())
	fields = append(fields, h.fields...)
	r.Attrs(func(a slog.Attr) bool {
		fields = append(fields, h.field(a))
		return true
	})

	if ce := h.zap.Check(zapLevel(r.Level), r.Message); ce != nil {
		ce.Write(fields...)
	}
	return nil
}

func (h *zapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	fields := make([]zap.Field, 0, len(h.fields)+len(attrs))
	fields = append(fields, h.fields...)
	for _, a := range attrs {
		fields = append(fields, h.field(a))
	}
	return &zapHandler{zap: h.zap, level: h.level, fields: fields, prefix: h.prefix}
}

func (h *zapHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &zapHandler{zap: h.zap, level: h.level, fields: h.fields, prefix: h.prefix + name + "."}
}

func (h *zapHandler) field(a slog.Attr) zap.Field {
	v := a.Value.Resolve()
	if err, ok := v.Any().(error); ok {
		return zap.String(h.prefix+a.Key, err.Error())
	}
	return zap.Any(h.prefix+a.Key, v.Any())
}

func zapLevel(level slog.Level) zapcore.Level {
	switch {
	case level >= slog.LevelError:
		return zapcore.ErrorLevel
	case level >= slog.LevelWarn:
		return zapcore.WarnLevel
	case level >= slog.LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// parseZapLevel maps a config string to a zap level, defaulting to info.
func parseZapLevel(s string) zapcore.Level {
	if strings.EqualFold(s, "warning") {
		return zapcore.WarnLevel
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.EpochTimeEncoder
	enc.EncodeLevel = zapcore.LowercaseLevelEncoder
	return enc
}

// registry caches one ScopedLogger per scope.
type registry struct {
	base    *zap.Logger
	level   zapcore.Level
	mu      sync.RWMutex
	loggers map[string]*ScopedLogger
}

func newRegistry(base *zap.Logger, level zapcore.Level) *registry {
	return &registry{base: base, level: level, loggers: make(map[string]*ScopedLogger)}
}

func (r *registry) get(scope string) *ScopedLogger {
	r.mu.RLock()
	logger, ok := r.loggers[scope]
	r.mu.RUnlock()
	if ok {
		return logger
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if logger, ok := r.loggers[scope]; ok {
		return logger
	}

	handler := &zapHandler{zap: r.base.Named(scope), level: r.level}
	logger = &ScopedLogger{slog: slog.New(handler), scope: scope}
	r.loggers[scope] = logger
	return logger
}
