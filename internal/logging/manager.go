// pattern: Imperative Shell

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds configuration for the Manager.
type Config struct {
	FilePath       string    // Rotated JSON log file
	MaxSizeMB      int       // Size in MB before rotation
	MaxBackups     int       // Rotated files to keep
	MaxAgeDays     int       // Days to keep rotated files
	Level          string    // debug, info, warn, error
	ChannelBufSize int       // Entries buffered for the TUI (default 256)
	Console        io.Writer // Optional human-readable mirror (e.g. os.Stderr for serve)
}

// Manager fans every entry out to a rotating file, the entry channel and,
// when configured, a console writer.
type Manager struct {
	*registry
	sink       *ChannelSink
	fileWriter *lumberjack.Logger
}

// NewManager creates a log manager from cfg.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.FilePath == "" {
		return nil, fmt.Errorf("FilePath is required")
	}
	if cfg.ChannelBufSize == 0 {
		cfg.ChannelBufSize = 256
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 5
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = 3
	}
	if cfg.MaxAgeDays == 0 {
		cfg.MaxAgeDays = 14
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	level := parseZapLevel(cfg.Level)
	fileWriter := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	sink := NewChannelSink(cfg.ChannelBufSize)

	jsonEnc := zapcore.NewJSONEncoder(jsonEncoderConfig())
	cores := []zapcore.Core{
		zapcore.NewCore(jsonEnc, zapcore.AddSync(fileWriter), level),
		zapcore.NewCore(jsonEnc.Clone(), sink, level),
	}
	if cfg.Console != nil {
		consoleCfg := zap.NewDevelopmentEncoderConfig()
		consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleCfg),
			zapcore.AddSync(cfg.Console),
			level,
		))
	}

	return &Manager{
		registry:   newRegistry(zap.New(zapcore.NewTee(cores...)), level),
		sink:       sink,
		fileWriter: fileWriter,
	}, nil
}

// For returns the cached logger for scope, creating it on first use.
func (m *Manager) For(scope string) *ScopedLogger {
	return m.get(scope)
}

// Entries returns the channel of parsed log entries.
func (m *Manager) Entries() <-chan LogEntry {
	return m.sink.Entries()
}

// Sync flushes buffered entries.
func (m *Manager) Sync() error {
	return m.base.Sync()
}

// Close flushes and releases the file and channel.
func (m *Manager) Close() error {
	_ = m.Sync()
	_ = m.sink.Close()
	return m.fileWriter.Close()
}
