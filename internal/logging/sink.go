// pattern: Imperative Shell

package logging

import (
	"encoding/json"
	"errors"
	"sync"
	"time"
)

var errSinkClosed = errors.New("write to closed channel sink")

// ChannelSink is a zapcore.WriteSyncer that decodes each JSON line into a
// LogEntry and queues it. When the buffer is full the oldest entry is dropped
// so logging never blocks.
type ChannelSink struct {
	entries chan LogEntry
	mu      sync.Mutex
	closed  bool
}

func NewChannelSink(bufferSize int) *ChannelSink {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &ChannelSink{entries: make(chan LogEntry, bufferSize)}
}

func (s *ChannelSink) Write(p []byte) (int, error) {
	entry, err := decodeEntry(p)
	if err != nil {
		return len(p), nil
	}
	if err := s.Send(entry); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Send queues an entry directly.
func (s *ChannelSink) Send(entry LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errSinkClosed
	}

	for {
		select {
		case s.entries <- entry:
			return nil
		default:
		}
		select {
		case <-s.entries:
		default:
		}
	}
}

func (s *ChannelSink) Sync() error { return nil }

// Close closes the channel. Safe to call more than once.
func (s *ChannelSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.entries)
	}
	return nil
}

func (s *ChannelSink) Entries() <-chan LogEntry {
	return s.entries
}

func decodeEntry(data []byte) (LogEntry, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return LogEntry{}, err
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     "INFO",
		Scope:     "app",
		Fields:    make(map[string]any),
	}

	if msg, ok := raw["msg"].(string); ok {
		entry.Message = msg
	}
	if level, ok := raw["level"].(string); ok {
		entry.Level = ParseLevel(level)
	}
	if scope, ok := raw["logger"].(string); ok {
		entry.Scope = scope
	}
	if ts, ok := raw["ts"].(float64); ok {
		sec := int64(ts)
		entry.Timestamp = time.Unix(sec, int64((ts-float64(sec))*1e9))
	}

	for k, v := range raw {
		switch k {
		case "msg", "level", "logger", "ts", "caller", "stacktrace":
		default:
			entry.Fields[k] = v
		}
	}
	return entry, nil
}
