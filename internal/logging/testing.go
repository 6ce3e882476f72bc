// pattern: Imperative Shell

package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestLogManager logs at debug level into a channel only.
type TestLogManager struct {
	*registry
	sink *ChannelSink
}

func NewTestLogManager(bufferSize int) *TestLogManager {
	sink := NewChannelSink(bufferSize)
	core := zapcore.NewCore(zapcore.NewJSONEncoder(jsonEncoderConfig()), sink, zapcore.DebugLevel)
	return &TestLogManager{
		registry: newRegistry(zap.New(core), zapcore.DebugLevel),
		sink:     sink,
	}
}

func (m *TestLogManager) For(scope string) *ScopedLogger {
	return m.get(scope)
}

func (m *TestLogManager) Channel() <-chan LogEntry {
	return m.sink.Entries()
}

// Drain returns every entry queued so far without blocking.
func (m *TestLogManager) Drain() []LogEntry {
	var out []LogEntry
	for {
		select {
		case e, ok := <-m.sink.Entries():
			if !ok {
				return out
			}
			out = append(out, e)
		default:
			return out
		}
	}
}

func (m *TestLogManager) Close() error {
	return m.sink.Close()
}
