package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestManager(t *testing.T, cfg Config) *Manager {
	t.Helper()
	if cfg.FilePath == "" {
		cfg.FilePath = filepath.Join(t.TempDir(), "test.log")
	}
	mgr, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return mgr
}

func TestNewManager_RequiresFilePath(t *testing.T) {
	if _, err := NewManager(Config{}); err == nil {
		t.Fatal("expected error without FilePath")
	}
}

func TestNewManager_CreatesLogDirectory(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "nested", "dir", "codeprojects.log")
	mgr := newTestManager(t, Config{FilePath: logFile})
	defer func() { _ = mgr.Close() }()

	if _, err := os.Stat(filepath.Dir(logFile)); err != nil {
		t.Fatalf("log directory not created: %v", err)
	}
}

func TestManager_For(t *testing.T) {
	mgr := newTestManager(t, Config{Level: "debug"})
	defer func() { _ = mgr.Close() }()

	logger := mgr.For("loader.Code")
	if logger == nil {
		t.Fatal("For() returned nil")
	}
	if logger.Scope() != "loader.Code" {
		t.Errorf("Scope() = %q, want loader.Code", logger.Scope())
	}
	if mgr.For("loader.Code") != logger {
		t.Error("For() should return cached logger for same scope")
	}
	if mgr.For("loader.Cursor") == logger {
		t.Error("For() should return different logger for different scope")
	}
}

func TestManager_LoggingToChannel(t *testing.T) {
	mgr := newTestManager(t, Config{Level: "debug", ChannelBufSize: 10})
	defer func() { _ = mgr.Close() }()

	mgr.For("matcher").Info("query matched", "query", "my pro", "count", 2)
	_ = mgr.Sync()

	select {
	case entry := <-mgr.Entries():
		if entry.Message != "query matched" {
			t.Errorf("Message = %q", entry.Message)
		}
		if entry.Scope != "matcher" {
			t.Errorf("Scope = %q", entry.Scope)
		}
		if entry.Fields["query"] != "my pro" {
			t.Errorf("Fields[query] = %v", entry.Fields["query"])
		}
	default:
		t.Fatal("entry not received on channel after Sync()")
	}
}

func TestManager_LevelFilters(t *testing.T) {
	mgr := newTestManager(t, Config{Level: "warn"})
	defer func() { _ = mgr.Close() }()

	logger := mgr.For("app")
	logger.Info("dropped")
	logger.Warn("kept")
	_ = mgr.Sync()

	select {
	case entry := <-mgr.Entries():
		if entry.Message != "kept" || entry.Level != "WARN" {
			t.Errorf("got %q at %s, want kept at WARN", entry.Message, entry.Level)
		}
	default:
		t.Fatal("expected the warn entry")
	}
}

func TestManager_LoggingToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "test.log")
	mgr := newTestManager(t, Config{FilePath: logFile, Level: "debug"})

	mgr.For("file.test").Info("file test message")
	_ = mgr.Close()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "file test message") {
		t.Errorf("log file should contain message, got: %s", content)
	}
	if !strings.Contains(content, "file.test") {
		t.Errorf("log file should contain scope, got: %s", content)
	}
}

func TestManager_ConsoleMirror(t *testing.T) {
	var buf bytes.Buffer
	mgr := newTestManager(t, Config{Level: "info", Console: &buf})

	mgr.For("web").Info("web server started", "addr", "127.0.0.1:9000")
	_ = mgr.Close()

	out := buf.String()
	if !strings.Contains(out, "web server started") || !strings.Contains(out, "127.0.0.1:9000") {
		t.Errorf("console output missing entry: %q", out)
	}
}

func TestScopedLogger_With(t *testing.T) {
	lm := NewTestLogManager(10)
	defer func() { _ = lm.Close() }()

	lm.For("loader").With("variant", "Code").Info("source loaded", "records", 3)

	entries := lm.Drain()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Fields["variant"] != "Code" {
		t.Errorf("Fields[variant] = %v", entries[0].Fields["variant"])
	}
	// JSON numbers decode as float64.
	if entries[0].Fields["records"] != float64(3) {
		t.Errorf("Fields[records] = %v", entries[0].Fields["records"])
	}
}

func TestParseZapLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "debug",
		"INFO":    "info",
		"warning": "warn",
		"error":   "error",
		"bogus":   "info",
		"":        "info",
	}
	for in, want := range tests {
		if got := parseZapLevel(in).String(); got != want {
			t.Errorf("parseZapLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
