package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"codeprojects/internal/logging"
	"codeprojects/internal/project"
)

type fakeReloader struct {
	mu      sync.Mutex
	sources []string
	loads   int
	loaded  chan struct{}
}

func newFakeReloader(sources ...string) *fakeReloader {
	return &fakeReloader{sources: sources, loaded: make(chan struct{}, 100)}
}

func (f *fakeReloader) Sources() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sources
}

func (f *fakeReloader) LoadAll() []project.Record {
	f.mu.Lock()
	f.loads++
	f.mu.Unlock()
	f.loaded <- struct{}{}
	return nil
}

func (f *fakeReloader) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

func startWatcher(t *testing.T, r Reloader, opts Options) *Watcher {
	t.Helper()
	logs := logging.NewTestLogManager(100)
	t.Cleanup(func() { _ = logs.Close() })

	w, err := New(r, logs.For("watch"), opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Start(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w
}

func waitWatched(t *testing.T, w *Watcher, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(w.Watched()) >= n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("watched %v, want %d directories", w.Watched(), n)
}

func waitLoad(t *testing.T, r *fakeReloader) {
	t.Helper()
	select {
	case <-r.loaded:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcher_ReloadsOnSourceWrite(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "projects.json")
	r := newFakeReloader(source)

	w := startWatcher(t, r, Options{Debounce: 20 * time.Millisecond})
	waitWatched(t, w, 1)

	if err := os.WriteFile(source, []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}
	waitLoad(t, r)
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "storage.json")
	r := newFakeReloader(source)

	w := startWatcher(t, r, Options{Debounce: 200 * time.Millisecond})
	waitWatched(t, w, 1)

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(source, []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	waitLoad(t, r)
	time.Sleep(300 * time.Millisecond)

	if got := r.count(); got != 1 {
		t.Errorf("LoadAll called %d times, want 1", got)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	r := newFakeReloader(filepath.Join(dir, "projects.json"))

	w := startWatcher(t, r, Options{Debounce: 10 * time.Millisecond})
	waitWatched(t, w, 1)

	if err := os.WriteFile(filepath.Join(dir, "unrelated.json"), []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if got := r.count(); got != 0 {
		t.Errorf("LoadAll called %d times, want 0", got)
	}
}

func TestWatcher_PicksUpDirectoryCreatedLater(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Code", "User")
	source := filepath.Join(dir, "projects.json")
	r := newFakeReloader(source)

	w := startWatcher(t, r, Options{Debounce: 10 * time.Millisecond, PollInterval: 20 * time.Millisecond})
	if got := w.Watched(); len(got) != 0 {
		t.Fatalf("Watched() = %v before the directory exists", got)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	waitWatched(t, w, 1)

	if err := os.WriteFile(source, []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}
	waitLoad(t, r)
}

func TestWatcher_RewatchesRecreatedDirectory(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "globalStorage", "ext")
	source := filepath.Join(dir, "projects.json")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	r := newFakeReloader(source)

	w := startWatcher(t, r, Options{Debounce: 10 * time.Millisecond, PollInterval: 20 * time.Millisecond})
	waitWatched(t, w, 1)

	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for len(w.Watched()) != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("Watched() = %v after the directory was deleted", w.Watched())
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	waitWatched(t, w, 1)

	// Drain reloads caused by the deletion.
	time.Sleep(50 * time.Millisecond)
	for len(r.loaded) > 0 {
		<-r.loaded
	}

	if err := os.WriteFile(source, []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}
	waitLoad(t, r)
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	w, err := New(newFakeReloader(), nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}
