package web_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"codeprojects/internal/config"
	"codeprojects/internal/logging"
	"codeprojects/internal/matcher"
	"codeprojects/internal/project"
	"codeprojects/internal/web"
)

// fakeService answers queries from a fixed record list.
type fakeService struct {
	mu        sync.Mutex
	records   []project.Record
	opened    []string
	runErr    error
	reloads   int
	lastCfg   config.Config
	listeners []func([]project.Record)
	matcher   *matcher.Matcher
}

func newFakeService(records ...project.Record) *fakeService {
	return &fakeService{
		records: records,
		matcher: matcher.New(matcher.Options{
			ProjectNameMatches: true,
			AppNameMatches:     true,
			TriggerKeywords:    []string{"vscode"},
			Exists:             func(string) bool { return true },
		}),
	}
}

func (f *fakeService) Projects() []project.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records
}

func (f *fakeService) Find(path string) (project.Record, bool) {
	for _, r := range f.Projects() {
		if r.Path == path {
			return r, true
		}
	}
	return project.Record{}, false
}

func (f *fakeService) Match(q matcher.Query) []matcher.Match {
	return f.matcher.Match(f.Projects(), q)
}

func (f *fakeService) Run(r project.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, r.Path)
	return f.runErr
}

func (f *fakeService) LoadAll() []project.Record {
	f.mu.Lock()
	f.reloads++
	records := f.records
	listeners := append([]func([]project.Record){}, f.listeners...)
	f.mu.Unlock()

	for _, fn := range listeners {
		fn(records)
	}
	return records
}

func (f *fakeService) Reload(cfg config.Config) []project.Record {
	f.mu.Lock()
	f.lastCfg = cfg
	f.mu.Unlock()
	return f.LoadAll()
}

func (f *fakeService) OnReload(fn func([]project.Record)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

func (f *fakeService) openedPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.opened...)
}

var errBoom = errors.New("boom")

// startServer runs a server on an ephemeral port and returns its base URL.
func startServer(t *testing.T, svc web.Service, loadConfig web.ConfigLoader) (*web.Server, string) {
	t.Helper()
	lm := logging.NewTestLogManager(100)
	t.Cleanup(func() { _ = lm.Close() })

	s := web.New(web.Config{Bind: "127.0.0.1", Port: 0}, svc, loadConfig, lm)
	ln, err := s.Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ln)
	}()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
		<-done
	})

	return s, "http://" + s.Addr()
}
