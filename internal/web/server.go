// pattern: Imperative Shell

package web

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"codeprojects/internal/config"
	"codeprojects/internal/logging"
	"codeprojects/internal/matcher"
	"codeprojects/internal/project"
)

// Service is the runner surface the API exposes. *runner.Plugin implements it.
type Service interface {
	Projects() []project.Record
	Find(path string) (project.Record, bool)
	Match(q matcher.Query) []matcher.Match
	Run(r project.Record) error
	LoadAll() []project.Record
	Reload(cfg config.Config) []project.Record
	OnReload(fn func([]project.Record))
}

// ConfigLoader re-reads configuration for POST /api/reload.
type ConfigLoader func() (config.Config, error)

// Server is the local HTTP API in front of the runner.
type Server struct {
	httpServer *http.Server
	service    Service
	loadConfig ConfigLoader
	logger     *logging.ScopedLogger
	addr       string
	listener   net.Listener
	events     *eventBroker
}

// Config holds web server configuration.
type Config struct {
	Bind string
	Port int
}

// New creates a web server.
// loadConfig may be nil, in which case POST /api/reload only reloads projects.
// logProvider must implement logging.LoggerProvider (both *logging.Manager and
// *logging.TestLogManager satisfy this interface).
func New(cfg Config, service Service, loadConfig ConfigLoader, logProvider logging.LoggerProvider) *Server {
	logger := logProvider.For("web")
	addr := fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port)

	mux := http.NewServeMux()

	events := newEventBroker()
	if service != nil {
		service.OnReload(func(records []project.Record) { events.Notify(len(records)) })
	}

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		service:    service,
		loadConfig: loadConfig,
		logger:     logger,
		addr:       addr,
		events:     events,
	}

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /api/projects", s.handleGetProjects)
	mux.HandleFunc("GET /api/match", s.handleMatch)
	mux.HandleFunc("POST /api/run", s.handleRun)
	mux.HandleFunc("POST /api/reload", s.handleReload)
	mux.HandleFunc("GET /api/query", s.HandleQuery)

	return s
}

// Listen binds the server to its configured address and returns the listener.
// Call Serve() after Listen() to start accepting connections.
// This two-step approach allows callers to obtain the actual bound address
// (useful for ephemeral port 0) before the server blocks on Serve().
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("web server listen: %w", err)
	}
	s.listener = ln
	return ln, nil
}

// Serve accepts connections on the listener. Blocks until the server stops.
// Must call Listen() first.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("web server started", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Start is a convenience that calls Listen() then Serve(). Blocks until the server stops.
func (s *Server) Start() error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Addr returns the address the server is listening on.
// Only valid after Listen() or Start() has been called.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Port returns the bound port, or the configured one before Listen().
func (s *Server) Port() int {
	if s.listener != nil {
		if tcp, ok := s.listener.Addr().(*net.TCPAddr); ok {
			return tcp.Port
		}
	}
	_, port, _ := net.SplitHostPort(s.addr)
	n, _ := strconv.Atoi(port)
	return n
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("web server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
