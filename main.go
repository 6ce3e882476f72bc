// pattern: Imperative Shell
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"codeprojects/internal/cli"
	"codeprojects/internal/config"
	"codeprojects/internal/instance"
	"codeprojects/internal/logging"
	"codeprojects/internal/project"
	"codeprojects/internal/runner"
	"codeprojects/internal/tui"
	"codeprojects/internal/watch"
	"codeprojects/internal/web"
)

var version = "dev"

const logFileName = "codeprojects.log"

func main() {
	// Stop parsing flags after the first non-flag arg (the subcommand),
	// so that --help after a subcommand is handled by the subcommand.
	flag.CommandLine.SetInterspersed(false)

	configDir := flag.StringP("config-dir", "c", "", "config directory (default: ~/.config/codeprojects)")

	var local *session
	defer func() {
		if local != nil {
			local.Close()
		}
	}()

	hooks := cli.Hooks{
		Local: func() (cli.Backend, error) {
			s, err := openSession(*configDir, nil)
			if err != nil {
				return nil, err
			}
			local = s
			s.plugin.LoadAll()
			return cli.LocalBackend{Plugin: s.plugin}, nil
		},
		Serve: func() error { return runServe(*configDir) },
	}

	// Override flag.Usage before Parse so --help uses the CLI app's help
	flag.Usage = func() {
		app := cli.BuildApp(version, *configDir, hooks)
		app.PrintHelp(os.Stderr)
		flag.PrintDefaults()
	}

	flag.Parse()

	app := cli.BuildApp(version, *configDir, hooks)
	if app.Execute(flag.Args()) {
		runTUI(*configDir)
	}
}

// loadConfig loads the configuration from the specified directory or default location.
func loadConfig(configDir string) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if configDir != "" {
		cfg, err = config.LoadFromDir(configDir)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// session is the configuration, logging and runner shared by every mode.
type session struct {
	configDir string
	dataDir   string
	cfg       config.Config
	logs      *logging.Manager
	logger    *logging.ScopedLogger
	plugin    *runner.Plugin
}

// openSession loads configuration, starts logging and detects editors.
// console, when non-nil, mirrors log lines in human-readable form.
func openSession(configDir string, console io.Writer) (*session, error) {
	cfg, err := loadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	dataDir := cli.ResolveDataDir(configDir)
	logs, err := logging.NewManager(logging.Config{
		FilePath:       filepath.Join(dataDir, logFileName),
		MaxSizeMB:      10,
		MaxBackups:     3,
		MaxAgeDays:     7,
		ChannelBufSize: 1000,
		Level:          cfg.LogLevel,
		Console:        console,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	return &session{
		configDir: configDir,
		dataDir:   dataDir,
		cfg:       cfg,
		logs:      logs,
		logger:    logs.For("app"),
		plugin:    runner.New(cfg, logs, runner.Options{}),
	}, nil
}

// reloadConfig is the loader handed to ctrl+r and POST /api/reload.
func (s *session) reloadConfig() (config.Config, error) {
	return loadConfig(s.configDir)
}

// watch reloads projects on source changes until ctx is cancelled. It is a
// no-op when watching is disabled.
func (s *session) watch(ctx context.Context) {
	if !s.cfg.Watch {
		return
	}
	w, err := watch.New(s.plugin, s.logs.For("watch"), watch.Options{})
	if err != nil {
		s.logger.Warn("file watching unavailable", "error", err)
		return
	}
	go func() {
		if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("watcher stopped", "error", err)
		}
	}()
}

func (s *session) Close() {
	_ = s.logs.Close()
}

// runTUI launches the interactive launcher.
func runTUI(configDir string) {
	s, err := openSession(configDir, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	s.logger.Info("application starting", "version", version)
	s.plugin.LoadAll()

	model := tui.NewModel(s.cfg, s.plugin, s.logs, tui.Options{
		LoadConfig: s.reloadConfig,
		Logs:       s.logs.Entries(),
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	// Registered after the first load so Send never blocks before Run.
	s.plugin.OnReload(func(records []project.Record) {
		go p.Send(tui.ProjectsReloadedMsg{Count: len(records)})
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.watch(ctx)

	final, err := p.Run()
	if err != nil {
		s.logger.Error("application exited with error", "error", err)
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}

	if m, ok := final.(tui.Model); ok && m.Opened != "" {
		fmt.Printf("opened %s\n", m.Opened)
	}
	s.logger.Info("application stopped")
}

// runServe holds the instance lock, serves the HTTP API and watches sources
// until interrupted.
func runServe(configDir string) error {
	s, err := openSession(configDir, os.Stderr)
	if err != nil {
		return err
	}
	defer s.Close()

	fl, err := instance.Lock(s.dataDir)
	if err != nil {
		return err
	}
	defer instance.Cleanup(s.dataDir, fl)

	s.logger.Info("serve starting", "version", version)
	s.plugin.LoadAll()

	server := web.New(
		web.Config{Bind: s.cfg.Web.Bind, Port: s.cfg.Web.Port},
		s.plugin,
		s.reloadConfig,
		s.logs,
	)
	ln, err := server.Listen()
	if err != nil {
		return err
	}

	// Write port file for CLI discovery
	if err := instance.WritePort(s.dataDir, server.Addr()); err != nil {
		s.logger.Error("failed to write port file", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	s.watch(ctx)

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve(ln) }()
	s.logger.Info("listening", "url", "http://"+server.Addr())

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("web server shutdown error", "error", err)
	}
	s.logger.Info("serve stopped")
	return nil
}
