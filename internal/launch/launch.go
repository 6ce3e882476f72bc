// pattern: Imperative Shell

package launch

import (
	"errors"
	"fmt"
	"os/exec"

	"codeprojects/internal/logging"
)

// Launcher opens paths in an editor as detached, unsupervised processes.
type Launcher struct {
	executable string
	logger     *logging.ScopedLogger
	start      func(cmd *exec.Cmd) error
}

// New returns a Launcher for the given editor executable.
func New(executable string, logger *logging.ScopedLogger) *Launcher {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Launcher{executable: executable, logger: logger, start: startDetached}
}

// Executable returns the editor binary this launcher runs.
func (l *Launcher) Executable() string {
	return l.executable
}

// Open starts "<executable> <path>" and returns once the process has been
// spawned. The exit status is never collected by the caller.
func (l *Launcher) Open(path string) error {
	if path == "" {
		return errors.New("launch: empty path")
	}

	cmd := exec.Command(l.executable, path)
	if err := l.start(cmd); err != nil {
		l.logger.Error("failed to start editor", "executable", l.executable, "path", path, "error", err)
		return fmt.Errorf("launch %s: %w", l.executable, err)
	}

	l.logger.Info("editor started", "executable", l.executable, "path", path)
	return nil
}

// startDetached spawns cmd in its own session and reaps it in the background
// so no zombie is left behind.
func startDetached(cmd *exec.Cmd) error {
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
