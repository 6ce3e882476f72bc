// pattern: Imperative Shell
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"codeprojects/internal/instance"
	"codeprojects/internal/matcher"
	"codeprojects/internal/project"
)

// Backend answers list/query/open. It is either a running `serve` instance
// reached over HTTP or an in-process runner.
type Backend interface {
	Projects() ([]project.Record, error)
	Match(q matcher.Query) ([]matcher.Match, error)
	Run(path string) error
}

// LocalFunc builds an in-process backend with projects already loaded.
type LocalFunc func() (Backend, error)

// Delegate picks a backend for a CLI command and owns error reporting and
// exit codes.
type Delegate struct {
	// ConfigDir is the config directory for lock/port file discovery.
	ConfigDir string

	// Local is used when no instance is running. When nil, commands require
	// a running instance.
	Local LocalFunc

	// Discover finds a running instance. Defaults to instance.Discover.
	Discover func(dataDir string) (string, error)

	// ExitFunc is called to exit the process. Defaults to os.Exit.
	// Overridable for testing.
	ExitFunc func(int)

	// Stderr is where error messages are written. Defaults to os.Stderr.
	// Overridable for testing.
	Stderr io.Writer
}

func (d *Delegate) defaults() {
	if d.ExitFunc == nil {
		d.ExitFunc = os.Exit
	}
	if d.Stderr == nil {
		d.Stderr = os.Stderr
	}
	if d.Discover == nil {
		d.Discover = instance.Discover
	}
}

// Client discovers the running instance and returns an HTTP client for it,
// or an error when none answers.
func (d *Delegate) Client() (*instance.Client, error) {
	d.defaults()
	baseURL, err := d.Discover(ResolveDataDir(d.ConfigDir))
	if err != nil {
		return nil, err
	}
	return instance.NewClient(baseURL), nil
}

// Backend returns the running instance when one answers, the local backend
// otherwise.
func (d *Delegate) Backend() (Backend, error) {
	client, err := d.Client()
	if err == nil {
		return client, nil
	}
	if d.Local == nil {
		return nil, err
	}
	return d.Local()
}

// Run executes fn against a backend.
//
// Exit codes:
// - 2: an instance was required but none is running
// - 1: any other error
// - 0: success (fn returned nil)
func (d *Delegate) Run(fn func(Backend) error) {
	d.defaults()

	backend, err := d.Backend()
	if err != nil {
		d.fail(err)
		return
	}
	if err := fn(backend); err != nil {
		d.fail(err)
	}
}

// RunInstance is Run restricted to a running instance.
func (d *Delegate) RunInstance(fn func(*instance.Client) error) {
	d.defaults()

	client, err := d.Client()
	if err != nil {
		d.fail(err)
		return
	}
	if err := fn(client); err != nil {
		d.fail(err)
	}
}

func (d *Delegate) fail(err error) {
	msg := err.Error()
	// Server errors read "codeprojects returned status N: <message>".
	if strings.Contains(msg, "codeprojects returned status") {
		if parts := strings.SplitN(msg, ": ", 2); len(parts) > 1 {
			msg = parts[1]
		}
	}
	fmt.Fprintf(d.Stderr, "error: %s\n", msg)

	if errors.Is(err, instance.ErrNotRunning) {
		d.ExitFunc(2)
		return
	}
	d.ExitFunc(1)
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
