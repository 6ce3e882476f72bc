// pattern: Imperative Shell
package cli

import (
	"fmt"

	"codeprojects/internal/matcher"
	"codeprojects/internal/project"
	"codeprojects/internal/runner"
)

// LocalBackend serves CLI commands from an in-process runner.
type LocalBackend struct {
	Plugin *runner.Plugin
}

func (l LocalBackend) Projects() ([]project.Record, error) {
	return l.Plugin.Projects(), nil
}

func (l LocalBackend) Match(q matcher.Query) ([]matcher.Match, error) {
	return matcher.Rank(l.Plugin.Match(q)), nil
}

// Run opens path when it belongs to a loaded record.
func (l LocalBackend) Run(path string) error {
	r, ok := l.Plugin.Find(path)
	if !ok {
		return fmt.Errorf("unknown project path %q", path)
	}
	return l.Plugin.Run(r)
}
