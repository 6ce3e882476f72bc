//go:build e2e
// +build e2e

package e2e

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"codeprojects/internal/config"
	"codeprojects/internal/logging"
	"codeprojects/internal/runner"
	"codeprojects/internal/tui"
)

// SkipIfMissing skips the test if the executable is not available.
func SkipIfMissing(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("Skipping test: %s not found in PATH", name)
	}
}

// TestLogManager returns a log manager closed at test end.
func TestLogManager(t *testing.T) *logging.TestLogManager {
	t.Helper()
	lm := logging.NewTestLogManager(1000)
	t.Cleanup(func() { _ = lm.Close() })
	return lm
}

// Fixture is a throwaway user config root, home directory and bin directory
// of fake editor executables.
type Fixture struct {
	ConfigRoot string
	Home       string
	Bin        string
	// Launches is appended "<editor> <path>" by every fake editor.
	Launches string
}

func NewFixture(t *testing.T) *Fixture {
	t.Helper()
	bin := t.TempDir()
	return &Fixture{
		ConfigRoot: t.TempDir(),
		Home:       t.TempDir(),
		Bin:        bin,
		Launches:   filepath.Join(bin, "launches.log"),
	}
}

// InstallEditors writes fake editor executables and makes them the only
// programs on PATH.
func (f *Fixture) InstallEditors(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		script := "#!/bin/sh\necho \"" + name + " $1\" >> " + f.Launches + "\n"
		if err := os.WriteFile(filepath.Join(f.Bin, name), []byte(script), 0o755); err != nil {
			t.Fatalf("write fake %s: %v", name, err)
		}
	}
	t.Setenv("PATH", f.Bin)
}

// LookPath reports only the given executables as installed.
func LookPath(installed ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		if slices.Contains(installed, name) {
			return "/usr/bin/" + name, nil
		}
		return "", exec.ErrNotFound
	}
}

// Dir creates a project directory under home.
func (f *Fixture) Dir(t *testing.T, name string) string {
	t.Helper()
	dir := filepath.Join(f.Home, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	return dir
}

// SavedProject is one projects.json entry.
type SavedProject struct {
	Name     string `json:"name"`
	RootPath string `json:"rootPath"`
	Enabled  bool   `json:"enabled"`
}

// WriteSaved replaces projects.json for an editor config directory.
func (f *Fixture) WriteSaved(t *testing.T, editorDir string, projects ...SavedProject) {
	t.Helper()
	dir := filepath.Join(f.ConfigRoot, editorDir, "User", "globalStorage", config.DefaultExtensionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	data, err := json.Marshal(projects)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "projects.json"), data, 0o644); err != nil {
		t.Fatalf("write projects.json: %v", err)
	}
}

// GitRepo creates a repository on branch main with a linked worktree on
// branch feature. Returns the main worktree path.
func (f *Fixture) GitRepo(t *testing.T, name string) string {
	t.Helper()
	repo := f.Dir(t, name)
	git := func(dir string, args ...string) {
		t.Helper()
		args = append([]string{"-c", "user.name=test", "-c", "user.email=test@example.com", "-c", "init.defaultBranch=main"}, args...)
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
		}
	}
	git(repo, "init")
	git(repo, "commit", "--allow-empty", "-m", "init")
	git(repo, "worktree", "add", "-b", "feature", filepath.Join(f.Home, name+"-feature"))
	return repo
}

// Plugin builds a runner over the fixture. A nil lookPath uses PATH.
func (f *Fixture) Plugin(t *testing.T, lookPath func(string) (string, error)) *runner.Plugin {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ConfigRoot = f.ConfigRoot
	return runner.New(cfg, TestLogManager(t), runner.Options{Home: f.Home, LookPath: lookPath})
}

// WaitForLaunch waits until a fake editor recorded line.
func (f *Fixture) WaitForLaunch(t *testing.T, line string, timeout time.Duration) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		data, _ := os.ReadFile(f.Launches)
		if slices.Contains(strings.Split(strings.TrimSpace(string(data)), "\n"), line) {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return false
}

// cmdTimeout bounds how long runCmd waits for a command's message.
const cmdTimeout = 200 * time.Millisecond

// TUITestRunner helps drive the TUI through Update() calls for testing.
type TUITestRunner struct {
	t     *testing.T
	model tui.Model
}

// NewTUITestRunner creates a new test runner with the given model.
func NewTUITestRunner(t *testing.T, model tui.Model) *TUITestRunner {
	return &TUITestRunner{
		t:     t,
		model: model,
	}
}

// Model returns the current model state.
func (r *TUITestRunner) Model() tui.Model {
	return r.model
}

// PressKey simulates pressing a regular key.
func (r *TUITestRunner) PressKey(key rune) {
	r.t.Helper()
	msg := tea.KeyMsg{
		Type:  tea.KeyRunes,
		Runes: []rune{key},
	}
	model, cmd := r.model.Update(msg)
	r.model = model.(tui.Model)
	r.runCmd(cmd)
}

// PressSpecialKey simulates pressing a special key like Enter or Tab.
func (r *TUITestRunner) PressSpecialKey(keyType tea.KeyType) {
	r.t.Helper()
	msg := tea.KeyMsg{Type: keyType}
	model, cmd := r.model.Update(msg)
	r.model = model.(tui.Model)
	r.runCmd(cmd)
}

// TypeText types a string character by character.
func (r *TUITestRunner) TypeText(text string) {
	r.t.Helper()
	for _, ch := range text {
		r.PressKey(ch)
	}
}

// SendWindowSize sends a window size message.
func (r *TUITestRunner) SendWindowSize(width, height int) {
	r.t.Helper()
	msg := tea.WindowSizeMsg{Width: width, Height: height}
	model, cmd := r.model.Update(msg)
	r.model = model.(tui.Model)
	r.runCmd(cmd)
}

// runCmd executes a Bubbletea command and processes its result.
func (r *TUITestRunner) runCmd(cmd tea.Cmd) {
	r.runCmdWithDepth(cmd, 0)
}

// runCmdWithDepth executes a command with depth tracking to prevent infinite recursion.
func (r *TUITestRunner) runCmdWithDepth(cmd tea.Cmd, depth int) {
	if cmd == nil || depth > 10 {
		return
	}

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(cmdTimeout):
		// Blink and status-clear ticks; nothing under test waits on them.
		return
	}
	if msg == nil {
		return
	}

	// Handle batch messages (result of tea.Batch)
	if batchMsg, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batchMsg {
			if c != nil {
				r.runCmdWithDepth(c, depth+1)
			}
		}
		return
	}

	// Skip quit messages
	if _, ok := msg.(tea.QuitMsg); ok {
		return
	}

	model, nextCmd := r.model.Update(msg)
	r.model = model.(tui.Model)

	r.runCmdWithDepth(nextCmd, depth+1)
}
