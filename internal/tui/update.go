// pattern: Imperative Shell

package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"codeprojects/internal/config"
	"codeprojects/internal/logging"
	"codeprojects/internal/matcher"
	"codeprojects/internal/project"
)

const statusClearDelay = 3 * time.Second

// ProjectsReloadedMsg is sent from outside the program (file watcher, web
// reload) after the project list was replaced.
type ProjectsReloadedMsg struct {
	Count int
}

// reloadResultMsg is sent when a ctrl+r reload completes.
type reloadResultMsg struct {
	count int
	cfg   *config.Config // Set when configuration was re-read
	err   error
}

// openResultMsg is sent when launching the editor completes.
type openResultMsg struct {
	record project.Record
	err    error
}

// copyResultMsg is sent after writing a path to the clipboard.
type copyResultMsg struct {
	path string
	err  error
}

// logEntryMsg delivers one entry from the logging channel.
type logEntryMsg struct {
	entry logging.LogEntry
}

// clearStatusMsg is sent after a timed delay to clear the status bar.
type clearStatusMsg struct {
	message string
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-4, 10)
		m.clampOffset()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ProjectsReloadedMsg:
		m.refreshMatches()
		return m, nil

	case reloadResultMsg:
		if msg.err != nil {
			m.setStatus(StatusError, "Reload failed: "+msg.err.Error())
			return m, nil
		}
		if msg.cfg != nil {
			m.trigger = matcher.New(matcher.Options{TriggerKeywords: msg.cfg.TriggerKeywords})
		}
		m.refreshMatches()
		m.setStatus(StatusSuccess, fmt.Sprintf("Loaded %d projects", msg.count))
		return m, m.clearStatusAfter(m.statusMessage)

	case openResultMsg:
		if msg.err != nil {
			m.setStatus(StatusError, "Open failed: "+msg.err.Error())
			return m, nil
		}
		m.Opened = msg.record.Path
		return m, tea.Quit

	case copyResultMsg:
		if msg.err != nil {
			m.setStatus(StatusError, "Copy failed: "+msg.err.Error())
			return m, nil
		}
		m.setStatus(StatusSuccess, "Copied "+msg.path)
		return m, m.clearStatusAfter(m.statusMessage)

	case logEntryMsg:
		entry := msg.entry
		m.lastLog = &entry
		return m, m.waitForLogEntry()

	case clearStatusMsg:
		// Only clear if nothing newer replaced the message.
		if m.statusMessage == msg.message {
			m.clearStatus()
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "up", "ctrl+p":
		if m.cursor > 0 {
			m.cursor--
			m.clampOffset()
		}
		return m, nil

	case "down", "ctrl+n":
		if m.cursor < len(m.matches)-1 {
			m.cursor++
			m.clampOffset()
		}
		return m, nil

	case "enter":
		sel, ok := m.Selected()
		if !ok {
			return m, nil
		}
		m.setStatus(StatusInfo, "Opening "+sel.Record.Name+"...")
		return m, m.open(sel.Record)

	case "ctrl+y":
		sel, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, m.copyPath(sel.Record.Path)

	case "ctrl+r":
		m.setStatus(StatusInfo, "Reloading...")
		return m, m.reload()
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.cursor = 0
		m.offset = 0
		m.refreshMatches()
	}
	return m, cmd
}

func (m Model) open(r project.Record) tea.Cmd {
	return func() tea.Msg {
		return openResultMsg{record: r, err: m.service.Run(r)}
	}
}

func (m Model) copyPath(path string) tea.Cmd {
	return func() tea.Msg {
		return copyResultMsg{path: path, err: m.copy(path)}
	}
}

func (m Model) reload() tea.Cmd {
	return func() tea.Msg {
		if m.loadConfig == nil {
			return reloadResultMsg{count: len(m.service.LoadAll())}
		}
		cfg, err := m.loadConfig()
		if err != nil {
			return reloadResultMsg{err: err}
		}
		return reloadResultMsg{count: len(m.service.Reload(cfg)), cfg: &cfg}
	}
}

// waitForLogEntry blocks on the logging channel and delivers one entry.
func (m Model) waitForLogEntry() tea.Cmd {
	if m.logs == nil {
		return nil
	}
	logs := m.logs
	return func() tea.Msg {
		entry, ok := <-logs
		if !ok {
			return nil
		}
		return logEntryMsg{entry: entry}
	}
}

func (m Model) clearStatusAfter(message string) tea.Cmd {
	return tea.Tick(statusClearDelay, func(time.Time) tea.Msg {
		return clearStatusMsg{message: message}
	})
}
