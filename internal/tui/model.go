package tui

import (
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"codeprojects/internal/config"
	"codeprojects/internal/logging"
	"codeprojects/internal/matcher"
	"codeprojects/internal/project"
)

// Service is the runner surface the TUI drives. *runner.Plugin implements it.
type Service interface {
	Projects() []project.Record
	Match(q matcher.Query) []matcher.Match
	Run(r project.Record) error
	LoadAll() []project.Record
	Reload(cfg config.Config) []project.Record
}

// StatusLevel represents the severity of a status bar message.
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusSuccess
	StatusError
)

func (s StatusLevel) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "info"
	}
}

// Options replaces side-effecting collaborators, mostly for tests.
type Options struct {
	// LoadConfig re-reads configuration on ctrl+r. When nil, ctrl+r only
	// reloads projects.
	LoadConfig func() (config.Config, error)
	// Copy writes text to the system clipboard.
	Copy func(text string) error
	// Logs feeds the footer. May be nil.
	Logs <-chan logging.LogEntry
}

// Model is the interactive launcher: a query line over a ranked result list.
type Model struct {
	width  int
	height int
	styles *Styles
	logger *logging.ScopedLogger

	service    Service
	loadConfig func() (config.Config, error)
	copy       func(string) error
	logs       <-chan logging.LogEntry
	trigger    *matcher.Matcher

	input   textinput.Model
	matches []matcher.Match
	cursor  int
	offset  int

	statusMessage string
	statusLevel   StatusLevel
	lastLog       *logging.LogEntry

	// Opened is the path launched before the program quit, if any.
	Opened string
}

// NewModel creates a TUI model over service.
func NewModel(cfg config.Config, service Service, logProvider logging.LoggerProvider, opts Options) Model {
	input := textinput.New()
	input.Placeholder = "search projects"
	input.Prompt = "> "
	input.CharLimit = 200
	input.Focus()

	copyFn := opts.Copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	styles := NewStyles(cfg.Theme)
	input.PromptStyle = styles.PromptStyle()

	m := Model{
		styles:     styles,
		logger:     logProvider.For("tui"),
		service:    service,
		loadConfig: opts.LoadConfig,
		copy:       copyFn,
		logs:       opts.Logs,
		trigger:    matcher.New(matcher.Options{TriggerKeywords: cfg.TriggerKeywords}),
		input:      input,
	}
	m.refreshMatches()
	m.logger.Debug("tui initialized", "projects", len(service.Projects()))
	return m
}

// Init returns the initial command to run.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForLogEntry())
}

// Query returns the current query text.
func (m Model) Query() string {
	return m.input.Value()
}

// Matches returns the results currently shown.
func (m Model) Matches() []matcher.Match {
	return m.matches
}

// Selected returns the result under the cursor.
func (m Model) Selected() (matcher.Match, bool) {
	if m.cursor < 0 || m.cursor >= len(m.matches) {
		return matcher.Match{}, false
	}
	return m.matches[m.cursor], true
}

// refreshMatches re-runs the current query. An empty query lists every
// project in load order.
func (m *Model) refreshMatches() {
	text := m.input.Value()
	if text == "" {
		records := m.service.Projects()
		m.matches = make([]matcher.Match, 0, len(records))
		for _, r := range records {
			m.matches = append(m.matches, matcher.Match{
				Record: r,
				Text:   "Open " + r.Name,
				ID:     matcher.IDPrefix + r.Path,
			})
		}
	} else {
		m.matches = matcher.Rank(m.service.Match(matcher.Query{Text: text, SingleRunner: true}))
	}

	if m.cursor >= len(m.matches) {
		m.cursor = len(m.matches) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.clampOffset()
}

// clampOffset keeps the cursor inside the visible window.
func (m *Model) clampOffset() {
	visible := ComputeLayout(m.width, m.height).VisibleResults()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// highlightQuery is the text matched against names: the sub-query for
// app-invocation results, the whole query otherwise.
func (m Model) highlightQuery(source matcher.Source) string {
	text := m.input.Value()
	if source == matcher.SourceApp {
		if sub, ok := m.trigger.SubQuery(text); ok {
			return sub
		}
	}
	return text
}

func (m *Model) setStatus(level StatusLevel, msg string) {
	m.statusLevel = level
	m.statusMessage = msg
}

func (m *Model) clearStatus() {
	m.statusLevel = StatusInfo
	m.statusMessage = ""
}
