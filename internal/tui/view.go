// pattern: Imperative Shell

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"codeprojects/internal/logging"
	"codeprojects/internal/matcher"
)

const helpText = "↑/↓: select • enter: open • ctrl+y: copy path • ctrl+r: reload • esc: quit"

// View renders the TUI.
func (m Model) View() string {
	layout := ComputeLayout(m.width, m.height)
	width := layout.Width
	if width <= 0 {
		width = 80
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.TitleStyle().Render("Code Projects"),
		m.styles.SubtitleStyle().Render(fmt.Sprintf("%d projects", len(m.service.Projects()))),
	)

	parts := []string{
		header,
		m.input.View() + "\n",
		m.renderResults(layout, width),
		m.renderStatusBar(width),
		m.renderLogLine(width),
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderResults(layout Layout, width int) string {
	if len(m.matches) == 0 {
		msg := "No matching projects"
		if len(m.service.Projects()) == 0 {
			msg = "No projects found for the installed editors"
		}
		return lipgloss.NewStyle().Height(layout.Results).Render(m.styles.HelpStyle().Render(msg))
	}

	end := min(m.offset+layout.VisibleResults(), len(m.matches))
	var rows []string
	for i := m.offset; i < end; i++ {
		rows = append(rows, m.renderResult(m.matches[i], i == m.cursor, width))
	}
	return lipgloss.NewStyle().Height(layout.Results).Render(strings.Join(rows, "\n"))
}

// renderResult renders one match as a name line and an indented path line.
func (m Model) renderResult(match matcher.Match, selected bool, width int) string {
	indicator := "  "
	nameStyle := m.styles.InfoStyle()
	if selected {
		indicator = m.styles.SelectedStyle().Render("▸ ")
		nameStyle = m.styles.SelectedStyle()
	}

	name := highlight(match.Record.Name, m.highlightQuery(match.Source), nameStyle, m.styles.MatchStyle())
	line := indicator + name
	if m.input.Value() != "" {
		line += " " + m.styles.RelevanceStyle().Render(fmt.Sprintf("%.2f", match.Relevance))
	}

	path := "    " + m.styles.PathStyle().Render(match.Record.Path)
	return ansi.Truncate(line, width, "…") + "\n" + ansi.Truncate(path, width, "…")
}

// renderStatusBar renders operation feedback on the left and help on the right.
func (m Model) renderStatusBar(width int) string {
	var statusText string
	switch m.statusLevel {
	case StatusSuccess:
		statusText = m.styles.SuccessStyle().Render("✓ " + m.statusMessage)
	case StatusError:
		statusText = m.styles.ErrorStyle().Render("✗ " + m.statusMessage)
	default:
		statusText = m.styles.InfoStyle().Render(m.statusMessage)
	}

	help := m.styles.HelpStyle().Render(helpText)

	spacerWidth := width - lipgloss.Width(statusText) - lipgloss.Width(help)
	if spacerWidth < 1 {
		return ansi.Truncate(statusText+" "+help, width, "…")
	}
	return statusText + strings.Repeat(" ", spacerWidth) + help
}

// renderLogLine shows the most recent log entry.
func (m Model) renderLogLine(width int) string {
	if m.lastLog == nil {
		return ""
	}
	return ansi.Truncate(m.renderLogEntry(*m.lastLog), width, "…")
}

func (m Model) renderLogEntry(entry logging.LogEntry) string {
	style := m.styles.HelpStyle()
	switch entry.Level {
	case "WARN":
		style = m.styles.WarnStyle()
	case "ERROR":
		style = m.styles.ErrorStyle()
	}
	ts := entry.Timestamp.Format("15:04:05")
	return style.Render(fmt.Sprintf("%s [%s] %s", ts, entry.Scope, entry.Summary()))
}
