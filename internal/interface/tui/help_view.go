package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "?":
		m.mode = listView
		return m, nil
	}
	return m, nil
}

func (m Model) viewHelp() string {
	return titleStyle.Render("cclog - keyboard shortcuts") + `

List view:
  ↑/k ↓/j      Move selection
  enter        Open session transcript
  /            Search all session logs
  y            Copy session UUID to clipboard
  s            Sync from ~/.claude/projects/
  q            Quit

Detail view:
  ↑/↓          Scroll
  g / G        Jump to top / bottom
  y            Copy session UUID to clipboard
  esc          Back to list

Search view:
  Filters work inside the query:
    project:myapp after:yesterday before:2025-06-01

` + helpStyle.Render("press esc to go back")
}
