package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "esc":
			m.mode = listView
			m.searching = false
			m.searchInput.Blur()
			return m, nil

		case "enter":
			query := strings.TrimSpace(m.searchInput.Value())
			if query == "" {
				return m, nil
			}
			m.searchInput.Blur()
			return m, performSearch(m.db, query)
		}

		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}

	// Navigating results
	switch msg.String() {
	case "esc", "q":
		m.mode = listView
		m.searchResults = nil
		m.searchInput.SetValue("")
		return m, nil

	case "/":
		m.searching = true
		m.searchInput.Focus()
		return m, nil

	case "down", "j":
		if m.searchSelected < len(m.searchResults)-1 {
			m.searchSelected++
		}
		return m, nil

	case "up", "k":
		if m.searchSelected > 0 {
			m.searchSelected--
		}
		return m, nil

	case "enter":
		if m.searchSelected < len(m.searchResults) {
			uuid := m.searchResults[m.searchSelected].SessionUUID
			return m, loadSessionDetail(m.db, uuid)
		}
		return m, nil
	}

	return m, nil
}

func (m Model) viewSearch() string {
	var b strings.Builder

	b.WriteString(searchHeaderStyle.Render("Search"))
	b.WriteString("\n")
	b.WriteString(m.searchInput.View())
	b.WriteString("\n\n")

	if m.searching {
		b.WriteString(helpStyle.Render("enter search • esc back"))
		return b.String()
	}

	if len(m.searchResults) == 0 {
		b.WriteString("No results.\n\n")
		b.WriteString(helpStyle.Render("/ edit query • esc back"))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("%d match(es)\n\n", len(m.searchResults)))

	// Window the results around the selection so long lists stay on screen
	visible := m.height - 8
	if visible < 5 {
		visible = 5
	}
	start := 0
	if m.searchSelected >= visible {
		start = m.searchSelected - visible + 1
	}

	for i := start; i < len(m.searchResults) && i < start+visible; i++ {
		r := m.searchResults[i]

		snippet := strings.Join(strings.Fields(r.Snippet), " ")
		if len(snippet) > 120 {
			snippet = snippet[:120] + "..."
		}

		meta := r.ProjectPath
		if r.Timestamp != "" {
			meta += " | " + r.Timestamp
		}

		if i == m.searchSelected {
			b.WriteString(searchSelectedStyle.Render("> " + snippet))
		} else {
			b.WriteString("  " + snippet)
		}
		b.WriteString("\n")
		b.WriteString(searchMetaStyle.Render("  " + meta))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ navigate • enter open session • / edit query • esc back"))
	return b.String()
}
