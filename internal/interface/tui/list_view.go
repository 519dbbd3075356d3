package tui

import (
	"fmt"
	"io"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"cclog/internal/core/db"
)

type sessionListItem struct {
	session db.Session
}

func (i sessionListItem) FilterValue() string {
	return i.session.Summary + " " + i.session.ProjectPath
}

func (i sessionListItem) Title() string {
	if i.session.Summary != "" {
		return i.session.Summary
	}
	if len(i.session.SessionUUID) > 12 {
		return i.session.SessionUUID[:12] + "..."
	}
	return i.session.SessionUUID
}

func (i sessionListItem) Description() string {
	updated := ""
	if !i.session.UpdatedAt.IsZero() {
		updated = " | Updated: " + humanize.Time(i.session.UpdatedAt)
	}
	return fmt.Sprintf("%s | %d messages%s",
		i.session.ProjectPath, i.session.MessageCount, updated)
}

type sessionDelegate struct {
	list.DefaultDelegate
}

func (d sessionDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	s, ok := item.(sessionListItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	title := s.Title()
	desc := s.Description()

	if index == m.Index() {
		title = selectedItemStyle.Render(title)
		desc = selectedItemStyle.Faint(true).Render(desc)
	} else {
		title = itemStyle.Render(title)
		desc = itemStyle.Render(desc)
	}

	fmt.Fprintf(w, "%s\n%s", title, desc)
}

func createSessionList(sessions []db.Session, width, height int) list.Model {
	items := make([]list.Item, len(sessions))
	for i, s := range sessions {
		items[i] = sessionListItem{session: s}
	}

	delegate := sessionDelegate{DefaultDelegate: list.NewDefaultDelegate()}

	l := list.New(items, delegate, width, height-1)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetFilteringEnabled(false) // dedicated search view on /

	return l
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "enter":
		if selected, ok := m.list.SelectedItem().(sessionListItem); ok {
			return m, loadSessionDetail(m.db, selected.session.SessionUUID)
		}
		return m, nil

	case "/":
		m.mode = searchView
		m.searching = true
		m.searchInput.Focus()
		return m, nil

	case "y":
		if selected, ok := m.list.SelectedItem().(sessionListItem); ok {
			if err := clipboard.WriteAll(selected.session.SessionUUID); err == nil {
				m.statusMsg = "Session UUID copied to clipboard"
			}
		}
		return m, nil

	case "s":
		m.syncing = true
		m.statusMsg = ""
		return m, syncSessions(m.db)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) viewList() string {
	var helpText string
	switch {
	case m.syncing:
		helpText = "Syncing..."
	case m.statusMsg != "":
		helpText = statusStyle.Render(m.statusMsg)
	default:
		helpText = helpStyle.Render("↑/k up • ↓/j down • enter open • / search • y copy uuid • s sync • q quit • ? more")
	}

	if len(m.sessions) == 0 {
		return "No sessions found. Press 's' to sync.\n\n" + helpText
	}

	return m.list.View() + "\n" + helpText
}
