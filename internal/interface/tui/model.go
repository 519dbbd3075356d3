package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"cclog/internal/core/db"
	"cclog/internal/core/search"
)

type viewMode int

const (
	listView viewMode = iota
	detailView
	searchView
	helpView
)

type Model struct {
	db       *db.DB
	mode     viewMode
	list     list.Model
	viewport viewport.Model
	width    int
	height   int
	err      error

	sessions       []db.Session
	currentSession *db.SessionDetail

	searchInput    textinput.Model
	searchResults  []search.Result
	searchSelected int
	searching      bool

	syncing   bool
	statusMsg string
}

func New(database *db.DB) Model {
	input := textinput.New()
	input.Placeholder = "search (project: after: before: filters work)"
	input.CharLimit = 200

	return Model{
		db:          database,
		mode:        listView,
		searchInput: input,
	}
}

func (m Model) Init() tea.Cmd {
	return loadSessions(m.db)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if len(m.sessions) > 0 {
			m.list.SetSize(msg.Width, msg.Height-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "?":
			if m.mode == listView {
				m.mode = helpView
				return m, nil
			}
		}

		switch m.mode {
		case listView:
			return m.updateList(msg)
		case detailView:
			return m.updateDetail(msg)
		case searchView:
			return m.updateSearch(msg)
		case helpView:
			return m.updateHelp(msg)
		}

	case sessionsLoadedMsg:
		m.sessions = msg.sessions
		m.list = createSessionList(msg.sessions, m.width, m.height)
		return m, nil

	case sessionDetailLoadedMsg:
		m.currentSession = msg.detail
		m.viewport = createViewport(msg.detail, m.width, m.height)
		m.mode = detailView
		return m, nil

	case searchResultsMsg:
		m.searchResults = msg.results
		m.searchSelected = 0
		m.searching = false
		return m, nil

	case syncDoneMsg:
		m.syncing = false
		m.statusMsg = fmt.Sprintf("Synced: %d new message(s)", msg.result.MessagesImported)
		return m, loadSessions(m.db)

	case errMsg:
		m.err = msg.err
		m.syncing = false
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit"
	}

	switch m.mode {
	case listView:
		return m.viewList()
	case detailView:
		return m.viewDetail()
	case searchView:
		return m.viewSearch()
	case helpView:
		return m.viewHelp()
	}

	return ""
}
