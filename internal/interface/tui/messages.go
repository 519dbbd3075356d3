package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"cclog/internal/core/config"
	"cclog/internal/core/db"
	"cclog/internal/core/importer"
	"cclog/internal/core/search"
)

type errMsg struct {
	err error
}

type sessionsLoadedMsg struct {
	sessions []db.Session
}

type sessionDetailLoadedMsg struct {
	detail *db.SessionDetail
}

type searchResultsMsg struct {
	results []search.Result
}

type syncDoneMsg struct {
	result *importer.Result
}

func loadSessions(database *db.DB) tea.Cmd {
	return func() tea.Msg {
		sessions, err := database.ListSessions("", 200)
		if err != nil {
			return errMsg{err}
		}
		return sessionsLoadedMsg{sessions: sessions}
	}
}

func loadSessionDetail(database *db.DB, sessionUUID string) tea.Cmd {
	return func() tea.Msg {
		detail, err := database.GetSessionDetail(sessionUUID)
		if err != nil {
			return errMsg{err}
		}
		return sessionDetailLoadedMsg{detail: detail}
	}
}

func performSearch(database *db.DB, query string) tea.Cmd {
	return func() tea.Msg {
		// Single characters produce useless result sets
		if len(query) < 2 {
			return searchResultsMsg{results: nil}
		}
		filters := search.ParseQuery(query)
		results, err := search.SearchWithFilters(database, filters, 100)
		if err != nil {
			return errMsg{err}
		}
		return searchResultsMsg{results: results}
	}
}

func syncSessions(database *db.DB) tea.Cmd {
	return func() tea.Msg {
		cfg, err := config.Load()
		if err != nil {
			return errMsg{err}
		}
		res, err := importer.New(database).ImportDirectory(cfg.ProjectsDir, nil)
		if err != nil {
			return errMsg{err}
		}
		return syncDoneMsg{result: res}
	}
}
