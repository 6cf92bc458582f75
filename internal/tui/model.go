// Package tui is the interactive terminal frontend: an entry form that
// mirrors the composer's field rules and a transaction browser over the
// query controller.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mhartley/tally/internal/compose"
	"github.com/mhartley/tally/internal/query"
)

// View represents the current view mode.
type View int

const (
	ViewCompose View = iota
	ViewBrowse
)

// Config holds the dependencies the TUI needs.
type Config struct {
	Composer   *compose.Composer
	Controller *query.Controller
	Theme      Theme
}

// Model holds the main TUI state.
type Model struct {
	form    FormModel
	browser BrowserModel
	keymap  KeyMap
	theme   Theme
	help    help.Model

	view     View
	showHelp bool
	quitting bool
	width    int
	height   int
}

// newModel creates a new model with the given configuration.
func newModel(cfg Config) Model {
	keymap := DefaultKeyMap()
	return Model{
		form:    NewFormModel(cfg.Composer, keymap, cfg.Theme),
		browser: NewBrowserModel(cfg.Controller, keymap, cfg.Theme),
		keymap:  keymap,
		theme:   cfg.Theme,
		help:    help.New(),
		view:    ViewCompose,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		m.browser.Init(),
	)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case submitDoneMsg:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		if msg.err == nil {
			// The ledger changed; the history view must not keep showing
			// the pre-submit snapshot.
			return m, tea.Batch(cmd, m.browser.reload())
		}
		return m, cmd

	case pageLoadedMsg, errorMsg:
		// Result messages belong to the browser whichever view is active.
		var cmd tea.Cmd
		m.browser, cmd = m.browser.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.ForceQuit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Quit):
			if m.showHelp {
				m.showHelp = false
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.ToggleHelp):
			// The form needs "?" for free-text input.
			if m.view != ViewCompose {
				m.showHelp = !m.showHelp
				return m, nil
			}
		case key.Matches(msg, m.keymap.SwitchView):
			if m.view == ViewCompose {
				m.view = ViewBrowse
			} else {
				m.view = ViewCompose
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.view {
	case ViewCompose:
		m.form, cmd = m.form.Update(msg)
	case ViewBrowse:
		m.browser, cmd = m.browser.Update(msg)
	}
	return m, cmd
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.view {
	case ViewCompose:
		body = m.theme.Title.Render("New entry") + "\n\n" + m.form.View()
	case ViewBrowse:
		body = m.theme.Title.Render("History") + "\n\n" + m.browser.View()
	}

	if m.showHelp {
		body += "\n" + m.help.FullHelpView(m.keymap.FullHelp())
	} else {
		body += "\n" + m.help.ShortHelpView(m.keymap.ShortHelp())
	}

	return body
}
