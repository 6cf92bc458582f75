package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mhartley/tally/internal/model"
	"github.com/mhartley/tally/internal/query"
)

// BrowserModel is the transaction history view over a query controller. The
// controller does the request fencing; the browser only ever renders the
// snapshot it is handed.
type BrowserModel struct {
	controller *query.Controller
	keymap     KeyMap
	theme      Theme

	keyword   textinput.Model
	filtering bool

	snapshot query.Snapshot
	lastErr  error
	loading  bool
	width    int
}

// NewBrowserModel builds the history view.
func NewBrowserModel(controller *query.Controller, keymap KeyMap, theme Theme) BrowserModel {
	keyword := textinput.New()
	keyword.Placeholder = "keyword filter…"
	keyword.CharLimit = 80

	return BrowserModel{
		controller: controller,
		keymap:     keymap,
		theme:      theme,
		keyword:    keyword,
	}
}

// Init fires the initial page load.
func (m BrowserModel) Init() tea.Cmd {
	return m.fetch(m.controller.Generation())
}

// fetch runs the controller fetch for one generation. Stale results are
// swallowed: a newer command is already in flight for the newer generation.
func (m BrowserModel) fetch(generation uint64) tea.Cmd {
	controller := m.controller
	return func() tea.Msg {
		snapshot, err := controller.Fetch(context.Background(), generation)
		if errors.Is(err, query.ErrStale) {
			return nil
		}
		if err != nil {
			return errorMsg{err: err}
		}
		return pageLoadedMsg{snapshot: snapshot}
	}
}

// reload re-issues the current query on a fresh generation, superseding any
// in-flight fetch. Used after a successful submit so the history reflects
// the new entry.
func (m BrowserModel) reload() tea.Cmd {
	controller := m.controller
	return func() tea.Msg {
		snapshot, err := controller.Refresh(context.Background())
		if errors.Is(err, query.ErrStale) {
			return nil
		}
		if err != nil {
			return errorMsg{err: err}
		}
		return pageLoadedMsg{snapshot: snapshot}
	}
}

// Update handles browser messages.
func (m BrowserModel) Update(msg tea.Msg) (BrowserModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case pageLoadedMsg:
		m.snapshot = msg.snapshot
		m.loading = false
		m.lastErr = nil
		return m, nil

	case errorMsg:
		m.loading = false
		m.lastErr = msg.err
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			switch msg.String() {
			case "enter":
				m.filtering = false
				m.keyword.Blur()
				keyword := m.keyword.Value()
				gen := m.controller.SetFilter(query.Patch{Keyword: &keyword})
				m.loading = true
				return m, m.fetch(gen)
			case "esc":
				m.filtering = false
				m.keyword.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.keyword, cmd = m.keyword.Update(msg)
			return m, cmd
		}

		switch {
		case msg.String() == "/":
			m.filtering = true
			m.keyword.Focus()
			return m, textinput.Blink

		case key.Matches(msg, m.keymap.NextPage):
			if !m.hasNextPage() {
				return m, nil
			}
			gen := m.controller.SetPage(m.controller.Page() + 1)
			m.loading = true
			return m, m.fetch(gen)

		case key.Matches(msg, m.keymap.PrevPage):
			if m.controller.Page() == 0 {
				return m, nil
			}
			gen := m.controller.SetPage(m.controller.Page() - 1)
			m.loading = true
			return m, m.fetch(gen)

		case key.Matches(msg, m.keymap.PageSize):
			gen := m.controller.SetPageSize(nextPageSize(m.controller.PageSize()))
			m.loading = true
			return m, m.fetch(gen)

		case key.Matches(msg, m.keymap.Refresh):
			m.loading = true
			return m, m.fetch(m.controller.Generation())
		}
	}

	return m, nil
}

func (m BrowserModel) hasNextPage() bool {
	seen := int64(m.controller.Page()+1) * int64(m.controller.PageSize())
	return seen < m.snapshot.TotalElements
}

// View renders the history table and pagination footer.
func (m BrowserModel) View() string {
	var b strings.Builder

	if m.filtering {
		b.WriteString("Filter: " + m.keyword.View() + "\n\n")
	}

	header := fmt.Sprintf("%-10s  %-8s  %12s  %-9s  %s",
		"DATE", "TYPE", "AMOUNT", "STATUS", "DESCRIPTION")
	b.WriteString(m.theme.TableHeader.Render(header))
	b.WriteString("\n")

	if m.loading && len(m.snapshot.Transactions) == 0 {
		b.WriteString(m.theme.Subtle.Render("Loading…"))
		b.WriteString("\n")
	}

	for _, txn := range m.snapshot.Transactions {
		amount := fmt.Sprintf("%12s", txn.Amount.String())
		switch txn.Type {
		case model.ModeIncome:
			amount = m.theme.Credit.Render(amount)
		case model.ModeExpense:
			amount = m.theme.Debit.Render(amount)
		}
		b.WriteString(fmt.Sprintf("%-10s  %-8s  %s  %-9s  %s\n",
			txn.TransactionDate, txn.Type, amount, txn.Status, txn.Description))
	}

	footer := fmt.Sprintf("page %d · %d per page · %d total",
		m.controller.Page()+1, m.controller.PageSize(), m.snapshot.TotalElements)
	if m.lastErr != nil {
		footer += "  ·  " + m.theme.FieldError.Render(m.lastErr.Error())
	}
	b.WriteString("\n")
	b.WriteString(m.theme.Subtle.Render(footer))
	b.WriteString("\n")

	return b.String()
}

// nextPageSize cycles through the allowed sizes.
func nextPageSize(size int) int {
	for i, candidate := range query.PageSizes {
		if candidate == size {
			return query.PageSizes[(i+1)%len(query.PageSizes)]
		}
	}
	return query.DefaultPageSize
}
