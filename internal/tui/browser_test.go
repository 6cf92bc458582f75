package tui

import (
	"context"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhartley/tally/internal/ledger"
	"github.com/mhartley/tally/internal/model"
	"github.com/mhartley/tally/internal/query"
)

type fakeSearcher struct {
	calls []ledger.SearchParams
	page  model.TransactionPage
	err   error
}

func (f *fakeSearcher) SearchTransactions(_ context.Context, p ledger.SearchParams) (*model.TransactionPage, error) {
	f.calls = append(f.calls, p)
	if f.err != nil {
		return nil, f.err
	}
	page := f.page
	return &page, nil
}

func newTestBrowser(searcher *fakeSearcher) BrowserModel {
	controller := query.New(searcher, "42")
	return NewBrowserModel(controller, DefaultKeyMap(), DefaultTheme())
}

func runCmd(t *testing.T, m BrowserModel, cmd tea.Cmd) BrowserModel {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	require.NotNil(t, msg)
	next, _ := m.Update(msg)
	return next
}

func TestBrowserLoadsInitialPage(t *testing.T) {
	searcher := &fakeSearcher{page: model.TransactionPage{
		Transactions: []model.Transaction{
			{ID: "1", Type: model.ModeExpense, Amount: 5000, TransactionDate: "2025-01-10", Description: "Groceries", Status: model.StatusCleared},
		},
		TotalElements: 1,
	}}
	browser := newTestBrowser(searcher)

	browser = runCmd(t, browser, browser.Init())

	view := browser.View()
	assert.Contains(t, view, "Groceries")
	assert.Contains(t, view, "2025-01-10")
	assert.Contains(t, view, "1 total")
}

func TestBrowserNextPageStopsAtLastPage(t *testing.T) {
	searcher := &fakeSearcher{page: model.TransactionPage{TotalElements: 5}}
	browser := newTestBrowser(searcher)
	browser = runCmd(t, browser, browser.Init())

	// 5 results fit on one page of 10; paging forward is a no-op.
	_, cmd := browser.Update(keyMsg(tea.KeyRight))
	assert.Nil(t, cmd)
}

func TestBrowserNextPageAdvancesCursor(t *testing.T) {
	searcher := &fakeSearcher{page: model.TransactionPage{TotalElements: 25}}
	browser := newTestBrowser(searcher)
	browser = runCmd(t, browser, browser.Init())

	browser, cmd := browser.Update(keyMsg(tea.KeyRight))
	browser = runCmd(t, browser, cmd)

	last := searcher.calls[len(searcher.calls)-1]
	assert.Equal(t, 1, last.Page)
	assert.Contains(t, browser.View(), "page 2")
}

func TestBrowserKeywordFilterResetsPage(t *testing.T) {
	searcher := &fakeSearcher{page: model.TransactionPage{TotalElements: 25}}
	browser := newTestBrowser(searcher)
	browser = runCmd(t, browser, browser.Init())

	browser, cmd := browser.Update(keyMsg(tea.KeyRight))
	browser = runCmd(t, browser, cmd)

	// Open the filter prompt, type a keyword, apply it.
	browser, _ = browser.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	browser, _ = browser.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("fuel")})
	browser, cmd = browser.Update(keyMsg(tea.KeyEnter))
	browser = runCmd(t, browser, cmd)

	last := searcher.calls[len(searcher.calls)-1]
	assert.Equal(t, "fuel", last.Keyword)
	assert.Equal(t, 0, last.Page, "filter change must jump back to the first page")
	assert.Contains(t, browser.View(), "page 1")
}

func TestBrowserFetchErrorKeepsSnapshot(t *testing.T) {
	searcher := &fakeSearcher{page: model.TransactionPage{
		Transactions:  []model.Transaction{{ID: "1", Description: "Groceries", Type: model.ModeExpense}},
		TotalElements: 11,
	}}
	browser := newTestBrowser(searcher)
	browser = runCmd(t, browser, browser.Init())

	searcher.err = fmt.Errorf("ledger unreachable")
	browser, cmd := browser.Update(keyMsg(tea.KeyRight))
	browser = runCmd(t, browser, cmd)

	view := browser.View()
	assert.Contains(t, view, "Groceries", "stale-but-valid rows stay on screen")
	assert.Contains(t, view, "ledger unreachable")
}

func TestBrowserPageSizeCycles(t *testing.T) {
	searcher := &fakeSearcher{}
	browser := newTestBrowser(searcher)
	browser = runCmd(t, browser, browser.Init())

	browser, cmd := browser.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	browser = runCmd(t, browser, cmd)

	last := searcher.calls[len(searcher.calls)-1]
	assert.Equal(t, 25, last.Size)
	assert.Contains(t, browser.View(), "25 per page")
}
