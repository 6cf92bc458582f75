package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhartley/tally/internal/compose"
	"github.com/mhartley/tally/internal/model"
	"github.com/mhartley/tally/internal/query"
)

// collectMsgs executes a command, flattening batches into their messages.
func collectMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collectMsgs(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func TestSuccessfulSubmitReloadsHistory(t *testing.T) {
	poster := &fakePoster{}
	searcher := &fakeSearcher{page: model.TransactionPage{
		Transactions: []model.Transaction{
			{ID: "1", Description: "Groceries", Type: model.ModeExpense, Amount: 5000},
		},
		TotalElements: 1,
	}}
	m := newModel(Config{
		Composer:   compose.New(poster, "42", "PKR"),
		Controller: query.New(searcher, "42"),
		Theme:      DefaultTheme(),
	})

	fill := map[string]string{
		compose.FieldAmount:   "50.00",
		compose.FieldAccount:  "A1",
		compose.FieldCategory: "C1",
	}
	for i, field := range m.form.fields {
		if value, ok := fill[field]; ok {
			m.form.inputs[i].SetValue(value)
		}
	}

	next, cmd := m.Update(keyMsg(tea.KeyCtrlS))
	m = next.(Model)
	require.NotNil(t, cmd)

	for _, msg := range collectMsgs(cmd) {
		next, followUp := m.Update(msg)
		m = next.(Model)
		for _, fm := range collectMsgs(followUp) {
			next, _ = m.Update(fm)
			m = next.(Model)
		}
	}

	require.Len(t, poster.postings, 1)
	require.Len(t, searcher.calls, 1, "a recorded entry must re-query the history")
	assert.Equal(t, int64(1), m.browser.snapshot.TotalElements)
	assert.Contains(t, m.browser.View(), "Groceries")
}

func TestFailedSubmitLeavesHistoryAlone(t *testing.T) {
	searcher := &fakeSearcher{}
	m := newModel(Config{
		Composer:   compose.New(&fakePoster{}, "42", "PKR"),
		Controller: query.New(searcher, "42"),
		Theme:      DefaultTheme(),
	})

	next, cmd := m.Update(submitDoneMsg{err: assert.AnError})
	m = next.(Model)
	for _, msg := range collectMsgs(cmd) {
		next, _ = m.Update(msg)
		m = next.(Model)
	}

	assert.Empty(t, searcher.calls, "a failed submit must not refetch")
}
