package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mhartley/tally/internal/model"
)

func TestRenderTable(t *testing.T) {
	columns := []Column{
		{Title: "DATE", Width: 10},
		{Title: "AMOUNT", Width: 10, AlignRight: true},
		{Title: "DESCRIPTION", Width: 12},
	}
	rows := [][]string{
		{"2025-01-10", "50.00", "Groceries"},
		{"2025-01-11", "1250.00", "January salary payment"},
	}

	out := RenderTable(columns, rows)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// Header, its bottom border, then the data rows.
	assert.Len(t, lines, 4)

	assert.Contains(t, lines[2], "2025-01-10")
	assert.Contains(t, lines[2], "     50.00", "amounts should be right-aligned")

	// Long cells truncate with an ellipsis instead of breaking the grid
	assert.Contains(t, lines[3], "January sal…")
	assert.NotContains(t, lines[3], "salary payment")
}

func TestRenderTableShortRow(t *testing.T) {
	columns := []Column{
		{Title: "A", Width: 3},
		{Title: "B", Width: 3},
	}
	out := RenderTable(columns, [][]string{{"x"}})
	assert.Contains(t, out, "x")
}

func TestFormatAmountPlainForTransfers(t *testing.T) {
	out := FormatAmount(model.Amount(5000), "PKR", model.ModeTransfer)
	assert.Equal(t, "50.00 PKR", out)
}
