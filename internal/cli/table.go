package cli

import (
	"strings"

	"github.com/mhartley/tally/internal/model"
)

// Column describes one table column. Right-aligned columns are used for
// amounts.
type Column struct {
	Title      string
	Width      int
	AlignRight bool
}

// RenderTable renders rows under a styled header. Cells longer than their
// column width are truncated with an ellipsis.
func RenderTable(columns []Column, rows [][]string) string {
	var b strings.Builder

	var header []string
	for _, col := range columns {
		header = append(header, pad(col.Title, col.Width, col.AlignRight))
	}
	b.WriteString(TableHeaderStyle.Render(strings.Join(header, "  ")))
	b.WriteString("\n")

	for _, row := range rows {
		var cells []string
		for i, col := range columns {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			cells = append(cells, pad(value, col.Width, col.AlignRight))
		}
		b.WriteString(strings.Join(cells, "  "))
		b.WriteString("\n")
	}

	return b.String()
}

// FormatAmount renders an amount with its currency, colored by direction.
func FormatAmount(amount model.Amount, currency string, mode model.EntryMode) string {
	text := amount.String()
	if currency != "" {
		text = text + " " + currency
	}
	switch mode {
	case model.ModeIncome:
		return CreditStyle.Render(text)
	case model.ModeExpense:
		return DebitStyle.Render(text)
	default:
		return text
	}
}

func pad(s string, width int, alignRight bool) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) > width {
		if width <= 1 {
			return string(runes[:width])
		}
		return string(runes[:width-1]) + "…"
	}
	gap := strings.Repeat(" ", width-len(runes))
	if alignRight {
		return gap + s
	}
	return s + gap
}
