package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhartley/tally/internal/model"
	"github.com/mhartley/tally/internal/ofx"
)

func TestParseBudgetItem(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantCategory string
		wantLimit    string
		wantErr      bool
	}{
		{name: "id and limit", input: "12=2500.00", wantCategory: "12", wantLimit: "2500.00"},
		{name: "name with spaces", input: "Eating Out=800", wantCategory: "Eating Out", wantLimit: "800"},
		{name: "trims whitespace", input: " Fuel = 120.50 ", wantCategory: "Fuel", wantLimit: "120.50"},
		{name: "missing separator", input: "Groceries", wantErr: true},
		{name: "empty limit", input: "Groceries=", wantErr: true},
		{name: "empty category", input: "=100", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, limit, err := parseBudgetItem(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCategory, category)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestPostingFromEntry(t *testing.T) {
	entry := ofx.Entry{
		FitID:       "2024011501",
		Date:        "2024-01-15",
		Description: "STARBUCKS",
		AccountRef:  "1234567890",
		Mode:        model.ModeExpense,
		Amount:      model.Amount(2550),
	}

	req, err := postingFromEntry(entry, "42", "A1", "C9", "PKR")
	require.NoError(t, err)

	assert.Equal(t, "A1", req.AccountID, "explicit account wins over the statement's")
	assert.Equal(t, "C9", req.CategoryID)
	assert.Equal(t, model.ModeExpense, req.Type)
	assert.Equal(t, model.Amount(2550), req.Amount)
	assert.Equal(t, "2024-01-15", req.TransactionDate)
	assert.Equal(t, model.StatusCleared, req.Status)
	assert.Equal(t, "ofx-2024011501", req.ReferenceNumber)
}

func TestPostingFromEntryFallsBackToStatementAccount(t *testing.T) {
	entry := ofx.Entry{
		FitID:      "1",
		Date:       "2024-01-15",
		AccountRef: "1234567890",
		Mode:       model.ModeIncome,
		Amount:     model.Amount(100),
	}

	req, err := postingFromEntry(entry, "42", "", "C1", "PKR")
	require.NoError(t, err)
	assert.Equal(t, "1234567890", req.AccountID)
}

func TestPostingFromEntryRejectsUnusableLines(t *testing.T) {
	_, err := postingFromEntry(ofx.Entry{FitID: "1", Amount: 100, Mode: model.ModeExpense}, "42", "", "C1", "PKR")
	assert.Error(t, err, "no account anywhere")

	_, err = postingFromEntry(ofx.Entry{FitID: "2", AccountRef: "A1"}, "42", "", "C1", "PKR")
	assert.Error(t, err, "zero amount")
}

func TestPostingFromEntryAppendsCheckNumber(t *testing.T) {
	entry := ofx.Entry{
		FitID:       "3",
		Date:        "2024-01-25",
		Description: "CHECK #1234",
		CheckNumber: "1234",
		AccountRef:  "A1",
		Mode:        model.ModeExpense,
		Amount:      model.Amount(50000),
	}
	req, err := postingFromEntry(entry, "42", "", "C1", "PKR")
	require.NoError(t, err)
	assert.Contains(t, req.Description, "(check 1234)")
}
