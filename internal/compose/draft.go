package compose

import (
	"sort"
	"strings"

	"github.com/mhartley/tally/internal/model"
)

// Draft is the transient, locally-owned form state for one in-progress
// entry. Field values are kept as entered (strings) and only parsed at
// validation time, so a failed submit never loses the user's input.
//
// Date, description, reference number and the overdraft override form a
// common sub-record that survives mode switches; everything else is
// mode-specific and resets when the mode changes.
type Draft struct {
	Mode model.EntryMode

	// Common across modes.
	Date            string
	Description     string
	ReferenceNumber string
	AllowNegative   bool

	// Expense/income postings.
	Amount          string
	CurrencyCode    string
	AccountID       string
	CategoryID      string
	MerchantID      string
	PaymentMethodID string
	Status          model.TransactionStatus

	// Transfers.
	SourceAccountID      string
	DestinationAccountID string
}

// newDraft builds a fresh draft with mode defaults: today's date, CLEARED
// status, the configured currency, overdraft override off.
func newDraft(mode model.EntryMode, defaultCurrency string) Draft {
	return Draft{
		Mode:         mode,
		Date:         model.Today(),
		Status:       model.StatusCleared,
		CurrencyCode: defaultCurrency,
	}
}

// withMode carries the common sub-record into a fresh draft for mode.
func (d Draft) withMode(mode model.EntryMode, defaultCurrency string) Draft {
	next := newDraft(mode, defaultCurrency)
	next.Date = d.Date
	next.Description = d.Description
	next.ReferenceNumber = d.ReferenceNumber
	next.AllowNegative = d.AllowNegative
	return next
}

// FieldErrors maps field name to message. The set is dense: either every
// required field passes or the caller receives one entry per failing field.
type FieldErrors map[string]string

// Error joins the messages in field-name order for log and CLI surfaces.
func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "invalid draft: " + strings.Join(parts, "; ")
}
