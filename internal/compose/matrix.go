// Package compose turns a multi-mode entry form into validated, mode-correct
// ledger payloads. Validation and rendering both consult the same field
// requirement matrix, so "required" and "shown" never diverge for a mode.
package compose

import "github.com/mhartley/tally/internal/model"

// Field names, matching the ledger service's wire naming.
const (
	FieldDate          = "transactionDate"
	FieldAmount        = "amount"
	FieldCurrency      = "currencyCode"
	FieldAccount       = "accountId"
	FieldSource        = "sourceAccountId"
	FieldDestination   = "destinationAccountId"
	FieldCategory      = "categoryId"
	FieldMerchant      = "merchantId"
	FieldPaymentMethod = "paymentMethodId"
	FieldStatus        = "status"
	FieldDescription   = "description"
	FieldReference     = "referenceNumber"
	FieldAllowNegative = "allowNegative"
)

// FieldSet is a set of field names.
type FieldSet map[string]struct{}

// Has reports membership.
func (s FieldSet) Has(field string) bool {
	_, ok := s[field]
	return ok
}

func fieldSet(fields ...string) FieldSet {
	s := make(FieldSet, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

var (
	postingRequired = fieldSet(FieldDate, FieldAmount, FieldCurrency, FieldAccount, FieldCategory)
	postingHidden   = fieldSet(FieldSource, FieldDestination)

	transferRequired = fieldSet(FieldDate, FieldAmount, FieldSource, FieldDestination)
	transferHidden   = fieldSet(FieldAccount, FieldCategory, FieldCurrency, FieldMerchant, FieldPaymentMethod, FieldStatus)
)

// RequiredFields returns the fields the given mode cannot submit without.
// Total over all three modes; unknown modes get an empty set.
func RequiredFields(mode model.EntryMode) FieldSet {
	switch mode {
	case model.ModeExpense, model.ModeIncome:
		return postingRequired
	case model.ModeTransfer:
		return transferRequired
	}
	return FieldSet{}
}

// HiddenFields returns the fields the given mode neither shows nor accepts.
// Transfers carry no currency of their own; each leg uses its account's.
func HiddenFields(mode model.EntryMode) FieldSet {
	switch mode {
	case model.ModeExpense, model.ModeIncome:
		return postingHidden
	case model.ModeTransfer:
		return transferHidden
	}
	return FieldSet{}
}
