package model

import "fmt"

// EntryMode selects which kind of posting an entry form produces.
type EntryMode string

const (
	ModeExpense  EntryMode = "EXPENSE"
	ModeIncome   EntryMode = "INCOME"
	ModeTransfer EntryMode = "TRANSFER"
)

// Modes lists every entry mode in display order.
func Modes() []EntryMode {
	return []EntryMode{ModeExpense, ModeIncome, ModeTransfer}
}

// Valid reports whether the mode is one of the three known modes.
func (m EntryMode) Valid() bool {
	switch m {
	case ModeExpense, ModeIncome, ModeTransfer:
		return true
	}
	return false
}

// ParseEntryMode converts user input like "expense" into an EntryMode.
func ParseEntryMode(s string) (EntryMode, error) {
	switch EntryMode(normalizeEnum(s)) {
	case ModeExpense:
		return ModeExpense, nil
	case ModeIncome:
		return ModeIncome, nil
	case ModeTransfer:
		return ModeTransfer, nil
	}
	return "", fmt.Errorf("unknown transaction type %q (want expense, income or transfer)", s)
}

// TransactionStatus is the clearing state of a posting.
type TransactionStatus string

const (
	StatusCleared TransactionStatus = "CLEARED"
	StatusPending TransactionStatus = "PENDING"
)

// ParseTransactionStatus converts user input into a TransactionStatus.
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch TransactionStatus(normalizeEnum(s)) {
	case StatusCleared:
		return StatusCleared, nil
	case StatusPending:
		return StatusPending, nil
	}
	return "", fmt.Errorf("unknown status %q (want cleared or pending)", s)
}

// PeriodType is a budget's recurrence period.
type PeriodType string

const (
	PeriodMonthly PeriodType = "MONTHLY"
	PeriodWeekly  PeriodType = "WEEKLY"
	PeriodYearly  PeriodType = "YEARLY"
	PeriodCustom  PeriodType = "CUSTOM"
)

// Valid reports whether the period type is known.
func (p PeriodType) Valid() bool {
	switch p {
	case PeriodMonthly, PeriodWeekly, PeriodYearly, PeriodCustom:
		return true
	}
	return false
}

// ParsePeriodType converts user input into a PeriodType.
func ParsePeriodType(s string) (PeriodType, error) {
	p := PeriodType(normalizeEnum(s))
	if !p.Valid() {
		return "", fmt.Errorf("unknown period type %q (want monthly, weekly, yearly or custom)", s)
	}
	return p, nil
}

// BudgetStatus is computed server-side and consumed read-only.
type BudgetStatus string

const (
	BudgetActive   BudgetStatus = "ACTIVE"
	BudgetExpired  BudgetStatus = "EXPIRED"
	BudgetUpcoming BudgetStatus = "UPCOMING"
)
