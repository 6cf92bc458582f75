// Package model holds the domain types shared by the composer, the query
// controller and the ledger client.
package model

// Transaction is a single ledger entry as returned by the search endpoint.
// Balance arithmetic happens server-side; this is a read-only snapshot.
type Transaction struct {
	ID              string            `json:"id"`
	Type            EntryMode         `json:"type"`
	Amount          Amount            `json:"amount"`
	CurrencyCode    string            `json:"currencyCode,omitempty"`
	Description     string            `json:"description,omitempty"`
	ReferenceNumber string            `json:"referenceNumber,omitempty"`
	TransactionDate string            `json:"transactionDate"`
	Status          TransactionStatus `json:"status,omitempty"`
	AccountID       string            `json:"accountId,omitempty"`
	AccountName     string            `json:"accountName,omitempty"`
	CategoryID      string            `json:"categoryId,omitempty"`
	CategoryName    string            `json:"categoryName,omitempty"`
}

// TransactionPage is one page of search results plus the total row count the
// pagination footer needs.
type TransactionPage struct {
	Transactions  []Transaction `json:"transactions"`
	TotalElements int64         `json:"totalElements"`
}

// Account summarizes one ledger account. CurrentBalance is computed by the
// ledger service and never recomputed here.
type Account struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	CurrencyCode   string `json:"currencyCode"`
	CurrentBalance Amount `json:"currentBalance"`
	Archived       bool   `json:"archived"`
}

// Budget is a budget definition as returned by the ledger service, including
// its server-computed status.
type Budget struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	PeriodType PeriodType   `json:"periodType"`
	StartDate  string       `json:"startDate"`
	EndDate    string       `json:"endDate,omitempty"`
	TotalLimit Amount       `json:"totalLimit,omitempty"`
	Notes      string       `json:"notes,omitempty"`
	Status     BudgetStatus `json:"status,omitempty"`
}
