package ledger

import (
	"context"
	"net/url"
	"strconv"

	"github.com/mhartley/tally/internal/model"
)

// PostingRequest is the body of POST /transactions for an expense or income.
type PostingRequest struct {
	UserID          string                  `json:"userId"`
	AccountID       string                  `json:"accountId"`
	CategoryID      string                  `json:"categoryId"`
	Type            model.EntryMode         `json:"type"`
	Amount          model.Amount            `json:"amount"`
	CurrencyCode    string                  `json:"currencyCode"`
	TransactionDate string                  `json:"transactionDate"`
	Status          model.TransactionStatus `json:"status"`
	MerchantID      string                  `json:"merchantId,omitempty"`
	PaymentMethodID string                  `json:"paymentMethodId,omitempty"`
	Description     string                  `json:"description,omitempty"`
	ReferenceNumber string                  `json:"referenceNumber,omitempty"`
}

// TransferRequest is the body of POST /transactions/transfer.
type TransferRequest struct {
	UserID               string       `json:"userId"`
	SourceAccountID      string       `json:"sourceAccountId"`
	DestinationAccountID string       `json:"destinationAccountId"`
	Amount               model.Amount `json:"amount"`
	TransferDate         string       `json:"transferDate"`
	Description          string       `json:"description,omitempty"`
	ReferenceNumber      string       `json:"referenceNumber,omitempty"`
}

// SearchParams mirror the query parameters of GET /transactions/search.
// Empty filter fields are omitted from the query string.
type SearchParams struct {
	UserID     string
	Page       int
	Size       int
	AccountID  string
	CategoryID string
	Type       string
	StartDate  string
	EndDate    string
	Keyword    string
}

// CreatePosting posts an expense or income transaction. The overdraft
// override travels as an explicit query flag, never folded into the amount.
func (c *Client) CreatePosting(ctx context.Context, req PostingRequest, allowNegative bool) error {
	q := url.Values{"allowNegative": {strconv.FormatBool(allowNegative)}}
	return c.post(ctx, "/transactions", q, req, nil)
}

// CreateTransfer posts a paired debit/credit across two accounts.
func (c *Client) CreateTransfer(ctx context.Context, req TransferRequest, allowNegative bool) error {
	q := url.Values{"allowNegative": {strconv.FormatBool(allowNegative)}}
	return c.post(ctx, "/transactions/transfer", q, req, nil)
}

// SearchTransactions runs a server-side paged search.
func (c *Client) SearchTransactions(ctx context.Context, p SearchParams) (*model.TransactionPage, error) {
	q := url.Values{
		"userId": {p.UserID},
		"page":   {strconv.Itoa(p.Page)},
		"size":   {strconv.Itoa(p.Size)},
	}
	setIfPresent(q, "accountId", p.AccountID)
	setIfPresent(q, "categoryId", p.CategoryID)
	setIfPresent(q, "type", p.Type)
	setIfPresent(q, "startDate", p.StartDate)
	setIfPresent(q, "endDate", p.EndDate)
	setIfPresent(q, "keyword", p.Keyword)

	var wire struct {
		Transactions  []wireTransaction `json:"transactions"`
		TotalElements int64             `json:"totalElements"`
	}
	if err := c.get(ctx, "/transactions/search", q, &wire); err != nil {
		return nil, err
	}

	page := &model.TransactionPage{
		Transactions:  make([]model.Transaction, 0, len(wire.Transactions)),
		TotalElements: wire.TotalElements,
	}
	for _, t := range wire.Transactions {
		page.Transactions = append(page.Transactions, t.toModel())
	}
	return page, nil
}

// UpdateTransactionStatus toggles a posting between CLEARED and PENDING.
func (c *Client) UpdateTransactionStatus(ctx context.Context, id string, status model.TransactionStatus) error {
	q := url.Values{"status": {string(status)}}
	return c.patch(ctx, "/transactions/"+url.PathEscape(id)+"/status", q, nil, nil)
}

func setIfPresent(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

// wireTransaction tolerates numeric ids from the service.
type wireTransaction struct {
	ID              flexID                  `json:"id"`
	Type            model.EntryMode         `json:"type"`
	Amount          model.Amount            `json:"amount"`
	CurrencyCode    string                  `json:"currencyCode"`
	Description     string                  `json:"description"`
	ReferenceNumber string                  `json:"referenceNumber"`
	TransactionDate string                  `json:"transactionDate"`
	Status          model.TransactionStatus `json:"status"`
	AccountID       flexID                  `json:"accountId"`
	AccountName     string                  `json:"accountName"`
	CategoryID      flexID                  `json:"categoryId"`
	CategoryName    string                  `json:"categoryName"`
}

func (w wireTransaction) toModel() model.Transaction {
	return model.Transaction{
		ID:              w.ID.String(),
		Type:            w.Type,
		Amount:          w.Amount,
		CurrencyCode:    w.CurrencyCode,
		Description:     w.Description,
		ReferenceNumber: w.ReferenceNumber,
		TransactionDate: w.TransactionDate,
		Status:          w.Status,
		AccountID:       w.AccountID.String(),
		AccountName:     w.AccountName,
		CategoryID:      w.CategoryID.String(),
		CategoryName:    w.CategoryName,
	}
}
