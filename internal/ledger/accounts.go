package ledger

import (
	"context"
	"net/url"
	"strconv"

	"github.com/mhartley/tally/internal/model"
)

type wireAccount struct {
	ID             flexID       `json:"id"`
	Name           string       `json:"name"`
	Type           string       `json:"type"`
	CurrencyCode   string       `json:"currencyCode"`
	CurrentBalance model.Amount `json:"currentBalance"`
	Archived       bool         `json:"archived"`
}

// ListAccounts fetches the user's account summaries.
func (c *Client) ListAccounts(ctx context.Context, userID string, includeArchived bool) ([]model.Account, error) {
	q := url.Values{
		"userId":          {userID},
		"includeArchived": {strconv.FormatBool(includeArchived)},
	}
	var wire []wireAccount
	if err := c.get(ctx, "/accounts", q, &wire); err != nil {
		return nil, err
	}

	accounts := make([]model.Account, 0, len(wire))
	for _, a := range wire {
		accounts = append(accounts, model.Account{
			ID:             a.ID.String(),
			Name:           a.Name,
			Type:           a.Type,
			CurrencyCode:   a.CurrencyCode,
			CurrentBalance: a.CurrentBalance,
			Archived:       a.Archived,
		})
	}
	return accounts, nil
}
