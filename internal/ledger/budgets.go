package ledger

import (
	"context"
	"net/url"

	"github.com/mhartley/tally/internal/model"
)

// BudgetItemRequest is one (category, limit) pair of a budget definition.
type BudgetItemRequest struct {
	CategoryID  string       `json:"categoryId"`
	LimitAmount model.Amount `json:"limitAmount"`
}

// BudgetRequest is the body of POST /budgets. Items keep the order the user
// built them in; the service owns any dedup policy.
type BudgetRequest struct {
	UserID     string              `json:"userId"`
	Name       string              `json:"name"`
	PeriodType model.PeriodType    `json:"periodType"`
	StartDate  string              `json:"startDate"`
	EndDate    string              `json:"endDate,omitempty"`
	TotalLimit *model.Amount       `json:"totalLimit,omitempty"`
	Notes      string              `json:"notes,omitempty"`
	Items      []BudgetItemRequest `json:"items"`
}

// CreateBudget submits a budget definition.
func (c *Client) CreateBudget(ctx context.Context, req BudgetRequest) error {
	return c.post(ctx, "/budgets", nil, req, nil)
}

type wireBudget struct {
	ID         flexID             `json:"id"`
	Name       string             `json:"name"`
	PeriodType model.PeriodType   `json:"periodType"`
	StartDate  string             `json:"startDate"`
	EndDate    string             `json:"endDate"`
	TotalLimit model.Amount       `json:"totalLimit"`
	Notes      string             `json:"notes"`
	Status     model.BudgetStatus `json:"status"`
}

// ListBudgets fetches budget definitions with their server-computed status.
func (c *Client) ListBudgets(ctx context.Context, userID string) ([]model.Budget, error) {
	q := url.Values{"userId": {userID}}
	var wire []wireBudget
	if err := c.get(ctx, "/budgets", q, &wire); err != nil {
		return nil, err
	}

	budgets := make([]model.Budget, 0, len(wire))
	for _, b := range wire {
		budgets = append(budgets, model.Budget{
			ID:         b.ID.String(),
			Name:       b.Name,
			PeriodType: b.PeriodType,
			StartDate:  b.StartDate,
			EndDate:    b.EndDate,
			TotalLimit: b.TotalLimit,
			Notes:      b.Notes,
			Status:     b.Status,
		})
	}
	return budgets, nil
}
