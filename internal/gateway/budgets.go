package gateway

import (
	"context"
	"net/http"
	"net/url"

	"finman/internal/core"
)

type budgetPayload struct {
	ID          int64   `json:"id,omitempty"`
	Category    string  `json:"category"`
	LimitAmount float64 `json:"limitAmount"`
}

func fromBudgetPayload(p budgetPayload) core.Budget {
	return core.Budget{
		ID:          p.ID,
		Category:    p.Category,
		LimitAmount: core.MoneyFromFloat(p.LimitAmount),
	}
}

// ListBudgets fetches all budgets for the signed-in user.
func (c *Client) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	var payloads []budgetPayload
	if err := c.do(ctx, http.MethodGet, "/api/budget", nil, &payloads, true); err != nil {
		return nil, err
	}
	budgets := make([]core.Budget, len(payloads))
	for i, p := range payloads {
		budgets[i] = fromBudgetPayload(p)
	}
	return budgets, nil
}

// CreateBudget sets the limit for a category and returns the server's
// record. Duplicate handling is the backend's call.
func (c *Client) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	payload := budgetPayload{Category: b.Category, LimitAmount: b.LimitAmount.Float()}
	var created budgetPayload
	if err := c.do(ctx, http.MethodPost, "/api/budget", payload, &created, true); err != nil {
		return core.Budget{}, err
	}
	return fromBudgetPayload(created), nil
}

// DeleteBudget removes the budget for a category.
func (c *Client) DeleteBudget(ctx context.Context, category string) error {
	return c.do(ctx, http.MethodDelete, "/api/budget/"+url.PathEscape(category), nil, nil, true)
}
