package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"finman/internal/core"
)

// txPayload is the wire shape of a transaction. Amounts travel as JSON
// numbers, dates as 2006-01-02; endDate is omitted entirely for ongoing
// recurrences.
type txPayload struct {
	ID                int64   `json:"id,omitempty"`
	Description       string  `json:"description"`
	Amount            float64 `json:"amount"`
	Date              string  `json:"date"`
	Category          string  `json:"category"`
	IsRecurring       bool    `json:"isRecurring,omitempty"`
	RecurringInterval string  `json:"recurringInterval,omitempty"`
	StartDate         string  `json:"startDate,omitempty"`
	EndDate           *string `json:"endDate,omitempty"`
}

func toPayload(t core.Transaction) txPayload {
	p := txPayload{
		Description: t.Description,
		Amount:      t.Amount.Float(),
		Date:        t.Date.Wire(),
		Category:    t.Category,
	}
	if t.IsRecurring {
		p.IsRecurring = true
		p.RecurringInterval = string(t.Interval)
		p.StartDate = t.StartDate.Wire()
		if !t.EndDate.IsZero() {
			end := t.EndDate.Wire()
			p.EndDate = &end
		}
	}
	return p
}

func fromPayload(p txPayload) core.Transaction {
	t := core.Transaction{
		ID:          p.ID,
		Description: p.Description,
		Amount:      core.MoneyFromFloat(p.Amount),
		Category:    p.Category,
		IsRecurring: p.IsRecurring,
	}
	if d, err := core.ParseDate(p.Date); err == nil {
		t.Date = d
	}
	if p.IsRecurring {
		t.Interval = core.RecurringInterval(p.RecurringInterval)
		if d, err := core.ParseDate(p.StartDate); err == nil {
			t.StartDate = d
		}
		if p.EndDate != nil {
			if d, err := core.ParseDate(*p.EndDate); err == nil {
				t.EndDate = d
			}
		}
	}
	return t
}

// ListTransactions fetches the full transaction list.
func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	var payloads []txPayload
	if err := c.do(ctx, http.MethodGet, "/api/transactions", nil, &payloads, true); err != nil {
		return nil, err
	}
	txs := make([]core.Transaction, len(payloads))
	for i, p := range payloads {
		txs[i] = fromPayload(p)
	}
	return txs, nil
}

// CreateTransaction creates a one-off transaction.
func (c *Client) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	var created txPayload
	if err := c.do(ctx, http.MethodPost, "/api/transactions", toPayload(t), &created, true); err != nil {
		return core.Transaction{}, err
	}
	return fromPayload(created), nil
}

// CreateRecurringTransaction creates a repeating transaction. An ongoing
// recurrence sends no end date at all.
func (c *Client) CreateRecurringTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	var created txPayload
	if err := c.do(ctx, http.MethodPost, "/api/transactions/recurring", toPayload(t), &created, true); err != nil {
		return core.Transaction{}, err
	}
	return fromPayload(created), nil
}

// DeleteTransaction removes one transaction by identifier.
func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/transactions/%d", id), nil, nil, true)
}

// CategoryTotals fetches the backend-computed category aggregate.
func (c *Client) CategoryTotals(ctx context.Context) (map[string]core.Money, error) {
	var raw map[string]float64
	if err := c.do(ctx, http.MethodGet, "/api/transactions/categories", nil, &raw, true); err != nil {
		return nil, err
	}
	return toMoneyMap(raw), nil
}

// MonthlyTotals fetches the month-label aggregate for a range ("1", "2",
// "10" years or "all"). Label order is not guaranteed by the backend.
func (c *Client) MonthlyTotals(ctx context.Context, rng string) (map[string]core.Money, error) {
	var raw map[string]float64
	path := "/api/transactions/monthly?range=" + url.QueryEscape(rng)
	if err := c.do(ctx, http.MethodGet, path, nil, &raw, true); err != nil {
		return nil, err
	}
	return toMoneyMap(raw), nil
}

func toMoneyMap(raw map[string]float64) map[string]core.Money {
	out := make(map[string]core.Money, len(raw))
	for k, v := range raw {
		out[k] = core.MoneyFromFloat(v)
	}
	return out
}
