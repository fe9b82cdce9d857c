package viewmodel

import (
	"context"
	"sync"

	"finman/internal/core"
	"finman/internal/gateway"
)

// BudgetAPI is the slice of the backend the budget screen needs: the
// budgets themselves plus the category aggregate that fills the
// spent-so-far column.
type BudgetAPI interface {
	ListBudgets(ctx context.Context) ([]core.Budget, error)
	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	DeleteBudget(ctx context.Context, category string) error
	CategoryTotals(ctx context.Context) (map[string]core.Money, error)
}

// BudgetRow pairs a budget with what was actually spent in its category.
type BudgetRow struct {
	Budget core.Budget
	Spent  core.Money
}

// Percent is how full the budget bar is, capped at 100. Spending is
// negative amounts; income in a category never shrinks the bar below 0.
func (r BudgetRow) Percent() int {
	if r.Budget.LimitAmount.Cents <= 0 {
		return 0
	}
	spent := -r.Spent.Cents
	if spent <= 0 {
		return 0
	}
	pct := spent * 100 / r.Budget.LimitAmount.Cents
	if pct > 100 {
		return 100
	}
	return int(pct)
}

func (r BudgetRow) Over() bool {
	return -r.Spent.Cents > r.Budget.LimitAmount.Cents
}

// BudgetManager is the state of the budget screen.
type BudgetManager struct {
	mu     sync.Mutex
	api    BudgetAPI
	status Status
	rows   []BudgetRow
	errMsg string
}

func NewBudgetManager(api BudgetAPI) *BudgetManager {
	return &BudgetManager{api: api, status: StatusIdle}
}

// Load fetches budgets and category totals and joins them into rows.
func (m *BudgetManager) Load(ctx context.Context) error {
	m.mu.Lock()
	m.status = StatusLoading
	m.mu.Unlock()

	budgets, err := m.api.ListBudgets(ctx)
	if err != nil {
		m.fail(err)
		return err
	}
	totals, err := m.api.CategoryTotals(ctx)
	if err != nil {
		m.fail(err)
		return err
	}

	rows := make([]BudgetRow, len(budgets))
	for i, b := range budgets {
		rows[i] = BudgetRow{Budget: b, Spent: totals[b.Category]}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = StatusLoaded
	m.rows = rows
	m.errMsg = ""
	return nil
}

// Create validates the category and limit locally, then asks the
// backend. Duplicate categories are the backend's call to reject.
func (m *BudgetManager) Create(ctx context.Context, category, limit string) error {
	cents, err := core.ParseDecimalToCents(limit)
	if err != nil {
		m.setError("Please enter a valid budget limit.")
		return err
	}
	b := core.Budget{Category: category, LimitAmount: core.Money{Cents: cents}}
	if !core.ValidCategory(category) {
		m.setError("Please choose a category.")
		return core.ErrEmptyCategory
	}
	if err := b.Validate(); err != nil {
		m.setError(err.Error())
		return err
	}

	if _, err := m.api.CreateBudget(ctx, b); err != nil {
		m.setError(gateway.UserMessage(err))
		return err
	}
	m.setError("")
	return nil
}

func (m *BudgetManager) Delete(ctx context.Context, category string) error {
	if err := m.api.DeleteBudget(ctx, category); err != nil {
		m.setError(gateway.UserMessage(err))
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	for _, r := range m.rows {
		if r.Budget.Category != category {
			kept = append(kept, r)
		}
	}
	m.rows = kept
	m.errMsg = ""
	return nil
}

func (m *BudgetManager) Snapshot() ([]BudgetRow, Status, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]BudgetRow, len(m.rows))
	copy(rows, m.rows)
	return rows, m.status, m.errMsg
}

// Available lists the categories that do not have a budget yet.
func (m *BudgetManager) Available() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	taken := make(map[string]bool, len(m.rows))
	for _, r := range m.rows {
		taken[r.Budget.Category] = true
	}
	var out []string
	for _, c := range core.Categories {
		if !taken[c] {
			out = append(out, c)
		}
	}
	return out
}

func (m *BudgetManager) fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = StatusError
	m.errMsg = gateway.UserMessage(err)
}

func (m *BudgetManager) setError(msg string) {
	m.mu.Lock()
	m.errMsg = msg
	m.mu.Unlock()
}
