package viewmodel

import (
	"context"
	"testing"

	"finman/internal/core"
)

type fakeBudgetAPI struct {
	budgets []core.Budget
	totals  map[string]core.Money
	created []core.Budget
	deleted []string
}

func (f *fakeBudgetAPI) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	out := make([]core.Budget, len(f.budgets))
	copy(out, f.budgets)
	return out, nil
}

func (f *fakeBudgetAPI) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	b.ID = int64(len(f.created) + 1)
	f.created = append(f.created, b)
	return b, nil
}

func (f *fakeBudgetAPI) DeleteBudget(ctx context.Context, category string) error {
	f.deleted = append(f.deleted, category)
	return nil
}

func (f *fakeBudgetAPI) CategoryTotals(ctx context.Context) (map[string]core.Money, error) {
	return f.totals, nil
}

func TestBudgetLoadJoinsSpentTotals(t *testing.T) {
	api := &fakeBudgetAPI{
		budgets: []core.Budget{
			{ID: 1, Category: "Food", LimitAmount: core.Money{Cents: 50000}},
			{ID: 2, Category: "Rent", LimitAmount: core.Money{Cents: 100000}},
		},
		// Spending arrives as negative amounts from the aggregate.
		totals: map[string]core.Money{"Food": {Cents: -25000}},
	}
	m := NewBudgetManager(api)

	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	rows, status, _ := m.Snapshot()
	if status != StatusLoaded || len(rows) != 2 {
		t.Fatalf("status = %v, rows = %+v", status, rows)
	}
	if rows[0].Percent() != 50 {
		t.Fatalf("Food percent = %d, want 50", rows[0].Percent())
	}
	if rows[1].Spent.Cents != 0 || rows[1].Percent() != 0 {
		t.Fatalf("Rent row = %+v", rows[1])
	}
}

func TestBudgetPercentCapsAndOverflow(t *testing.T) {
	row := BudgetRow{
		Budget: core.Budget{Category: "Food", LimitAmount: core.Money{Cents: 10000}},
		Spent:  core.Money{Cents: -15000},
	}
	if row.Percent() != 100 {
		t.Fatalf("percent = %d, want capped 100", row.Percent())
	}
	if !row.Over() {
		t.Fatal("overspent budget not flagged")
	}

	income := BudgetRow{
		Budget: core.Budget{Category: "Savings", LimitAmount: core.Money{Cents: 10000}},
		Spent:  core.Money{Cents: 5000}, // net income in the category
	}
	if income.Percent() != 0 || income.Over() {
		t.Fatalf("income row = %d%%, over = %v", income.Percent(), income.Over())
	}
}

func TestBudgetCreateValidatesLocally(t *testing.T) {
	tests := []struct {
		name     string
		category string
		limit    string
	}{
		{"unknown category", "Gambling", "100"},
		{"empty category", "", "100"},
		{"zero limit", "Food", "0"},
		{"bad limit", "Food", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeBudgetAPI{}
			m := NewBudgetManager(api)
			if err := m.Create(context.Background(), tt.category, tt.limit); err == nil {
				t.Fatal("expected error")
			}
			if len(api.created) != 0 {
				t.Fatal("invalid budget reached the backend")
			}
		})
	}
}

func TestBudgetDeleteRemovesRow(t *testing.T) {
	api := &fakeBudgetAPI{
		budgets: []core.Budget{
			{ID: 1, Category: "Food", LimitAmount: core.Money{Cents: 100}},
			{ID: 2, Category: "Rent", LimitAmount: core.Money{Cents: 200}},
		},
		totals: map[string]core.Money{},
	}
	m := NewBudgetManager(api)
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := m.Delete(context.Background(), "Food"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rows, _, _ := m.Snapshot()
	if len(rows) != 1 || rows[0].Budget.Category != "Rent" {
		t.Fatalf("rows = %+v", rows)
	}
	if len(api.deleted) != 1 || api.deleted[0] != "Food" {
		t.Fatalf("deleted = %v", api.deleted)
	}
}

func TestBudgetAvailableExcludesTaken(t *testing.T) {
	api := &fakeBudgetAPI{
		budgets: []core.Budget{{ID: 1, Category: "Food", LimitAmount: core.Money{Cents: 100}}},
		totals:  map[string]core.Money{},
	}
	m := NewBudgetManager(api)
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	for _, c := range m.Available() {
		if c == "Food" {
			t.Fatal("taken category still offered")
		}
	}
	if got := len(m.Available()); got != len(core.Categories)-1 {
		t.Fatalf("available = %d", got)
	}
}
