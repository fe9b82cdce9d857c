package viewmodel

import (
	"context"
	"testing"

	"finman/internal/core"
	"finman/internal/storage"
)

type memDraftStore struct {
	settings storage.DraftSettings
	expenses []storage.DraftExpense
	mirror   storage.MirrorSummary
	nextID   int64
}

func (m *memDraftStore) DraftSettings(ctx context.Context) (storage.DraftSettings, error) {
	return m.settings, nil
}

func (m *memDraftStore) SaveDraftSettings(ctx context.Context, s storage.DraftSettings) error {
	m.settings = s
	return nil
}

func (m *memDraftStore) ListDraftExpenses(ctx context.Context) ([]storage.DraftExpense, error) {
	out := make([]storage.DraftExpense, len(m.expenses))
	copy(out, m.expenses)
	return out, nil
}

func (m *memDraftStore) AddDraftExpense(ctx context.Context, description string, amount core.Money) (int64, error) {
	m.nextID++
	m.expenses = append(m.expenses, storage.DraftExpense{ID: m.nextID, Description: description, Amount: amount})
	return m.nextID, nil
}

func (m *memDraftStore) DeleteDraftExpense(ctx context.Context, id int64) error {
	kept := m.expenses[:0]
	for _, e := range m.expenses {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	m.expenses = kept
	return nil
}

func (m *memDraftStore) MirrorSummary(ctx context.Context) (storage.MirrorSummary, error) {
	return m.mirror, nil
}

func TestBalancePercent(t *testing.T) {
	tests := []struct {
		name   string
		salary int64
		total  int64
		want   float64
	}{
		{"no salary centers the marker", 0, 50000, 50},
		{"nothing spent", 100000, 0, 100},
		{"break even", 100000, 100000, 50},
		{"half spent", 100000, 50000, 75},
		{"overspent twice the salary", 100000, 200000, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := balancePercent(tt.salary, tt.total); got != tt.want {
				t.Fatalf("balancePercent(%d, %d) = %v, want %v", tt.salary, tt.total, got, tt.want)
			}
		})
	}
}

func TestDashboardDraftLedgerRoundTrip(t *testing.T) {
	store := &memDraftStore{}
	d := NewDashboard(store)
	ctx := context.Background()

	if err := d.SetSalary(ctx, "3000"); err != nil {
		t.Fatalf("set salary: %v", err)
	}
	if err := d.SetSavings(ctx, "500"); err != nil {
		t.Fatalf("set savings: %v", err)
	}
	if err := d.AddExpense(ctx, "Rent", "1200"); err != nil {
		t.Fatalf("add expense: %v", err)
	}
	if err := d.AddExpense(ctx, "Utilities", "150.50"); err != nil {
		t.Fatalf("add expense: %v", err)
	}

	view := d.View()
	if view.Salary.Cents != 300000 || view.Savings.Cents != 50000 {
		t.Fatalf("settings = %+v", view)
	}
	if view.Total.Cents != 135050 {
		t.Fatalf("total = %d", view.Total.Cents)
	}
	if view.Remaining.Cents != 164950 || !view.Surplus {
		t.Fatalf("remaining = %d, surplus = %v", view.Remaining.Cents, view.Surplus)
	}

	// A fresh viewmodel over the same store sees everything.
	reloaded := NewDashboard(store)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := reloaded.View(); got.Total.Cents != 135050 || got.Salary.Cents != 300000 {
		t.Fatalf("reloaded view = %+v", got)
	}
}

func TestDashboardRemoveExpense(t *testing.T) {
	store := &memDraftStore{}
	d := NewDashboard(store)
	ctx := context.Background()

	if err := d.AddExpense(ctx, "a", "10"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := d.AddExpense(ctx, "b", "20"); err != nil {
		t.Fatalf("add: %v", err)
	}

	view := d.View()
	if err := d.RemoveExpense(ctx, view.Expenses[0].ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := d.View(); len(got.Expenses) != 1 || got.Expenses[0].Description != "b" {
		t.Fatalf("expenses = %+v", got.Expenses)
	}
}

func TestDashboardRejectsBlankExpense(t *testing.T) {
	store := &memDraftStore{}
	d := NewDashboard(store)

	if err := d.AddExpense(context.Background(), "  ", "10"); err == nil {
		t.Fatal("expected error")
	}
	if err := d.AddExpense(context.Background(), "a", ""); err == nil {
		t.Fatal("expected error")
	}
	if len(store.expenses) != 0 {
		t.Fatalf("expenses persisted: %+v", store.expenses)
	}
}
