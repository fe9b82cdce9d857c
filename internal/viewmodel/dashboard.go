package viewmodel

import (
	"context"
	"strings"
	"sync"

	"finman/internal/core"
	"finman/internal/storage"
)

// DraftStore persists the dashboard draft ledger locally.
type DraftStore interface {
	DraftSettings(ctx context.Context) (storage.DraftSettings, error)
	SaveDraftSettings(ctx context.Context, s storage.DraftSettings) error
	ListDraftExpenses(ctx context.Context) ([]storage.DraftExpense, error)
	AddDraftExpense(ctx context.Context, description string, amount core.Money) (int64, error)
	DeleteDraftExpense(ctx context.Context, id int64) error
	MirrorSummary(ctx context.Context) (storage.MirrorSummary, error)
}

// Dashboard is the draft-ledger screen: a salary, a savings figure and a
// scratch list of planned monthly expenses, all kept locally and never
// sent to the backend. The mirror summary is shown beside the draft
// total so divergence from the recorded ledger is visible, not hidden.
type Dashboard struct {
	mu       sync.Mutex
	store    DraftStore
	settings storage.DraftSettings
	expenses []storage.DraftExpense
	mirror   storage.MirrorSummary
	errMsg   string
}

func NewDashboard(store DraftStore) *Dashboard {
	return &Dashboard{store: store}
}

// Load reads the draft ledger and the mirror summary from local storage.
func (d *Dashboard) Load(ctx context.Context) error {
	settings, err := d.store.DraftSettings(ctx)
	if err != nil {
		return err
	}
	expenses, err := d.store.ListDraftExpenses(ctx)
	if err != nil {
		return err
	}
	mirror, err := d.store.MirrorSummary(ctx)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.settings = settings
	d.expenses = expenses
	d.mirror = mirror
	d.errMsg = ""
	return nil
}

// SetSalary updates the draft salary. The value persists immediately.
func (d *Dashboard) SetSalary(ctx context.Context, raw string) error {
	return d.setFigure(ctx, raw, func(s *storage.DraftSettings, m core.Money) { s.Salary = m })
}

func (d *Dashboard) SetSavings(ctx context.Context, raw string) error {
	return d.setFigure(ctx, raw, func(s *storage.DraftSettings, m core.Money) { s.Savings = m })
}

func (d *Dashboard) setFigure(ctx context.Context, raw string, apply func(*storage.DraftSettings, core.Money)) error {
	cents, err := core.ParseDecimalToCents(raw)
	if err != nil {
		d.setError("Please enter a valid amount.")
		return err
	}

	d.mu.Lock()
	settings := d.settings
	d.mu.Unlock()
	apply(&settings, core.Money{Cents: cents})

	if err := d.store.SaveDraftSettings(ctx, settings); err != nil {
		d.setError("Could not save. Please try again.")
		return err
	}

	d.mu.Lock()
	d.settings = settings
	d.errMsg = ""
	d.mu.Unlock()
	return nil
}

// AddExpense appends a draft expense line. Both fields are required.
func (d *Dashboard) AddExpense(ctx context.Context, description, amount string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		d.setError("Please describe the expense.")
		return core.ErrEmptyDescription
	}
	cents, err := core.ParseDecimalToCents(amount)
	if err != nil {
		d.setError("Please enter a valid amount.")
		return err
	}

	id, err := d.store.AddDraftExpense(ctx, description, core.Money{Cents: cents})
	if err != nil {
		d.setError("Could not save. Please try again.")
		return err
	}

	d.mu.Lock()
	d.expenses = append(d.expenses, storage.DraftExpense{
		ID: id, Description: description, Amount: core.Money{Cents: cents},
	})
	d.errMsg = ""
	d.mu.Unlock()
	return nil
}

func (d *Dashboard) RemoveExpense(ctx context.Context, id int64) error {
	if err := d.store.DeleteDraftExpense(ctx, id); err != nil {
		d.setError("Could not delete. Please try again.")
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.expenses[:0]
	for _, e := range d.expenses {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	d.expenses = kept
	d.errMsg = ""
	return nil
}

// DashboardView is the rendered state of the screen.
type DashboardView struct {
	Salary    core.Money
	Savings   core.Money
	Expenses  []storage.DraftExpense
	Total     core.Money
	Remaining core.Money
	Surplus   bool
	Percent   float64
	Mirror    storage.MirrorSummary
	ErrorMsg  string
}

func (d *Dashboard) View() DashboardView {
	d.mu.Lock()
	defer d.mu.Unlock()

	var total int64
	for _, e := range d.expenses {
		total += e.Amount.Cents
	}
	remaining := d.settings.Salary.Cents - total

	expenses := make([]storage.DraftExpense, len(d.expenses))
	copy(expenses, d.expenses)

	return DashboardView{
		Salary:    d.settings.Salary,
		Savings:   d.settings.Savings,
		Expenses:  expenses,
		Total:     core.Money{Cents: total},
		Remaining: core.Money{Cents: remaining},
		Surplus:   remaining > 0,
		Percent:   balancePercent(d.settings.Salary.Cents, total),
		Mirror:    d.mirror,
		ErrorMsg:  d.errMsg,
	}
}

// balancePercent places the marker on the dual-sided balance bar: 50 is
// break-even, 100 the whole salary left, 0 overspent by the larger of
// salary and draft total.
func balancePercent(salaryCents, totalCents int64) float64 {
	if salaryCents == 0 {
		return 50
	}
	remaining := salaryCents - totalCents
	maxAbs := salaryCents
	if maxAbs < 0 {
		maxAbs = -maxAbs
	}
	totalAbs := totalCents
	if totalAbs < 0 {
		totalAbs = -totalAbs
	}
	if totalAbs > maxAbs {
		maxAbs = totalAbs
	}
	return float64(remaining)/float64(maxAbs)*50 + 50
}

func (d *Dashboard) setError(msg string) {
	d.mu.Lock()
	d.errMsg = msg
	d.mu.Unlock()
}
