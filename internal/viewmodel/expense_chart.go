package viewmodel

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"finman/internal/core"
	"finman/internal/gateway"
)

// AggregateAPI serves the two chart aggregates.
type AggregateAPI interface {
	CategoryTotals(ctx context.Context) (map[string]core.Money, error)
	MonthlyTotals(ctx context.Context, rng string) (map[string]core.Money, error)
}

// Slice is one category share of the pie chart.
type Slice struct {
	Category string
	Total    core.Money
}

// MonthPoint is one bar of the monthly chart.
type MonthPoint struct {
	Label string
	Total core.Money
}

// RangeOptions are the selectable history windows, in years; "all" means
// no window.
var RangeOptions = []string{"1", "2", "10", "all"}

// ExpenseChart is the state of the charts screen: the category pie and
// the monthly bars for the selected range.
type ExpenseChart struct {
	mu       sync.Mutex
	api      AggregateAPI
	status   Status
	selected string
	slices   []Slice
	months   []MonthPoint
	errMsg   string
}

func NewExpenseChart(api AggregateAPI) *ExpenseChart {
	return &ExpenseChart{api: api, status: StatusIdle, selected: "1"}
}

// Load fetches both aggregates concurrently for the given range. The
// first failure wins and neither partial result is kept.
func (c *ExpenseChart) Load(ctx context.Context, rng string) error {
	if !validRange(rng) {
		rng = "1"
	}

	c.mu.Lock()
	c.status = StatusLoading
	c.selected = rng
	c.mu.Unlock()

	var (
		categories map[string]core.Money
		monthly    map[string]core.Money
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = c.api.CategoryTotals(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		monthly, err = c.api.MonthlyTotals(gctx, rng)
		return err
	})
	if err := g.Wait(); err != nil {
		c.mu.Lock()
		c.status = StatusError
		c.errMsg = gateway.UserMessage(err)
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = StatusLoaded
	c.slices = sortedSlices(categories)
	c.months = sortedMonths(monthly)
	c.errMsg = ""
	return nil
}

func (c *ExpenseChart) Snapshot() ([]Slice, []MonthPoint, string, Status, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slices := make([]Slice, len(c.slices))
	copy(slices, c.slices)
	months := make([]MonthPoint, len(c.months))
	copy(months, c.months)
	return slices, months, c.selected, c.status, c.errMsg
}

func validRange(rng string) bool {
	for _, o := range RangeOptions {
		if o == rng {
			return true
		}
	}
	return false
}

func sortedSlices(totals map[string]core.Money) []Slice {
	out := make([]Slice, 0, len(totals))
	for cat, total := range totals {
		out = append(out, Slice{Category: cat, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// monthLayouts are the label shapes the backend has been seen to emit.
var monthLayouts = []string{"2006-01", "2006-1", "2006-January"}

func parseMonthLabel(label string) (time.Time, bool) {
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, label); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// sortedMonths orders bars chronologically. Labels that parse under none
// of the known layouts sort after the parseable ones, alphabetically,
// rather than being dropped.
func sortedMonths(totals map[string]core.Money) []MonthPoint {
	out := make([]MonthPoint, 0, len(totals))
	for label, total := range totals {
		out = append(out, MonthPoint{Label: label, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		ti, oki := parseMonthLabel(out[i].Label)
		tj, okj := parseMonthLabel(out[j].Label)
		switch {
		case oki && okj:
			return ti.Before(tj)
		case oki:
			return true
		case okj:
			return false
		default:
			return out[i].Label < out[j].Label
		}
	})
	return out
}
