package viewmodel

import (
	"context"
	"strings"
	"sync"

	"finman/internal/core"
	"finman/internal/gateway"
)

// TransactionCreator is the submit side of the transaction form.
type TransactionCreator interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
}

// TransactionFormFields are the raw form inputs, kept as strings the way
// the browser sends them.
type TransactionFormFields struct {
	Description string
	Amount      string
	Date        string
	Category    string
	IsRecurring bool
	Interval    string
	StartDate   string
	EndDate     string
	Ongoing     bool
}

// TransactionForm validates and submits new transactions. On success the
// fields clear; on failure they stay so the user can correct them.
type TransactionForm struct {
	mu     sync.Mutex
	api    TransactionCreator
	fields TransactionFormFields
	errMsg string
}

func NewTransactionForm(api TransactionCreator) *TransactionForm {
	return &TransactionForm{api: api}
}

func (f *TransactionForm) Fields() TransactionFormFields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

func (f *TransactionForm) ErrorMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg
}

// Submit parses the raw fields, validates, and creates the transaction.
// Validation failures never reach the backend. An ongoing recurrence
// sends no end date even if the end-date field still holds a stale
// value from before the user flipped the toggle.
func (f *TransactionForm) Submit(ctx context.Context, fields TransactionFormFields) (core.Transaction, error) {
	f.mu.Lock()
	f.fields = fields
	f.mu.Unlock()

	t, err := f.build(fields)
	if err != nil {
		f.setError(err.Error())
		return core.Transaction{}, err
	}

	created, err := f.api.CreateTransaction(ctx, t)
	if err != nil {
		f.setError(gateway.UserMessage(err))
		return core.Transaction{}, err
	}

	f.mu.Lock()
	f.fields = TransactionFormFields{}
	f.errMsg = ""
	f.mu.Unlock()
	return created, nil
}

func (f *TransactionForm) build(fields TransactionFormFields) (core.Transaction, error) {
	t := core.Transaction{
		Description: strings.TrimSpace(fields.Description),
		Category:    fields.Category,
		IsRecurring: fields.IsRecurring,
	}

	cents, err := core.ParseDecimalToCents(fields.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Amount = core.Money{Cents: cents}

	if t.Date, err = core.ParseDate(fields.Date); err != nil {
		return core.Transaction{}, err
	}

	if fields.IsRecurring {
		t.Interval = core.RecurringInterval(fields.Interval)
		if t.StartDate, err = core.ParseDate(fields.StartDate); err != nil {
			return core.Transaction{}, core.ErrMissingStartDate
		}
		if !fields.Ongoing && strings.TrimSpace(fields.EndDate) != "" {
			if t.EndDate, err = core.ParseDate(fields.EndDate); err != nil {
				return core.Transaction{}, err
			}
		}
	}

	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (f *TransactionForm) setError(msg string) {
	f.mu.Lock()
	f.errMsg = msg
	f.mu.Unlock()
}
