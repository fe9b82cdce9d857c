package viewmodel

import (
	"context"
	"sync"

	"finman/internal/core"
	"finman/internal/gateway"
)

// TransactionAPI is the slice of the ledger the list screen needs.
type TransactionAPI interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
}

// TransactionList is the state behind the transaction table: the
// fetched rows, a load status, and the last user-facing error.
type TransactionList struct {
	mu     sync.Mutex
	api    TransactionAPI
	status Status
	items  []core.Transaction
	errMsg string
}

func NewTransactionList(api TransactionAPI) *TransactionList {
	return &TransactionList{api: api, status: StatusIdle}
}

// Load fetches the full list and replaces the current rows. A failed
// fetch keeps the previous rows visible alongside the error.
func (l *TransactionList) Load(ctx context.Context) error {
	l.mu.Lock()
	l.status = StatusLoading
	l.mu.Unlock()

	items, err := l.api.ListTransactions(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.status = StatusError
		l.errMsg = gateway.UserMessage(err)
		return err
	}
	l.status = StatusLoaded
	l.items = items
	l.errMsg = ""
	return nil
}

// Delete removes one transaction on the backend, then drops exactly
// that row locally. Other rows with equal field values stay put.
func (l *TransactionList) Delete(ctx context.Context, id int64) error {
	if err := l.api.DeleteTransaction(ctx, id); err != nil {
		l.mu.Lock()
		l.errMsg = gateway.UserMessage(err)
		l.mu.Unlock()
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.items[:0]
	for _, t := range l.items {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	l.items = kept
	l.errMsg = ""
	return nil
}

// Snapshot returns the rows and state for rendering. The slice is a
// copy; handlers must not mutate viewmodel internals.
func (l *TransactionList) Snapshot() ([]core.Transaction, Status, string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := make([]core.Transaction, len(l.items))
	copy(items, l.items)
	return items, l.status, l.errMsg
}

// Total sums the visible rows.
func (l *TransactionList) Total() core.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	var cents int64
	for _, t := range l.items {
		cents += t.Amount.Cents
	}
	return core.Money{Cents: cents}
}
