// Package memory is an in-memory snapshot writer for tests and for
// running the worker without Google credentials.
package memory

import (
	"context"
	"sync"

	"finman/internal/core"
	ports "finman/internal/sheets"
)

type Writer struct {
	mu       sync.Mutex
	snapshot []core.Transaction
	writes   int
}

var _ ports.SnapshotWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{}
}

func (w *Writer) WriteSnapshot(ctx context.Context, txs []core.Transaction) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.snapshot = make([]core.Transaction, len(txs))
	copy(w.snapshot, txs)
	w.writes++
	return nil
}

// Snapshot returns the last written snapshot.
func (w *Writer) Snapshot() []core.Transaction {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]core.Transaction, len(w.snapshot))
	copy(out, w.snapshot)
	return out
}

func (w *Writer) Writes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes
}
