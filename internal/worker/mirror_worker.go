// Package worker keeps the local transaction mirror and the optional
// sheet export in step with the backend.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finman/internal/amqp"
	"finman/internal/core"
)

// LedgerSource fetches the authoritative transaction list.
type LedgerSource interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
}

// MirrorStore receives the fetched snapshot.
type MirrorStore interface {
	ReplaceMirror(ctx context.Context, txs []core.Transaction) error
}

// SnapshotExporter forwards the snapshot to an external sheet. Nil-able.
type SnapshotExporter interface {
	WriteSnapshot(ctx context.Context, txs []core.Transaction) error
}

// MirrorWorker re-fetches the transaction list whenever a mutation event
// arrives and on a periodic tick as a safety net for lost events. Each
// refresh is a full snapshot swap; the worker never patches single rows.
type MirrorWorker struct {
	source   LedgerSource
	store    MirrorStore
	exporter SnapshotExporter
	interval time.Duration
}

func NewMirrorWorker(source LedgerSource, store MirrorStore, exporter SnapshotExporter, interval time.Duration) *MirrorWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &MirrorWorker{
		source:   source,
		store:    store,
		exporter: exporter,
		interval: interval,
	}
}

// HandleMutation reacts to one ledger mutation event. The event only
// says that something changed; the refresh fetches the truth.
func (w *MirrorWorker) HandleMutation(ctx context.Context, msg *amqp.MutationMessage) error {
	slog.InfoContext(ctx, "Processing ledger mutation",
		"kind", msg.Kind,
		"transaction_id", msg.TransactionID)
	return w.Refresh(ctx)
}

// Refresh fetches the full list, swaps the mirror, and exports. A failed
// export does not fail the refresh; the mirror is already consistent.
func (w *MirrorWorker) Refresh(ctx context.Context) error {
	txs, err := w.source.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("fetch transactions: %w", err)
	}

	if err := w.store.ReplaceMirror(ctx, txs); err != nil {
		return fmt.Errorf("replace mirror: %w", err)
	}

	if w.exporter != nil {
		if err := w.exporter.WriteSnapshot(ctx, txs); err != nil {
			slog.ErrorContext(ctx, "Failed to export snapshot", "error", err, "count", len(txs))
		}
	}

	return nil
}

// RunPeriodic refreshes on the configured interval until ctx ends. An
// individual failure is logged and the ticker keeps going.
func (w *MirrorWorker) RunPeriodic(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Mirror worker started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Mirror worker stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.Refresh(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic mirror refresh failed", "error", err)
			}
		}
	}
}
