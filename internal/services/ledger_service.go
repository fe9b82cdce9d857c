package services

import (
	"context"
	"log/slog"

	"finman/internal/amqp"
	"finman/internal/core"
	"finman/internal/gateway"
)

// LedgerService fronts the transaction endpoints and announces every
// successful mutation on AMQP so the mirror worker can re-fetch. Event
// publishing never fails the user-facing operation.
type LedgerService struct {
	gw         *gateway.Client
	amqpClient *amqp.Client
}

func NewLedgerService(gw *gateway.Client, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		gw:         gw,
		amqpClient: amqpClient,
	}
}

func (s *LedgerService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.gw.ListTransactions(ctx)
}

// CreateTransaction routes to the one-off or recurring endpoint based on
// the transaction itself, so callers never pick the wrong one.
func (s *LedgerService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	var (
		created core.Transaction
		err     error
	)
	if t.IsRecurring {
		created, err = s.gw.CreateRecurringTransaction(ctx, t)
	} else {
		created, err = s.gw.CreateTransaction(ctx, t)
	}
	if err != nil {
		return core.Transaction{}, err
	}

	s.publishMutation(ctx, amqp.MutationCreate, created.ID)
	return created, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id int64) error {
	if err := s.gw.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	s.publishMutation(ctx, amqp.MutationDelete, id)
	return nil
}

func (s *LedgerService) publishMutation(ctx context.Context, kind string, id int64) {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping mutation event")
		return
	}
	if err := s.amqpClient.PublishMutation(ctx, kind, id); err != nil {
		// The backend already accepted the change. The worker falls
		// back to its periodic re-fetch.
		slog.ErrorContext(ctx, "Failed to publish mutation event",
			"kind", kind, "transaction_id", id, "error", err)
	}
}

func (s *LedgerService) Close() error {
	if s.amqpClient != nil {
		return s.amqpClient.Close()
	}
	return nil
}
