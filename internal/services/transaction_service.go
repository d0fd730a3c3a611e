package services

import (
	"context"
	"fmt"

	"fiscora/internal/amqp"
	"fiscora/internal/backend"
	"fiscora/internal/core"
	applog "fiscora/internal/log"
)

// EventPublisher announces transaction changes. *amqp.Client implements it.
// previous carries the version an update replaced.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, kind amqp.EventKind, tx core.Transaction, previous ...core.Transaction) error
}

// TransactionService validates submitted forms, persists them and announces
// the change. Publishing is best effort: a saved transaction is never rolled
// back because the broker is unavailable.
type TransactionService struct {
	store     backend.TransactionStore
	publisher EventPublisher
	log       *applog.StructuredLogger
}

// NewTransactionService wires the service. publisher may be nil.
func NewTransactionService(store backend.TransactionStore, publisher EventPublisher, logger *applog.Logger) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		log:       applog.NewStructuredLogger(orDefault(logger, applog.ComponentTransaction)),
	}
}

// Create validates form and stores the new transaction. An invalid form
// returns core.ValidationErrors and the store is not touched.
func (s *TransactionService) Create(ctx context.Context, form core.TransactionForm) (core.Transaction, error) {
	form.ID = 0
	tx, err := validated(form)
	if err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.log.LogTransactionSaved(ctx, applog.OpCreate, saved)
	s.publish(ctx, amqp.EventCreated, saved)
	return saved, nil
}

// Update replaces transaction id with the validated form. The stored
// version is read first so the event covers the years it leaves as well
// as the ones it enters.
func (s *TransactionService) Update(ctx context.Context, id int64, form core.TransactionForm) (core.Transaction, error) {
	form.ID = id
	tx, err := validated(form)
	if err != nil {
		return core.Transaction{}, err
	}

	old, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", id, err)
	}
	saved, err := s.store.UpdateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", id, err)
	}

	s.log.LogTransactionSaved(ctx, applog.OpUpdate, saved)
	s.publish(ctx, amqp.EventUpdated, saved, old)
	return saved, nil
}

// Delete removes transaction id. The transaction is read first so the
// event can name the years whose totals change.
func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	s.publish(ctx, amqp.EventDeleted, tx)
	return nil
}

func (s *TransactionService) Get(ctx context.Context, id int64) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

func (s *TransactionService) List(ctx context.Context, filter core.TransactionFilter) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs, nil
}

func (s *TransactionService) publish(ctx context.Context, kind amqp.EventKind, tx core.Transaction, previous ...core.Transaction) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, kind, tx, previous...); err != nil {
		fields := applog.NewFields().WithTransaction(tx.ID, tx.Amount.Cents, tx.Incoming, tx.Type, string(tx.Interval))
		fields[applog.FieldEventKind] = string(kind)
		s.log.LogError(ctx, "Failed to publish transaction event", err, applog.ComponentAMQP, applog.OpPublish, fields)
	}
}

func validated(form core.TransactionForm) (core.Transaction, error) {
	res := core.ValidateTransaction(form)
	tx, ok := res.Transaction()
	if !ok {
		return core.Transaction{}, res.Err()
	}
	return tx, nil
}

func orDefault(logger *applog.Logger, component string) *applog.Logger {
	if logger == nil {
		cfg := applog.DefaultConfig()
		cfg.Component = component
		return applog.New(cfg)
	}
	return logger.WithComponent(component)
}
