package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"monetra/internal/amqp"
	"monetra/internal/core"
	"monetra/internal/ledger"
)

// SyncPublisher pushes sync messages for the export worker. The AMQP
// client satisfies it; a nil publisher disables the pipeline.
type SyncPublisher interface {
	PublishSync(ctx context.Context, msg *amqp.TransactionSyncMessage) error
}

// TransactionService orchestrates writes: local store first, async
// publish after. A failed publish never fails the request; the worker's
// periodic sweep picks up what the queue missed.
type TransactionService struct {
	store     ledger.TransactionStore
	publisher SyncPublisher
	onWrite   func()
	newID     func() string
}

func NewTransactionService(store ledger.TransactionStore, publisher SyncPublisher) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		onWrite:   func() {},
		newID:     uuid.NewString,
	}
}

// OnWrite registers a hook fired after every successful mutation.
// The dashboard cache invalidation hangs off this.
func (s *TransactionService) OnWrite(fn func()) {
	if fn != nil {
		s.onWrite = fn
	}
}

// Create stores the transaction and, for recurring anchors, its eleven
// expanded forward siblings in the same batch.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = s.newID()
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	batch := append([]core.Transaction{t}, core.ExpandSeries(t, s.newID)...)
	if err := s.store.Insert(ctx, batch); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction batch: %w", err)
	}
	s.onWrite()

	for _, stored := range batch {
		s.publish(ctx, amqp.NewUpsertMessage(stored.ID))
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", t.ID,
		"type", string(t.Type),
		"recurring", t.Recurring,
		"batch_size", len(batch))

	return t, nil
}

func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.Get(ctx, id)
}

func (s *TransactionService) List(ctx context.Context, f ledger.Filter) ([]core.Transaction, error) {
	return s.store.List(ctx, f)
}

// Update replaces one record, or cuts over the whole forward series
// when futureScope is set and the existing record is recurring: every
// record matching the existing record's series is removed, then the
// replacement is stored, expanded afresh only if it is itself
// recurring. Future scope on a non-recurring record is a plain edit.
func (s *TransactionService) Update(ctx context.Context, id string, updated core.Transaction, futureScope bool) (core.Transaction, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}

	if futureScope && existing.Recurring {
		return s.cutover(ctx, existing, updated)
	}

	updated.ID = existing.ID
	if err := updated.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.Update(ctx, updated); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.onWrite()
	s.publish(ctx, amqp.NewUpsertMessage(updated.ID))
	return updated, nil
}

// cutover pivots the series at the existing record: delete everything
// from the pivot forward, then re-insert the replacement, expanded into
// a fresh series only when the replacement is recurring (a
// non-recurring replacement ends the series with a single record).
// Runs as one DeleteSeries plus one batch Insert so a concurrent writer
// on the same label cannot observe a half-replaced series.
func (s *TransactionService) cutover(ctx context.Context, pivot, replacement core.Transaction) (core.Transaction, error) {
	removed, err := s.store.DeleteSeries(ctx, pivot)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("delete series at pivot: %w", err)
	}

	replacement.ID = s.newID()
	if err := replacement.Validate(); err != nil {
		return core.Transaction{}, err
	}
	batch := append([]core.Transaction{replacement}, core.ExpandSeries(replacement, s.newID)...)
	if err := s.store.Insert(ctx, batch); err != nil {
		return core.Transaction{}, fmt.Errorf("reinsert series: %w", err)
	}
	s.onWrite()

	s.publish(ctx, amqp.NewDeleteMessage(pivot.ID))
	for _, stored := range batch {
		s.publish(ctx, amqp.NewUpsertMessage(stored.ID))
	}

	slog.InfoContext(ctx, "Series cutover applied",
		"pivot_id", pivot.ID,
		"label", pivot.Label,
		"removed", removed,
		"reinserted", len(batch))

	return replacement, nil
}

// Delete removes one record, or the whole forward series when
// futureScope is set and the record is recurring.
func (s *TransactionService) Delete(ctx context.Context, id string, futureScope bool) error {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if futureScope && existing.Recurring {
		removed, err := s.store.DeleteSeries(ctx, existing)
		if err != nil {
			return fmt.Errorf("delete series: %w", err)
		}
		s.onWrite()
		s.publish(ctx, amqp.NewDeleteMessage(existing.ID))
		slog.InfoContext(ctx, "Series deleted",
			"pivot_id", existing.ID,
			"label", existing.Label,
			"removed", removed)
		return nil
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.onWrite()
	s.publish(ctx, amqp.NewDeleteMessage(id))
	return nil
}

// AttachReceipt links a stored receipt blob to a transaction. Goes
// through the normal write path so the cache hook fires and the export
// worker picks up the changed record.
func (s *TransactionService) AttachReceipt(ctx context.Context, txID, receiptID string) (core.Transaction, error) {
	t, err := s.store.Get(ctx, txID)
	if err != nil {
		return core.Transaction{}, err
	}
	t.ReceiptID = receiptID
	if err := s.store.Update(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("attach receipt: %w", err)
	}
	s.onWrite()
	s.publish(ctx, amqp.NewUpsertMessage(t.ID))
	return t, nil
}

// DetachReceipt clears the reference on every transaction still
// pointing at the receipt. The affected rows go back to pending sync,
// so the worker's sweep re-exports them.
func (s *TransactionService) DetachReceipt(ctx context.Context, receiptID string) error {
	if err := s.store.ClearReceiptRefs(ctx, receiptID); err != nil {
		return fmt.Errorf("detach receipt: %w", err)
	}
	s.onWrite()
	return nil
}

// Reset clears the store. Receipts are cleared separately by the caller.
func (s *TransactionService) Reset(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	s.onWrite()
	return nil
}

func (s *TransactionService) publish(ctx context.Context, msg *amqp.TransactionSyncMessage) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSync(ctx, msg); err != nil {
		// Local write already succeeded; the sweep will retry the export.
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", msg.ID, "action", msg.Action, "error", err)
	}
}
