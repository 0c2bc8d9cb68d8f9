// Package worker drains the sync queue and exports stored transactions
// to the configured off-site copy.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"monetra/internal/amqp"
	"monetra/internal/core"
	"monetra/internal/export"
	"monetra/internal/storage"
)

// SyncWorker exports transactions from SQLite to the external copy.
// Queue messages drive the normal path; the pending sweep is the backup
// for lost messages or worker downtime.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	exporter  export.TransactionExporter
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, exporter export.TransactionExporter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleMessage processes one sync message from the queue.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID, "action", msg.Action)

	switch msg.Action {
	case amqp.ActionDelete:
		if err := w.exporter.Delete(ctx, msg.ID); err != nil {
			return fmt.Errorf("delete from export target: %w", err)
		}
		return nil
	case amqp.ActionUpsert:
		return w.exportByID(ctx, msg.ID)
	default:
		// Unknown actions are dropped, not requeued.
		slog.WarnContext(ctx, "Unknown sync action, dropping message",
			"id", msg.ID, "action", msg.Action)
		return nil
	}
}

// ProcessPending exports transactions that still carry pending sync
// state. Backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.GetPendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))
	for _, p := range pending {
		if err := w.exportByID(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export pending transaction",
				"id", p.ID, "error", err)
		}
	}
	return nil
}

// StartupSyncCheck drains a larger pending batch once at worker start,
// recovering from missed messages or downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	synced, failed := 0, 0
	for _, p := range pending {
		if err := w.exportByID(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export during startup",
				"id", p.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending), "synced", synced, "errors", failed)
	return nil
}

func (w *SyncWorker) exportByID(ctx context.Context, id string) error {
	t, err := w.storage.Get(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted between publish and consume; nothing to export.
		slog.WarnContext(ctx, "Transaction vanished before export", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	ref, err := w.exporter.Append(ctx, t)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to export target: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		// The export itself worked; the sweep may re-export this row.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Transaction exported",
		"id", id, "ref", ref, "label", t.Label, "amount_cents", t.Amount.Cents)
	return nil
}
