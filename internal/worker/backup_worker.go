// Package worker runs the asynchronous backup pipeline: it consumes record
// sync messages, loads the referenced record from the store, and appends it
// to the backup spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"clubledger/internal/amqp"
	"clubledger/internal/core"
	"clubledger/internal/ledger"
	"clubledger/internal/services"
	"clubledger/internal/sheets"
)

// BackupWorker mirrors accepted ledger writes to the backup sheet.
type BackupWorker struct {
	store  ledger.Store
	writer sheets.LedgerWriter
}

func NewBackupWorker(store ledger.Store, writer sheets.LedgerWriter) *BackupWorker {
	return &BackupWorker{store: store, writer: writer}
}

// HandleSyncMessage processes one record sync message. A record that has been
// deleted since it was published is skipped with an ack rather than requeued
// forever; any other store or sheet failure is returned so the delivery is
// redelivered.
func (w *BackupWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "kind", msg.Kind, "id", msg.ID)

	err := w.appendRecord(ctx, msg.Kind, msg.ID)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Record deleted before backup, skipping",
			"kind", msg.Kind, "id", msg.ID)
		return nil
	}
	return err
}

func (w *BackupWorker) appendRecord(ctx context.Context, kind, id string) error {
	switch kind {
	case services.KindPayment:
		p, err := w.store.GetPayment(ctx, id)
		if err != nil {
			return fmt.Errorf("load payment: %w", err)
		}
		if err := w.writer.AppendPayment(ctx, p); err != nil {
			return fmt.Errorf("append payment: %w", err)
		}
	case services.KindExpense:
		e, err := w.store.GetExpense(ctx, id)
		if err != nil {
			return fmt.Errorf("load expense: %w", err)
		}
		if err := w.writer.AppendExpense(ctx, e); err != nil {
			return fmt.Errorf("append expense: %w", err)
		}
	case services.KindDonation:
		d, err := w.store.GetDonation(ctx, id)
		if err != nil {
			return fmt.Errorf("load donation: %w", err)
		}
		if err := w.writer.AppendDonation(ctx, d); err != nil {
			return fmt.Errorf("append donation: %w", err)
		}
	default:
		// Unknown kinds are dropped, not requeued: redelivery cannot fix them.
		slog.WarnContext(ctx, "Unknown record kind in sync message", "kind", kind, "id", id)
	}
	return nil
}
