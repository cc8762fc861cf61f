// Package services holds the ledger's business operations: recording
// payments, expenses and donations, aggregating them into weekly and period
// figures, and assembling reports for the API and export layers.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"clubledger/internal/core"
	"clubledger/internal/ledger"
)

// Record kinds carried in sync messages and backup rows.
const (
	KindPayment  = "payment"
	KindExpense  = "expense"
	KindDonation = "donation"
)

// SyncPublisher publishes a record reference for asynchronous backup after a
// local write has succeeded. Implemented by the AMQP client; nil disables
// publishing.
type SyncPublisher interface {
	PublishRecordSync(ctx context.Context, kind, id string) error
}

// Recorder validates and writes ledger records. Every accepted write is
// published for backup; publish failures are logged and never fail the write.
type Recorder struct {
	store     ledger.Store
	publisher SyncPublisher
}

func NewRecorder(store ledger.Store, publisher SyncPublisher) *Recorder {
	return &Recorder{store: store, publisher: publisher}
}

// RecordPayment upserts the payment for (memberID, weekNumber, year). A prior
// payment for the same key is replaced entirely — latest write wins. The
// member must exist; amount, week and year must pass domain validation.
func (r *Recorder) RecordPayment(ctx context.Context, memberID string, amount int64, weekNumber, year int) (core.Payment, error) {
	p := core.Payment{
		Member:     core.MemberRef{ID: memberID},
		Amount:     amount,
		WeekNumber: weekNumber,
		Year:       year,
	}
	if err := p.Validate(); err != nil {
		return core.Payment{}, err
	}
	if _, err := r.store.GetMember(ctx, memberID); err != nil {
		return core.Payment{}, fmt.Errorf("resolve member: %w", err)
	}

	saved, err := r.store.UpsertPayment(ctx, p)
	if err != nil {
		return core.Payment{}, fmt.Errorf("upsert payment: %w", err)
	}

	r.publish(ctx, KindPayment, saved.ID)
	return saved, nil
}

// DeletePayment removes a payment by id.
func (r *Recorder) DeletePayment(ctx context.Context, id string) error {
	return r.store.DeletePayment(ctx, id)
}

// AddExpense stores an expense; its creation timestamp is also the
// attribution date for week bucketing.
func (r *Recorder) AddExpense(ctx context.Context, description string, amount int64) (core.Expense, error) {
	e, err := r.store.CreateExpense(ctx, core.Expense{Description: description, Amount: amount})
	if err != nil {
		return core.Expense{}, err
	}
	r.publish(ctx, KindExpense, e.ID)
	return e, nil
}

// DeleteExpense removes an expense by id.
func (r *Recorder) DeleteExpense(ctx context.Context, id string) error {
	return r.store.DeleteExpense(ctx, id)
}

// AddDonation stores a donation. Donations have no delete operation.
func (r *Recorder) AddDonation(ctx context.Context, donorName string, amount int64) (core.Donation, error) {
	d, err := r.store.CreateDonation(ctx, core.Donation{DonorName: donorName, Amount: amount})
	if err != nil {
		return core.Donation{}, err
	}
	r.publish(ctx, KindDonation, d.ID)
	return d, nil
}

func (r *Recorder) publish(ctx context.Context, kind, id string) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.PublishRecordSync(ctx, kind, id); err != nil {
		// The record is saved locally; backup sync will catch up via requeue.
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"kind", kind, "id", id, "error", err)
	}
}
