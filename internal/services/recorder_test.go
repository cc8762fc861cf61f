package services

import (
	"context"
	"errors"
	"testing"

	"clubledger/internal/core"
	"clubledger/internal/ledger"
	"clubledger/internal/ledger/memory"
)

type fakePublisher struct {
	published []string
	err       error
}

func (f *fakePublisher) PublishRecordSync(_ context.Context, kind, id string) error {
	f.published = append(f.published, kind+":"+id)
	return f.err
}

func newMember(t *testing.T, store *memory.Store, name string) core.Member {
	t.Helper()
	m, err := store.CreateMember(context.Background(), core.Member{Name: name, Phone: "9876543210", Active: true})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestRecordPayment_LatestWriteWins(t *testing.T) {
	store := memory.New()
	rec := NewRecorder(store, nil)
	ctx := context.Background()
	m := newMember(t, store, "Arun")

	if _, err := rec.RecordPayment(ctx, m.ID, 20, 1, 2025); err != nil {
		t.Fatal(err)
	}
	if _, err := rec.RecordPayment(ctx, m.ID, 25, 1, 2025); err != nil {
		t.Fatal(err)
	}

	payments, err := store.ListPayments(ctx, ledger.PaymentFilter{WeekNumber: 1, Year: 2025})
	if err != nil {
		t.Fatal(err)
	}
	if len(payments) != 1 {
		t.Fatalf("expected one payment for the week key, got %d", len(payments))
	}
	if payments[0].Amount != 25 {
		t.Errorf("Amount = %d, want 25", payments[0].Amount)
	}
}

func TestRecordPayment_UnknownMember(t *testing.T) {
	rec := NewRecorder(memory.New(), nil)

	_, err := rec.RecordPayment(context.Background(), "missing", 20, 1, 2025)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestRecordPayment_Validation(t *testing.T) {
	store := memory.New()
	rec := NewRecorder(store, nil)
	ctx := context.Background()
	m := newMember(t, store, "Arun")

	tests := []struct {
		name   string
		member string
		amount int64
		week   int
		year   int
	}{
		{"missing member id", "", 20, 1, 2025},
		{"zero amount", m.ID, 0, 1, 2025},
		{"negative amount", m.ID, -20, 1, 2025},
		{"week zero", m.ID, 20, 0, 2025},
		{"bad year", m.ID, 20, 1, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rec.RecordPayment(ctx, tt.member, tt.amount, tt.week, tt.year)
			if !core.IsValidation(err) {
				t.Errorf("got %v, want ValidationError", err)
			}
		})
	}
}

func TestRecorder_PublishesAfterWrite(t *testing.T) {
	store := memory.New()
	pub := &fakePublisher{}
	rec := NewRecorder(store, pub)
	ctx := context.Background()
	m := newMember(t, store, "Arun")

	p, err := rec.RecordPayment(ctx, m.ID, 20, 1, 2025)
	if err != nil {
		t.Fatal(err)
	}
	e, err := rec.AddExpense(ctx, "Ground rent", 500)
	if err != nil {
		t.Fatal(err)
	}
	d, err := rec.AddDonation(ctx, "Well-wisher", 1000)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		KindPayment + ":" + p.ID,
		KindExpense + ":" + e.ID,
		KindDonation + ":" + d.ID,
	}
	if len(pub.published) != len(want) {
		t.Fatalf("published %d messages, want %d", len(pub.published), len(want))
	}
	for i, w := range want {
		if pub.published[i] != w {
			t.Errorf("published[%d] = %s, want %s", i, pub.published[i], w)
		}
	}
}

func TestRecorder_PublishFailureDoesNotFailWrite(t *testing.T) {
	store := memory.New()
	pub := &fakePublisher{err: errors.New("broker down")}
	rec := NewRecorder(store, pub)
	ctx := context.Background()
	m := newMember(t, store, "Arun")

	if _, err := rec.RecordPayment(ctx, m.ID, 20, 1, 2025); err != nil {
		t.Errorf("write failed on publish error: %v", err)
	}
	payments, err := store.ListPayments(ctx, ledger.PaymentFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(payments) != 1 {
		t.Errorf("payment not persisted despite publish failure")
	}
}

func TestRecorder_ValidationSkipsStoreAndPublish(t *testing.T) {
	store := memory.New()
	pub := &fakePublisher{}
	rec := NewRecorder(store, pub)

	if _, err := rec.AddExpense(context.Background(), "", 500); !core.IsValidation(err) {
		t.Errorf("got %v, want ValidationError", err)
	}
	if _, err := rec.AddDonation(context.Background(), "Donor", 0); !core.IsValidation(err) {
		t.Errorf("got %v, want ValidationError", err)
	}
	if len(pub.published) != 0 {
		t.Errorf("rejected writes must not publish, got %v", pub.published)
	}
}
