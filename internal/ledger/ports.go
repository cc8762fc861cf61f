// Package ledger defines the store ports the services layer depends on.
// internal/storage implements them over SQLite; internal/ledger/memory holds
// the in-memory implementation used by tests and the memory backend.
package ledger

import (
	"context"

	"clubledger/internal/core"
)

// PaymentFilter narrows payment reads. Zero values mean "any".
type PaymentFilter struct {
	MemberID   string
	WeekNumber int
	Year       int
}

type (
	MemberStore interface {
		CreateMember(ctx context.Context, m core.Member) (core.Member, error)
		GetMember(ctx context.Context, id string) (core.Member, error)
		UpdateMember(ctx context.Context, m core.Member) (core.Member, error)
		DeleteMember(ctx context.Context, id string) error
		// ListMembers returns all members sorted by name ascending.
		ListMembers(ctx context.Context) ([]core.Member, error)
	}

	PaymentStore interface {
		// UpsertPayment replaces any payment sharing (member, weekNumber, year)
		// with p as one atomic step: the key never transiently holds zero or
		// two records, and the prior record is discarded entirely.
		UpsertPayment(ctx context.Context, p core.Payment) (core.Payment, error)
		GetPayment(ctx context.Context, id string) (core.Payment, error)
		DeletePayment(ctx context.Context, id string) error
		// ListPayments returns matching payments with member references
		// populated, sorted by creation time descending.
		ListPayments(ctx context.Context, f PaymentFilter) ([]core.Payment, error)
		// HasPayment is the derived paid-status read for one week key.
		HasPayment(ctx context.Context, memberID string, weekNumber, year int) (bool, error)
	}

	ExpenseStore interface {
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		GetExpense(ctx context.Context, id string) (core.Expense, error)
		DeleteExpense(ctx context.Context, id string) error
		// ListExpenses returns all expenses sorted by creation time descending.
		ListExpenses(ctx context.Context) ([]core.Expense, error)
	}

	DonationStore interface {
		CreateDonation(ctx context.Context, d core.Donation) (core.Donation, error)
		GetDonation(ctx context.Context, id string) (core.Donation, error)
		// ListDonations returns all donations sorted by creation time descending.
		ListDonations(ctx context.Context) ([]core.Donation, error)
	}

	UserStore interface {
		CreateUser(ctx context.Context, u core.User) (core.User, error)
		GetUserByEmail(ctx context.Context, email string) (core.User, error)
	}
)

// Store is the full ledger surface. Aggregates are always recomputed from
// these reads, never cached in the store itself.
type Store interface {
	MemberStore
	PaymentStore
	ExpenseStore
	DonationStore
	UserStore
}
