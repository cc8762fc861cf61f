// Package memory implements the ledger store ports in process memory. It
// backs the "memory" data backend and doubles as the test double for the
// services layer.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"clubledger/internal/core"
	"clubledger/internal/ledger"
)

// Store keeps every collection in insertion order behind one mutex, which
// also serializes same-key payment upserts.
type Store struct {
	mu        sync.Mutex
	members   []core.Member
	payments  []core.Payment
	expenses  []core.Expense
	donations []core.Donation
	users     []core.User
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) CreateMember(_ context.Context, m core.Member) (core.Member, error) {
	if err := m.Validate(); err != nil {
		return core.Member{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Photo == "" {
		m.Photo = core.DefaultMemberPhoto
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	s.members = append(s.members, m)
	return m, nil
}

func (s *Store) GetMember(_ context.Context, id string) (core.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.members {
		if m.ID == id {
			return m, nil
		}
	}
	return core.Member{}, fmt.Errorf("member %s: %w", id, core.ErrNotFound)
}

func (s *Store) UpdateMember(_ context.Context, m core.Member) (core.Member, error) {
	if err := m.Validate(); err != nil {
		return core.Member{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.members {
		if existing.ID == m.ID {
			m.CreatedAt = existing.CreatedAt
			m.UpdatedAt = time.Now().UTC()
			if m.Photo == "" {
				m.Photo = existing.Photo
			}
			s.members[i] = m
			return m, nil
		}
	}
	return core.Member{}, fmt.Errorf("member %s: %w", m.ID, core.ErrNotFound)
}

func (s *Store) DeleteMember(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, m := range s.members {
		if m.ID == id {
			s.members = append(s.members[:i], s.members[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("member %s: %w", id, core.ErrNotFound)
}

func (s *Store) ListMembers(_ context.Context) ([]core.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := append([]core.Member(nil), s.members...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpsertPayment(_ context.Context, p core.Payment) (core.Payment, error) {
	if err := p.Validate(); err != nil {
		return core.Payment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// Delete-then-insert under the lock: the prior record for the key is
	// discarded entirely and the key never holds two records.
	kept := s.payments[:0]
	for _, existing := range s.payments {
		if existing.Member.ID == p.Member.ID && existing.WeekNumber == p.WeekNumber && existing.Year == p.Year {
			continue
		}
		kept = append(kept, existing)
	}
	s.payments = kept

	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	for _, m := range s.members {
		if m.ID == p.Member.ID {
			p.Member.Name = m.Name
			p.Member.Phone = m.Phone
			break
		}
	}
	s.payments = append(s.payments, p)
	return p, nil
}

func (s *Store) GetPayment(_ context.Context, id string) (core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.payments {
		if p.ID == id {
			return p, nil
		}
	}
	return core.Payment{}, fmt.Errorf("payment %s: %w", id, core.ErrNotFound)
}

func (s *Store) DeletePayment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.payments {
		if p.ID == id {
			s.payments = append(s.payments[:i], s.payments[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("payment %s: %w", id, core.ErrNotFound)
}

func (s *Store) ListPayments(_ context.Context, f ledger.PaymentFilter) ([]core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Payment
	// Walk newest-first; insertion order stands in for creation time.
	for i := len(s.payments) - 1; i >= 0; i-- {
		p := s.payments[i]
		if f.MemberID != "" && p.Member.ID != f.MemberID {
			continue
		}
		if f.WeekNumber != 0 && p.WeekNumber != f.WeekNumber {
			continue
		}
		if f.Year != 0 && p.Year != f.Year {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) HasPayment(_ context.Context, memberID string, weekNumber, year int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.payments {
		if p.Member.ID == memberID && p.WeekNumber == weekNumber && p.Year == year {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = uuid.NewString()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.expenses = append(s.expenses, e)
	return e, nil
}

func (s *Store) GetExpense(_ context.Context, id string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, fmt.Errorf("expense %s: %w", id, core.ErrNotFound)
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.expenses {
		if e.ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("expense %s: %w", id, core.ErrNotFound)
}

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Expense, 0, len(s.expenses))
	for i := len(s.expenses) - 1; i >= 0; i-- {
		out = append(out, s.expenses[i])
	}
	return out, nil
}

func (s *Store) CreateDonation(_ context.Context, d core.Donation) (core.Donation, error) {
	if err := d.Validate(); err != nil {
		return core.Donation{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	d.ID = uuid.NewString()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	s.donations = append(s.donations, d)
	return d, nil
}

func (s *Store) GetDonation(_ context.Context, id string) (core.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.donations {
		if d.ID == id {
			return d, nil
		}
	}
	return core.Donation{}, fmt.Errorf("donation %s: %w", id, core.ErrNotFound)
}

func (s *Store) ListDonations(_ context.Context) ([]core.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Donation, 0, len(s.donations))
	for i := len(s.donations) - 1; i >= 0; i-- {
		out = append(out, s.donations[i])
	}
	return out, nil
}

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return core.User{}, fmt.Errorf("user %s: %w", u.Email, core.ErrConflict)
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()
	s.users = append(s.users, u)
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return core.User{}, fmt.Errorf("user %s: %w", email, core.ErrNotFound)
}
