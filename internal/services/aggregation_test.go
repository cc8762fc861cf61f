package services

import (
	"context"
	"testing"
	"time"

	"clubledger/internal/core"
	"clubledger/internal/ledger/memory"
)

func seedExpense(t *testing.T, store *memory.Store, desc string, amount int64, created time.Time) {
	t.Helper()
	_, err := store.CreateExpense(context.Background(), core.Expense{
		Description: desc,
		Amount:      amount,
		CreatedAt:   created,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestWeeklyBreakdown_UpsertYieldsSingleRow(t *testing.T) {
	store := memory.New()
	rec := NewRecorder(store, nil)
	engine := NewAggregationEngine(store, core.DefaultWeekClock())
	ctx := context.Background()
	m := newMember(t, store, "Arun")

	if _, err := rec.RecordPayment(ctx, m.ID, 20, 1, 2025); err != nil {
		t.Fatal(err)
	}
	if _, err := rec.RecordPayment(ctx, m.ID, 25, 1, 2025); err != nil {
		t.Fatal(err)
	}

	weeks, err := engine.WeeklyBreakdown(ctx, 2025)
	if err != nil {
		t.Fatal(err)
	}
	if len(weeks) != 1 {
		t.Fatalf("got %d weeks, want 1", len(weeks))
	}
	w := weeks[0]
	if w.WeekNumber != 1 || w.TotalCollected != 25 || w.MembersPaid != 1 {
		t.Errorf("week = %+v, want {WeekNumber:1 TotalCollected:25 MembersPaid:1}", w)
	}
}

func TestWeeklyBreakdown_NetsExpensesPerWeek(t *testing.T) {
	store := memory.New()
	rec := NewRecorder(store, nil)
	engine := NewAggregationEngine(store, core.DefaultWeekClock())
	ctx := context.Background()
	a := newMember(t, store, "Arun")
	b := newMember(t, store, "Ravi")

	if _, err := rec.RecordPayment(ctx, a.ID, 20, 3, 2025); err != nil {
		t.Fatal(err)
	}
	if _, err := rec.RecordPayment(ctx, b.ID, 30, 3, 2025); err != nil {
		t.Fatal(err)
	}
	// Day-of-year 16 buckets into calendar week 3.
	seedExpense(t, store, "Ground rent", 10, time.Date(2025, time.January, 16, 12, 0, 0, 0, time.UTC))
	// Wrong year; must not leak into the 2025 breakdown.
	seedExpense(t, store, "Old bill", 99, time.Date(2024, time.January, 16, 12, 0, 0, 0, time.UTC))

	weeks, err := engine.WeeklyBreakdown(ctx, 2025)
	if err != nil {
		t.Fatal(err)
	}
	if len(weeks) != 1 {
		t.Fatalf("got %d weeks, want 1", len(weeks))
	}
	w := weeks[0]
	if w.WeekNumber != 3 || w.TotalCollected != 50 || w.MembersPaid != 2 || w.Expenses != 10 || w.NetAmount != 40 {
		t.Errorf("week = %+v, want {WeekNumber:3 TotalCollected:50 MembersPaid:2 Expenses:10 NetAmount:40}", w)
	}
}

func TestWeeklyBreakdown_SortedWithoutDuplicates(t *testing.T) {
	store := memory.New()
	rec := NewRecorder(store, nil)
	engine := NewAggregationEngine(store, core.DefaultWeekClock())
	ctx := context.Background()
	m := newMember(t, store, "Arun")

	for _, week := range []int{7, 2, 5, 2} {
		if _, err := rec.RecordPayment(ctx, m.ID, 20, week, 2025); err != nil {
			t.Fatal(err)
		}
	}

	weeks, err := engine.WeeklyBreakdown(ctx, 2025)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{2, 5, 7}
	if len(weeks) != len(want) {
		t.Fatalf("got %d weeks, want %d", len(weeks), len(want))
	}
	for i, w := range weeks {
		if w.WeekNumber != want[i] {
			t.Errorf("weeks[%d].WeekNumber = %d, want %d", i, w.WeekNumber, want[i])
		}
	}
}

func TestPeriodSummary(t *testing.T) {
	engine := NewAggregationEngine(memory.New(), core.DefaultWeekClock())

	empty := engine.PeriodSummary(nil)
	if empty.AverageWeeklyCollection != 0 {
		t.Errorf("empty average = %v, want 0", empty.AverageWeeklyCollection)
	}

	s := engine.PeriodSummary([]core.WeekSummary{
		{WeekNumber: 1, TotalCollected: 50, Expenses: 10, NetAmount: 40},
		{WeekNumber: 2, TotalCollected: 25, Expenses: 0, NetAmount: 25},
	})
	if s.TotalCollected != 75 || s.TotalExpenses != 10 || s.NetAmount != 65 {
		t.Errorf("summary = %+v", s)
	}
	if s.AverageWeeklyCollection != 37.5 {
		t.Errorf("AverageWeeklyCollection = %v, want 37.5", s.AverageWeeklyCollection)
	}
}

func TestSummary_UnpaidCount(t *testing.T) {
	store := memory.New()
	rec := NewRecorder(store, nil)
	engine := NewAggregationEngine(store, core.DefaultWeekClock())
	ctx := context.Background()

	members := make([]core.Member, 5)
	for i, name := range []string{"Arun", "Ravi", "Manoj", "Suresh", "Vijay"} {
		members[i] = newMember(t, store, name)
	}
	for _, m := range members[:3] {
		if _, err := rec.RecordPayment(ctx, m.ID, 20, 4, 2025); err != nil {
			t.Fatal(err)
		}
	}
	// A payment in a different week must not count toward week 4.
	if _, err := rec.RecordPayment(ctx, members[3].ID, 20, 5, 2025); err != nil {
		t.Fatal(err)
	}

	s, err := engine.Summary(ctx, 4, 2025)
	if err != nil {
		t.Fatal(err)
	}
	if s.TotalMembers != 5 {
		t.Errorf("TotalMembers = %d, want 5", s.TotalMembers)
	}
	if s.WeeklyPaidCount != 3 || s.WeeklyUnpaidCount != 2 {
		t.Errorf("paid/unpaid = %d/%d, want 3/2", s.WeeklyPaidCount, s.WeeklyUnpaidCount)
	}
	if s.WeeklyCollection != 60 || s.TotalCollections != 80 {
		t.Errorf("collections = %d/%d, want 60/80", s.WeeklyCollection, s.TotalCollections)
	}
}

func TestSummary_IncludesExpensesAndDonations(t *testing.T) {
	store := memory.New()
	rec := NewRecorder(store, nil)
	engine := NewAggregationEngine(store, core.DefaultWeekClock())
	ctx := context.Background()

	if _, err := rec.AddExpense(ctx, "Ground rent", 500); err != nil {
		t.Fatal(err)
	}
	if _, err := rec.AddDonation(ctx, "Well-wisher", 1000); err != nil {
		t.Fatal(err)
	}

	s, err := engine.Summary(ctx, 1, 2025)
	if err != nil {
		t.Fatal(err)
	}
	if s.TotalExpenses != 500 || s.TotalDonations != 1000 {
		t.Errorf("expenses/donations = %d/%d, want 500/1000", s.TotalExpenses, s.TotalDonations)
	}
}

func TestCurrentStats(t *testing.T) {
	store := memory.New()
	rec := NewRecorder(store, nil)
	engine := NewAggregationEngine(store, core.DefaultWeekClock())
	ctx := context.Background()
	a := newMember(t, store, "Arun")
	b := newMember(t, store, "Ravi")

	if _, err := rec.RecordPayment(ctx, a.ID, 20, 2, 2025); err != nil {
		t.Fatal(err)
	}
	if _, err := rec.RecordPayment(ctx, b.ID, 30, 2, 2025); err != nil {
		t.Fatal(err)
	}
	if _, err := rec.RecordPayment(ctx, a.ID, 40, 9, 2025); err != nil {
		t.Fatal(err)
	}

	stats, err := engine.CurrentStats(ctx, 2, 2025)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalCollected != 90 {
		t.Errorf("TotalCollected = %d, want 90", stats.TotalCollected)
	}
	if stats.WeeklyPaidCount != 2 || stats.WeeklyTotal != 50 {
		t.Errorf("weekly = %d/%d, want 2/50", stats.WeeklyPaidCount, stats.WeeklyTotal)
	}
}

func TestMemberPaidStatus(t *testing.T) {
	store := memory.New()
	rec := NewRecorder(store, nil)
	engine := NewAggregationEngine(store, core.DefaultWeekClock())
	ctx := context.Background()
	m := newMember(t, store, "Arun")

	if _, err := rec.RecordPayment(ctx, m.ID, 20, 6, 2025); err != nil {
		t.Fatal(err)
	}

	paid, err := engine.MemberPaidStatus(ctx, m.ID, 6, 2025)
	if err != nil || !paid {
		t.Errorf("MemberPaidStatus(week 6) = %v, %v; want true, nil", paid, err)
	}
	paid, err = engine.MemberPaidStatus(ctx, m.ID, 7, 2025)
	if err != nil || paid {
		t.Errorf("MemberPaidStatus(week 7) = %v, %v; want false, nil", paid, err)
	}
}

func TestCurrentWeek_UsesEpochClock(t *testing.T) {
	engine := NewAggregationEngine(memory.New(), core.DefaultWeekClock())

	orig := nowFunc
	nowFunc = func() time.Time { return time.Date(2025, time.June, 16, 10, 0, 0, 0, time.UTC) }
	defer func() { nowFunc = orig }()

	week, year := engine.CurrentWeek()
	if week != 3 || year != 2025 {
		t.Errorf("CurrentWeek = %d, %d; want 3, 2025", week, year)
	}
}
