package services

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"clubledger/internal/core"
	"clubledger/internal/ledger"
)

// AggregationEngine computes weekly and period figures by scanning the store.
// Nothing is cached here: every call recomputes from current records, so a
// summary read concurrent with a write may or may not see it, but always does
// once the write is acknowledged.
type AggregationEngine struct {
	store ledger.Store
	clock core.WeekClock
}

func NewAggregationEngine(store ledger.Store, clock core.WeekClock) *AggregationEngine {
	return &AggregationEngine{store: store, clock: clock}
}

// WeeklyBreakdown returns one summary per week of the year that has at least
// one payment, sorted ascending by week number.
//
// Payments are grouped by their stored epoch-anchored week number; expenses
// are grouped by CalendarWeekOf of their creation date. The two schemes can
// misalign near year boundaries; that drift is inherited behavior and is kept
// deliberately (see DESIGN.md).
func (e *AggregationEngine) WeeklyBreakdown(ctx context.Context, year int) ([]core.WeekSummary, error) {
	payments, err := e.store.ListPayments(ctx, ledger.PaymentFilter{Year: year})
	if err != nil {
		return nil, fmt.Errorf("weekly breakdown: %w", err)
	}
	expenses, err := e.store.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("weekly breakdown: %w", err)
	}

	byWeek := make(map[int]*core.WeekSummary)
	for _, p := range payments {
		ws, ok := byWeek[p.WeekNumber]
		if !ok {
			ws = &core.WeekSummary{WeekNumber: p.WeekNumber}
			byWeek[p.WeekNumber] = ws
		}
		ws.TotalCollected += p.Amount
		// Count of payment records, not distinct members. Under upsert
		// discipline the two coincide.
		ws.MembersPaid++
	}

	expenseByWeek := make(map[int]int64)
	for _, x := range expenses {
		if x.CreatedAt.UTC().Year() != year {
			continue
		}
		expenseByWeek[core.CalendarWeekOf(x.CreatedAt)] += x.Amount
	}

	summaries := make([]core.WeekSummary, 0, len(byWeek))
	for week, ws := range byWeek {
		ws.Expenses = expenseByWeek[week]
		ws.NetAmount = ws.TotalCollected - ws.Expenses
		summaries = append(summaries, *ws)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].WeekNumber < summaries[j].WeekNumber })
	return summaries, nil
}

// PeriodSummary totals a week sequence. An empty sequence yields a zero
// summary, never a division error.
func (e *AggregationEngine) PeriodSummary(weeks []core.WeekSummary) core.PeriodSummary {
	var s core.PeriodSummary
	for _, w := range weeks {
		s.TotalCollected += w.TotalCollected
		s.TotalExpenses += w.Expenses
		s.NetAmount += w.NetAmount
	}
	if len(weeks) > 0 {
		s.AverageWeeklyCollection = float64(s.TotalCollected) / float64(len(weeks))
	}
	return s
}

// CurrentStats returns the all-time collected total plus the paid count and
// collection total for one week.
func (e *AggregationEngine) CurrentStats(ctx context.Context, weekNumber, year int) (core.PaymentStats, error) {
	var stats core.PaymentStats

	all, err := e.store.ListPayments(ctx, ledger.PaymentFilter{})
	if err != nil {
		return stats, fmt.Errorf("payment stats: %w", err)
	}
	for _, p := range all {
		stats.TotalCollected += p.Amount
		if p.WeekNumber == weekNumber && p.Year == year {
			stats.WeeklyPaidCount++
			stats.WeeklyTotal += p.Amount
		}
	}
	return stats, nil
}

// Summary builds the system-wide dashboard numbers for one week. The four
// independent scans run concurrently.
func (e *AggregationEngine) Summary(ctx context.Context, weekNumber, year int) (core.LedgerSummary, error) {
	var (
		members   []core.Member
		payments  []core.Payment
		expenses  []core.Expense
		donations []core.Donation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		members, err = e.store.ListMembers(gctx)
		return err
	})
	g.Go(func() (err error) {
		payments, err = e.store.ListPayments(gctx, ledger.PaymentFilter{})
		return err
	})
	g.Go(func() (err error) {
		expenses, err = e.store.ListExpenses(gctx)
		return err
	})
	g.Go(func() (err error) {
		donations, err = e.store.ListDonations(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.LedgerSummary{}, fmt.Errorf("ledger summary: %w", err)
	}

	s := core.LedgerSummary{TotalMembers: len(members)}
	for _, p := range payments {
		s.TotalCollections += p.Amount
		if p.WeekNumber == weekNumber && p.Year == year {
			s.WeeklyPaidCount++
			s.WeeklyCollection += p.Amount
		}
	}
	s.WeeklyUnpaidCount = s.TotalMembers - s.WeeklyPaidCount
	for _, x := range expenses {
		s.TotalExpenses += x.Amount
	}
	for _, d := range donations {
		s.TotalDonations += d.Amount
	}
	return s, nil
}

// ExpenseTotal sums every recorded expense.
func (e *AggregationEngine) ExpenseTotal(ctx context.Context) (int64, error) {
	expenses, err := e.store.ListExpenses(ctx)
	if err != nil {
		return 0, fmt.Errorf("expense total: %w", err)
	}
	var total int64
	for _, x := range expenses {
		total += x.Amount
	}
	return total, nil
}

// DonationTotal sums every recorded donation.
func (e *AggregationEngine) DonationTotal(ctx context.Context) (int64, error) {
	donations, err := e.store.ListDonations(ctx)
	if err != nil {
		return 0, fmt.Errorf("donation total: %w", err)
	}
	var total int64
	for _, d := range donations {
		total += d.Amount
	}
	return total, nil
}

// MemberPaidStatus is the derived "has this member paid this week" read. It
// queries the store on demand instead of holding any process-wide state.
func (e *AggregationEngine) MemberPaidStatus(ctx context.Context, memberID string, weekNumber, year int) (bool, error) {
	return e.store.HasPayment(ctx, memberID, weekNumber, year)
}

// CurrentWeek returns the epoch-anchored week number and calendar year the
// engine defaults to for implicit week/year parameters.
func (e *AggregationEngine) CurrentWeek() (weekNumber, year int) {
	now := nowFunc()
	return e.clock.WeekOf(now), now.Year()
}
