package services

import (
	"context"
	"strings"
	"testing"

	"clubledger/internal/core"
	"clubledger/internal/ledger/memory"
)

func newAssembler(t *testing.T) (*ReportAssembler, *Recorder, *memory.Store) {
	t.Helper()
	store := memory.New()
	clock := core.DefaultWeekClock()
	engine := NewAggregationEngine(store, clock)
	return NewReportAssembler(engine, clock), NewRecorder(store, nil), store
}

func TestWeeklyAnalysis_FullYear(t *testing.T) {
	assembler, rec, store := newAssembler(t)
	ctx := context.Background()
	m := newMember(t, store, "Arun")

	if _, err := rec.RecordPayment(ctx, m.ID, 20, 1, 2025); err != nil {
		t.Fatal(err)
	}
	if _, err := rec.RecordPayment(ctx, m.ID, 25, 2, 2025); err != nil {
		t.Fatal(err)
	}

	report, err := assembler.WeeklyAnalysis(ctx, 2025, 0)
	if err != nil {
		t.Fatal(err)
	}
	if report.Year != 2025 {
		t.Errorf("Year = %d, want 2025", report.Year)
	}
	if len(report.Weeks) != 2 {
		t.Fatalf("got %d weeks, want 2", len(report.Weeks))
	}
	if report.Summary.TotalCollected != 45 {
		t.Errorf("Summary.TotalCollected = %d, want 45", report.Summary.TotalCollected)
	}
	if report.Summary.AverageWeeklyCollection != 22.5 {
		t.Errorf("AverageWeeklyCollection = %v, want 22.5", report.Summary.AverageWeeklyCollection)
	}
}

func TestWeeklyAnalysis_MonthFilter(t *testing.T) {
	assembler, rec, store := newAssembler(t)
	ctx := context.Background()
	m := newMember(t, store, "Arun")

	// Week 1 starts 01 Jun 2025, week 5 starts 29 Jun 2025, week 6 starts
	// 06 Jul 2025.
	for _, week := range []int{1, 5, 6} {
		if _, err := rec.RecordPayment(ctx, m.ID, 20, week, 2025); err != nil {
			t.Fatal(err)
		}
	}

	report, err := assembler.WeeklyAnalysis(ctx, 2025, 6)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{1, 5}
	if len(report.Weeks) != len(want) {
		t.Fatalf("got %d weeks, want %d", len(report.Weeks), len(want))
	}
	for i, w := range report.Weeks {
		if w.WeekNumber != want[i] {
			t.Errorf("weeks[%d].WeekNumber = %d, want %d", i, w.WeekNumber, want[i])
		}
	}
	if report.Summary.TotalCollected != 40 {
		t.Errorf("filtered Summary.TotalCollected = %d, want 40", report.Summary.TotalCollected)
	}
}

func TestWeeklyAnalysis_MonthFilterAcrossYearBoundary(t *testing.T) {
	assembler, rec, store := newAssembler(t)
	ctx := context.Background()
	m := newMember(t, store, "Arun")

	// Week 31 starts 28 Dec 2025 and runs into January; week 32 starts
	// 04 Jan 2026. Filtering December must keep 31 and drop 32.
	if _, err := rec.RecordPayment(ctx, m.ID, 20, 31, 2025); err != nil {
		t.Fatal(err)
	}
	if _, err := rec.RecordPayment(ctx, m.ID, 30, 32, 2025); err != nil {
		t.Fatal(err)
	}

	report, err := assembler.WeeklyAnalysis(ctx, 2025, 12)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Weeks) != 1 || report.Weeks[0].WeekNumber != 31 {
		t.Fatalf("December filter = %+v, want only week 31", report.Weeks)
	}
}

func TestWeeklyAnalysis_InvalidMonthIgnored(t *testing.T) {
	assembler, rec, store := newAssembler(t)
	ctx := context.Background()
	m := newMember(t, store, "Arun")

	if _, err := rec.RecordPayment(ctx, m.ID, 20, 1, 2025); err != nil {
		t.Fatal(err)
	}

	for _, month := range []int{-1, 0, 13} {
		report, err := assembler.WeeklyAnalysis(ctx, 2025, month)
		if err != nil {
			t.Fatal(err)
		}
		if len(report.Weeks) != 1 {
			t.Errorf("month %d: got %d weeks, want unfiltered 1", month, len(report.Weeks))
		}
	}
}

func TestExportRows(t *testing.T) {
	assembler, _, _ := newAssembler(t)

	rows := assembler.ExportRows(core.WeeklyAnalysisReport{
		Year: 2025,
		Weeks: []core.WeekSummary{
			{WeekNumber: 1, TotalCollected: 50, MembersPaid: 2, Expenses: 10, NetAmount: 40},
		},
	})
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	r := rows[0]
	if r.WeekLabel != "Week 1" {
		t.Errorf("WeekLabel = %q", r.WeekLabel)
	}
	if r.DateRange != "01 Jun 2025 to 07 Jun 2025" {
		t.Errorf("DateRange = %q", r.DateRange)
	}
	if r.Collected != 50 || r.MembersPaid != 2 || r.Expenses != 10 || r.NetAmount != 40 {
		t.Errorf("row = %+v", r)
	}
	if strings.Contains(r.DateRange, "0001") {
		t.Errorf("zero time leaked into range: %q", r.DateRange)
	}
}
