package services

import (
	"context"
	"fmt"
	"time"

	"clubledger/internal/core"
)

// nowFunc is swapped in tests to pin the current week.
var nowFunc = time.Now

// ReportAssembler shapes engine output for the UI and export layers. It keeps
// no state between calls; every report is recomputed from the store.
type ReportAssembler struct {
	engine *AggregationEngine
	clock  core.WeekClock
}

func NewReportAssembler(engine *AggregationEngine, clock core.WeekClock) *ReportAssembler {
	return &ReportAssembler{engine: engine, clock: clock}
}

// WeeklyAnalysis builds the weekly-analysis report for a year. When month is
// 1-12 the rows are narrowed to weeks whose start date (per the epoch-anchored
// range) falls in that calendar month, and the summary is recomputed over the
// filtered subset.
func (a *ReportAssembler) WeeklyAnalysis(ctx context.Context, year, month int) (core.WeeklyAnalysisReport, error) {
	weeks, err := a.engine.WeeklyBreakdown(ctx, year)
	if err != nil {
		return core.WeeklyAnalysisReport{}, err
	}
	report := core.WeeklyAnalysisReport{
		Year:    year,
		Weeks:   weeks,
		Summary: a.engine.PeriodSummary(weeks),
	}
	return a.FilterMonth(report, month), nil
}

// FilterMonth narrows a report to the weeks whose start date falls in month
// and recomputes the summary. Months outside 1-12 leave the report untouched,
// so a cached full-year report can be filtered per request.
func (a *ReportAssembler) FilterMonth(report core.WeeklyAnalysisReport, month int) core.WeeklyAnalysisReport {
	if month < 1 || month > 12 {
		return report
	}
	filtered := make([]core.WeekSummary, 0, len(report.Weeks))
	for _, w := range report.Weeks {
		start, _ := a.clock.RangeOf(w.WeekNumber)
		if start.Month() == time.Month(month) {
			filtered = append(filtered, w)
		}
	}
	return core.WeeklyAnalysisReport{
		Year:    report.Year,
		Weeks:   filtered,
		Summary: a.engine.PeriodSummary(filtered),
	}
}

// ExportRows renders a report into the row-per-week payload consumed by
// tabular and PDF rendering, with each week's date range in the label.
func (a *ReportAssembler) ExportRows(report core.WeeklyAnalysisReport) []core.ExportRow {
	rows := make([]core.ExportRow, 0, len(report.Weeks))
	for _, w := range report.Weeks {
		start, end := a.clock.RangeOf(w.WeekNumber)
		rows = append(rows, core.ExportRow{
			WeekLabel:   fmt.Sprintf("Week %d", w.WeekNumber),
			DateRange:   fmt.Sprintf("%s to %s", start.Format("02 Jan 2006"), end.Format("02 Jan 2006")),
			Collected:   w.TotalCollected,
			MembersPaid: w.MembersPaid,
			Expenses:    w.Expenses,
			NetAmount:   w.NetAmount,
		})
	}
	return rows
}
