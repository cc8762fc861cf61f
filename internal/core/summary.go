package core

// WeekSummary is one row of the weekly breakdown for a year: collections and
// member count from the payment grouping, expenses from the calendar-week
// grouping, net as the difference.
type WeekSummary struct {
	WeekNumber     int   `json:"weekNumber"`
	TotalCollected int64 `json:"totalCollected"`
	MembersPaid    int   `json:"membersPaid"`
	Expenses       int64 `json:"expenses"`
	NetAmount      int64 `json:"netAmount"`
}

// PeriodSummary aggregates a sequence of week summaries. The average divides
// by the number of weeks and is 0 for an empty sequence.
type PeriodSummary struct {
	TotalCollected          int64   `json:"totalCollected"`
	TotalExpenses           int64   `json:"totalExpenses"`
	NetAmount               int64   `json:"netAmount"`
	AverageWeeklyCollection float64 `json:"averageWeeklyCollection"`
}

// PaymentStats is the per-week payment snapshot plus the all-time total.
type PaymentStats struct {
	TotalCollected  int64 `json:"totalCollected"`
	WeeklyPaidCount int   `json:"weeklyPaidCount"`
	WeeklyTotal     int64 `json:"weeklyTotal"`
}

// LedgerSummary is the system-wide dashboard summary for a given week.
type LedgerSummary struct {
	TotalMembers      int   `json:"totalMembers"`
	WeeklyPaidCount   int   `json:"weeklyPaidCount"`
	WeeklyUnpaidCount int   `json:"weeklyUnpaidCount"`
	WeeklyCollection  int64 `json:"weeklyCollection"`
	TotalCollections  int64 `json:"totalCollections"`
	TotalExpenses     int64 `json:"totalExpenses"`
	TotalDonations    int64 `json:"totalDonations"`
}

// WeeklyAnalysisReport is the shape consumed by the UI and the PDF export:
// the (optionally month-filtered) weekly rows plus their period summary.
type WeeklyAnalysisReport struct {
	Year    int           `json:"year"`
	Weeks   []WeekSummary `json:"weeklyAnalysis"`
	Summary PeriodSummary `json:"summary"`
}

// ExportRow is one row of the tabular export payload, with the week's date
// range rendered into the label.
type ExportRow struct {
	WeekLabel   string `json:"week"`
	DateRange   string `json:"dateRange"`
	Collected   int64  `json:"collected"`
	MembersPaid int    `json:"membersPaid"`
	Expenses    int64  `json:"expenses"`
	NetAmount   int64  `json:"netAmount"`
}
