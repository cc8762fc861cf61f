package core

import "time"

// Epoch is the fixed calendar date week numbers are counted from. Changing it
// retroactively renumbers every historical week, so once ledger data exists it
// must stay a compile-time constant rather than a runtime parameter.
var Epoch = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

// WeekClock maps timestamps to 1-based week numbers anchored at a fixed epoch,
// and week numbers back to their [start, end] date range.
type WeekClock struct {
	epoch time.Time
}

// NewWeekClock returns a clock anchored at the UTC midnight of epoch's date.
func NewWeekClock(epoch time.Time) WeekClock {
	y, m, d := epoch.UTC().Date()
	return WeekClock{epoch: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// DefaultWeekClock returns the clock anchored at the system Epoch.
func DefaultWeekClock() WeekClock {
	return NewWeekClock(Epoch)
}

// Epoch returns the clock's anchor date.
func (c WeekClock) Epoch() time.Time {
	return c.epoch
}

// WeekOf returns the week number of t. The epoch day and the six days after
// it are week 1; there is no week 0. Dates before the epoch use the absolute
// distance and therefore also yield positive week numbers — a deliberate
// modeling simplification, not calendar semantics: week 2 can mean either
// seven days after or seven days before the anchor.
func (c WeekClock) WeekOf(t time.Time) int {
	days := c.daysFromEpoch(t)
	if days < 0 {
		days = -days
	}
	return days/7 + 1
}

// RangeOf returns the inclusive [start, end] date range covered by week. Both
// bounds are UTC midnights; end is the first moment of the week's last day.
func (c WeekClock) RangeOf(week int) (start, end time.Time) {
	start = c.epoch.AddDate(0, 0, (week-1)*7)
	end = start.AddDate(0, 0, 6)
	return start, end
}

func (c WeekClock) daysFromEpoch(t time.Time) int {
	y, m, d := t.UTC().Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(day.Sub(c.epoch).Hours() / 24)
}

// CalendarWeekOf buckets t by day-of-year: ceil(dayOfYear/7). This is the
// scheme the ledger uses for expenses, and it is intentionally distinct from
// the epoch-anchored WeekClock used for payments. The two schemes can
// disagree near year boundaries; callers must pick one deliberately and never
// mix indices from both.
func CalendarWeekOf(t time.Time) int {
	return (t.UTC().YearDay() + 6) / 7
}
