package core

import "time"

// Window is a half-open [Start, End) time interval.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// PeriodWindow resolves a budget period relative to now:
// weekly is the week starting on the most recent Sunday at 00:00,
// monthly is the current calendar month, yearly is the current calendar year.
func PeriodWindow(p Period, now time.Time) Window {
	switch p {
	case Weekly:
		day := midnight(now)
		start := day.AddDate(0, 0, -int(day.Weekday()))
		return Window{Start: start, End: start.AddDate(0, 0, 7)}
	case Yearly:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return Window{Start: start, End: start.AddDate(1, 0, 0)}
	default: // Monthly
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Window{Start: start, End: start.AddDate(0, 1, 0)}
	}
}

// MonthWindow returns the calendar month containing now.
func MonthWindow(now time.Time) Window {
	return PeriodWindow(Monthly, now)
}

// ShiftMonths returns the calendar month window n months away from the one
// containing now (negative n goes back in time).
func ShiftMonths(now time.Time, n int) Window {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, n, 0)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
