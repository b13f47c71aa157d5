package core

import (
	"testing"
	"time"
)

func TestPeriodWindowWeekly(t *testing.T) {
	// Wednesday 2025-03-12; the week starts on Sunday 2025-03-09.
	now := time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)
	w := PeriodWindow(Weekly, now)

	wantStart := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	if !w.Start.Equal(wantStart) {
		t.Fatalf("start = %v, want %v", w.Start, wantStart)
	}
	if !w.End.Equal(wantStart.AddDate(0, 0, 7)) {
		t.Fatalf("end = %v, want %v", w.End, wantStart.AddDate(0, 0, 7))
	}

	// A Sunday is the start of its own week.
	sunday := time.Date(2025, 3, 9, 8, 0, 0, 0, time.UTC)
	if got := PeriodWindow(Weekly, sunday); !got.Start.Equal(wantStart) {
		t.Fatalf("sunday start = %v, want %v", got.Start, wantStart)
	}
}

func TestPeriodWindowMonthly(t *testing.T) {
	now := time.Date(2025, 1, 31, 23, 59, 0, 0, time.UTC)
	w := PeriodWindow(Monthly, now)

	if !w.Start.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", w.Start)
	}
	if !w.End.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("end = %v", w.End)
	}
	if !w.Contains(now) {
		t.Fatal("last day of month must be inside the monthly window")
	}
	if w.Contains(w.End) {
		t.Fatal("window end must be exclusive")
	}
}

func TestPeriodWindowYearly(t *testing.T) {
	now := time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)
	w := PeriodWindow(Yearly, now)
	if !w.Start.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", w.Start)
	}
	if !w.End.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("end = %v", w.End)
	}
}

func TestShiftMonths(t *testing.T) {
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	prev := ShiftMonths(now, -1)
	if !prev.Start.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", prev.Start)
	}
	if !prev.End.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("end = %v", prev.End)
	}

	// January wraps back into the previous year.
	jan := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	back := ShiftMonths(jan, -2)
	if !back.Start.Equal(time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", back.Start)
	}
}
