package domain

import (
	"fmt"
	"time"
)

// ReportWindow is a UTC calendar month
type ReportWindow struct {
	Start time.Time
	End   time.Time // last millisecond of the month
}

// CalculateReportWindow returns the window for the month before now, or for
// overrideMonth when it is set (YYYY-MM)
func CalculateReportWindow(now time.Time, overrideMonth string) (ReportWindow, error) {
	var year int
	var month time.Month

	if overrideMonth != "" {
		t, err := time.Parse("2006-01", overrideMonth)
		if err != nil {
			return ReportWindow{}, fmt.Errorf("invalid month %q, expected YYYY-MM: %w", overrideMonth, err)
		}
		year, month = t.Year(), t.Month()
	} else {
		prev := time.Date(now.UTC().Year(), now.UTC().Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
		year, month = prev.Year(), prev.Month()
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)

	return ReportWindow{Start: start, End: end}, nil
}

// Contains reports whether t falls inside the window, inclusive on both ends
func (w ReportWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// MonthYear returns the human-readable month, e.g. "January 2026"
func (w ReportWindow) MonthYear() string {
	return w.Start.Format("January 2006")
}

// FileDate returns the end date used in report file names
func (w ReportWindow) FileDate() string {
	return w.End.Format("2006-01-02")
}
