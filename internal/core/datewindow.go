package core

import (
	"fmt"
	"sort"
	"time"
)

const (
	WindowAll          WindowMode = "all"
	WindowWeek         WindowMode = "week"
	WindowMonth        WindowMode = "month"
	WindowYear         WindowMode = "year"
	WindowCustom       WindowMode = "custom"
	WindowLiteralMonth WindowMode = "literalMonth"
)

type (
	WindowMode string

	// Window selects the subset of days relevant to a display period.
	// From/To apply to custom windows, Month/Year to literalMonth.
	Window struct {
		Mode  WindowMode
		From  Date
		To    Date
		Month time.Month
		Year  int
	}
)

// ParseWindowMode validates a mode string from the wire.
func ParseWindowMode(s string) (WindowMode, error) {
	switch WindowMode(s) {
	case WindowAll, WindowWeek, WindowMonth, WindowYear, WindowCustom, WindowLiteralMonth:
		return WindowMode(s), nil
	case "":
		return WindowAll, nil
	default:
		return "", fmt.Errorf("%w: unknown window mode %q", ErrValidation, s)
	}
}

// FilterDays returns the days falling inside the window. Relative
// windows (week, month, year) are anchored at now; literalMonth ignores
// now entirely. A custom window with either bound missing behaves as
// all, which is the documented fallback rather than an error.
//
// Sorting is deliberately not part of filtering; see
// SortDaysNewestFirst.
func FilterDays(days []Day, w Window, now time.Time) []Day {
	switch w.Mode {
	case WindowWeek:
		return filterRange(days, startOfWeek(now), now)
	case WindowMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return filterRange(days, start, now)
	case WindowYear:
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return filterRange(days, start, now)
	case WindowCustom:
		if w.From.IsZero() || w.To.IsZero() {
			return append([]Day(nil), days...)
		}
		from := time.Date(w.From.Year(), w.From.Time.Month(), w.From.Day(), 0, 0, 0, 0, time.UTC)
		to := time.Date(w.To.Year(), w.To.Time.Month(), w.To.Day(), 23, 59, 59, 0, time.UTC)
		return filterRange(days, from, to)
	case WindowLiteralMonth:
		out := make([]Day, 0, len(days))
		for _, d := range days {
			if d.Date.Time.Month() == w.Month && d.Date.Year() == w.Year {
				out = append(out, d)
			}
		}
		return out
	default: // WindowAll
		return append([]Day(nil), days...)
	}
}

// SortDaysNewestFirst orders days by date descending for display. It is
// a separate, composable step so filtering and ordering stay testable
// independently.
func SortDaysNewestFirst(days []Day) []Day {
	out := append([]Day(nil), days...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Time.After(out[j].Date.Time)
	})
	return out
}

func filterRange(days []Day, from, to time.Time) []Day {
	out := make([]Day, 0, len(days))
	for _, d := range days {
		t := d.Date.Time
		if !t.Before(from) && !t.After(to) {
			out = append(out, d)
		}
	}
	return out
}

// startOfWeek returns Monday 00:00:00 of the week containing t.
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 { // Sunday
		weekday = 7
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -(weekday - 1))
}

// MonthCursor is the month-by-month navigation state: a (month, year)
// pair moved one calendar month at a time.
type MonthCursor struct {
	Month time.Month
	Year  int
}

// CurrentMonth returns the cursor positioned at now's month.
func CurrentMonth(now time.Time) MonthCursor {
	return MonthCursor{Month: now.Month(), Year: now.Year()}
}

// Prev moves the cursor back one month, rolling the year when needed.
func (c MonthCursor) Prev() MonthCursor {
	if c.Month == time.January {
		return MonthCursor{Month: time.December, Year: c.Year - 1}
	}
	return MonthCursor{Month: c.Month - 1, Year: c.Year}
}

// Next moves the cursor forward one month, rolling the year when needed.
func (c MonthCursor) Next() MonthCursor {
	if c.Month == time.December {
		return MonthCursor{Month: time.January, Year: c.Year + 1}
	}
	return MonthCursor{Month: c.Month + 1, Year: c.Year}
}

// IsCurrent reports whether the cursor points at now's month.
func (c MonthCursor) IsCurrent(now time.Time) bool {
	return c.Month == now.Month() && c.Year == now.Year()
}

// Window returns the literalMonth window for the cursor position.
func (c MonthCursor) Window() Window {
	return Window{Mode: WindowLiteralMonth, Month: c.Month, Year: c.Year}
}
