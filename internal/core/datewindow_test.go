package core

import (
	"testing"
	"time"
)

func day(date Date) Day {
	return Day{ID: date.String(), Date: date}
}

func dayIDs(days []Day) []string {
	ids := make([]string, len(days))
	for i, d := range days {
		ids[i] = d.ID
	}
	return ids
}

func sameIDs(a []string, b ...string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilterDaysLiteralMonth(t *testing.T) {
	days := []Day{
		day(NewDate(2024, 1, 5)),
		day(NewDate(2024, 2, 10)),
		day(NewDate(2024, 2, 28)),
	}

	w := Window{Mode: WindowLiteralMonth, Month: time.February, Year: 2024}
	got := SortDaysNewestFirst(FilterDays(days, w, time.Now()))

	if !sameIDs(dayIDs(got), "2024-02-28", "2024-02-10") {
		t.Errorf("literalMonth February 2024 = %v, want [2024-02-28 2024-02-10]", dayIDs(got))
	}
}

func TestFilterDaysRelativeWindows(t *testing.T) {
	// Wednesday 2024-06-12; the week started Monday 2024-06-10.
	now := time.Date(2024, 6, 12, 15, 0, 0, 0, time.UTC)

	days := []Day{
		day(NewDate(2024, 6, 9)),  // Sunday of previous week
		day(NewDate(2024, 6, 10)), // Monday, in week
		day(NewDate(2024, 6, 12)), // today
		day(NewDate(2024, 5, 31)), // previous month
		day(NewDate(2024, 6, 1)),  // first of month
		day(NewDate(2023, 12, 31)),
		day(NewDate(2024, 1, 1)),
	}

	tests := []struct {
		name string
		mode WindowMode
		want []string
	}{
		{"week starts Monday", WindowWeek, []string{"2024-06-10", "2024-06-12"}},
		{"month from first day", WindowMonth, []string{"2024-06-10", "2024-06-12", "2024-06-01"}},
		{"year from January 1", WindowYear, []string{"2024-06-09", "2024-06-10", "2024-06-12", "2024-05-31", "2024-06-01", "2024-01-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dayIDs(FilterDays(days, Window{Mode: tt.mode}, now))
			if !sameIDs(got, tt.want...) {
				t.Errorf("FilterDays(%s) = %v, want %v", tt.mode, got, tt.want)
			}
		})
	}
}

func TestFilterDaysCustomRangeInclusive(t *testing.T) {
	days := []Day{
		day(NewDate(2024, 3, 1)),
		day(NewDate(2024, 3, 15)),
		day(NewDate(2024, 3, 31)),
		day(NewDate(2024, 4, 1)),
	}

	w := Window{Mode: WindowCustom, From: NewDate(2024, 3, 1), To: NewDate(2024, 3, 31)}
	got := dayIDs(FilterDays(days, w, time.Now()))
	if !sameIDs(got, "2024-03-01", "2024-03-15", "2024-03-31") {
		t.Errorf("custom range = %v, want the three March days", got)
	}
}

func TestFilterDaysCustomMissingBoundFallsBackToAll(t *testing.T) {
	days := []Day{day(NewDate(2024, 3, 1)), day(NewDate(2025, 7, 2))}

	tests := []struct {
		name string
		w    Window
	}{
		{"missing from", Window{Mode: WindowCustom, To: NewDate(2024, 3, 31)}},
		{"missing to", Window{Mode: WindowCustom, From: NewDate(2024, 3, 1)}},
		{"missing both", Window{Mode: WindowCustom}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterDays(days, tt.w, time.Now())
			if len(got) != len(days) {
				t.Errorf("got %d days, want all %d", len(got), len(days))
			}
		})
	}
}

func TestSortDaysNewestFirstDoesNotMutateInput(t *testing.T) {
	days := []Day{day(NewDate(2024, 1, 1)), day(NewDate(2024, 1, 3)), day(NewDate(2024, 1, 2))}

	sorted := SortDaysNewestFirst(days)
	if !sameIDs(dayIDs(sorted), "2024-01-03", "2024-01-02", "2024-01-01") {
		t.Errorf("sorted = %v", dayIDs(sorted))
	}
	if !sameIDs(dayIDs(days), "2024-01-01", "2024-01-03", "2024-01-02") {
		t.Errorf("input mutated: %v", dayIDs(days))
	}
}

func TestParseWindowMode(t *testing.T) {
	if _, err := ParseWindowMode("fortnight"); err == nil {
		t.Error("expected error for unknown mode")
	}
	mode, err := ParseWindowMode("")
	if err != nil || mode != WindowAll {
		t.Errorf("empty mode = (%s, %v), want (all, nil)", mode, err)
	}
}

func TestMonthCursorTransitions(t *testing.T) {
	tests := []struct {
		name string
		in   MonthCursor
		move func(MonthCursor) MonthCursor
		want MonthCursor
	}{
		{"prev mid-year", MonthCursor{time.June, 2024}, MonthCursor.Prev, MonthCursor{time.May, 2024}},
		{"prev january rolls year", MonthCursor{time.January, 2024}, MonthCursor.Prev, MonthCursor{time.December, 2023}},
		{"next mid-year", MonthCursor{time.June, 2024}, MonthCursor.Next, MonthCursor{time.July, 2024}},
		{"next december rolls year", MonthCursor{time.December, 2024}, MonthCursor.Next, MonthCursor{time.January, 2025}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.move(tt.in); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMonthCursorCurrent(t *testing.T) {
	now := time.Date(2024, 8, 20, 10, 0, 0, 0, time.UTC)
	c := CurrentMonth(now)
	if c.Month != time.August || c.Year != 2024 {
		t.Fatalf("CurrentMonth = %v", c)
	}
	if !c.IsCurrent(now) {
		t.Error("IsCurrent(now) = false, want true")
	}
	if c.Prev().IsCurrent(now) {
		t.Error("previous month reported as current")
	}
}
