package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestPersonTotals(t *testing.T) {
	days := []Day{
		{Date: NewDate(2024, 5, 1), Entries: []Entry{entry("Ivanenko", "100"), entry("Petrenko", "50")}},
		{Date: NewDate(2024, 5, 2), Entries: []Entry{entry("Ivanenko", "200")}},
	}

	got := PersonTotals(days)
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0].Name != "Ivanenko" || !got[0].Total.Equal(dec("300")) {
		t.Errorf("top row = %s/%s, want Ivanenko/300", got[0].Name, got[0].Total)
	}
	if got[1].Name != "Petrenko" || !got[1].Total.Equal(dec("50")) {
		t.Errorf("second row = %s/%s, want Petrenko/50", got[1].Name, got[1].Total)
	}
}

func TestPersonTotalsEmpty(t *testing.T) {
	if got := PersonTotals(nil); len(got) != 0 {
		t.Errorf("PersonTotals(nil) = %v, want empty", got)
	}
}

func TestMonthStatsPersonnel(t *testing.T) {
	days := []Day{
		{Date: NewDate(2024, 3, 1), Entries: []Entry{entry("a", "500")}, Personnel: ScalarPersonnel(dec("200"))},
		{Date: NewDate(2024, 3, 2), Entries: []Entry{entry("b", "300")}},
		{Date: NewDate(2024, 4, 1), Entries: []Entry{entry("c", "999")}}, // other month
	}

	got := MonthStats(days, Personnel, time.March, 2024)
	if !got.TotalIncome.Equal(dec("800")) {
		t.Errorf("TotalIncome = %s, want 800", got.TotalIncome)
	}
	if !got.TotalExpenses.Equal(dec("200")) {
		t.Errorf("TotalExpenses = %s, want 200", got.TotalExpenses)
	}
	if !got.NetProfit.Equal(dec("600")) {
		t.Errorf("NetProfit = %s, want 600", got.NetProfit)
	}
	if got.DaysCount != 2 {
		t.Errorf("DaysCount = %d, want 2", got.DaysCount)
	}
}

func TestMonthStatsOperationalUsesWithdrawals(t *testing.T) {
	days := []Day{
		{
			Date:        NewDate(2024, 3, 5),
			Entries:     []Entry{entry("x", "1000")},
			Withdrawals: []Entry{entry("y", "400")},
			// Personnel must be ignored on the operational book.
			Personnel: ScalarPersonnel(dec("77")),
		},
	}

	got := MonthStats(days, Operational, time.March, 2024)
	if !got.TotalExpenses.Equal(dec("400")) {
		t.Errorf("TotalExpenses = %s, want 400", got.TotalExpenses)
	}
	if !got.NetProfit.Equal(dec("600")) {
		t.Errorf("NetProfit = %s, want 600", got.NetProfit)
	}
}

func TestMonthStatsEmptyMonth(t *testing.T) {
	got := MonthStats(nil, Personnel, time.July, 2024)
	if got.DaysCount != 0 || !got.TotalIncome.Equal(decimal.Zero) || !got.NetProfit.Equal(decimal.Zero) {
		t.Errorf("empty month stats = %+v", got)
	}
}
