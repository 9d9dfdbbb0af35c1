package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// PersonTotal is one row of the per-person deposit leaderboard.
	PersonTotal struct {
		Name  string          `json:"name"`
		Total decimal.Decimal `json:"total"`
	}

	// MonthSummary aggregates one literal month of a ledger.
	MonthSummary struct {
		Month         time.Month      `json:"month"`
		Year          int             `json:"year"`
		TotalIncome   decimal.Decimal `json:"totalIncome"`
		TotalExpenses decimal.Decimal `json:"totalExpenses"`
		NetProfit     decimal.Decimal `json:"netProfit"`
		DaysCount     int             `json:"daysCount"`
	}
)

// PersonTotals sums deposit entries per person across the given days,
// sorted by total descending. Names compare exactly as entered.
func PersonTotals(days []Day) []PersonTotal {
	totals := make(map[string]decimal.Decimal)
	for _, day := range days {
		for _, e := range day.Entries {
			totals[e.Name] = totals[e.Name].Add(e.Amount)
		}
	}
	out := make([]PersonTotal, 0, len(totals))
	for name, total := range totals {
		out = append(out, PersonTotal{Name: name, Total: total})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// MonthStats aggregates income, expenses and net profit for one literal
// month of one ledger. Expenses are personnel costs on the personnel
// book and withdrawals on the operational book.
func MonthStats(days []Day, ledger LedgerType, month time.Month, year int) MonthSummary {
	monthDays := FilterDays(days, Window{Mode: WindowLiteralMonth, Month: month, Year: year}, time.Time{})

	income := decimal.Zero
	expenses := decimal.Zero
	for _, day := range monthDays {
		income = income.Add(day.Deposits())
		if ledger == Personnel {
			expenses = expenses.Add(day.Personnel.Total())
		} else {
			expenses = expenses.Add(day.Withdrawn())
		}
	}

	return MonthSummary{
		Month:         month,
		Year:          year,
		TotalIncome:   income,
		TotalExpenses: expenses,
		NetProfit:     income.Sub(expenses),
		DaysCount:     len(monthDays),
	}
}
