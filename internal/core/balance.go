package core

import "github.com/shopspring/decimal"

// CurrentBalance computes the running balance for one ledger: the
// initial balance plus every day's deposits, minus withdrawals on the
// operational book or personnel costs on the personnel book.
//
// The function is pure and order-independent; callers are responsible
// for passing an already time-filtered day list when a window balance
// is wanted. Absent amounts count as zero.
func CurrentBalance(initial decimal.Decimal, days []Day, ledger LedgerType) decimal.Decimal {
	balance := initial
	for _, day := range days {
		balance = balance.Add(day.Deposits())
		switch ledger {
		case Operational:
			balance = balance.Sub(day.Withdrawn())
		case Personnel:
			balance = balance.Sub(day.Personnel.Total())
		}
	}
	return balance
}
