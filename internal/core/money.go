// Package core holds the ledger domain: days, entries, balances and the
// calendar windows used to slice them.
//
// This file contains amount parsing, sanitization and display
// formatting. Amounts are decimals clamped to [0, 999_999_999].
package core

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// MaxAmount is the upper clamp bound for any single amount.
var MaxAmount = decimal.NewFromInt(999_999_999)

// ParseAmount converts a decimal string to an amount. It accepts both
// dot (12.34) and comma (12,34) separators. Returns an error for
// unparseable input, negative values, or values above MaxAmount.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-5")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateAmount rejects negative amounts and amounts above MaxAmount.
func ValidateAmount(d decimal.Decimal) error {
	if d.IsNegative() || d.GreaterThan(MaxAmount) {
		return ErrInvalidAmount
	}
	return nil
}

// SanitizeAmount coerces arbitrary user input into a safe amount:
// unparseable input becomes zero, everything else is clamped to
// [0, MaxAmount]. Never fails.
func SanitizeAmount(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return ClampAmount(d)
}

// ClampAmount clamps a decimal into [0, MaxAmount].
func ClampAmount(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(MaxAmount) {
		return MaxAmount
	}
	return d
}

// FormatUAH renders an amount as a hryvnia currency string for display,
// e.g. "1 234.50 ₴". Calculations always use the decimal value; this is
// presentation only.
func FormatUAH(d decimal.Decimal) string {
	cur := money.GetCurrency(money.UAH)
	minor := d.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), money.UAH).Display()
}
