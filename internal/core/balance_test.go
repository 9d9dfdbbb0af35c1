package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func entry(name, amount string) Entry {
	return Entry{ID: name, Name: name, Amount: dec(amount)}
}

func TestCurrentBalancePersonnel(t *testing.T) {
	// Initial 1000; day A: +500 entry, -200 personnel; day B: +300 entry.
	days := []Day{
		{
			Date:      NewDate(2024, 3, 1),
			Entries:   []Entry{entry("Ivanenko", "500")},
			Personnel: ScalarPersonnel(dec("200")),
		},
		{
			Date:    NewDate(2024, 3, 2),
			Entries: []Entry{entry("Petrenko", "300")},
		},
	}

	got := CurrentBalance(dec("1000"), days, Personnel)
	if !got.Equal(dec("1600")) {
		t.Errorf("CurrentBalance() = %s, want 1600", got)
	}
}

func TestCurrentBalanceOperational(t *testing.T) {
	days := []Day{
		{
			Date:        NewDate(2024, 3, 1),
			Entries:     []Entry{entry("x", "1000")},
			Withdrawals: []Entry{entry("y", "400")},
		},
	}

	got := CurrentBalance(decimal.Zero, days, Operational)
	if !got.Equal(dec("600")) {
		t.Errorf("CurrentBalance() = %s, want 600", got)
	}
}

func TestCurrentBalanceIsPureAndOrderIndependent(t *testing.T) {
	days := []Day{
		{Date: NewDate(2024, 1, 1), Entries: []Entry{entry("a", "10.50")}},
		{Date: NewDate(2024, 1, 2), Entries: []Entry{entry("b", "20")}, Personnel: ScalarPersonnel(dec("5"))},
		{Date: NewDate(2024, 1, 3), Entries: []Entry{entry("c", "0.25")}, Personnel: ItemizedPersonnel([]Entry{entry("d", "3")})},
	}

	first := CurrentBalance(dec("100"), days, Personnel)
	second := CurrentBalance(dec("100"), days, Personnel)
	if !first.Equal(second) {
		t.Fatalf("same inputs gave %s then %s", first, second)
	}

	reversed := []Day{days[2], days[0], days[1]}
	if got := CurrentBalance(dec("100"), reversed, Personnel); !got.Equal(first) {
		t.Errorf("reordered days gave %s, want %s", got, first)
	}

	want := dec("100").Add(dec("30.75")).Sub(dec("8"))
	if !first.Equal(want) {
		t.Errorf("CurrentBalance() = %s, want %s", first, want)
	}
}

func TestCurrentBalanceAbsentFieldsCountAsZero(t *testing.T) {
	days := []Day{
		{Date: NewDate(2024, 2, 1)}, // nothing recorded
		{Date: NewDate(2024, 2, 2), Entries: []Entry{entry("a", "7")}},
	}

	for _, ledger := range []LedgerType{Personnel, Operational} {
		if got := CurrentBalance(decimal.Zero, days, ledger); !got.Equal(dec("7")) {
			t.Errorf("ledger %s: CurrentBalance() = %s, want 7", ledger, got)
		}
	}
}

func TestCurrentBalanceIgnoresOtherLedgerFields(t *testing.T) {
	// A personnel balance must never see withdrawals and vice versa,
	// even if a malformed document carries both.
	days := []Day{
		{
			Date:        NewDate(2024, 4, 1),
			Entries:     []Entry{entry("a", "100")},
			Withdrawals: []Entry{entry("w", "30")},
			Personnel:   ScalarPersonnel(dec("20")),
		},
	}

	if got := CurrentBalance(decimal.Zero, days, Personnel); !got.Equal(dec("80")) {
		t.Errorf("personnel balance = %s, want 80", got)
	}
	if got := CurrentBalance(decimal.Zero, days, Operational); !got.Equal(dec("70")) {
		t.Errorf("operational balance = %s, want 70", got)
	}
}

func TestPersonnelCostTotalUnifiesShapes(t *testing.T) {
	tests := []struct {
		name string
		cost PersonnelCost
		want string
	}{
		{"zero", PersonnelCost{}, "0"},
		{"scalar only", ScalarPersonnel(dec("200")), "200"},
		{"itemized only", ItemizedPersonnel([]Entry{entry("a", "50"), entry("b", "70")}), "120"},
		{"both shapes merged", ScalarPersonnel(dec("100")).Append(entry("a", "25")), "125"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cost.Total(); !got.Equal(dec(tt.want)) {
				t.Errorf("Total() = %s, want %s", got, tt.want)
			}
		})
	}
}
