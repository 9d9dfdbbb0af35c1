package core

import (
	"errors"
	"strings"
	"testing"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"2024-02-29", false},
		{" 2024-01-01 ", false},
		{"2024-13-01", true},
		{"01.02.2024", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDate(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDate(%q) expected error, got %v", tt.in, d)
				}
				if !errors.Is(err, ErrValidation) {
					t.Errorf("ParseDate(%q) error %v, want validation kind", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tt.in, err)
			}
			if got := d.String(); got != strings.TrimSpace(tt.in) {
				t.Errorf("round trip = %q, want %q", got, strings.TrimSpace(tt.in))
			}
		})
	}
}

func TestLedgerTypeAllows(t *testing.T) {
	tests := []struct {
		ledger LedgerType
		kind   EntryKind
		want   bool
	}{
		{Personnel, KindDeposit, true},
		{Operational, KindDeposit, true},
		{Operational, KindWithdrawal, true},
		{Personnel, KindWithdrawal, false},
		{Personnel, KindPersonnel, true},
		{Operational, KindPersonnel, false},
		{Personnel, EntryKind("bogus"), false},
	}

	for _, tt := range tests {
		if got := tt.ledger.Allows(tt.kind); got != tt.want {
			t.Errorf("%s.Allows(%s) = %v, want %v", tt.ledger, tt.kind, got, tt.want)
		}
	}
}

func TestLedgerTypeIsValid(t *testing.T) {
	if !Personnel.IsValid() || !Operational.IsValid() {
		t.Error("known ledger types reported invalid")
	}
	if LedgerType("savings").IsValid() {
		t.Error("unknown ledger type reported valid")
	}
}

func TestEntryValidate(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		wantErr error
	}{
		{"valid", entry("Ivanenko", "500"), nil},
		{"empty name", Entry{Name: "  ", Amount: dec("10")}, ErrEmptyName},
		{"name too long", Entry{Name: strings.Repeat("a", 121), Amount: dec("10")}, ErrNameTooLong},
		{"negative amount", Entry{Name: "ok", Amount: dec("-1")}, ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDayIsEmpty(t *testing.T) {
	if !(Day{}).IsEmpty() {
		t.Error("zero day should be empty")
	}
	if (Day{Entries: []Entry{entry("a", "1")}}).IsEmpty() {
		t.Error("day with an entry should not be empty")
	}
	if (Day{Withdrawals: []Entry{entry("w", "1")}}).IsEmpty() {
		t.Error("day with a withdrawal should not be empty")
	}
	if (Day{Personnel: ScalarPersonnel(dec("1"))}).IsEmpty() {
		t.Error("day with personnel cost should not be empty")
	}
}

func TestPersonnelCostRemove(t *testing.T) {
	cost := ItemizedPersonnel([]Entry{entry("a", "10"), entry("b", "20")})

	reduced, removed := cost.Remove("a")
	if !removed {
		t.Fatal("expected removal of item a")
	}
	if !reduced.Total().Equal(dec("20")) {
		t.Errorf("Total after removal = %s, want 20", reduced.Total())
	}

	same, removed := cost.Remove("missing")
	if removed {
		t.Error("removal reported for unknown id")
	}
	if !same.Total().Equal(dec("30")) {
		t.Errorf("Total = %s, want 30", same.Total())
	}
}
