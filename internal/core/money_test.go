package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"12.34", "12.34", false},
		{"12,34", "12.34", false},
		{" 42 ", "42", false},
		{"0", "0", false},
		{"999999999", "999999999", false},
		{"", "", true},
		{"abc", "", true},
		{"-5", "", true},
		{"1000000000", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAmount(%q) expected error, got %s", tt.in, got)
				}
				if !errors.Is(err, ErrValidation) {
					t.Errorf("ParseAmount(%q) error %v, want validation kind", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.in, err)
			}
			if !got.Equal(dec(tt.want)) {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeAmountClamp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"-5", "0"},
		{"1000000000000", "999999999"},
		{"abc", "0"},
		{"42", "42"},
		{"", "0"},
		{"12,50", "12.5"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeAmount(tt.in); !got.Equal(dec(tt.want)) {
				t.Errorf("SanitizeAmount(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestClampAmount(t *testing.T) {
	if got := ClampAmount(dec("-0.01")); !got.IsZero() {
		t.Errorf("ClampAmount(-0.01) = %s, want 0", got)
	}
	if got := ClampAmount(dec("999999999.01")); !got.Equal(MaxAmount) {
		t.Errorf("ClampAmount(999999999.01) = %s, want %s", got, MaxAmount)
	}
	if got := ClampAmount(dec("123.45")); !got.Equal(dec("123.45")) {
		t.Errorf("ClampAmount(123.45) = %s, want 123.45", got)
	}
}

func TestValidateAmount(t *testing.T) {
	if err := ValidateAmount(decimal.Zero); err != nil {
		t.Errorf("ValidateAmount(0) = %v, want nil", err)
	}
	if err := ValidateAmount(dec("-1")); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("ValidateAmount(-1) = %v, want ErrInvalidAmount", err)
	}
	if err := ValidateAmount(MaxAmount.Add(decimal.New(1, 0))); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("ValidateAmount(max+1) = %v, want ErrInvalidAmount", err)
	}
}

func TestFormatUAH(t *testing.T) {
	got := FormatUAH(dec("1234.5"))
	if got == "" {
		t.Fatal("FormatUAH returned empty string")
	}
	// The exact layout belongs to go-money; pin only that the minor
	// units survived the shift.
	if want := FormatUAH(dec("1234.50")); got != want {
		t.Errorf("FormatUAH(1234.5) = %q, FormatUAH(1234.50) = %q, want equal", got, want)
	}
}
