package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Personnel   LedgerType = "personnel"
	Operational LedgerType = "operational"
)

// Entry kinds accepted by the day aggregator.
const (
	KindDeposit    EntryKind = "deposit"
	KindWithdrawal EntryKind = "withdrawal"
	KindPersonnel  EntryKind = "personnel"
)

type (
	LedgerType string

	EntryKind string

	// Date is a calendar date. The canonical wire form is YYYY-MM-DD.
	Date struct {
		time.Time
	}

	// Entry is a named monetary sub-record of a day: a deposit, a
	// withdrawal or a personnel cost line item.
	Entry struct {
		ID     string          `json:"id"`
		Name   string          `json:"name"`
		Amount decimal.Decimal `json:"amount"`
	}

	// Day is the persisted unit of data for one calendar date within
	// one ledger. Multiple physical documents per date may exist in the
	// store; the aggregator reconciles them into one logical day.
	Day struct {
		ID          string
		Ledger      LedgerType
		Date        Date
		Entries     []Entry
		Withdrawals []Entry
		Personnel   PersonnelCost
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// InitialBalance is the per-ledger starting amount. At most one
	// exists per ledger type; the settings service enforces that with a
	// find-or-create.
	InitialBalance struct {
		ID        string
		Ledger    LedgerType
		Amount    decimal.Decimal
		UpdatedAt time.Time
	}
)

// ErrValidation is the root of all input validation errors. Callers can
// classify any validation failure with errors.Is(err, ErrValidation).
var ErrValidation = errors.New("validation")

var (
	ErrInvalidAmount  = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrInvalidDate    = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrInvalidLedger  = fmt.Errorf("%w: invalid ledger type", ErrValidation)
	ErrInvalidKind    = fmt.Errorf("%w: invalid entry kind", ErrValidation)
	ErrEmptyName      = fmt.Errorf("%w: empty name", ErrValidation)
	ErrNameTooLong    = fmt.Errorf("%w: name too long", ErrValidation)
	ErrKindNotAllowed = fmt.Errorf("%w: entry kind not allowed for ledger", ErrValidation)
)

func (lt LedgerType) IsValid() bool {
	switch lt {
	case Personnel, Operational:
		return true
	default:
		return false
	}
}

func (lt LedgerType) String() string { return string(lt) }

// Allows reports whether an entry kind may be recorded on this ledger:
// withdrawals belong to the operational book, personnel costs to the
// personnel book, deposits to both.
func (lt LedgerType) Allows(k EntryKind) bool {
	switch k {
	case KindDeposit:
		return true
	case KindWithdrawal:
		return lt == Operational
	case KindPersonnel:
		return lt == Personnel
	default:
		return false
	}
}

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses the canonical YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string { return d.Format(dateLayout) }

// Year returns the calendar year.
func (d Date) Year() int { return d.Time.Year() }

// Month returns the calendar month as an int.
func (d Date) Month() int { return int(d.Time.Month()) }

// Day returns the day of the month.
func (d Date) Day() int { return d.Time.Day() }

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if len(e.Name) > 120 {
		return ErrNameTooLong
	}
	return ValidateAmount(e.Amount)
}

// Deposits returns the sum of the day's entry amounts.
func (d Day) Deposits() decimal.Decimal {
	return sumEntries(d.Entries)
}

// Withdrawn returns the sum of the day's withdrawal amounts.
func (d Day) Withdrawn() decimal.Decimal {
	return sumEntries(d.Withdrawals)
}

// IsEmpty reports whether the day carries no sub-records at all. Empty
// days are deleted rather than persisted as empty shells.
func (d Day) IsEmpty() bool {
	return len(d.Entries) == 0 && len(d.Withdrawals) == 0 && d.Personnel.IsZero()
}

func sumEntries(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}
