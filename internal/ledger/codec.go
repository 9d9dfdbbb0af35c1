package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"kasa/internal/core"
	"kasa/internal/store"
)

// dayDocument is the stored JSON shape of a day. Personnel cost comes
// in two shapes that may coexist on one document: a plain "personnel"
// number and an itemized "personnelEntries" list. The decoder accepts
// both; the encoder writes whichever parts are present.
type dayDocument struct {
	Type             string           `json:"type"`
	Date             string           `json:"date"`
	Entries          []core.Entry     `json:"entries,omitempty"`
	Withdrawals      []core.Entry     `json:"withdrawals,omitempty"`
	Personnel        *decimal.Decimal `json:"personnel,omitempty"`
	PersonnelEntries []core.Entry     `json:"personnelEntries,omitempty"`
	CreatedAt        time.Time        `json:"createdAt,omitempty"`
	UpdatedAt        time.Time        `json:"updatedAt,omitempty"`
}

// settingsDocument is the stored JSON shape of per-ledger settings: the
// user-set initial balance plus the last balance snapshot written by
// the worker.
type settingsDocument struct {
	Type           string           `json:"type"`
	InitialBalance *decimal.Decimal `json:"initialBalance,omitempty"`
	CurrentBalance *decimal.Decimal `json:"currentBalance,omitempty"`
	SnapshotAt     time.Time        `json:"snapshotAt,omitempty"`
	UpdatedAt      time.Time        `json:"updatedAt,omitempty"`
}

func decodeDay(doc store.Document) (core.Day, error) {
	var raw dayDocument
	if err := json.Unmarshal(doc.Data, &raw); err != nil {
		return core.Day{}, fmt.Errorf("decode day %s: %w", doc.ID, err)
	}

	date, err := core.ParseDate(raw.Date)
	if err != nil {
		return core.Day{}, fmt.Errorf("day %s: %w", doc.ID, err)
	}

	day := core.Day{
		ID:          doc.ID,
		Ledger:      core.LedgerType(raw.Type),
		Date:        date,
		Entries:     raw.Entries,
		Withdrawals: raw.Withdrawals,
		Personnel:   core.ItemizedPersonnel(raw.PersonnelEntries),
		CreatedAt:   raw.CreatedAt,
		UpdatedAt:   raw.UpdatedAt,
	}
	if raw.Personnel != nil {
		day.Personnel.Scalar = *raw.Personnel
	}
	return day, nil
}

func encodeDay(day core.Day) (json.RawMessage, error) {
	raw := dayDocument{
		Type:             day.Ledger.String(),
		Date:             day.Date.String(),
		Entries:          day.Entries,
		Withdrawals:      day.Withdrawals,
		PersonnelEntries: day.Personnel.Items,
		CreatedAt:        day.CreatedAt,
		UpdatedAt:        day.UpdatedAt,
	}
	if !day.Personnel.Scalar.IsZero() {
		scalar := day.Personnel.Scalar
		raw.Personnel = &scalar
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode day: %w", err)
	}
	return data, nil
}

func decodeSettings(doc store.Document) (core.InitialBalance, error) {
	var raw settingsDocument
	if err := json.Unmarshal(doc.Data, &raw); err != nil {
		return core.InitialBalance{}, fmt.Errorf("decode settings %s: %w", doc.ID, err)
	}
	settings := core.InitialBalance{
		ID:        doc.ID,
		Ledger:    core.LedgerType(raw.Type),
		UpdatedAt: raw.UpdatedAt,
	}
	if raw.InitialBalance != nil {
		settings.Amount = *raw.InitialBalance
	}
	return settings, nil
}

// encodePartial builds a top-level merge document. Emptied lists are
// written explicitly as [] so the merge removes the old contents
// instead of leaving them behind.
func encodePartial(fields map[string]any) (json.RawMessage, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode partial document: %w", err)
	}
	return data, nil
}

// nonNil guards partial updates: an emptied list must serialize as [],
// never as null.
func nonNil(entries []core.Entry) []core.Entry {
	if entries == nil {
		return []core.Entry{}
	}
	return entries
}
