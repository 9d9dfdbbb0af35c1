package events

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"kasa/internal/core"
)

// Message kinds carried on the change-event queue.
const (
	KindDayChanged     = "day.changed"
	KindBalanceUpdated = "balance.updated"
)

// DayChangedMessage notifies consumers that a day document was created,
// updated or deleted. Consumers re-read the day from the store; the
// message carries identifiers only.
type DayChangedMessage struct {
	Ledger    core.LedgerType `json:"ledger"`
	DayID     string          `json:"dayId"`
	Date      string          `json:"date"`
	Deleted   bool            `json:"deleted,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// BalanceUpdatedMessage notifies consumers that a ledger's initial
// balance setting changed.
type BalanceUpdatedMessage struct {
	Ledger    core.LedgerType `json:"ledger"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

// envelope wraps every published message with its kind so a single
// queue can carry both.
type envelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

func NewDayChangedMessage(ledger core.LedgerType, dayID, date string, deleted bool) *DayChangedMessage {
	return &DayChangedMessage{
		Ledger:    ledger,
		DayID:     dayID,
		Date:      date,
		Deleted:   deleted,
		Timestamp: time.Now(),
	}
}

func NewBalanceUpdatedMessage(ledger core.LedgerType, amount decimal.Decimal) *BalanceUpdatedMessage {
	return &BalanceUpdatedMessage{
		Ledger:    ledger,
		Amount:    amount,
		Timestamp: time.Now(),
	}
}

func wrap(kind string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Kind: kind, Payload: body})
}

func unwrap(body []byte) (string, json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", nil, err
	}
	return env.Kind, env.Payload, nil
}
