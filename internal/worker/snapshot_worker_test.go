package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"kasa/internal/core"
	"kasa/internal/events"
	"kasa/internal/ledger"
	"kasa/internal/store"
	"kasa/internal/store/memory"
)

func TestRefreshAllStoresSnapshots(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	svc := ledger.New(mem, nil)

	if err := svc.SaveInitialBalance(ctx, core.Personnel, decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("SaveInitialBalance() error = %v", err)
	}
	if _, err := svc.UpsertEntry(ctx, core.Personnel, "2024-06-01", core.KindDeposit, "Olena", decimal.NewFromInt(500)); err != nil {
		t.Fatalf("UpsertEntry() error = %v", err)
	}

	w := NewSnapshotWorker(svc, nil)
	if err := w.RefreshAll(ctx); err != nil {
		t.Fatalf("RefreshAll() error = %v", err)
	}

	docs, err := mem.List(ctx, store.CollectionSettings, store.Filter{"type": core.Personnel.String()})
	if err != nil {
		t.Fatalf("list settings: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d settings documents, want 1", len(docs))
	}

	var settings struct {
		InitialBalance *decimal.Decimal `json:"initialBalance"`
		CurrentBalance *decimal.Decimal `json:"currentBalance"`
	}
	if err := json.Unmarshal(docs[0].Data, &settings); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if settings.CurrentBalance == nil || !settings.CurrentBalance.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("currentBalance = %v, want 1500", settings.CurrentBalance)
	}
	if settings.InitialBalance == nil || !settings.InitialBalance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("initialBalance = %v, want 1000 untouched", settings.InitialBalance)
	}
}

func TestHandleDayChangedSnapshotsOneLedger(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	svc := ledger.New(mem, nil)

	if _, err := svc.UpsertEntry(ctx, core.Operational, "2024-06-01", core.KindDeposit, "register", decimal.NewFromInt(700)); err != nil {
		t.Fatalf("UpsertEntry() error = %v", err)
	}

	w := NewSnapshotWorker(svc, nil)
	msg := events.NewDayChangedMessage(core.Operational, "some-day", "2024-06-01", false)
	if err := w.HandleDayChanged(ctx, msg); err != nil {
		t.Fatalf("HandleDayChanged() error = %v", err)
	}

	docs, err := mem.List(ctx, store.CollectionSettings, store.Filter{"type": core.Operational.String()})
	if err != nil {
		t.Fatalf("list settings: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d settings documents, want 1", len(docs))
	}

	var settings struct {
		CurrentBalance *decimal.Decimal `json:"currentBalance"`
	}
	if err := json.Unmarshal(docs[0].Data, &settings); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if settings.CurrentBalance == nil || !settings.CurrentBalance.Equal(decimal.NewFromInt(700)) {
		t.Errorf("currentBalance = %v, want 700", settings.CurrentBalance)
	}
}

func TestHandleDayChangedUnknownLedgerDropped(t *testing.T) {
	w := NewSnapshotWorker(ledger.New(memory.New(), nil), nil)
	msg := &events.DayChangedMessage{Ledger: core.LedgerType("bogus")}
	if err := w.HandleDayChanged(context.Background(), msg); err != nil {
		t.Errorf("HandleDayChanged() error = %v, want nil for unknown ledger", err)
	}
}
