package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"kasa/internal/core"
	"kasa/internal/events"
	"kasa/internal/ledger"
)

// SnapshotWorker recomputes ledger balances when day documents change
// and writes the result onto the settings document. It reacts to day
// change events and additionally refreshes every ledger on a timer as
// a backup in case messages are lost.
type SnapshotWorker struct {
	svc    *ledger.Service
	events *events.Client
}

func NewSnapshotWorker(svc *ledger.Service, eventsClient *events.Client) *SnapshotWorker {
	return &SnapshotWorker{
		svc:    svc,
		events: eventsClient,
	}
}

// HandleDayChanged processes a single day change event from AMQP
func (w *SnapshotWorker) HandleDayChanged(ctx context.Context, msg *events.DayChangedMessage) error {
	slog.InfoContext(ctx, "Processing day change",
		"ledger", msg.Ledger,
		"day_id", msg.DayID,
		"deleted", msg.Deleted)

	if !msg.Ledger.IsValid() {
		slog.WarnContext(ctx, "Dropping day change with unknown ledger", "ledger", msg.Ledger)
		return nil
	}

	return w.snapshot(ctx, msg.Ledger)
}

// RefreshAll recomputes and stores the balance of every ledger. Used
// at startup and on the periodic timer.
func (w *SnapshotWorker) RefreshAll(ctx context.Context) error {
	for _, lt := range []core.LedgerType{core.Personnel, core.Operational} {
		if err := w.snapshot(ctx, lt); err != nil {
			return fmt.Errorf("refresh %s: %w", lt, err)
		}
	}
	return nil
}

// Run consumes day change events until ctx is done, refreshing all
// ledgers every interval as a safety net.
func (w *SnapshotWorker) Run(ctx context.Context, interval time.Duration) error {
	if err := w.RefreshAll(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup balance refresh failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	consumeErr := make(chan error, 1)
	if w.events != nil {
		go func() {
			consumeErr <- w.events.ConsumeMessages(ctx, events.Handlers{
				DayChanged: w.HandleDayChanged,
			})
		}()
	} else {
		slog.WarnContext(ctx, "AMQP client not available, running on timer only")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-consumeErr:
			return fmt.Errorf("consume day changes: %w", err)
		case <-ticker.C:
			if err := w.RefreshAll(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic balance refresh failed", "error", err)
			}
		}
	}
}

func (w *SnapshotWorker) snapshot(ctx context.Context, lt core.LedgerType) error {
	balance, err := w.svc.CurrentBalance(ctx, lt)
	if err != nil {
		return fmt.Errorf("compute balance: %w", err)
	}

	if err := w.svc.SaveBalanceSnapshot(ctx, lt, balance); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Balance snapshot stored",
		"ledger", lt,
		"balance", balance.String())

	w.publishBalanceUpdated(ctx, lt, balance)
	return nil
}

func (w *SnapshotWorker) publishBalanceUpdated(ctx context.Context, lt core.LedgerType, balance decimal.Decimal) {
	if w.events == nil {
		return
	}
	msg := events.NewBalanceUpdatedMessage(lt, balance)
	if err := w.events.PublishBalanceUpdated(ctx, msg); err != nil {
		// The snapshot is already stored, so only log
		slog.ErrorContext(ctx, "Failed to publish balance update",
			"ledger", lt, "error", err)
	}
}
