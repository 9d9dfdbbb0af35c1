package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"kasa/internal/core"
	"kasa/internal/events"
	"kasa/internal/store"
)

// Service orchestrates the day aggregator and balance engine on top of
// the document store, publishing change events over AMQP.
type Service struct {
	store  store.Client
	events *events.Client
}

func New(storeClient store.Client, eventsClient *events.Client) *Service {
	return &Service{
		store:  storeClient,
		events: eventsClient,
	}
}

// Overview is the full read model for one ledger: balance plus the
// days visible through the requested date window, newest first.
type Overview struct {
	Ledger         core.LedgerType
	InitialBalance decimal.Decimal
	Balance        decimal.Decimal
	Days           []core.Day
}

// LoadDays returns the ledger's logical days, duplicates per date
// already reconciled. Malformed documents are skipped, not fatal.
func (s *Service) LoadDays(ctx context.Context, ledger core.LedgerType) ([]core.Day, error) {
	days, err := s.loadRawDays(ctx, ledger)
	if err != nil {
		return nil, err
	}
	return core.MergeDaysByDate(days), nil
}

// loadRawDays returns one core.Day per stored document, without
// merging duplicate dates. Mutations work on raw documents so the
// no-duplicate-date rule is enforced at write time.
func (s *Service) loadRawDays(ctx context.Context, ledger core.LedgerType) ([]core.Day, error) {
	if s.store == nil {
		return nil, store.ErrNotConfigured
	}
	if !ledger.IsValid() {
		return nil, core.ErrInvalidLedger
	}

	docs, err := s.store.List(ctx, store.CollectionDays, store.Filter{"type": ledger.String()})
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}

	days := make([]core.Day, 0, len(docs))
	for _, doc := range docs {
		day, err := decodeDay(doc)
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed day document",
				"id", doc.ID, "error", err)
			continue
		}
		days = append(days, day)
	}
	return days, nil
}

// UpsertEntry records one entry on the given date, creating the day
// document if the date has none yet and appending to the existing one
// otherwise. One date never grows a second document.
func (s *Service) UpsertEntry(ctx context.Context, ledger core.LedgerType, dateStr string, kind core.EntryKind, name string, amount decimal.Decimal) (string, error) {
	date, err := core.ParseDate(dateStr)
	if err != nil {
		return "", err
	}
	if !ledger.Allows(kind) {
		if kind != core.KindDeposit && kind != core.KindWithdrawal && kind != core.KindPersonnel {
			return "", core.ErrInvalidKind
		}
		return "", core.ErrKindNotAllowed
	}

	entry := core.Entry{
		ID:     uuid.NewString(),
		Name:   name,
		Amount: amount,
	}
	if err := entry.Validate(); err != nil {
		return "", err
	}

	days, err := s.loadRawDays(ctx, ledger)
	if err != nil {
		return "", err
	}

	existing, found := findByDate(days, date)
	if !found {
		return s.createDayWithEntry(ctx, ledger, date, kind, entry)
	}

	now := time.Now().UTC()
	fields := map[string]any{"updatedAt": now}
	switch kind {
	case core.KindDeposit:
		fields["entries"] = nonNil(append(existing.Entries, entry))
	case core.KindWithdrawal:
		fields["withdrawals"] = nonNil(append(existing.Withdrawals, entry))
	case core.KindPersonnel:
		fields["personnelEntries"] = nonNil(append(existing.Personnel.Items, entry))
	}

	partial, err := encodePartial(fields)
	if err != nil {
		return "", err
	}
	if err := s.store.Update(ctx, store.CollectionDays, existing.ID, partial); err != nil {
		return "", fmt.Errorf("update day %s: %w", existing.ID, err)
	}

	s.publishDayChanged(ctx, ledger, existing.ID, date.String(), false)
	return existing.ID, nil
}

// AddPersonnelAmount merges a plain personnel cost amount into the
// date's day, adding to any scalar already recorded there.
func (s *Service) AddPersonnelAmount(ctx context.Context, ledger core.LedgerType, dateStr string, amount decimal.Decimal) (string, error) {
	if ledger != core.Personnel {
		return "", core.ErrKindNotAllowed
	}
	date, err := core.ParseDate(dateStr)
	if err != nil {
		return "", err
	}
	if err := core.ValidateAmount(amount); err != nil {
		return "", err
	}

	days, err := s.loadRawDays(ctx, ledger)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	existing, found := findByDate(days, date)
	if !found {
		day := core.Day{
			Ledger:    ledger,
			Date:      date,
			Personnel: core.ScalarPersonnel(amount),
			CreatedAt: now,
			UpdatedAt: now,
		}
		return s.createDay(ctx, ledger, day)
	}

	partial, err := encodePartial(map[string]any{
		"personnel": existing.Personnel.Scalar.Add(amount),
		"updatedAt": now,
	})
	if err != nil {
		return "", err
	}
	if err := s.store.Update(ctx, store.CollectionDays, existing.ID, partial); err != nil {
		return "", fmt.Errorf("update day %s: %w", existing.ID, err)
	}

	s.publishDayChanged(ctx, ledger, existing.ID, date.String(), false)
	return existing.ID, nil
}

// RemoveEntry deletes one sub-record from a day, searching deposits,
// withdrawals and personnel items in that order. A day left with no
// records at all is deleted outright.
func (s *Service) RemoveEntry(ctx context.Context, ledger core.LedgerType, dayID, entryID string) error {
	if s.store == nil {
		return store.ErrNotConfigured
	}

	days, err := s.loadRawDays(ctx, ledger)
	if err != nil {
		return err
	}
	day, found := findByID(days, dayID)
	if !found {
		return store.ErrNotFound
	}

	fields := map[string]any{}
	if entries, removed := removeEntry(day.Entries, entryID); removed {
		day.Entries = entries
		fields["entries"] = nonNil(entries)
	} else if withdrawals, removed := removeEntry(day.Withdrawals, entryID); removed {
		day.Withdrawals = withdrawals
		fields["withdrawals"] = nonNil(withdrawals)
	} else if personnel, removed := day.Personnel.Remove(entryID); removed {
		day.Personnel = personnel
		fields["personnelEntries"] = nonNil(personnel.Items)
	} else {
		return store.ErrNotFound
	}

	if day.IsEmpty() {
		return s.deleteDay(ctx, ledger, dayID)
	}

	fields["updatedAt"] = time.Now().UTC()
	partial, err := encodePartial(fields)
	if err != nil {
		return err
	}
	if err := s.store.Update(ctx, store.CollectionDays, dayID, partial); err != nil {
		return fmt.Errorf("update day %s: %w", dayID, err)
	}

	s.publishDayChanged(ctx, ledger, dayID, day.Date.String(), false)
	return nil
}

// DeleteDay removes a day document entirely. The day must belong to
// the given ledger; an id from another ledger reads as not found.
func (s *Service) DeleteDay(ctx context.Context, ledger core.LedgerType, dayID string) error {
	days, err := s.loadRawDays(ctx, ledger)
	if err != nil {
		return err
	}
	if _, found := findByID(days, dayID); !found {
		return store.ErrNotFound
	}
	return s.deleteDay(ctx, ledger, dayID)
}

// deleteDay issues the delete without re-checking ledger membership.
// Callers have already located the day in the ledger's documents.
func (s *Service) deleteDay(ctx context.Context, ledger core.LedgerType, dayID string) error {
	if err := s.store.Delete(ctx, store.CollectionDays, dayID); err != nil {
		return fmt.Errorf("delete day %s: %w", dayID, err)
	}
	s.publishDayChanged(ctx, ledger, dayID, "", true)
	return nil
}

// InitialBalance returns the ledger's starting amount. A ledger with
// no settings document yet reads as zero.
func (s *Service) InitialBalance(ctx context.Context, ledger core.LedgerType) (core.InitialBalance, error) {
	if s.store == nil {
		return core.InitialBalance{}, store.ErrNotConfigured
	}
	if !ledger.IsValid() {
		return core.InitialBalance{}, core.ErrInvalidLedger
	}

	docs, err := s.store.List(ctx, store.CollectionSettings, store.Filter{"type": ledger.String()})
	if err != nil {
		return core.InitialBalance{}, fmt.Errorf("list settings: %w", err)
	}
	if len(docs) == 0 {
		return core.InitialBalance{Ledger: ledger}, nil
	}

	settings, err := decodeSettings(docs[0])
	if err != nil {
		return core.InitialBalance{}, err
	}
	return settings, nil
}

// SaveInitialBalance sets the ledger's starting amount, creating the
// settings document on first use and updating it afterwards.
func (s *Service) SaveInitialBalance(ctx context.Context, ledger core.LedgerType, amount decimal.Decimal) error {
	if err := core.ValidateAmount(amount); err != nil {
		return err
	}

	current, err := s.InitialBalance(ctx, ledger)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if current.ID == "" {
		data, err := encodePartial(map[string]any{
			"type":           ledger.String(),
			"initialBalance": amount,
			"updatedAt":      now,
		})
		if err != nil {
			return err
		}
		if _, err := s.store.Create(ctx, store.CollectionSettings, data); err != nil {
			return fmt.Errorf("create settings: %w", err)
		}
		return nil
	}

	partial, err := encodePartial(map[string]any{
		"initialBalance": amount,
		"updatedAt":      now,
	})
	if err != nil {
		return err
	}
	if err := s.store.Update(ctx, store.CollectionSettings, current.ID, partial); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

// SaveBalanceSnapshot records the computed current balance on the
// settings document. The snapshot is informational only; reads always
// recompute from the day documents.
func (s *Service) SaveBalanceSnapshot(ctx context.Context, ledger core.LedgerType, amount decimal.Decimal) error {
	current, err := s.InitialBalance(ctx, ledger)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	fields := map[string]any{
		"currentBalance": amount,
		"snapshotAt":     now,
	}
	if current.ID == "" {
		fields["type"] = ledger.String()
		data, err := encodePartial(fields)
		if err != nil {
			return err
		}
		if _, err := s.store.Create(ctx, store.CollectionSettings, data); err != nil {
			return fmt.Errorf("create settings: %w", err)
		}
		return nil
	}

	partial, err := encodePartial(fields)
	if err != nil {
		return err
	}
	if err := s.store.Update(ctx, store.CollectionSettings, current.ID, partial); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

// CurrentBalance computes the ledger's balance across all of its days.
func (s *Service) CurrentBalance(ctx context.Context, ledger core.LedgerType) (decimal.Decimal, error) {
	var (
		days    []core.Day
		initial core.InitialBalance
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		days, err = s.LoadDays(gctx, ledger)
		return err
	})
	g.Go(func() error {
		var err error
		initial, err = s.InitialBalance(gctx, ledger)
		return err
	})
	if err := g.Wait(); err != nil {
		return decimal.Zero, err
	}

	return core.CurrentBalance(initial.Amount, days, ledger), nil
}

// Overview loads balance and days for one ledger in parallel and
// applies the requested date window to the day list.
func (s *Service) Overview(ctx context.Context, ledger core.LedgerType, window core.Window) (Overview, error) {
	var (
		days    []core.Day
		initial core.InitialBalance
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		days, err = s.LoadDays(gctx, ledger)
		return err
	})
	g.Go(func() error {
		var err error
		initial, err = s.InitialBalance(gctx, ledger)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	visible := core.FilterDays(days, window, time.Now().UTC())
	return Overview{
		Ledger:         ledger,
		InitialBalance: initial.Amount,
		Balance:        core.CurrentBalance(initial.Amount, days, ledger),
		Days:           core.SortDaysNewestFirst(visible),
	}, nil
}

// MonthSummary aggregates one calendar month of the ledger.
func (s *Service) MonthSummary(ctx context.Context, ledger core.LedgerType, month time.Month, year int) (core.MonthSummary, error) {
	days, err := s.LoadDays(ctx, ledger)
	if err != nil {
		return core.MonthSummary{}, err
	}
	return core.MonthStats(days, ledger, month, year), nil
}

// PersonStats returns per-person deposit totals across the ledger.
func (s *Service) PersonStats(ctx context.Context, ledger core.LedgerType) ([]core.PersonTotal, error) {
	days, err := s.LoadDays(ctx, ledger)
	if err != nil {
		return nil, err
	}
	return core.PersonTotals(days), nil
}

func (s *Service) createDayWithEntry(ctx context.Context, ledger core.LedgerType, date core.Date, kind core.EntryKind, entry core.Entry) (string, error) {
	now := time.Now().UTC()
	day := core.Day{
		Ledger:    ledger,
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	}
	switch kind {
	case core.KindDeposit:
		day.Entries = []core.Entry{entry}
	case core.KindWithdrawal:
		day.Withdrawals = []core.Entry{entry}
	case core.KindPersonnel:
		day.Personnel = core.ItemizedPersonnel([]core.Entry{entry})
	}
	return s.createDay(ctx, ledger, day)
}

func (s *Service) createDay(ctx context.Context, ledger core.LedgerType, day core.Day) (string, error) {
	data, err := encodeDay(day)
	if err != nil {
		return "", err
	}
	id, err := s.store.Create(ctx, store.CollectionDays, data)
	if err != nil {
		return "", fmt.Errorf("create day: %w", err)
	}
	s.publishDayChanged(ctx, ledger, id, day.Date.String(), false)
	return id, nil
}

// publishDayChanged notifies the balance worker. The write already
// succeeded, so a publish failure is logged and swallowed.
func (s *Service) publishDayChanged(ctx context.Context, ledger core.LedgerType, dayID, date string, deleted bool) {
	if s.events == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping day change message")
		return
	}
	msg := events.NewDayChangedMessage(ledger, dayID, date, deleted)
	if err := s.events.PublishDayChanged(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish day change message",
			"day_id", dayID, "error", err)
	}
}

func findByDate(days []core.Day, date core.Date) (core.Day, bool) {
	for _, day := range days {
		if day.Date.String() == date.String() {
			return day, true
		}
	}
	return core.Day{}, false
}

func findByID(days []core.Day, id string) (core.Day, bool) {
	for _, day := range days {
		if day.ID == id {
			return day, true
		}
	}
	return core.Day{}, false
}

func removeEntry(entries []core.Entry, id string) ([]core.Entry, bool) {
	for i, e := range entries {
		if e.ID == id {
			return append(entries[:i:i], entries[i+1:]...), true
		}
	}
	return entries, false
}
