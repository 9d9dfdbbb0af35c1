package http

import (
	"container/list"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kasa/internal/core"
	"kasa/internal/ledger"
	applog "kasa/internal/log"
	"kasa/internal/store"
)

type (
	entryResponse struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Amount    string `json:"amount"`
		Formatted string `json:"formatted"`
	}

	dayResponse struct {
		ID               string          `json:"id"`
		Date             string          `json:"date"`
		Entries          []entryResponse `json:"entries"`
		Withdrawals      []entryResponse `json:"withdrawals"`
		PersonnelTotal   string          `json:"personnelTotal"`
		PersonnelEntries []entryResponse `json:"personnelEntries"`
	}

	overviewResponse struct {
		Ledger         string        `json:"ledger"`
		InitialBalance string        `json:"initialBalance"`
		Balance        string        `json:"balance"`
		Formatted      string        `json:"formatted"`
		Days           []dayResponse `json:"days"`
	}

	createEntryRequest struct {
		Ledger string `json:"ledger"`
		Date   string `json:"date"`
		Kind   string `json:"kind"`
		Name   string `json:"name"`
		Amount string `json:"amount"`
	}

	addPersonnelRequest struct {
		Ledger string `json:"ledger"`
		Date   string `json:"date"`
		Amount string `json:"amount"`
	}

	putBalanceRequest struct {
		Ledger string `json:"ledger"`
		Amount string `json:"amount"`
	}

	balanceResponse struct {
		Ledger         string `json:"ledger"`
		InitialBalance string `json:"initialBalance"`
		Balance        string `json:"balance"`
		Formatted      string `json:"formatted"`
	}

	monthStatsResponse struct {
		Ledger        string `json:"ledger"`
		Month         int    `json:"month"`
		Year          int    `json:"year"`
		TotalIncome   string `json:"totalIncome"`
		TotalExpenses string `json:"totalExpenses"`
		NetProfit     string `json:"netProfit"`
		DaysCount     int    `json:"daysCount"`
	}

	personStatsResponse struct {
		Name  string `json:"name"`
		Total string `json:"total"`
	}

	idResponse struct {
		ID string `json:"id"`
	}

	errorResponse struct {
		Error string `json:"error"`
	}
)

func (s *Server) handleListDays(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ledgerType, err := ledgerParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	window, err := windowParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	overview, err := s.svc.Overview(ctx, ledgerType, window)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOverviewResponse(overview))
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createEntryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ledgerType := core.LedgerType(req.Ledger)
	if !ledgerType.IsValid() {
		writeError(w, r, core.ErrInvalidLedger)
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, err := s.svc.UpsertEntry(ctx, ledgerType, req.Date, core.EntryKind(req.Kind), strings.TrimSpace(req.Name), amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.structured.LogDayChanged(ctx, applog.OpCreate, ledgerType.String(), id, req.Date)
	s.invalidateSummaries(ledgerType, req.Date)
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (s *Server) handleAddPersonnel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addPersonnelRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ledgerType := core.LedgerType(req.Ledger)
	if !ledgerType.IsValid() {
		writeError(w, r, core.ErrInvalidLedger)
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, err := s.svc.AddPersonnelAmount(ctx, ledgerType, req.Date, amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.structured.LogDayChanged(ctx, applog.OpUpdate, ledgerType.String(), id, req.Date)
	s.invalidateSummaries(ledgerType, req.Date)
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (s *Server) handleDeleteDay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ledgerType, err := ledgerParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.svc.DeleteDay(ctx, ledgerType, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}

	s.structured.LogDayChanged(ctx, applog.OpDelete, ledgerType.String(), r.PathValue("id"), "")
	s.invalidateAllSummaries(ledgerType)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ledgerType, err := ledgerParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.svc.RemoveEntry(ctx, ledgerType, r.PathValue("id"), r.PathValue("entryID")); err != nil {
		writeError(w, r, err)
		return
	}

	s.structured.LogDayChanged(ctx, applog.OpUpdate, ledgerType.String(), r.PathValue("id"), "")
	s.invalidateAllSummaries(ledgerType)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ledgerType, err := ledgerParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	initial, err := s.svc.InitialBalance(ctx, ledgerType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	balance, err := s.svc.CurrentBalance(ctx, ledgerType)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{
		Ledger:         ledgerType.String(),
		InitialBalance: initial.Amount.String(),
		Balance:        balance.String(),
		Formatted:      core.FormatUAH(balance),
	})
}

func (s *Server) handlePutBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req putBalanceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ledgerType := core.LedgerType(req.Ledger)
	if !ledgerType.IsValid() {
		writeError(w, r, core.ErrInvalidLedger)
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.svc.SaveInitialBalance(ctx, ledgerType, amount); err != nil {
		writeError(w, r, err)
		return
	}

	balance, err := s.svc.CurrentBalance(ctx, ledgerType)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{
		Ledger:         ledgerType.String(),
		InitialBalance: amount.String(),
		Balance:        balance.String(),
		Formatted:      core.FormatUAH(balance),
	})
}

func (s *Server) handlePersonStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ledgerType, err := ledgerParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	totals, err := s.svc.PersonStats(ctx, ledgerType)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]personStatsResponse, 0, len(totals))
	for _, t := range totals {
		out = append(out, personStatsResponse{Name: t.Name, Total: t.Total.String()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMonthStats(w http.ResponseWriter, r *http.Request) {
	ledgerType, err := ledgerParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	month, year, err := monthYearParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := s.getMonthSummary(r, ledgerType, month, year)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, monthStatsResponse{
		Ledger:        ledgerType.String(),
		Month:         int(summary.Month),
		Year:          summary.Year,
		TotalIncome:   summary.TotalIncome.String(),
		TotalExpenses: summary.TotalExpenses.String(),
		NetProfit:     summary.NetProfit.String(),
		DaysCount:     summary.DaysCount,
	})
}

func (s *Server) getMonthSummary(r *http.Request, ledgerType core.LedgerType, month time.Month, year int) (core.MonthSummary, error) {
	key := s.summaryKey(ledgerType, year, int(month))

	// Check cache first
	if data, found := s.summaryCache.Get(key); found {
		slog.DebugContext(r.Context(), "Summary cache hit", "ledger", ledgerType, "year", year, "month", month)
		return data, nil
	}

	summary, err := s.svc.MonthSummary(r.Context(), ledgerType, month, year)
	if err != nil {
		return core.MonthSummary{}, err
	}

	// Cache the result
	s.summaryCache.Set(key, summary)
	return summary, nil
}

func (s *Server) summaryKey(ledgerType core.LedgerType, year, month int) string {
	return ledgerType.String() + "-" + strconv.Itoa(year) + "-" + strconv.Itoa(month)
}

// invalidateSummaries drops the cached summary for the written month.
func (s *Server) invalidateSummaries(ledgerType core.LedgerType, dateStr string) {
	date, err := core.ParseDate(dateStr)
	if err != nil {
		s.invalidateAllSummaries(ledgerType)
		return
	}
	s.summaryCache.Delete(s.summaryKey(ledgerType, date.Year(), date.Month()))
}

// invalidateAllSummaries drops every cached summary for the ledger.
// Deletions do not carry a date, so the whole ledger is flushed.
func (s *Server) invalidateAllSummaries(ledgerType core.LedgerType) {
	s.summaryCache.mu.Lock()
	defer s.summaryCache.mu.Unlock()

	prefix := ledgerType.String() + "-"
	var toRemove []*list.Element
	for elem := s.summaryCache.lru.Front(); elem != nil; elem = elem.Next() {
		item := elem.Value.(*cacheItem[core.MonthSummary])
		if strings.HasPrefix(item.key, prefix) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		s.summaryCache.removeElement(elem)
	}
}

func ledgerParam(r *http.Request) (core.LedgerType, error) {
	lt := core.LedgerType(strings.TrimSpace(r.URL.Query().Get("ledger")))
	if !lt.IsValid() {
		return "", core.ErrInvalidLedger
	}
	return lt, nil
}

func windowParams(r *http.Request) (core.Window, error) {
	q := r.URL.Query()

	mode, err := core.ParseWindowMode(strings.TrimSpace(q.Get("window")))
	if err != nil {
		return core.Window{}, err
	}
	w := core.Window{Mode: mode}

	switch mode {
	case core.WindowCustom:
		if v := strings.TrimSpace(q.Get("from")); v != "" {
			from, err := core.ParseDate(v)
			if err != nil {
				return core.Window{}, err
			}
			w.From = from
		}
		if v := strings.TrimSpace(q.Get("to")); v != "" {
			to, err := core.ParseDate(v)
			if err != nil {
				return core.Window{}, err
			}
			w.To = to
		}
	case core.WindowLiteralMonth:
		month, year, err := monthYearParams(r)
		if err != nil {
			return core.Window{}, err
		}
		w.Month = month
		w.Year = year
	}

	return w, nil
}

// monthYearParams reads the optional month and year query parameters,
// defaulting to the current month. Out-of-range values are rejected
// rather than silently corrected.
func monthYearParams(r *http.Request) (time.Month, int, error) {
	now := time.Now()
	month := now.Month()
	year := now.Year()

	q := r.URL.Query()
	if v := strings.TrimSpace(q.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, fmt.Errorf("%w: month %q", core.ErrValidation, v)
		}
		month = time.Month(m)
	}
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1970 || y > 9999 {
			return 0, 0, fmt.Errorf("%w: year %q", core.ErrValidation, v)
		}
		year = y
	}
	return month, year, nil
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errBadRequest
	}
	return nil
}

var errBadRequest = errors.New("malformed request body")

func toOverviewResponse(o ledger.Overview) overviewResponse {
	resp := overviewResponse{
		Ledger:         o.Ledger.String(),
		InitialBalance: o.InitialBalance.String(),
		Balance:        o.Balance.String(),
		Formatted:      core.FormatUAH(o.Balance),
		Days:           make([]dayResponse, 0, len(o.Days)),
	}
	for _, day := range o.Days {
		resp.Days = append(resp.Days, dayResponse{
			ID:               day.ID,
			Date:             day.Date.String(),
			Entries:          toEntryResponses(day.Entries),
			Withdrawals:      toEntryResponses(day.Withdrawals),
			PersonnelTotal:   day.Personnel.Total().String(),
			PersonnelEntries: toEntryResponses(day.Personnel.Items),
		})
	}
	return resp
}

func toEntryResponses(entries []core.Entry) []entryResponse {
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse{
			ID:        e.ID,
			Name:      e.Name,
			Amount:    e.Amount.String(),
			Formatted: core.FormatUAH(e.Amount),
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses: validation failures
// are 422, missing documents 404, a missing store 503, everything else
// a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errBadRequest):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, store.ErrNotConfigured):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "document store not configured"})
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
