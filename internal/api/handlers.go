package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"educenter/internal/finance"
	"educenter/internal/logger"
	"educenter/internal/report"
	"educenter/pkg/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNotice(w http.ResponseWriter, r *http.Request) {
	log := logger.WithContext(r.Context())
	invoiceID := chi.URLParam(r, "invoiceID")

	snap, err := s.snapshot(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load ledger")
		writeError(w, http.StatusInternalServerError, "ledger unavailable")
		return
	}

	n, err := s.notices.Notice(snap, invoiceID)
	if errors.Is(err, finance.ErrInvoiceNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		log.Error().Err(err).Str("invoice_id", invoiceID).Msg("Failed to build notice")
		writeError(w, http.StatusInternalServerError, "failed to build notice")
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := report.RenderNotice(w, n); err != nil {
			log.Error().Err(err).Str("invoice_id", invoiceID).Msg("Failed to render notice")
		}
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// monthNotices is the response of the per-month notice listing.
type monthNotices struct {
	Month    string            `json:"month"`
	Count    int               `json:"count"`
	TotalDue decimal.Decimal   `json:"totalDue"`
	Notices  []*finance.Notice `json:"notices"`
}

func (s *Server) handleMonthNotices(w http.ResponseWriter, r *http.Request) {
	log := logger.WithContext(r.Context())
	month := chi.URLParam(r, "month")
	if _, err := time.Parse(models.MonthLayout, month); err != nil {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}

	snap, err := s.snapshot(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load ledger")
		writeError(w, http.StatusInternalServerError, "ledger unavailable")
		return
	}

	resp := monthNotices{Month: month, TotalDue: decimal.Zero, Notices: []*finance.Notice{}}
	for _, inv := range snap.InvoicesForMonth(month) {
		n, err := s.notices.Notice(snap, inv.ID)
		if err != nil {
			log.Error().Err(err).Str("invoice_id", inv.ID).Msg("Failed to build notice")
			writeError(w, http.StatusInternalServerError, "failed to build notice")
			return
		}
		resp.Notices = append(resp.Notices, n)
		resp.TotalDue = resp.TotalDue.Add(n.TotalDue)
	}
	resp.Count = len(resp.Notices)

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDebts(w http.ResponseWriter, r *http.Request) {
	log := logger.WithContext(r.Context())
	q := r.URL.Query()

	sortBy, err := report.ParseDebtSort(q.Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter := report.DebtFilter{
		ClassID:    q.Get("class"),
		Search:     q.Get("search"),
		Sort:       sortBy,
		Descending: q.Get("desc") == "true",
	}

	top := -1
	if v := q.Get("top"); v != "" {
		if top, err = strconv.Atoi(v); err != nil || top < 0 {
			writeError(w, http.StatusBadRequest, "top must be a non-negative integer")
			return
		}
	}

	snap, err := s.snapshot(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load ledger")
		writeError(w, http.StatusInternalServerError, "ledger unavailable")
		return
	}

	debts := report.Debts(snap, filter)
	if top >= 0 && len(debts.Rows) > top {
		debts.Rows = debts.Rows[:top]
	}

	if q.Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="BaoCaoCongNo.csv"`)
		if err := report.WriteDebtCSV(w, debts.Rows); err != nil {
			log.Error().Err(err).Msg("Failed to write debt CSV")
		}
		return
	}
	writeJSON(w, http.StatusOK, debts)
}

// revenueSummary is the response of the revenue report.
type revenueSummary struct {
	report.Collections
	TotalReceivables decimal.Decimal `json:"totalReceivables"`
}

func (s *Server) handleRevenue(w http.ResponseWriter, r *http.Request) {
	log := logger.WithContext(r.Context())

	month := r.URL.Query().Get("month")
	if month == "" {
		month = time.Now().Format(models.MonthLayout)
	}

	snap, err := s.snapshot(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load ledger")
		writeError(w, http.StatusInternalServerError, "ledger unavailable")
		return
	}

	collected, err := report.MonthlyRevenue(snap.Transactions(), snap.Income(), month)
	if errors.Is(err, report.ErrInvalidMonth) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute revenue")
		writeError(w, http.StatusInternalServerError, "failed to compute revenue")
		return
	}

	writeJSON(w, http.StatusOK, revenueSummary{
		Collections:      collected,
		TotalReceivables: report.TotalReceivables(snap.Students()),
	})
}
