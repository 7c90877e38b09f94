package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/facette/natsort"
	"github.com/go-chi/chi/v5"

	"github.com/dilip-codes/fingerauthbackend/database"
	"github.com/dilip-codes/fingerauthbackend/models"
	"github.com/dilip-codes/fingerauthbackend/repository"
)

// AttendanceHandler serves read-only views over the attendance ledger.
type AttendanceHandler struct {
	Attendance repository.AttendanceRepositoryInterface
	SQLDB      *sql.DB
}

// ListDates returns every date that has at least one ledger entry.
func (h *AttendanceHandler) ListDates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.Attendance.ListDates()
	if err != nil {
		log.Printf("attendance handler: failed to list dates: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to list attendance dates")
		return
	}
	natsort.Sort(dates)
	if dates == nil {
		dates = []string{}
	}
	writeJSON(w, http.StatusOK, dates)
}

// GetDay returns the raw ledger rows for one date in arrival order.
func (h *AttendanceHandler) GetDay(w http.ResponseWriter, r *http.Request) {
	date, ok := h.parseDate(w, r)
	if !ok {
		return
	}

	entries, err := h.Attendance.ListByDate(date)
	if err != nil {
		log.Printf("attendance handler: failed to list entries for %s: %v", date, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to list attendance entries")
		return
	}
	if entries == nil {
		entries = []models.AttendanceEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// GetDaySummary returns per-subject aggregates for one date.
func (h *AttendanceHandler) GetDaySummary(w http.ResponseWriter, r *http.Request) {
	date, ok := h.parseDate(w, r)
	if !ok {
		return
	}

	summary, err := database.GetDaySummary(h.SQLDB, date)
	if err != nil {
		log.Printf("attendance handler: failed to summarize %s: %v", date, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to summarize attendance")
		return
	}
	if summary == nil {
		summary = []database.DaySummaryRow{}
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *AttendanceHandler) parseDate(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := chi.URLParam(r, "date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_date", "date must be formatted as YYYY-MM-DD")
		return "", false
	}
	return date, true
}
