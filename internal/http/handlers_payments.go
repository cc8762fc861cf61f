package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"clubledger/internal/core"
	"clubledger/internal/ledger"
)

// Amounts arrive as plain JSON numbers; json.Number also tolerates the
// quoted form so both wire shapes parse.
type paymentRequest struct {
	MemberID   string      `json:"memberId" validate:"required"`
	Amount     json.Number `json:"amount" validate:"required"`
	WeekNumber int         `json:"weekNumber" validate:"omitempty,min=1"`
	Year       int         `json:"year" validate:"omitempty,min=1000,max=9999"`
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	amount, err := core.ParseAmount(req.Amount.String())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	// Omitted week/year default to the current epoch-anchored week.
	week, year := req.WeekNumber, req.Year
	if week == 0 || year == 0 {
		curWeek, curYear := s.engine.CurrentWeek()
		if week == 0 {
			week = curWeek
		}
		if year == 0 {
			year = curYear
		}
	}

	payment, err := s.recorder.RecordPayment(r.Context(), req.MemberID, amount, week, year)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.reportCache.Clear()
	writeJSON(w, http.StatusCreated, payment)
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	if err := s.recorder.DeletePayment(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.reportCache.Clear()
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	var filter ledger.PaymentFilter
	filter.MemberID = strings.TrimSpace(r.URL.Query().Get("memberId"))
	if v := weekParam(r); v != "" {
		week, err := strconv.Atoi(v)
		if err != nil || week < 1 {
			writeDomainError(w, r, core.NewValidationError("weekNumber", "must be a positive integer"))
			return
		}
		filter.WeekNumber = week
	}
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year < 1000 || year > 9999 {
			writeDomainError(w, r, core.NewValidationError("year", "must be a four-digit year"))
			return
		}
		filter.Year = year
	}

	payments, err := s.store.ListPayments(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if payments == nil {
		payments = []core.Payment{}
	}
	writeJSON(w, http.StatusOK, payments)
}
