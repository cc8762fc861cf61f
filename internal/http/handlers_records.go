package http

import (
	"encoding/json"
	"net/http"

	"clubledger/internal/core"
)

type expenseRequest struct {
	Description string      `json:"description" validate:"required,max=200"`
	Amount      json.Number `json:"amount" validate:"required"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	amount, err := core.ParseAmount(req.Amount.String())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	expense, err := s.recorder.AddExpense(r.Context(), req.Description, amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.reportCache.Clear()
	writeJSON(w, http.StatusCreated, expense)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.recorder.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.reportCache.Clear()
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.store.ListExpenses(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

type expenseStatsResponse struct {
	TotalExpenses int64 `json:"totalExpenses"`
}

func (s *Server) handleExpenseStats(w http.ResponseWriter, r *http.Request) {
	total, err := s.engine.ExpenseTotal(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expenseStatsResponse{TotalExpenses: total})
}

type donationRequest struct {
	DonorName string      `json:"donorName" validate:"required,max=100"`
	Amount    json.Number `json:"amount" validate:"required"`
}

func (s *Server) handleCreateDonation(w http.ResponseWriter, r *http.Request) {
	var req donationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	amount, err := core.ParseAmount(req.Amount.String())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	donation, err := s.recorder.AddDonation(r.Context(), req.DonorName, amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, donation)
}

type donationStatsResponse struct {
	TotalDonations int64 `json:"totalDonations"`
}

func (s *Server) handleDonationStats(w http.ResponseWriter, r *http.Request) {
	total, err := s.engine.DonationTotal(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, donationStatsResponse{TotalDonations: total})
}

func (s *Server) handleListDonations(w http.ResponseWriter, r *http.Request) {
	donations, err := s.store.ListDonations(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if donations == nil {
		donations = []core.Donation{}
	}
	writeJSON(w, http.StatusOK, donations)
}
