package http

import (
	"net/http"

	"clubledger/internal/core"
)

type memberRequest struct {
	Name   string `json:"name" validate:"required,max=100"`
	Phone  string `json:"phone" validate:"required,max=20"`
	Photo  string `json:"photo" validate:"omitempty,url"`
	Active *bool  `json:"active"`
}

func (req memberRequest) toMember() core.Member {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return core.Member{
		Name:   req.Name,
		Phone:  req.Phone,
		Photo:  req.Photo,
		Active: active,
	}
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.store.ListMembers(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if members == nil {
		members = []core.Member{}
	}
	writeJSON(w, http.StatusOK, members)
}

// handlePublicMembers mirrors the member list without phone numbers; those
// are visible to authenticated callers only.
func (s *Server) handlePublicMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.store.ListMembers(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	public := make([]core.Member, 0, len(members))
	for _, m := range members {
		m.Phone = ""
		public = append(public, m)
	}
	writeJSON(w, http.StatusOK, public)
}

func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	member, err := s.store.CreateMember(r.Context(), req.toMember())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

func (s *Server) handleGetMember(w http.ResponseWriter, r *http.Request) {
	member, err := s.store.GetMember(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	m := req.toMember()
	m.ID = r.PathValue("id")
	member, err := s.store.UpdateMember(r.Context(), m)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

// handleDeleteMember removes the member record only. Payments recorded for
// the member stay in the ledger with a dangling member reference.
func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteMember(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type paidStatusResponse struct {
	MemberID   string `json:"memberId"`
	WeekNumber int    `json:"weekNumber"`
	Year       int    `json:"year"`
	Paid       bool   `json:"paid"`
}

func (s *Server) handlePaidStatus(w http.ResponseWriter, r *http.Request) {
	week, year, err := s.weekYearParams(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	memberID := r.PathValue("id")
	if _, err := s.store.GetMember(r.Context(), memberID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	paid, err := s.engine.MemberPaidStatus(r.Context(), memberID, week, year)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paidStatusResponse{
		MemberID:   memberID,
		WeekNumber: week,
		Year:       year,
		Paid:       paid,
	})
}
